package service

import (
	"encoding/json"
	"time"

	"FunRadar/internal/model"
	"FunRadar/internal/tally"
)

// API响应载荷。字段命名与前端约定保持snake_case。

type UserPayload struct {
	ID                 uint64          `json:"id"`
	Name               string          `json:"name"`
	LocationPermission bool            `json:"location_permission"`
	Location           *model.GeoPoint `json:"location,omitempty"`
}

func NewUserPayload(u *model.User) UserPayload {
	p := UserPayload{
		ID:                 u.ID,
		Name:               u.Name,
		LocationPermission: u.LocationPermission,
	}
	if u.LocationPermission && u.LocationLatitude != nil && u.LocationLongitude != nil {
		p.Location = &model.GeoPoint{Latitude: *u.LocationLatitude, Longitude: *u.LocationLongitude}
	}
	return p
}

type OrganizerPayload struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ProgressEntry struct {
	ID          uint64                 `json:"id"`
	Name        string                 `json:"name"`
	Role        model.InvitationRole   `json:"role"`
	Status      model.InvitationStatus `json:"status"`
	InviteeID   *uint64                `json:"invitee_id"`
	RespondedAt *time.Time             `json:"responded_at"`
}

type EventPayload struct {
	ID               uint64            `json:"id"`
	Title            string            `json:"title"`
	Notes            string            `json:"notes"`
	Status           model.EventStatus `json:"status"`
	ShareToken       string            `json:"share_token"`
	Organizer        OrganizerPayload  `json:"organizer"`
	Progress         []ProgressEntry   `json:"progress"`
	SubmittedCount   int               `json:"submitted_count"`
	ParticipantCount int               `json:"participant_count"`
	Matches          []model.Match     `json:"matches"`
	AIGeneratedAt    *time.Time        `json:"ai_generated_at"`
	FinalMatch       json.RawMessage   `json:"final_match"`
	CompletedAt      *time.Time        `json:"completed_at"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewEventPayload 组装活动详情。matches为当前推荐快照的候选列表，未生成时传nil。
func NewEventPayload(event *model.Event, organizer *model.User, invitations []model.Invitation, matches []model.Match) EventPayload {
	progress := make([]ProgressEntry, 0, len(invitations))
	submitted, participants := 0, 0
	for i := range invitations {
		inv := &invitations[i]
		progress = append(progress, ProgressEntry{
			ID:          inv.ID,
			Name:        inv.InviteeName,
			Role:        inv.Role,
			Status:      inv.Status,
			InviteeID:   inv.InviteeID,
			RespondedAt: inv.RespondedAt,
		})
		if inv.Role == model.RoleParticipant {
			participants++
			if inv.Status == model.InvitationSubmitted {
				submitted++
			}
		}
	}

	if matches == nil {
		matches = []model.Match{}
	}
	p := EventPayload{
		ID:               event.ID,
		Title:            event.Title,
		Notes:            event.Notes,
		Status:           event.Status,
		ShareToken:       event.ShareToken,
		Progress:         progress,
		SubmittedCount:   submitted,
		ParticipantCount: participants,
		Matches:          matches,
		AIGeneratedAt:    event.AIGeneratedAt,
		FinalMatch:       finalMatchJSON(event),
		CompletedAt:      event.CompletedAt,
		CreatedAt:        event.CreatedAt,
		UpdatedAt:        event.UpdatedAt,
	}
	if organizer != nil {
		p.Organizer = OrganizerPayload{ID: organizer.ID, Name: organizer.Name}
	}
	return p
}

type PreferencePayload struct {
	AvailableTimes []string        `json:"available_times"`
	Activities     []string        `json:"activities"`
	BudgetMin      *int            `json:"budget_min"`
	BudgetMax      *int            `json:"budget_max"`
	Location       *model.GeoPoint `json:"location,omitempty"`
	Ideas          string          `json:"ideas"`
	SubmittedAt    *time.Time      `json:"submitted_at"`
}

func NewPreferencePayload(pref *model.Preference) *PreferencePayload {
	if pref == nil {
		return nil
	}
	p := &PreferencePayload{
		AvailableTimes: model.StringsFromJSON(pref.AvailableTimes),
		Activities:     model.StringsFromJSON(pref.Activities),
		BudgetMin:      pref.BudgetMin,
		BudgetMax:      pref.BudgetMax,
		Ideas:          pref.Ideas,
		SubmittedAt:    pref.SubmittedAt,
	}
	if pref.LocationLatitude != nil && pref.LocationLongitude != nil {
		p.Location = &model.GeoPoint{Latitude: *pref.LocationLatitude, Longitude: *pref.LocationLongitude}
	}
	return p
}

type InvitationPayload struct {
	ID          uint64                 `json:"id"`
	EventID     uint64                 `json:"event_id"`
	Role        model.InvitationRole   `json:"role"`
	Status      model.InvitationStatus `json:"status"`
	Name        string                 `json:"name"`
	InviteeID   *uint64                `json:"invitee_id"`
	AccessToken string                 `json:"access_token,omitempty"`
	RespondedAt *time.Time             `json:"responded_at"`
	Preference  *PreferencePayload     `json:"preference,omitempty"`
	Event       *EventPayload          `json:"event,omitempty"`
}

// NewInvitationPayload 组装邀请详情。withToken仅在组织者视角或令牌访问时为true。
func NewInvitationPayload(inv *model.Invitation, withToken bool) InvitationPayload {
	p := InvitationPayload{
		ID:          inv.ID,
		EventID:     inv.EventID,
		Role:        inv.Role,
		Status:      inv.Status,
		Name:        inv.InviteeName,
		InviteeID:   inv.InviteeID,
		RespondedAt: inv.RespondedAt,
	}
	if withToken {
		p.AccessToken = inv.AccessToken
	}
	return p
}

type ResultsPayload struct {
	EventID      uint64                      `json:"event_id"`
	Status       model.EventStatus           `json:"status"`
	Matches      []model.Match               `json:"matches"`
	VotesSummary map[string]tally.MatchTally `json:"votes_summary"`
	UserVotes    map[string]int              `json:"user_votes"`
	FinalMatch   json.RawMessage             `json:"final_match"`
	CompletedAt  *time.Time                  `json:"completed_at"`
}

// finalMatchJSON 敲定结果原样透传，未敲定时输出空对象
func finalMatchJSON(event *model.Event) json.RawMessage {
	if len(event.FinalMatch) == 0 {
		return json.RawMessage("{}")
	}
	return json.RawMessage(event.FinalMatch)
}

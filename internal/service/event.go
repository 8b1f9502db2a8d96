package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"FunRadar/internal/metrics"
	"FunRadar/internal/model"
	"FunRadar/internal/repository"
	"FunRadar/internal/tally"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventService 活动CRUD与授权。
// 写路径多行事务都在repository里，这里负责校验、授权和载荷组装。
type EventService struct {
	db     *gorm.DB
	logger *logrus.Logger
	repo   *repository.EventRepository
}

func NewEventService(db *gorm.DB, logger *logrus.Logger) *EventService {
	return &EventService{
		db:     db,
		logger: logger,
		repo:   repository.NewEventRepository(db),
	}
}

type InviteInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreateEventInput struct {
	Title               string          `json:"title"`
	Notes               string          `json:"notes"`
	OrganizerPreference PreferenceInput `json:"organizer_preference"`
	Invites             []InviteInput   `json:"invites"`
}

// Create 创建活动：活动 + 组织者邀请（自动提交）+ 组织者偏好 + 参与者邀请。
// 组织者的偏好在创建时一并提交，不占用就绪检查名额。
func (s *EventService) Create(ctx context.Context, organizer *model.User, in CreateEventInput) (*model.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "New Hangout"
	}
	if len(title) > 120 {
		return nil, validationf("title is too long (maximum is 120 characters)")
	}

	if err := validatePreference(&in.OrganizerPreference); err != nil {
		return nil, err
	}

	// 参与者名单：跳过空白名，活动内名字不重复
	seen := map[string]bool{strings.ToLower(organizer.Name): true}
	participants := make([]*model.Invitation, 0, len(in.Invites))
	for _, invite := range in.Invites {
		name := normalizeName(invite.Name)
		if name == "" {
			continue
		}
		if len(name) > 120 {
			return nil, validationf("invitee name is too long (maximum is 120 characters)")
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, validationf("invitee name %q is duplicated", name)
		}
		seen[key] = true
		participants = append(participants, &model.Invitation{
			InviteeName:  name,
			InviteeEmail: strings.TrimSpace(invite.Email),
			Role:         model.RoleParticipant,
			Status:       model.InvitationPending,
		})
	}

	now := time.Now()
	event := &model.Event{
		OrganizerID: organizer.ID,
		Title:       title,
		Notes:       strings.TrimSpace(in.Notes),
		Status:      model.EventCollecting,
		AISummary:   datatypes.JSON("{}"),
		FinalMatch:  datatypes.JSON("{}"),
	}
	organizerInv := &model.Invitation{
		InviteeID:   &organizer.ID,
		InviteeName: organizer.Name,
		Role:        model.RoleOrganizer,
		Status:      model.InvitationSubmitted,
		RespondedAt: &now,
	}
	pin := in.OrganizerPreference
	organizerPref := &model.Preference{
		AvailableTimes:    model.JSONStrings(pin.AvailableTimes),
		Activities:        model.JSONStrings(pin.Activities),
		BudgetMin:         pin.BudgetMin,
		BudgetMax:         pin.BudgetMax,
		LocationLatitude:  pin.LocationLatitude,
		LocationLongitude: pin.LocationLongitude,
		Ideas:             pin.Ideas,
		SubmittedAt:       &now,
	}

	if err := s.repo.CreateWithInvitations(ctx, event, organizerInv, organizerPref, participants); err != nil {
		return nil, err
	}

	metrics.EventsCreated.Inc()
	s.logger.WithFields(logrus.Fields{
		"event_id":     event.ID,
		"organizer_id": organizer.ID,
		"participants": len(participants),
	}).Info("活动已创建")
	return event, nil
}

// Get 按ID取活动
func (s *EventService) Get(ctx context.Context, id uint64) (*model.Event, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询活动失败: %w", err)
	}
	return &event, nil
}

// Authorize 读权限：组织者、受邀用户、或持有正确share_token的匿名访问者
func (s *EventService) Authorize(ctx context.Context, event *model.Event, user *model.User, shareToken string) error {
	if user != nil {
		if event.OrganizerID == user.ID {
			return nil
		}
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Invitation{}).
			Where("event_id = ? AND invitee_id = ?", event.ID, user.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("查询邀请失败: %w", err)
		}
		if count > 0 {
			return nil
		}
	}
	if shareToken != "" && event.ShareToken == shareToken {
		return nil
	}
	return ErrForbidden
}

// AuthorizeToken 免登录邀请令牌授权：令牌必须对应该活动的某个邀请
func (s *EventService) AuthorizeToken(ctx context.Context, event *model.Event, accessToken string) error {
	if accessToken == "" {
		return ErrForbidden
	}
	inv, err := resolveInvitation(s.db.WithContext(ctx), event, nil, accessToken)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrForbidden
	}
	return nil
}

// ListForUser 用户可见的活动：自己组织的 + 受邀的，按创建时间倒序
func (s *EventService) ListForUser(ctx context.Context, user *model.User) ([]model.Event, error) {
	var events []model.Event
	if err := s.db.WithContext(ctx).
		Distinct("events.*").
		Joins("LEFT JOIN invitations ON invitations.event_id = events.id").
		Where("events.organizer_id = ? OR invitations.invitee_id = ?", user.ID, user.ID).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("查询活动列表失败: %w", err)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events, nil
}

// Invitations 活动全部邀请，按创建顺序
func (s *EventService) Invitations(ctx context.Context, eventID uint64) ([]model.Invitation, error) {
	var invitations []model.Invitation
	if err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC, id ASC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("查询邀请列表失败: %w", err)
	}
	return invitations, nil
}

// CurrentMatches 当前权威推荐快照的候选列表，未生成时返回nil
func (s *EventService) CurrentMatches(ctx context.Context, event *model.Event) ([]model.Match, error) {
	return currentMatches(s.db.WithContext(ctx), event)
}

// Payload 组装活动详情载荷
func (s *EventService) Payload(ctx context.Context, event *model.Event) (*EventPayload, error) {
	invitations, err := s.Invitations(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	matches, err := s.CurrentMatches(ctx, event)
	if err != nil {
		return nil, err
	}

	var organizer model.User
	if err := s.db.WithContext(ctx).First(&organizer, event.OrganizerID).Error; err != nil &&
		!errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询组织者失败: %w", err)
	}

	p := NewEventPayload(event, &organizer, invitations, matches)
	return &p, nil
}

// Results 投票结果视图：候选列表 + 票面汇总 + 当前访问者已投的分数
func (s *EventService) Results(ctx context.Context, event *model.Event, user *model.User, accessToken string) (*ResultsPayload, error) {
	matches, err := s.CurrentMatches(ctx, event)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []model.Match{}
	}

	votes, err := loadVotes(s.db.WithContext(ctx), event.ID)
	if err != nil {
		return nil, err
	}

	userVotes := map[string]int{}
	if inv, err := resolveInvitation(s.db.WithContext(ctx), event, user, accessToken); err == nil && inv != nil {
		for _, v := range votes {
			if v.InvitationID == inv.ID {
				userVotes[v.MatchID] = v.Score
			}
		}
	}

	return &ResultsPayload{
		EventID:      event.ID,
		Status:       event.Status,
		Matches:      matches,
		VotesSummary: tally.Summary(votes),
		UserVotes:    userVotes,
		FinalMatch:   finalMatchJSON(event),
		CompletedAt:  event.CompletedAt,
	}, nil
}

// AddParticipant 组织者向已有活动补充参与者。
// 匹配已开始时整个活动回到collecting重新收集（推荐与投票全部作废）。
func (s *EventService) AddParticipant(ctx context.Context, event *model.Event, user *model.User, name, email string) (*model.Invitation, error) {
	if user == nil || event.OrganizerID != user.ID {
		return nil, ErrForbidden
	}
	name = normalizeName(name)
	if name == "" {
		return nil, validationf("invitee name can't be blank")
	}
	if len(name) > 120 {
		return nil, validationf("invitee name is too long (maximum is 120 characters)")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Invitation{}).
		Where("event_id = ? AND lower(invitee_name) = lower(?)", event.ID, name).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("查询既有邀请失败: %w", err)
	}
	if count > 0 {
		return nil, validationf("invitee name %q is duplicated", name)
	}

	inv := &model.Invitation{
		InviteeName:  name,
		InviteeEmail: strings.TrimSpace(email),
		Role:         model.RoleParticipant,
		Status:       model.InvitationPending,
	}
	if err := s.repo.Reopen(ctx, event.ID, inv); err != nil {
		return nil, err
	}

	if event.Status != model.EventCollecting {
		s.logger.WithFields(logrus.Fields{
			"event_id": event.ID,
			"from":     event.Status,
		}).Info("新增参与者，活动重回收集阶段")
	}
	return inv, nil
}

// Delete 组织者删除活动（级联）
func (s *EventService) Delete(ctx context.Context, event *model.Event, user *model.User) error {
	if user == nil || event.OrganizerID != user.ID {
		return ErrForbidden
	}
	return s.repo.DeleteCascade(ctx, event.ID)
}

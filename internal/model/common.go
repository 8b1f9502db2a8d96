package model

import (
	"encoding/json"
	"fmt"
)

// EventStatus 活动生命周期状态枚举
type EventStatus string

const (
	EventCollecting    EventStatus = "collecting"      // 收集偏好中
	EventMatching      EventStatus = "matching"        // 全员已提交，等待生成推荐
	EventOpenForVoting EventStatus = "open_for_voting" // 推荐已生成，开放投票
	EventCompleted     EventStatus = "completed"       // 投票完成，最终活动已确定
)

// InvitationRole 邀请角色枚举
type InvitationRole string

const (
	RoleOrganizer   InvitationRole = "organizer"
	RoleParticipant InvitationRole = "participant"
)

// InvitationStatus 邀请提交状态枚举
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationSubmitted InvitationStatus = "submitted"
)

// MatchID 候选活动ID。AI返回的id可能是数字也可能是字符串，统一归一化为字符串
type MatchID string

func (m *MatchID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MatchID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("match id 既不是字符串也不是数字: %w", err)
	}
	*m = MatchID(n.String())
	return nil
}

func (m MatchID) String() string { return string(m) }

// Match 单个候选活动（推荐快照payload中的一项，10个必备字段）
type Match struct {
	ID            MatchID `json:"id"`
	Title         string  `json:"title"`
	Compatibility int     `json:"compatibility"` // 契合度 0-100
	Image         string  `json:"image"`
	Location      string  `json:"location"`
	Price         string  `json:"price"`
	Time          string  `json:"time"`
	Emoji         string  `json:"emoji"`
	Votes         int     `json:"votes"`
	Description   string  `json:"description"`
}

// GeoPoint 经纬度坐标
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TallyEntry 偏好频次统计项
type TallyEntry struct {
	Value string `json:"value"`
	Votes int    `json:"votes"`
}

// BudgetRange 群体预算区间（所有人最低预算的最小值 ~ 最高预算的最大值）
type BudgetRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PreferenceSummary 偏好聚合摘要（提供给推荐生成器的紧凑视图）
type PreferenceSummary struct {
	TopTimeSlots  []TallyEntry `json:"top_time_slots"`
	TopActivities []TallyEntry `json:"top_activities"`
	BudgetRange   *BudgetRange `json:"budget_range,omitempty"`
	Locations     []GeoPoint   `json:"locations,omitempty"`
}

// AttendeeInput 单个成员的原始偏好（透传给生成器）
type AttendeeInput struct {
	Name           string    `json:"name"`
	AvailableTimes []string  `json:"available_times"`
	Activities     []string  `json:"activities"`
	BudgetMin      *int      `json:"budget_min,omitempty"`
	BudgetMax      *int      `json:"budget_max,omitempty"`
	Ideas          string    `json:"ideas,omitempty"`
	Location       *GeoPoint `json:"location,omitempty"`
}

// EventMeta 活动元信息（透传给生成器）
type EventMeta struct {
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	Organizer string    `json:"organizer"`
	Location  *GeoPoint `json:"location,omitempty"`
}

// SuggestionRequest 推荐生成请求：活动元信息 + 各成员原始偏好 + 聚合摘要
type SuggestionRequest struct {
	Event     EventMeta         `json:"event"`
	Attendees []AttendeeInput   `json:"attendees"`
	Summary   PreferenceSummary `json:"summary"`
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID                 uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Name               string     `gorm:"column:name;type:varchar(120);not null;comment:显示名称（lower(name)全局唯一）"`
	LocationPermission bool       `gorm:"column:location_permission;type:boolean;not null;default:false;comment:是否授权使用位置"`
	LocationLatitude   *float64   `gorm:"column:location_latitude;type:numeric(10,6);comment:最近已知纬度"`
	LocationLongitude  *float64   `gorm:"column:location_longitude;type:numeric(10,6);comment:最近已知经度"`
	LastSignedInAt     *time.Time `gorm:"column:last_signed_in_at;type:timestamp;comment:最近登录时间"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

type Event struct {
	ID                  uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	OrganizerID         uint64         `gorm:"column:organizer_id;type:bigint;not null;index;comment:组织者用户ID"`
	Title               string         `gorm:"column:title;type:varchar(120);not null;comment:活动标题"`
	Notes               string         `gorm:"column:notes;type:text;comment:备注"`
	Status              EventStatus    `gorm:"column:status;type:varchar(16);not null;default:collecting;comment:生命周期状态"`
	ShareToken          string         `gorm:"column:share_token;type:varchar(64);uniqueIndex;not null;comment:不可猜测的分享令牌"`
	CurrentSuggestionID *uint64        `gorm:"column:current_suggestion_id;type:bigint;comment:当前权威推荐快照ID（替代按created_at取最新）"`
	AISummary           datatypes.JSON `gorm:"column:ai_summary;type:jsonb;comment:最近一次生成的推荐摘要"`
	AIGeneratedAt       *time.Time     `gorm:"column:ai_generated_at;type:timestamp;comment:推荐生成时间"`
	FinalMatch          datatypes.JSON `gorm:"column:final_match;type:jsonb;comment:最终胜出活动（完成前为空对象）"`
	CompletedAt         *time.Time     `gorm:"column:completed_at;type:timestamp;comment:投票完成时间"`
	CreatedAt           time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt           time.Time      `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

type Invitation struct {
	ID           uint64           `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	EventID      uint64           `gorm:"column:event_id;type:bigint;not null;index;uniqueIndex:uk_event_invitee;comment:关联活动ID"`
	InviteeID    *uint64          `gorm:"column:invitee_id;type:bigint;index;uniqueIndex:uk_event_invitee;comment:关联用户ID（未认领时为空，Postgres下NULL不触发唯一冲突）"`
	InviteeName  string           `gorm:"column:invitee_name;type:varchar(120);not null;comment:受邀人显示名"`
	InviteeEmail string           `gorm:"column:invitee_email;type:varchar(255);comment:受邀人邮箱（可选）"`
	Role         InvitationRole   `gorm:"column:role;type:varchar(16);not null;default:participant;comment:角色：organizer/participant"`
	Status       InvitationStatus `gorm:"column:status;type:varchar(16);not null;default:pending;comment:提交状态：pending/submitted"`
	AccessToken  string           `gorm:"column:access_token;type:varchar(64);uniqueIndex;not null;comment:免登录访问令牌"`
	RespondedAt  *time.Time       `gorm:"column:responded_at;type:timestamp;comment:提交偏好时间"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

type Preference struct {
	ID                uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	InvitationID      uint64         `gorm:"column:invitation_id;type:bigint;uniqueIndex;not null;comment:关联邀请ID（一对一）"`
	AvailableTimes    datatypes.JSON `gorm:"column:available_times;type:jsonb;not null;comment:可用时间段列表"`
	Activities        datatypes.JSON `gorm:"column:activities;type:jsonb;not null;comment:活动标签列表"`
	BudgetMin         *int           `gorm:"column:budget_min;type:int;comment:最低预算"`
	BudgetMax         *int           `gorm:"column:budget_max;type:int;comment:最高预算"`
	LocationLatitude  *float64       `gorm:"column:location_latitude;type:numeric(10,6);comment:提交时纬度（可选）"`
	LocationLongitude *float64       `gorm:"column:location_longitude;type:numeric(10,6);comment:提交时经度（可选）"`
	Ideas             string         `gorm:"column:ideas;type:text;comment:自由发挥的想法"`
	SubmittedAt       *time.Time     `gorm:"column:submitted_at;type:timestamp;comment:首次提交时间"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

// ActivitySuggestion 推荐快照：一次匹配运行产出的不可变候选活动列表
// 一个活动可能累积多个快照（重新匹配），权威快照由 events.current_suggestion_id 指定
type ActivitySuggestion struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	EventID   uint64         `gorm:"column:event_id;type:bigint;not null;index;comment:关联活动ID"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb;not null;comment:有序候选活动列表"`
	ModelName string         `gorm:"column:model_name;type:varchar(64);comment:生成来源标记（模型名或fallback）"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

type MatchVote struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	EventID      uint64    `gorm:"column:event_id;type:bigint;not null;index;comment:关联活动ID"`
	InvitationID uint64    `gorm:"column:invitation_id;type:bigint;not null;uniqueIndex:uk_invitation_match;comment:关联邀请ID"`
	MatchID      string    `gorm:"column:match_id;type:varchar(64);not null;uniqueIndex:uk_invitation_match;comment:候选活动ID"`
	Score        int       `gorm:"column:score;type:int;not null;comment:评分 1-5"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间"`
}

func (User) TableName() string               { return "users" }
func (Event) TableName() string              { return "events" }
func (Invitation) TableName() string         { return "invitations" }
func (Preference) TableName() string         { return "preferences" }
func (ActivitySuggestion) TableName() string { return "activity_suggestions" }
func (MatchVote) TableName() string          { return "match_votes" }

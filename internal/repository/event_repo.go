package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FunRadar/internal/lifecycle"
	"FunRadar/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// CreateWithInvitations 创建活动全套记录：活动 + 组织者邀请（自动提交）+ 组织者偏好 + 参与者邀请。
// 单事务，保证读者不会看到没有组织者邀请的活动。
func (r *EventRepository) CreateWithInvitations(ctx context.Context, event *model.Event, organizerInv *model.Invitation, organizerPref *model.Preference, participants []*model.Invitation) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	if event.ShareToken == "" {
		event.ShareToken = uuid.NewString()
	}
	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("保存Event失败: %w, title: %s", err, event.Title)
	}

	organizerInv.EventID = event.ID
	if organizerInv.AccessToken == "" {
		organizerInv.AccessToken = uuid.NewString()
	}
	if err := tx.Create(organizerInv).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("保存组织者邀请失败: %w", err)
	}

	if organizerPref != nil {
		organizerPref.InvitationID = organizerInv.ID
		if err := tx.Create(organizerPref).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("保存组织者偏好失败: %w", err)
		}
	}

	for _, inv := range participants {
		inv.EventID = event.ID
		if inv.AccessToken == "" {
			inv.AccessToken = uuid.NewString()
		}
		if err := tx.Create(inv).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("保存参与者邀请失败: %w, name: %s", err, inv.InviteeName)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// TryBeginMatching collecting → matching 的原子条件更新。
// 并发提交偏好时只有一个调用者的更新生效（RowsAffected==1），
// 由它负责调度后台匹配任务；其余调用者拿到false直接返回。
func (r *EventRepository) TryBeginMatching(ctx context.Context, eventID uint64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("id = ? AND status = ?", eventID, model.EventCollecting).
		Update("status", model.EventMatching)
	if res.Error != nil {
		return false, fmt.Errorf("状态转移collecting→matching失败: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// RecordSuggestion 推荐快照落库：插入快照行、活动指针指向新快照、
// 重新匹配时清掉旧投票、状态翻到open_for_voting并盖章生成时间。单事务+活动行锁。
// 活动已不在matching状态（被重开或重复投递）时整体no-op。
func (r *EventRepository) RecordSuggestion(ctx context.Context, eventID uint64, matches []model.Match, sourceTag string) error {
	payload, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("序列化候选列表失败: %w", err)
	}
	summary, err := json.Marshal(map[string]json.RawMessage{"matches": payload})
	if err != nil {
		return fmt.Errorf("序列化推荐摘要失败: %w", err)
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	var event model.Event
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("锁定活动行失败: %w", err)
	}
	rematch := event.CurrentSuggestionID != nil
	transition, ok := lifecycle.OpenVoting(event.Status, rematch)
	if !ok {
		// 已被重开或重复投递，放弃本次快照
		tx.Rollback()
		return nil
	}

	suggestion := &model.ActivitySuggestion{
		EventID:   eventID,
		Payload:   datatypes.JSON(payload),
		ModelName: sourceTag,
	}
	if err := tx.Create(suggestion).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("保存推荐快照失败: %w", err)
	}

	// 重新匹配：旧投票针对的是旧快照的候选，全部作废
	if transition.HasEffect(lifecycle.EffectClearVotes) {
		if err := tx.Where("event_id = ?", eventID).Delete(&model.MatchVote{}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("清除旧投票失败: %w", err)
		}
	}

	now := time.Now()
	if err := tx.Model(&model.Event{}).Where("id = ?", eventID).Updates(map[string]interface{}{
		"status":                transition.To,
		"current_suggestion_id": suggestion.ID,
		"ai_summary":            datatypes.JSON(summary),
		"ai_generated_at":       now,
	}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("更新活动状态失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// Reopen 匹配开始后新增参与者：销毁全部推荐与投票、重置生成结果、回到collecting，
// 并在同一事务内创建新参与者邀请。活动仍在collecting时只创建邀请。
func (r *EventRepository) Reopen(ctx context.Context, eventID uint64, newInvitation *model.Invitation) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	var event model.Event
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, eventID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("锁定活动行失败: %w", err)
	}

	if transition, ok := lifecycle.Reopen(event.Status); ok {
		if transition.HasEffect(lifecycle.EffectClearVotes) {
			if err := tx.Where("event_id = ?", eventID).Delete(&model.MatchVote{}).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("清除投票失败: %w", err)
			}
		}
		if transition.HasEffect(lifecycle.EffectClearSuggestions) {
			if err := tx.Where("event_id = ?", eventID).Delete(&model.ActivitySuggestion{}).Error; err != nil {
				tx.Rollback()
				return fmt.Errorf("清除推荐快照失败: %w", err)
			}
		}
		if err := tx.Model(&model.Event{}).Where("id = ?", eventID).Updates(map[string]interface{}{
			"status":                transition.To,
			"current_suggestion_id": nil,
			"ai_summary":            datatypes.JSON("{}"),
			"ai_generated_at":       nil,
			"final_match":           datatypes.JSON("{}"),
			"completed_at":          nil,
		}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("重置活动状态失败: %w", err)
		}
	}

	if newInvitation != nil {
		newInvitation.EventID = eventID
		if newInvitation.AccessToken == "" {
			newInvitation.AccessToken = uuid.NewString()
		}
		if err := tx.Create(newInvitation).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("保存新参与者邀请失败: %w, name: %s", err, newInvitation.InviteeName)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// DeleteCascade 组织者删除活动：级联删除投票、推荐快照、偏好、邀请
func (r *EventRepository) DeleteCascade(ctx context.Context, eventID uint64) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	var invitationIDs []uint64
	if err := tx.Model(&model.Invitation{}).Where("event_id = ?", eventID).Pluck("id", &invitationIDs).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("查询邀请列表失败: %w", err)
	}

	if err := tx.Where("event_id = ?", eventID).Delete(&model.MatchVote{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("删除投票失败: %w", err)
	}
	if err := tx.Where("event_id = ?", eventID).Delete(&model.ActivitySuggestion{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("删除推荐快照失败: %w", err)
	}
	if len(invitationIDs) > 0 {
		if err := tx.Where("invitation_id IN ?", invitationIDs).Delete(&model.Preference{}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("删除偏好失败: %w", err)
		}
	}
	if err := tx.Where("event_id = ?", eventID).Delete(&model.Invitation{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("删除邀请失败: %w", err)
	}
	if err := tx.Delete(&model.Event{}, eventID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("删除活动失败: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

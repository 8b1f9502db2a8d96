package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FunRadar/internal/model"

	"gorm.io/gorm"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// FindByAccessToken 按免登录访问令牌查邀请
func (r *InvitationRepository) FindByAccessToken(ctx context.Context, token string) (*model.Invitation, error) {
	var inv model.Invitation
	if err := r.db.WithContext(ctx).Where("access_token = ?", token).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpsertPreference 偏好创建/更新 + 邀请标记submitted，单事务。
// 每次提交（含更新）都会触发邀请状态刷新，调用方随后执行就绪检查。
func (r *InvitationRepository) UpsertPreference(ctx context.Context, invitation *model.Invitation, pref *model.Preference) (*model.Preference, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	now := time.Now()

	var existing model.Preference
	err := tx.Where("invitation_id = ?", invitation.ID).First(&existing).Error
	switch {
	case err == nil:
		// 更新既有偏好，保留首次提交时间
		if err := tx.Model(&existing).Updates(map[string]interface{}{
			"available_times":    pref.AvailableTimes,
			"activities":         pref.Activities,
			"budget_min":         pref.BudgetMin,
			"budget_max":         pref.BudgetMax,
			"location_latitude":  pref.LocationLatitude,
			"location_longitude": pref.LocationLongitude,
			"ideas":              pref.Ideas,
		}).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("更新偏好失败: %w", err)
		}
		existing.AvailableTimes = pref.AvailableTimes
		existing.Activities = pref.Activities
		existing.BudgetMin = pref.BudgetMin
		existing.BudgetMax = pref.BudgetMax
		existing.LocationLatitude = pref.LocationLatitude
		existing.LocationLongitude = pref.LocationLongitude
		existing.Ideas = pref.Ideas
		pref = &existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		pref.InvitationID = invitation.ID
		pref.SubmittedAt = &now
		if err := tx.Create(pref).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("创建偏好失败: %w", err)
		}
	default:
		tx.Rollback()
		return nil, fmt.Errorf("查询既有偏好失败: %w", err)
	}

	// 邀请标记submitted（已标记过则跳过，保留首次提交时间）
	if invitation.Status != model.InvitationSubmitted || invitation.RespondedAt == nil {
		if err := tx.Model(&model.Invitation{}).Where("id = ?", invitation.ID).Updates(map[string]interface{}{
			"status":       model.InvitationSubmitted,
			"responded_at": now,
		}).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("更新邀请状态失败: %w", err)
		}
		invitation.Status = model.InvitationSubmitted
		invitation.RespondedAt = &now
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}
	return pref, nil
}

// Claim 将未绑定账号的邀请绑定到指定用户
func (r *InvitationRepository) Claim(ctx context.Context, invitation *model.Invitation, user *model.User) error {
	if invitation.InviteeID != nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Invitation{}).Where("id = ?", invitation.ID).Updates(map[string]interface{}{
		"invitee_id":   user.ID,
		"invitee_name": user.Name,
	}).Error; err != nil {
		return fmt.Errorf("认领邀请失败: %w", err)
	}
	invitation.InviteeID = &user.ID
	invitation.InviteeName = user.Name
	return nil
}

// ClaimMatchingInvitations 登录后认领同名未绑定邀请。
// 逐条更新：同一活动已有该用户的邀请时唯一约束会拒绝，跳过即可（不视为错误）。
func (r *InvitationRepository) ClaimMatchingInvitations(ctx context.Context, user *model.User) error {
	var candidates []model.Invitation
	if err := r.db.WithContext(ctx).
		Where("invitee_id IS NULL AND lower(invitee_name) = lower(?)", user.Name).
		Find(&candidates).Error; err != nil {
		return fmt.Errorf("查询可认领邀请失败: %w", err)
	}

	for i := range candidates {
		if err := r.db.WithContext(ctx).Model(&candidates[i]).
			Update("invitee_id", user.ID).Error; err != nil {
			// 唯一约束冲突等单条失败不阻断其余认领
			continue
		}
	}
	return nil
}

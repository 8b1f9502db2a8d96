package service

import (
	"context"
	"errors"
	"fmt"

	"FunRadar/internal/model"
	"FunRadar/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InvitationService 邀请查询与认领
type InvitationService struct {
	db      *gorm.DB
	logger  *logrus.Logger
	invRepo *repository.InvitationRepository
}

func NewInvitationService(db *gorm.DB, logger *logrus.Logger) *InvitationService {
	return &InvitationService{
		db:      db,
		logger:  logger,
		invRepo: repository.NewInvitationRepository(db),
	}
}

// ListForUser 用户名下的全部邀请，按创建时间倒序。
// 查询前先认领同名未绑定邀请，登录后新收到的邀请也能出现在列表里。
func (s *InvitationService) ListForUser(ctx context.Context, user *model.User) ([]model.Invitation, error) {
	if err := s.invRepo.ClaimMatchingInvitations(ctx, user); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("认领同名邀请失败")
	}

	var invitations []model.Invitation
	if err := s.db.WithContext(ctx).
		Where("invitee_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("查询邀请列表失败: %w", err)
	}
	return invitations, nil
}

// FindByToken 按免登录令牌取邀请及其活动
func (s *InvitationService) FindByToken(ctx context.Context, token string) (*model.Invitation, *model.Event, error) {
	inv, err := s.invRepo.FindByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("查询邀请失败: %w", err)
	}

	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, inv.EventID).Error; err != nil {
		return nil, nil, fmt.Errorf("查询活动失败: %w", err)
	}
	return inv, &event, nil
}

// Claim 登录用户认领令牌对应的邀请。
// 已被他人认领时拒绝；已被自己认领时幂等成功。
func (s *InvitationService) Claim(ctx context.Context, token string, user *model.User) (*model.Invitation, error) {
	inv, err := s.invRepo.FindByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("查询邀请失败: %w", err)
	}

	if inv.InviteeID != nil {
		if *inv.InviteeID == user.ID {
			return inv, nil
		}
		return nil, ErrForbidden
	}

	// 同一活动里该用户已有邀请时唯一约束会拒绝
	if err := s.invRepo.Claim(ctx, inv, user); err != nil {
		return nil, validationf("invitation can't be claimed")
	}
	s.logger.WithFields(logrus.Fields{
		"invitation_id": inv.ID,
		"user_id":       user.ID,
	}).Info("邀请已认领")
	return inv, nil
}

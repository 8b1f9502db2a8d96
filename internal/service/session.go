package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FunRadar/internal/model"
	"FunRadar/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserService 名字即身份的轻量会话：按名字查找或创建用户，
// 登录时顺带认领同名的未绑定邀请
type UserService struct {
	db      *gorm.DB
	logger  *logrus.Logger
	invRepo *repository.InvitationRepository
}

func NewUserService(db *gorm.DB, logger *logrus.Logger) *UserService {
	return &UserService{
		db:      db,
		logger:  logger,
		invRepo: repository.NewInvitationRepository(db),
	}
}

// SignIn 登录/注册二合一：名字大小写不敏感匹配既有用户，不存在则创建
func (s *UserService) SignIn(ctx context.Context, name string) (*model.User, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, validationf("name can't be blank")
	}
	if len(name) > 120 {
		return nil, validationf("name is too long (maximum is 120 characters)")
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&user).Error
	switch {
	case err == nil:
		// 已有用户，盖登录时间戳
		now := time.Now()
		if err := s.db.WithContext(ctx).Model(&user).Update("last_signed_in_at", now).Error; err != nil {
			return nil, fmt.Errorf("更新登录时间失败: %w", err)
		}
		user.LastSignedInAt = &now
	case errors.Is(err, gorm.ErrRecordNotFound):
		now := time.Now()
		user = model.User{Name: name, LastSignedInAt: &now}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			// 并发注册撞唯一索引时重查一次
			if retryErr := s.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&user).Error; retryErr != nil {
				return nil, fmt.Errorf("创建用户失败: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := s.invRepo.ClaimMatchingInvitations(ctx, &user); err != nil {
		// 认领失败不影响登录
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("认领同名邀请失败")
	}
	return &user, nil
}

// FindByID API层从X-User-Id头解析当前用户
func (s *UserService) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}
	return &user, nil
}

type UpdateUserInput struct {
	LocationPermission *bool    `json:"location_permission"`
	LocationLatitude   *float64 `json:"location_latitude"`
	LocationLongitude  *float64 `json:"location_longitude"`
}

// UpdateLocation 更新位置授权与坐标。撤销授权时清空坐标，避免残留过期位置
func (s *UserService) UpdateLocation(ctx context.Context, user *model.User, in UpdateUserInput) (*model.User, error) {
	updates := map[string]interface{}{}
	if in.LocationPermission != nil {
		updates["location_permission"] = *in.LocationPermission
		if !*in.LocationPermission {
			updates["location_latitude"] = nil
			updates["location_longitude"] = nil
		}
	}
	permitted := user.LocationPermission
	if in.LocationPermission != nil {
		permitted = *in.LocationPermission
	}
	if permitted {
		if in.LocationLatitude != nil {
			updates["location_latitude"] = *in.LocationLatitude
		}
		if in.LocationLongitude != nil {
			updates["location_longitude"] = *in.LocationLongitude
		}
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("更新用户位置失败: %w", err)
	}
	var fresh model.User
	if err := s.db.WithContext(ctx).First(&fresh, user.ID).Error; err != nil {
		return nil, fmt.Errorf("回读用户失败: %w", err)
	}
	return &fresh, nil
}

// normalizeName 去首尾空白并压缩连续空白为单个空格
func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

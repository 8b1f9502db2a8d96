package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"FunRadar/internal/interfaces"
	"FunRadar/internal/lifecycle"
	"FunRadar/internal/model"
	"FunRadar/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PreferenceService 偏好提交：按邀请令牌落库偏好，随后做就绪检查，
// 全员提交时抢占collecting→matching转移并调度后台匹配
type PreferenceService struct {
	db        *gorm.DB
	logger    *logrus.Logger
	invRepo   *repository.InvitationRepository
	eventRepo *repository.EventRepository
	scheduler interfaces.MatchScheduler
}

func NewPreferenceService(db *gorm.DB, logger *logrus.Logger, scheduler interfaces.MatchScheduler) *PreferenceService {
	return &PreferenceService{
		db:        db,
		logger:    logger,
		invRepo:   repository.NewInvitationRepository(db),
		eventRepo: repository.NewEventRepository(db),
		scheduler: scheduler,
	}
}

type PreferenceInput struct {
	AvailableTimes    []string `json:"available_times"`
	Activities        []string `json:"activities"`
	BudgetMin         *int     `json:"budget_min"`
	BudgetMax         *int     `json:"budget_max"`
	LocationLatitude  *float64 `json:"location_latitude"`
	LocationLongitude *float64 `json:"location_longitude"`
	Ideas             string   `json:"ideas"`
}

// validatePreference 偏好整体校验，任何一项不合格都不落库
func validatePreference(in *PreferenceInput) error {
	in.AvailableTimes = compactStrings(in.AvailableTimes)
	in.Activities = compactStrings(in.Activities)
	if len(in.AvailableTimes) == 0 {
		return validationf("available_times can't be blank")
	}
	if len(in.Activities) == 0 {
		return validationf("activities can't be blank")
	}
	if in.BudgetMin == nil {
		return validationf("budget_min can't be blank")
	}
	if in.BudgetMax == nil {
		return validationf("budget_max can't be blank")
	}
	if *in.BudgetMin < 0 || *in.BudgetMax < 0 {
		return validationf("budget must be greater than or equal to 0")
	}
	if *in.BudgetMax < *in.BudgetMin {
		return validationf("budget_max must be greater than or equal to budget_min")
	}
	return nil
}

// compactStrings 去掉空白项并修剪首尾空白
func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// FindInvitation 按免登录令牌取邀请，用于偏好页展示
func (s *PreferenceService) FindInvitation(ctx context.Context, token string) (*model.Invitation, *model.Preference, error) {
	inv, err := s.invRepo.FindByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("查询邀请失败: %w", err)
	}

	var pref model.Preference
	err = s.db.WithContext(ctx).Where("invitation_id = ?", inv.ID).First(&pref).Error
	switch {
	case err == nil:
		return inv, &pref, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return inv, nil, nil
	default:
		return nil, nil, fmt.Errorf("查询偏好失败: %w", err)
	}
}

// Submit 提交/更新偏好。落库成功后做就绪检查，可能触发状态转移与匹配调度
func (s *PreferenceService) Submit(ctx context.Context, token string, in PreferenceInput) (*model.Invitation, *model.Preference, error) {
	inv, err := s.invRepo.FindByAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("查询邀请失败: %w", err)
	}

	if err := validatePreference(&in); err != nil {
		return nil, nil, err
	}

	pref := &model.Preference{
		AvailableTimes:    model.JSONStrings(in.AvailableTimes),
		Activities:        model.JSONStrings(in.Activities),
		BudgetMin:         in.BudgetMin,
		BudgetMax:         in.BudgetMax,
		LocationLatitude:  in.LocationLatitude,
		LocationLongitude: in.LocationLongitude,
		Ideas:             in.Ideas,
	}
	saved, err := s.invRepo.UpsertPreference(ctx, inv, pref)
	if err != nil {
		return nil, nil, err
	}

	s.checkReadyForMatching(ctx, inv.EventID)
	return inv, saved, nil
}

// checkReadyForMatching 就绪检查：全部参与者已提交则抢占状态转移。
// CAS只有一个提交者能赢，赢家负责调度匹配任务，其余直接返回。
// 检查失败只记日志不影响本次提交，下一次提交会重新触发。
func (s *PreferenceService) checkReadyForMatching(ctx context.Context, eventID uint64) {
	log := s.logger.WithField("event_id", eventID)

	var event model.Event
	if err := s.db.WithContext(ctx).Select("id", "status").First(&event, eventID).Error; err != nil {
		log.WithError(err).Error("就绪检查查询活动失败")
		return
	}

	var invitations []model.Invitation
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&invitations).Error; err != nil {
		log.WithError(err).Error("就绪检查查询邀请失败")
		return
	}

	states := make([]lifecycle.InvitationState, 0, len(invitations))
	for _, inv := range invitations {
		states = append(states, lifecycle.InvitationState{
			Role:      inv.Role,
			Submitted: inv.Status == model.InvitationSubmitted,
		})
	}
	if _, ok := lifecycle.BeginMatching(event.Status, states); !ok {
		return
	}

	won, err := s.eventRepo.TryBeginMatching(ctx, eventID)
	if err != nil {
		log.WithError(err).Error("状态转移失败")
		return
	}
	if !won {
		return
	}

	log.Info("全员偏好已提交，进入匹配阶段")
	s.scheduler.Schedule(eventID)
}

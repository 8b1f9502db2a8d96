package service

import (
	"context"
	"errors"
	"fmt"

	"FunRadar/internal/adapter"
	"FunRadar/internal/aggregate"
	"FunRadar/internal/interfaces"
	"FunRadar/internal/metrics"
	"FunRadar/internal/model"
	"FunRadar/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MatchService 后台匹配编排器：收集各成员偏好，聚合出摘要，
// 交给推荐生成器拿候选列表，整体落库为推荐快照。
// 由worker在matching状态下调用，活动已离开matching时no-op。
type MatchService struct {
	db        *gorm.DB
	logger    *logrus.Logger
	repo      *repository.EventRepository
	generator interfaces.SuggestionGenerator
}

func NewMatchService(db *gorm.DB, logger *logrus.Logger, generator interfaces.SuggestionGenerator) *MatchService {
	return &MatchService{
		db:        db,
		logger:    logger,
		repo:      repository.NewEventRepository(db),
		generator: generator,
	}
}

// GenerateSuggestions 执行一次匹配。落库失败返回错误（活动留在matching，
// 可重新投递），生成器本身永不失败（内部兜底）。
func (s *MatchService) GenerateSuggestions(ctx context.Context, eventID uint64) error {
	log := s.logger.WithField("event_id", eventID)

	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 任务投递后活动被删除，任务直接作废
			log.Warn("匹配任务对应的活动不存在")
			return nil
		}
		return fmt.Errorf("查询活动失败: %w", err)
	}
	if event.Status != model.EventMatching {
		log.WithField("status", event.Status).Debug("活动不在matching状态，跳过匹配")
		return nil
	}

	req, attendeeCount, err := s.buildRequest(ctx, &event)
	if err != nil {
		return err
	}

	var matches []model.Match
	var source string
	if attendeeCount == 0 {
		// 没有任何已提交偏好，直接走兜底列表，不打扰生成器
		matches, source = adapter.FallbackMatches(), adapter.SourceFallback
	} else {
		matches, source = s.generator.Generate(ctx, req)
	}

	if err := s.repo.RecordSuggestion(ctx, eventID, matches, source); err != nil {
		log.WithError(err).Error("推荐快照落库失败，活动留在matching")
		return err
	}

	metrics.SuggestionsGenerated.WithLabelValues(source).Inc()
	log.WithFields(logrus.Fields{
		"source":  source,
		"matches": len(matches),
	}).Info("推荐已生成，开放投票")
	return nil
}

// buildRequest 收集活动全部已提交偏好，组装生成请求
func (s *MatchService) buildRequest(ctx context.Context, event *model.Event) (model.SuggestionRequest, int, error) {
	db := s.db.WithContext(ctx)

	var invitations []model.Invitation
	if err := db.Where("event_id = ?", event.ID).Order("created_at ASC, id ASC").Find(&invitations).Error; err != nil {
		return model.SuggestionRequest{}, 0, fmt.Errorf("查询邀请失败: %w", err)
	}

	invitationIDs := make([]uint64, 0, len(invitations))
	userIDs := make([]uint64, 0, len(invitations))
	for _, inv := range invitations {
		invitationIDs = append(invitationIDs, inv.ID)
		if inv.InviteeID != nil {
			userIDs = append(userIDs, *inv.InviteeID)
		}
	}

	prefByInvitation := map[uint64]*model.Preference{}
	if len(invitationIDs) > 0 {
		var prefs []model.Preference
		if err := db.Where("invitation_id IN ?", invitationIDs).Find(&prefs).Error; err != nil {
			return model.SuggestionRequest{}, 0, fmt.Errorf("查询偏好失败: %w", err)
		}
		for i := range prefs {
			prefByInvitation[prefs[i].InvitationID] = &prefs[i]
		}
	}

	userByID := map[uint64]*model.User{}
	if len(userIDs) > 0 {
		var users []model.User
		if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return model.SuggestionRequest{}, 0, fmt.Errorf("查询用户失败: %w", err)
		}
		for i := range users {
			userByID[users[i].ID] = &users[i]
		}
	}

	attendees := make([]model.AttendeeInput, 0, len(invitations))
	inputs := make([]aggregate.Input, 0, len(invitations))
	for _, inv := range invitations {
		pref := prefByInvitation[inv.ID]
		if pref == nil {
			continue
		}
		var invitee *model.User
		if inv.InviteeID != nil {
			invitee = userByID[*inv.InviteeID]
		}
		location := aggregate.ResolveLocation(pref, invitee)

		attendees = append(attendees, model.AttendeeInput{
			Name:           inv.InviteeName,
			AvailableTimes: model.StringsFromJSON(pref.AvailableTimes),
			Activities:     model.StringsFromJSON(pref.Activities),
			BudgetMin:      pref.BudgetMin,
			BudgetMax:      pref.BudgetMax,
			Ideas:          pref.Ideas,
			Location:       location,
		})
		inputs = append(inputs, aggregate.Input{
			AvailableTimes: model.StringsFromJSON(pref.AvailableTimes),
			Activities:     model.StringsFromJSON(pref.Activities),
			BudgetMin:      pref.BudgetMin,
			BudgetMax:      pref.BudgetMax,
			Location:       location,
		})
	}

	meta := model.EventMeta{Title: event.Title, Notes: event.Notes}
	if organizer := userByID[event.OrganizerID]; organizer != nil {
		meta.Organizer = organizer.Name
		if organizer.LocationPermission && organizer.LocationLatitude != nil && organizer.LocationLongitude != nil {
			meta.Location = &model.GeoPoint{
				Latitude:  *organizer.LocationLatitude,
				Longitude: *organizer.LocationLongitude,
			}
		}
	}

	return model.SuggestionRequest{
		Event:     meta,
		Attendees: attendees,
		Summary:   aggregate.Summarize(inputs),
	}, len(attendees), nil
}

package service

import (
	"errors"
	"fmt"

	"FunRadar/internal/model"
	"FunRadar/internal/tally"

	"gorm.io/gorm"
)

// 跨service复用的只读查询。db需已绑定context。

// currentMatches 当前权威推荐快照的候选列表，未生成时返回nil
func currentMatches(db *gorm.DB, event *model.Event) ([]model.Match, error) {
	if event.CurrentSuggestionID == nil {
		return nil, nil
	}
	var suggestion model.ActivitySuggestion
	if err := db.First(&suggestion, *event.CurrentSuggestionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询推荐快照失败: %w", err)
	}
	return model.MatchesFromJSON(suggestion.Payload), nil
}

// loadVotes 活动全部投票的汇总视图
func loadVotes(db *gorm.DB, eventID uint64) ([]tally.Vote, error) {
	var rows []model.MatchVote
	if err := db.Where("event_id = ?", eventID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询投票失败: %w", err)
	}
	votes := make([]tally.Vote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, tally.Vote{
			InvitationID: row.InvitationID,
			MatchID:      row.MatchID,
			Score:        row.Score,
		})
	}
	return votes, nil
}

// loadInvitationViews 定案判定所需的邀请视图
func loadInvitationViews(db *gorm.DB, eventID uint64) ([]tally.InvitationView, error) {
	var rows []model.Invitation
	if err := db.Where("event_id = ?", eventID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询邀请失败: %w", err)
	}
	views := make([]tally.InvitationView, 0, len(rows))
	for _, row := range rows {
		views = append(views, tally.InvitationView{
			ID:        row.ID,
			Submitted: row.Status == model.InvitationSubmitted,
		})
	}
	return views, nil
}

// resolveInvitation 定位访问者在活动中的邀请：登录用户按invitee_id，
// 匿名访问者按免登录令牌。两者都没有命中时返回nil。
func resolveInvitation(db *gorm.DB, event *model.Event, user *model.User, accessToken string) (*model.Invitation, error) {
	if user != nil {
		var inv model.Invitation
		err := db.Where("event_id = ? AND invitee_id = ?", event.ID, user.ID).First(&inv).Error
		switch {
		case err == nil:
			return &inv, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			// 继续尝试令牌
		default:
			return nil, fmt.Errorf("查询邀请失败: %w", err)
		}
	}
	if accessToken != "" {
		var inv model.Invitation
		err := db.Where("event_id = ? AND access_token = ?", event.ID, accessToken).First(&inv).Error
		switch {
		case err == nil:
			return &inv, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, nil
		default:
			return nil, fmt.Errorf("查询邀请失败: %w", err)
		}
	}
	return nil, nil
}

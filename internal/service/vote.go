package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FunRadar/internal/lifecycle"
	"FunRadar/internal/metrics"
	"FunRadar/internal/model"
	"FunRadar/internal/tally"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteService 投票写入与自动定案。
// 写入和定案判定在同一事务内完成，活动行锁串行化并发投票，
// 保证"最后一票"恰好定案一次。
type VoteService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewVoteService(db *gorm.DB, logger *logrus.Logger) *VoteService {
	return &VoteService{db: db, logger: logger}
}

type VoteInput struct {
	MatchID string `json:"match_id"`
	Score   int    `json:"score"`
}

type VoteResult struct {
	Event        *model.Event
	VotesSummary map[string]tally.MatchTally
	UserVotes    map[string]int
	Finalized    bool
}

// Cast 批量写入一个访问者对若干候选的评分。
// 全部评分先整体校验，任何一项越界都不落库；
// 同一邀请对同一候选重复评分按覆盖处理。
// 已完成的活动仍接受评分（榜单继续更新），但不会再次定案。
func (s *VoteService) Cast(ctx context.Context, event *model.Event, user *model.User, accessToken string, votes []VoteInput) (*VoteResult, error) {
	if user == nil && accessToken == "" {
		return nil, ErrUnauthorized
	}
	inv, err := resolveInvitation(s.db.WithContext(ctx), event, user, accessToken)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrForbidden
	}

	// 先整体校验再写入。空match_id跳过，评分必须是1-5的整数
	valid := make([]VoteInput, 0, len(votes))
	for _, v := range votes {
		if v.MatchID == "" {
			continue
		}
		if !tally.ValidScore(v.Score) {
			return nil, validationf("score must be between 1 and 5")
		}
		valid = append(valid, v)
	}
	if len(valid) == 0 {
		return nil, validationf("votes can't be blank")
	}

	if event.Status != model.EventOpenForVoting && event.Status != model.EventCompleted {
		return nil, validationf("event is not ready for voting")
	}

	result := &VoteResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行锁串行化同一活动上的并发投票与定案
		var locked model.Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, event.ID).Error; err != nil {
			return fmt.Errorf("锁定活动行失败: %w", err)
		}
		if locked.Status != model.EventOpenForVoting && locked.Status != model.EventCompleted {
			return validationf("event is not ready for voting")
		}

		for _, v := range valid {
			if err := upsertVote(tx, locked.ID, inv.ID, v); err != nil {
				return err
			}
		}

		finalized, err := s.finalizeIfReady(tx, &locked)
		if err != nil {
			return err
		}
		result.Finalized = finalized

		allVotes, err := loadVotes(tx, locked.ID)
		if err != nil {
			return err
		}
		result.VotesSummary = tally.Summary(allVotes)
		result.UserVotes = map[string]int{}
		for _, v := range allVotes {
			if v.InvitationID == inv.ID {
				result.UserVotes[v.MatchID] = v.Score
			}
		}
		result.Event = &locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.VotesCast.Add(float64(len(valid)))
	if result.Finalized {
		metrics.EventsFinalized.Inc()
		s.logger.WithFields(logrus.Fields{
			"event_id": event.ID,
		}).Info("全员投票完毕，活动自动定案")
	}
	return result, nil
}

// upsertVote 同一(邀请,候选)的评分覆盖写
func upsertVote(tx *gorm.DB, eventID, invitationID uint64, in VoteInput) error {
	var existing model.MatchVote
	err := tx.Where("invitation_id = ? AND match_id = ?", invitationID, in.MatchID).First(&existing).Error
	switch {
	case err == nil:
		if existing.Score == in.Score {
			return nil
		}
		if err := tx.Model(&existing).Update("score", in.Score).Error; err != nil {
			return fmt.Errorf("更新投票失败: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		vote := model.MatchVote{
			EventID:      eventID,
			InvitationID: invitationID,
			MatchID:      in.MatchID,
			Score:        in.Score,
		}
		if err := tx.Create(&vote).Error; err != nil {
			return fmt.Errorf("创建投票失败: %w", err)
		}
	default:
		return fmt.Errorf("查询既有投票失败: %w", err)
	}
	return nil
}

// finalizeIfReady 定案检查：open_for_voting且全员对全部候选投过票时，
// 选出总分最高的候选写入final_match并翻到completed。
// 胜者在快照中不存在时写空对象（状态照常完成）。
func (s *VoteService) finalizeIfReady(tx *gorm.DB, event *model.Event) (bool, error) {
	if _, ok := lifecycle.Finalize(event.Status); !ok {
		return false, nil
	}

	matches, err := currentMatches(tx, event)
	if err != nil {
		return false, err
	}
	if len(matches) == 0 {
		return false, nil
	}
	matchIDs := tally.MatchIDs(matches)

	invitations, err := loadInvitationViews(tx, event.ID)
	if err != nil {
		return false, err
	}
	votes, err := loadVotes(tx, event.ID)
	if err != nil {
		return false, err
	}
	if !tally.EveryoneVoted(invitations, matchIDs, votes) {
		return false, nil
	}

	final := datatypes.JSON("{}")
	if winnerID, ok := tally.Winner(matchIDs, votes); ok {
		if match, found := tally.FindMatch(matches, winnerID); found {
			data, err := json.Marshal(match)
			if err != nil {
				return false, fmt.Errorf("序列化最终活动失败: %w", err)
			}
			final = datatypes.JSON(data)
		}
	}

	now := time.Now()
	if err := tx.Model(&model.Event{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
		"status":       model.EventCompleted,
		"final_match":  final,
		"completed_at": now,
	}).Error; err != nil {
		return false, fmt.Errorf("定案更新失败: %w", err)
	}

	event.Status = model.EventCompleted
	event.FinalMatch = final
	event.CompletedAt = &now
	return true, nil
}

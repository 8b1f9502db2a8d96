// Package tally 投票汇总与自动定案判定。
// 纯函数：投票数据由 service 层在事务（含活动行锁）内读出后交给这里计算。
package tally

import "FunRadar/internal/model"

// Vote 单条投票的汇总视图
type Vote struct {
	InvitationID uint64
	MatchID      string
	Score        int
}

// MatchTally 单个候选活动的票面汇总
type MatchTally struct {
	TotalScore   int `json:"total_score"`
	RatingsCount int `json:"ratings_count"`
}

// InvitationView 定案判定所需的邀请视图
type InvitationView struct {
	ID        uint64
	Submitted bool
}

// ValidScore 评分取值校验：仅接受 [1,5] 的整数
func ValidScore(score int) bool {
	return score >= 1 && score <= 5
}

// Summary 按候选活动汇总全部投票
func Summary(votes []Vote) map[string]MatchTally {
	result := make(map[string]MatchTally, len(votes))
	for _, v := range votes {
		t := result[v.MatchID]
		t.TotalScore += v.Score
		t.RatingsCount++
		result[v.MatchID] = t
	}
	return result
}

// EveryoneVoted 全员投票完毕 ⇔ 每个邀请（含组织者）均已提交偏好，
// 且对当前快照中的每个候选活动都有投票记录。
func EveryoneVoted(invitations []InvitationView, matchIDs []string, votes []Vote) bool {
	if len(invitations) == 0 || len(matchIDs) == 0 {
		return false
	}

	voted := make(map[uint64]map[string]bool, len(invitations))
	for _, v := range votes {
		if voted[v.InvitationID] == nil {
			voted[v.InvitationID] = make(map[string]bool, len(matchIDs))
		}
		voted[v.InvitationID][v.MatchID] = true
	}

	for _, inv := range invitations {
		if !inv.Submitted {
			return false
		}
		for _, id := range matchIDs {
			if !voted[inv.ID][id] {
				return false
			}
		}
	}
	return true
}

// Winner 按总分选出胜者。matchIDs 必须保持快照内的候选顺序：
// 总分相同取快照中靠前的候选（稳定max，仅严格更大才替换）。
// matchIDs 为空时返回 false。
func Winner(matchIDs []string, votes []Vote) (string, bool) {
	if len(matchIDs) == 0 {
		return "", false
	}
	summary := Summary(votes)

	winner := matchIDs[0]
	best := summary[winner].TotalScore
	for _, id := range matchIDs[1:] {
		if score := summary[id].TotalScore; score > best {
			winner = id
			best = score
		}
	}
	return winner, true
}

// MatchIDs 按快照顺序提取候选活动ID列表
func MatchIDs(matches []model.Match) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID.String())
	}
	return ids
}

// FindMatch 在快照中按ID查找候选活动
func FindMatch(matches []model.Match, id string) (model.Match, bool) {
	for _, m := range matches {
		if m.ID.String() == id {
			return m, true
		}
	}
	return model.Match{}, false
}

package tally

import (
	"encoding/json"
	"testing"

	"FunRadar/internal/model"
)

func TestValidScore(t *testing.T) {
	for _, score := range []int{1, 2, 3, 4, 5} {
		if !ValidScore(score) {
			t.Errorf("评分%d应有效", score)
		}
	}
	for _, score := range []int{0, -1, 6, 100} {
		if ValidScore(score) {
			t.Errorf("评分%d应被拒绝", score)
		}
	}
}

func TestSummary(t *testing.T) {
	votes := []Vote{
		{InvitationID: 1, MatchID: "match-1", Score: 5},
		{InvitationID: 2, MatchID: "match-1", Score: 4},
		{InvitationID: 1, MatchID: "match-2", Score: 3},
	}
	s := Summary(votes)
	if got := s["match-1"]; got.TotalScore != 9 || got.RatingsCount != 2 {
		t.Errorf("match-1汇总错误: %+v", got)
	}
	if got := s["match-2"]; got.TotalScore != 3 || got.RatingsCount != 1 {
		t.Errorf("match-2汇总错误: %+v", got)
	}
}

func TestEveryoneVoted(t *testing.T) {
	invitations := []InvitationView{
		{ID: 1, Submitted: true},
		{ID: 2, Submitted: true},
	}
	matchIDs := []string{"a", "b"}

	full := []Vote{
		{InvitationID: 1, MatchID: "a", Score: 5}, {InvitationID: 1, MatchID: "b", Score: 3},
		{InvitationID: 2, MatchID: "a", Score: 4}, {InvitationID: 2, MatchID: "b", Score: 5},
	}
	if !EveryoneVoted(invitations, matchIDs, full) {
		t.Error("全员全候选投票后应判定完毕")
	}

	// 缺一票则未完毕
	if EveryoneVoted(invitations, matchIDs, full[:3]) {
		t.Error("缺投票时不应判定完毕")
	}

	// 有邀请未提交偏好则未完毕
	notSubmitted := []InvitationView{{ID: 1, Submitted: true}, {ID: 2, Submitted: false}}
	if EveryoneVoted(notSubmitted, matchIDs, full) {
		t.Error("存在未提交邀请时不应判定完毕")
	}

	// 空候选列表no-op
	if EveryoneVoted(invitations, nil, full) {
		t.Error("空候选列表不应判定完毕")
	}
}

// 场景：Ann A=5,B=3,C=1；Bob A=4,B=5,C=1；Cara A=1,B=5,C=1 → B以13分胜出
func TestWinnerScenario(t *testing.T) {
	matchIDs := []string{"A", "B", "C"}
	votes := []Vote{
		{InvitationID: 1, MatchID: "A", Score: 5}, {InvitationID: 1, MatchID: "B", Score: 3}, {InvitationID: 1, MatchID: "C", Score: 1},
		{InvitationID: 2, MatchID: "A", Score: 4}, {InvitationID: 2, MatchID: "B", Score: 5}, {InvitationID: 2, MatchID: "C", Score: 1},
		{InvitationID: 3, MatchID: "A", Score: 1}, {InvitationID: 3, MatchID: "B", Score: 5}, {InvitationID: 3, MatchID: "C", Score: 1},
	}
	winner, ok := Winner(matchIDs, votes)
	if !ok || winner != "B" {
		t.Errorf("Winner = %q, want B", winner)
	}
}

func TestWinnerTieBreak(t *testing.T) {
	// 总分相同：快照中靠前的候选胜出
	votes := []Vote{
		{InvitationID: 1, MatchID: "first", Score: 4},
		{InvitationID: 1, MatchID: "second", Score: 4},
	}
	winner, ok := Winner([]string{"first", "second"}, votes)
	if !ok || winner != "first" {
		t.Errorf("平局应取快照靠前者, got %q", winner)
	}

	// 顺序反过来则另一个胜出
	winner, _ = Winner([]string{"second", "first"}, votes)
	if winner != "second" {
		t.Errorf("平局应取快照靠前者, got %q", winner)
	}

	if _, ok := Winner(nil, votes); ok {
		t.Error("空候选列表不应产生胜者")
	}
}

func TestMatchIDsAndFindMatch(t *testing.T) {
	// AI可能返回数字id，归一化为字符串后参与投票匹配
	var matches []model.Match
	raw := `[{"id":1,"title":"Picnic"},{"id":"match-2","title":"Dinner"}]`
	if err := json.Unmarshal([]byte(raw), &matches); err != nil {
		t.Fatalf("解析快照失败: %v", err)
	}

	ids := MatchIDs(matches)
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "match-2" {
		t.Errorf("MatchIDs = %v", ids)
	}

	m, ok := FindMatch(matches, "match-2")
	if !ok || m.Title != "Dinner" {
		t.Errorf("FindMatch失败: %+v", m)
	}
	if _, ok := FindMatch(matches, "missing"); ok {
		t.Error("不存在的id不应命中")
	}
}

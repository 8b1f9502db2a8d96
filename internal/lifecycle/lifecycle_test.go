package lifecycle

import (
	"testing"

	"FunRadar/internal/model"
)

func participant(submitted bool) InvitationState {
	return InvitationState{Role: model.RoleParticipant, Submitted: submitted}
}

func organizer() InvitationState {
	return InvitationState{Role: model.RoleOrganizer, Submitted: true}
}

func TestReadyForMatching(t *testing.T) {
	cases := []struct {
		name        string
		invitations []InvitationState
		want        bool
	}{
		{"无邀请", nil, false},
		{"仅组织者", []InvitationState{organizer()}, false},
		{"参与者未全部提交", []InvitationState{organizer(), participant(true), participant(false)}, false},
		{"参与者全部提交", []InvitationState{organizer(), participant(true), participant(true)}, true},
		{"组织者未提交不影响就绪", []InvitationState{{Role: model.RoleOrganizer, Submitted: false}, participant(true)}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ReadyForMatching(c.invitations); got != c.want {
				t.Errorf("ReadyForMatching = %v, want %v", got, c.want)
			}
		})
	}
}

func TestBeginMatching(t *testing.T) {
	ready := []InvitationState{organizer(), participant(true)}

	tr, ok := BeginMatching(model.EventCollecting, ready)
	if !ok {
		t.Fatal("collecting + 就绪应当转移")
	}
	if tr.To != model.EventMatching || !tr.HasEffect(EffectScheduleMatch) {
		t.Errorf("转移结果不正确: %+v", tr)
	}

	// 幂等：非collecting状态下重复调用全部no-op
	for _, status := range []model.EventStatus{model.EventMatching, model.EventOpenForVoting, model.EventCompleted} {
		if _, ok := BeginMatching(status, ready); ok {
			t.Errorf("状态%s不应允许BeginMatching", status)
		}
	}

	if _, ok := BeginMatching(model.EventCollecting, []InvitationState{organizer()}); ok {
		t.Error("无参与者时不应转移")
	}
}

func TestOpenVoting(t *testing.T) {
	tr, ok := OpenVoting(model.EventMatching, false)
	if !ok || tr.To != model.EventOpenForVoting {
		t.Fatalf("matching下应转移到open_for_voting: %+v", tr)
	}
	if tr.HasEffect(EffectClearVotes) {
		t.Error("首次匹配不应清投票")
	}

	tr, ok = OpenVoting(model.EventMatching, true)
	if !ok || !tr.HasEffect(EffectClearVotes) {
		t.Errorf("重新匹配应清掉旧投票: %+v", tr)
	}

	for _, status := range []model.EventStatus{model.EventCollecting, model.EventOpenForVoting, model.EventCompleted} {
		if _, ok := OpenVoting(status, false); ok {
			t.Errorf("状态%s不应允许OpenVoting", status)
		}
	}
}

func TestFinalize(t *testing.T) {
	tr, ok := Finalize(model.EventOpenForVoting)
	if !ok || tr.To != model.EventCompleted || !tr.HasEffect(EffectStampCompleted) {
		t.Fatalf("open_for_voting下应转移到completed: %+v", tr)
	}

	// 已完成活动重复finalize是no-op
	if _, ok := Finalize(model.EventCompleted); ok {
		t.Error("completed状态不应再次finalize")
	}
	if _, ok := Finalize(model.EventCollecting); ok {
		t.Error("collecting状态不应finalize")
	}
}

func TestReopen(t *testing.T) {
	for _, status := range []model.EventStatus{model.EventMatching, model.EventOpenForVoting, model.EventCompleted} {
		tr, ok := Reopen(status)
		if !ok {
			t.Errorf("状态%s应允许重开", status)
			continue
		}
		if tr.To != model.EventCollecting {
			t.Errorf("重开应回到collecting，got %s", tr.To)
		}
		if !tr.HasEffect(EffectClearSuggestions) || !tr.HasEffect(EffectClearVotes) {
			t.Errorf("重开必须清除推荐与投票: %+v", tr)
		}
	}

	if _, ok := Reopen(model.EventCollecting); ok {
		t.Error("collecting状态重开应为no-op")
	}
}

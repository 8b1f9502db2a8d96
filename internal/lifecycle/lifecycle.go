// Package lifecycle 活动生命周期状态机。
// 状态只向前推进：collecting → matching → open_for_voting → completed，
// 唯一的回退边是 Reopen（匹配开始后组织者新增参与者）。
// 每条转移边返回目标状态和待执行的副作用列表，由 service 层在事务中落地，
// 这里不触碰数据库，便于独立测试。
package lifecycle

import "FunRadar/internal/model"

// Effect 状态转移附带的副作用
type Effect string

const (
	EffectScheduleMatch    Effect = "schedule_match"    // 调度一次后台匹配任务
	EffectClearVotes       Effect = "clear_votes"       // 清除全部投票（重新匹配/重开）
	EffectClearSuggestions Effect = "clear_suggestions" // 清除全部推荐快照（重开）
	EffectStampGenerated   Effect = "stamp_generated"   // 记录推荐生成时间
	EffectStampCompleted   Effect = "stamp_completed"   // 记录完成时间并写入最终活动
)

// Transition 一次合法的状态转移
type Transition struct {
	From    model.EventStatus
	To      model.EventStatus
	Effects []Effect
}

// InvitationState 就绪检查所需的邀请视图
type InvitationState struct {
	Role      model.InvitationRole
	Submitted bool
}

// ReadyForMatching 就绪条件：至少存在一个参与者邀请，且全部参与者邀请均已提交。
// 组织者邀请在创建活动时即自动提交，不参与该检查。
func ReadyForMatching(invitations []InvitationState) bool {
	participants := 0
	for _, inv := range invitations {
		if inv.Role != model.RoleParticipant {
			continue
		}
		participants++
		if !inv.Submitted {
			return false
		}
	}
	return participants > 0
}

// BeginMatching collecting → matching。
// 仅当当前状态为 collecting 且就绪条件满足时成立；其余情况返回 false（幂等no-op）。
// 持久化时必须用状态列的条件更新落地，保证并发提交下只有一个调用者真正转移。
func BeginMatching(current model.EventStatus, invitations []InvitationState) (Transition, bool) {
	if current != model.EventCollecting {
		return Transition{}, false
	}
	if !ReadyForMatching(invitations) {
		return Transition{}, false
	}
	return Transition{
		From:    model.EventCollecting,
		To:      model.EventMatching,
		Effects: []Effect{EffectScheduleMatch},
	}, true
}

// OpenVoting matching → open_for_voting（推荐快照落库时）。
// rematch 为 true 表示此前已有快照，需要清掉旧投票。
func OpenVoting(current model.EventStatus, rematch bool) (Transition, bool) {
	if current != model.EventMatching {
		return Transition{}, false
	}
	effects := []Effect{EffectStampGenerated}
	if rematch {
		effects = append([]Effect{EffectClearVotes}, effects...)
	}
	return Transition{
		From:    model.EventMatching,
		To:      model.EventOpenForVoting,
		Effects: effects,
	}, true
}

// Finalize open_for_voting → completed（全员投票完毕时）。
// 已完成的活动再次调用返回 false，保证投票写入路径上的重复检查是no-op。
func Finalize(current model.EventStatus) (Transition, bool) {
	if current != model.EventOpenForVoting {
		return Transition{}, false
	}
	return Transition{
		From:    model.EventOpenForVoting,
		To:      model.EventCompleted,
		Effects: []Effect{EffectStampCompleted},
	}, true
}

// Reopen 任意 collecting 之后的状态 → collecting。
// 销毁全部推荐与投票，让新增参与者重新走收集流程。
func Reopen(current model.EventStatus) (Transition, bool) {
	switch current {
	case model.EventMatching, model.EventOpenForVoting, model.EventCompleted:
		return Transition{
			From:    current,
			To:      model.EventCollecting,
			Effects: []Effect{EffectClearSuggestions, EffectClearVotes},
		}, true
	default:
		return Transition{}, false
	}
}

// HasEffect 判断转移是否包含指定副作用
func (t Transition) HasEffect(e Effect) bool {
	for _, ef := range t.Effects {
		if ef == e {
			return true
		}
	}
	return false
}

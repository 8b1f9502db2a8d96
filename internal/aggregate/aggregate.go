// Package aggregate 将全体成员的偏好归并为推荐生成请求所需的紧凑摘要。
// 纯函数、确定性、无副作用。
package aggregate

import (
	"strings"

	"FunRadar/internal/model"
)

// topN 频次统计仅保留前N项
const topN = 8

// Input 单份偏好的聚合视图（位置已在调用侧解析完毕）
type Input struct {
	AvailableTimes []string
	Activities     []string
	BudgetMin      *int
	BudgetMax      *int
	Location       *model.GeoPoint
}

// Summarize 聚合全部偏好。偏好为空时返回零值摘要，调用方应直接走兜底推荐路径。
func Summarize(inputs []Input) model.PreferenceSummary {
	if len(inputs) == 0 {
		return model.PreferenceSummary{}
	}

	var allTimes, allActivities []string
	var mins, maxes []int
	var locations []model.GeoPoint
	for _, in := range inputs {
		allTimes = append(allTimes, in.AvailableTimes...)
		allActivities = append(allActivities, in.Activities...)
		if in.BudgetMin != nil {
			mins = append(mins, *in.BudgetMin)
		}
		if in.BudgetMax != nil {
			maxes = append(maxes, *in.BudgetMax)
		}
		if in.Location != nil {
			locations = append(locations, *in.Location)
		}
	}

	summary := model.PreferenceSummary{
		TopTimeSlots:  tally(allTimes),
		TopActivities: tally(allActivities),
		Locations:     locations,
	}
	if len(mins) > 0 && len(maxes) > 0 {
		summary.BudgetRange = &model.BudgetRange{Min: minOf(mins), Max: maxOf(maxes)}
	}
	return summary
}

// tally 频次统计：按出现次数降序，平局保持首次出现顺序，取前8
func tally(values []string) []model.TallyEntry {
	counts := make(map[string]int)
	var order []string // 记录首次出现顺序，保证平局时排序稳定
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	entries := make([]model.TallyEntry, 0, len(order))
	for _, v := range order {
		entries = append(entries, model.TallyEntry{Value: v, Votes: counts[v]})
	}
	// 插入排序按票数降序；相等时不交换，维持首次出现顺序
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Votes > entries[j-1].Votes; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}

// ResolveLocation 解析单份偏好的坐标：优先用偏好自带坐标，
// 否则回退到受邀人账号的最近已知位置（且账号已授权位置时才使用）。
func ResolveLocation(pref *model.Preference, invitee *model.User) *model.GeoPoint {
	if pref != nil && pref.LocationLatitude != nil && pref.LocationLongitude != nil {
		return &model.GeoPoint{Latitude: *pref.LocationLatitude, Longitude: *pref.LocationLongitude}
	}
	if invitee != nil && invitee.LocationPermission &&
		invitee.LocationLatitude != nil && invitee.LocationLongitude != nil {
		return &model.GeoPoint{Latitude: *invitee.LocationLatitude, Longitude: *invitee.LocationLongitude}
	}
	return nil
}

func minOf(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

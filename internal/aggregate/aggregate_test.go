package aggregate

import (
	"reflect"
	"testing"

	"FunRadar/internal/model"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.BudgetRange != nil || len(s.TopTimeSlots) != 0 || len(s.TopActivities) != 0 || len(s.Locations) != 0 {
		t.Errorf("空偏好集应返回零值摘要: %+v", s)
	}
}

func TestSummarizeTally(t *testing.T) {
	inputs := []Input{
		{AvailableTimes: []string{"sat_afternoon", "sun_morning"}, Activities: []string{"food", "music"}},
		{AvailableTimes: []string{"sat_afternoon"}, Activities: []string{"music"}},
		{AvailableTimes: []string{"sat_afternoon", "fri_evening"}, Activities: []string{"music", "outdoors"}},
	}
	s := Summarize(inputs)

	wantTimes := []model.TallyEntry{
		{Value: "sat_afternoon", Votes: 3},
		{Value: "sun_morning", Votes: 1},
		{Value: "fri_evening", Votes: 1},
	}
	if !reflect.DeepEqual(s.TopTimeSlots, wantTimes) {
		t.Errorf("TopTimeSlots = %+v, want %+v", s.TopTimeSlots, wantTimes)
	}

	// music 3票居首；food与outdoors各1票，按首次出现顺序排列
	wantActivities := []model.TallyEntry{
		{Value: "music", Votes: 3},
		{Value: "food", Votes: 1},
		{Value: "outdoors", Votes: 1},
	}
	if !reflect.DeepEqual(s.TopActivities, wantActivities) {
		t.Errorf("TopActivities = %+v, want %+v", s.TopActivities, wantActivities)
	}
}

func TestSummarizeTopNAndBlank(t *testing.T) {
	var times []string
	for _, v := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "", "  "} {
		times = append(times, v)
	}
	s := Summarize([]Input{{AvailableTimes: times, Activities: []string{"x"}}})
	if len(s.TopTimeSlots) != 8 {
		t.Errorf("频次统计应只保留前8项，got %d", len(s.TopTimeSlots))
	}
	for _, e := range s.TopTimeSlots {
		if e.Value == "" {
			t.Error("空白值不应进入统计")
		}
	}
}

func TestSummarizeBudgetRange(t *testing.T) {
	inputs := []Input{
		{BudgetMin: intp(20), BudgetMax: intp(50)},
		{BudgetMin: intp(10), BudgetMax: intp(30)},
		{BudgetMin: intp(15), BudgetMax: intp(80)},
	}
	s := Summarize(inputs)
	if s.BudgetRange == nil {
		t.Fatal("有预算时BudgetRange不应为空")
	}
	if s.BudgetRange.Min != 10 || s.BudgetRange.Max != 80 {
		t.Errorf("BudgetRange = %+v, want {10 80}", s.BudgetRange)
	}

	// 无预算则省略
	s = Summarize([]Input{{AvailableTimes: []string{"a"}}})
	if s.BudgetRange != nil {
		t.Errorf("无预算时BudgetRange应省略: %+v", s.BudgetRange)
	}
}

func TestResolveLocation(t *testing.T) {
	pref := &model.Preference{LocationLatitude: floatp(40.7), LocationLongitude: floatp(-74.0)}
	got := ResolveLocation(pref, nil)
	if got == nil || got.Latitude != 40.7 || got.Longitude != -74.0 {
		t.Errorf("应优先使用偏好自带坐标: %+v", got)
	}

	// 回退到账号位置（需已授权）
	user := &model.User{
		LocationPermission: true,
		LocationLatitude:   floatp(51.5),
		LocationLongitude:  floatp(-0.1),
	}
	got = ResolveLocation(&model.Preference{}, user)
	if got == nil || got.Latitude != 51.5 {
		t.Errorf("应回退到账号位置: %+v", got)
	}

	// 未授权位置的账号不参与回退
	user.LocationPermission = false
	if got = ResolveLocation(&model.Preference{}, user); got != nil {
		t.Errorf("未授权账号位置不应使用: %+v", got)
	}

	if got = ResolveLocation(nil, nil); got != nil {
		t.Errorf("无任何来源应返回nil: %+v", got)
	}
}

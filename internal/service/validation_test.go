package service

import (
	"testing"
)

func intp(v int) *int { return &v }

func validInput() PreferenceInput {
	return PreferenceInput{
		AvailableTimes: []string{"saturday_evening"},
		Activities:     []string{"food"},
		BudgetMin:      intp(10),
		BudgetMax:      intp(50),
	}
}

func TestValidatePreference(t *testing.T) {
	in := validInput()
	if err := validatePreference(&in); err != nil {
		t.Fatalf("合法输入不应报错: %v", err)
	}

	// 预算上下限相等合法
	equal := validInput()
	equal.BudgetMin, equal.BudgetMax = intp(30), intp(30)
	if err := validatePreference(&equal); err != nil {
		t.Errorf("budget_max == budget_min 应被接受: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*PreferenceInput)
	}{
		{"时间段为空", func(in *PreferenceInput) { in.AvailableTimes = nil }},
		{"时间段全是空白", func(in *PreferenceInput) { in.AvailableTimes = []string{"  ", ""} }},
		{"活动为空", func(in *PreferenceInput) { in.Activities = nil }},
		{"缺最低预算", func(in *PreferenceInput) { in.BudgetMin = nil }},
		{"缺最高预算", func(in *PreferenceInput) { in.BudgetMax = nil }},
		{"预算为负", func(in *PreferenceInput) { in.BudgetMin = intp(-1) }},
		{"最高预算小于最低", func(in *PreferenceInput) { in.BudgetMin = intp(50); in.BudgetMax = intp(10) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := validInput()
			c.mutate(&in)
			err := validatePreference(&in)
			if err == nil {
				t.Fatal("应返回校验错误")
			}
			if !IsValidation(err) {
				t.Errorf("应为ValidationError, got %T", err)
			}
		})
	}
}

func TestValidatePreferenceTrimsBlankEntries(t *testing.T) {
	in := validInput()
	in.Activities = []string{" food ", "", "games"}
	if err := validatePreference(&in); err != nil {
		t.Fatalf("不应报错: %v", err)
	}
	if len(in.Activities) != 2 || in.Activities[0] != "food" || in.Activities[1] != "games" {
		t.Errorf("空白项应被剔除且修剪: %v", in.Activities)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Ann  ", "Ann"},
		{"Ann   Lee", "Ann Lee"},
		{"\tAnn\nLee ", "Ann Lee"},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := normalizeName(c.in); got != c.want {
			t.Errorf("normalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(validationf("bad input")) {
		t.Error("validationf产生的错误应被识别")
	}
	if IsValidation(ErrNotFound) {
		t.Error("哨兵错误不应被识别为校验错误")
	}
}

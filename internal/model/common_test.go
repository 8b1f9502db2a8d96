package model

import (
	"encoding/json"
	"testing"

	"gorm.io/datatypes"
)

func TestMatchIDUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"字符串id", `"abc"`, "abc"},
		{"数字id", `42`, "42"},
		{"数字字符串id", `"7"`, "7"},
		{"浮点数id", `3.0`, "3.0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var id MatchID
			if err := json.Unmarshal([]byte(c.raw), &id); err != nil {
				t.Fatalf("解析失败: %v", err)
			}
			if id.String() != c.want {
				t.Errorf("got %q, want %q", id, c.want)
			}
		})
	}

	var id MatchID
	if err := json.Unmarshal([]byte(`[1]`), &id); err == nil {
		t.Error("数组不应能解析为MatchID")
	}
}

func TestStringsJSONRoundTrip(t *testing.T) {
	values := []string{"saturday_evening", "sunday_morning"}
	if got := StringsFromJSON(JSONStrings(values)); len(got) != 2 || got[0] != "saturday_evening" {
		t.Errorf("编解码不一致: %v", got)
	}
	if got := StringsFromJSON(nil); got == nil || len(got) != 0 {
		t.Errorf("空输入应返回空列表, got %v", got)
	}
	if got := StringsFromJSON(datatypes.JSON(`{broken`)); len(got) != 0 {
		t.Errorf("坏数据应返回空列表, got %v", got)
	}
	if got := JSONStrings(nil); string(got) != "[]" {
		t.Errorf("nil应编码为空数组, got %s", got)
	}
}

func TestMatchesFromJSON(t *testing.T) {
	payload := datatypes.JSON(`[{"id":1,"title":"Bowling"},{"id":"x2","title":"Museum"}]`)
	matches := MatchesFromJSON(payload)
	if len(matches) != 2 {
		t.Fatalf("应解析出2个候选, got %d", len(matches))
	}
	if matches[0].ID.String() != "1" || matches[1].ID.String() != "x2" {
		t.Errorf("候选id归一化错误: %q, %q", matches[0].ID, matches[1].ID)
	}
	if got := MatchesFromJSON(datatypes.JSON(`not json`)); len(got) != 0 {
		t.Errorf("坏数据应返回空列表, got %v", got)
	}
}

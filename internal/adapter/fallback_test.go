package adapter

import (
	"context"
	"testing"

	"FunRadar/internal/config"
	"FunRadar/internal/model"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestFallbackMatchesWellFormed(t *testing.T) {
	matches := FallbackMatches()
	if len(matches) < 3 {
		t.Fatalf("兜底列表应至少3个候选, got %d", len(matches))
	}
	for i, m := range matches {
		if m.ID == "" || m.Title == "" || m.Image == "" || m.Location == "" ||
			m.Price == "" || m.Time == "" || m.Emoji == "" || m.Description == "" {
			t.Errorf("兜底候选%d缺少必备字段: %+v", i, m)
		}
		if m.Compatibility < 0 || m.Compatibility > 100 {
			t.Errorf("兜底候选%d契合度越界: %d", i, m.Compatibility)
		}
	}
}

func TestFallbackMatchesCopy(t *testing.T) {
	a := FallbackMatches()
	a[0].Title = "mutated"
	if b := FallbackMatches(); b[0].Title == "mutated" {
		t.Error("FallbackMatches应返回拷贝，内置数据不可被调用方修改")
	}
}

func TestCannedGenerator(t *testing.T) {
	gen := NewCannedGenerator(testLogger())
	matches, source := gen.Generate(context.Background(), model.SuggestionRequest{})
	if source != SourceFallback {
		t.Errorf("canned生成器来源应为fallback, got %q", source)
	}
	if len(matches) < 3 {
		t.Errorf("canned生成器应返回兜底列表, got %d", len(matches))
	}
}

func TestNewGeneratorUnknownProvider(t *testing.T) {
	gen := NewGenerator(&config.AIConfig{Provider: "no-such-provider"}, testLogger())
	if gen.Name() != "canned" {
		t.Errorf("未知provider应回退到canned生成器, got %q", gen.Name())
	}
}

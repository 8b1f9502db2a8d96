package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FunRadar/internal/adapter"
	"FunRadar/internal/config"
	"FunRadar/internal/model"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig(baseURL string) *config.AIConfig {
	return &config.AIConfig{
		Provider: "openai",
		BaseURL:  baseURL,
		APIKey:   "test-key",
		Model:    "gpt-test",
		Timeout:  1,
	}
}

func testRequest() model.SuggestionRequest {
	return model.SuggestionRequest{
		Event:     model.EventMeta{Title: "Picnic", Organizer: "Ann"},
		Attendees: []model.AttendeeInput{{Name: "Ann", Activities: []string{"food"}}},
	}
}

// chatResponse 构造聊天接口响应，content为assistant消息体
func chatResponse(content string) []byte {
	body := map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
	data, _ := json.Marshal(body)
	return data
}

func TestGenerateSuccess(t *testing.T) {
	matchesJSON := `{"matches":[
		{"id":1,"title":"Bowling Night","compatibility":90,"image":"https://example.com/1.jpg","location":"Strike Lanes","price":"$12/person","time":"Friday, 8:00 PM","emoji":"X","votes":0,"description":"Ten-pin bowling"},
		{"id":2,"title":"Museum Tour","compatibility":82,"image":"https://example.com/2.jpg","location":"City Museum","price":"$10/person","time":"Saturday, 11:00 AM","emoji":"Y","votes":0,"description":"Guided tour"},
		{"id":3,"title":"Karaoke","compatibility":75,"image":"https://example.com/3.jpg","location":"Sing Bar","price":"$20/person","time":"Saturday, 9:00 PM","emoji":"Z","votes":0,"description":"Private room"}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(chatResponse(matchesJSON))
	}))
	defer srv.Close()

	gen := NewGenerator(testConfig(srv.URL), testLogger())
	matches, source := gen.Generate(context.Background(), testRequest())

	if source != "gpt-test" {
		t.Errorf("成功时来源标记应为模型名, got %q", source)
	}
	if len(matches) != 3 {
		t.Fatalf("应解析出3个候选, got %d", len(matches))
	}
	// 数字id归一化为字符串
	if matches[0].ID.String() != "1" || matches[0].Title != "Bowling Night" {
		t.Errorf("候选解析错误: %+v", matches[0])
	}
}

func TestGenerateFallbackModes(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"传输错误", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"响应不可解析", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write(chatResponse("this is not json at all"))
		}},
		{"零候选", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write(chatResponse(`{"matches":[]}`))
		}},
		{"超时", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(2 * time.Second)
			w.Write(chatResponse(`{"matches":[]}`))
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(c.handler)
			defer srv.Close()

			gen := NewGenerator(testConfig(srv.URL), testLogger())
			matches, source := gen.Generate(context.Background(), testRequest())

			if source != adapter.SourceFallback {
				t.Errorf("失败模式下来源应为fallback, got %q", source)
			}
			if len(matches) < 3 {
				t.Errorf("兜底列表应至少3个候选, got %d", len(matches))
			}
		})
	}
}

func TestGenerateEmptyPreferencesSkipsCall(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write(chatResponse(`{"matches":[]}`))
	}))
	defer srv.Close()

	gen := NewGenerator(testConfig(srv.URL), testLogger())
	matches, source := gen.Generate(context.Background(), model.SuggestionRequest{})

	if atomic.LoadInt64(&calls) != 0 {
		t.Error("偏好为空时不应请求生成器")
	}
	if source != adapter.SourceFallback || len(matches) < 3 {
		t.Errorf("偏好为空应直接兜底: source=%q matches=%d", source, len(matches))
	}
}

func TestParseMatches(t *testing.T) {
	if got := parseMatches(""); got != nil {
		t.Errorf("空内容应返回nil, got %v", got)
	}
	if got := parseMatches("{broken"); got != nil {
		t.Errorf("坏JSON应返回nil, got %v", got)
	}
	if got := parseMatches(`{"matches":[{"id":"m1","title":"T"}]}`); len(got) != 1 || got[0].ID != "m1" {
		t.Errorf("解析失败: %+v", got)
	}
}

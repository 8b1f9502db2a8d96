// Package openai 对接OpenAI聊天接口的推荐生成器。
// 失败语义：偏好为空、请求失败、超时、响应不可解析、零候选——一律返回
// 内置兜底列表，绝不向编排器抛错。
package openai

import (
	"context"
	"encoding/json"
	"time"

	"FunRadar/internal/adapter"
	"FunRadar/internal/config"
	"FunRadar/internal/interfaces"
	"FunRadar/internal/model"
	"FunRadar/internal/utils/httpclient"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/sirupsen/logrus"
)

// systemPrompt 约束模型只返回包含matches数组的JSON，每项10个必备字段
const systemPrompt = `You are an assistant helping a group of friends choose an activity.
Always respond with JSON containing a ` + "`matches`" + ` array.
Each match must include:
id (integer), title (string), compatibility (integer 0-100), image (string URL),
location (string), price (string), time (string), emoji (string),
votes (integer), description (string).
Do not include any additional keys. Provide 3 to 5 matches.
Focus on variety and align choices with the shared availability, activities, budgets, ideas, and locations.
The location is not a strict constraint. The choices should NOT be only close to a few participants but very far from others.`

func init() {
	adapter.Register("openai", func(cfg *config.AIConfig, logger *logrus.Logger) interfaces.SuggestionGenerator {
		return NewGenerator(cfg, logger)
	})
}

// Generator OpenAI聊天接口生成器
type Generator struct {
	client  openaisdk.Client
	model   string
	timeout time.Duration
	logger  *logrus.Logger
}

func NewGenerator(cfg *config.AIConfig, logger *logrus.Logger) *Generator {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpclient.New(cfg.Timeout, cfg.Proxy, logger)),
		option.WithMaxRetries(0), // 失败直接走兜底，不做SDK层重试
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Generator{
		client:  openaisdk.NewClient(opts...),
		model:   cfg.Model,
		timeout: time.Duration(cfg.Timeout) * time.Second,
		logger:  logger,
	}
}

func (g *Generator) Name() string { return "openai" }

// Generate 请求3-5个候选活动。来源标记成功时为模型名，兜底时为fallback。
func (g *Generator) Generate(ctx context.Context, req model.SuggestionRequest) ([]model.Match, string) {
	// 偏好为空：不请求模型，直接兜底
	if len(req.Attendees) == 0 {
		g.logger.Info("偏好集为空，跳过生成器直接使用兜底列表")
		return adapter.FallbackMatches(), adapter.SourceFallback
	}

	payload, err := json.Marshal(req)
	if err != nil {
		g.logger.WithError(err).Error("序列化推荐请求失败，使用兜底列表")
		return adapter.FallbackMatches(), adapter.SourceFallback
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	completion, err := g.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(string(payload)),
		},
		ResponseFormat: openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		g.logger.WithError(err).Warn("OpenAI请求失败，使用兜底列表")
		return adapter.FallbackMatches(), adapter.SourceFallback
	}
	if len(completion.Choices) == 0 {
		g.logger.Warn("OpenAI响应无choices，使用兜底列表")
		return adapter.FallbackMatches(), adapter.SourceFallback
	}

	matches := parseMatches(completion.Choices[0].Message.Content)
	if len(matches) == 0 {
		g.logger.Warn("OpenAI响应解析后无候选，使用兜底列表")
		return adapter.FallbackMatches(), adapter.SourceFallback
	}

	g.logger.WithFields(logrus.Fields{
		"model":   g.model,
		"matches": len(matches),
	}).Info("推荐生成成功")
	return matches, g.model
}

// parseMatches 解析模型返回的JSON内容，取matches数组。解析失败返回空
func parseMatches(content string) []model.Match {
	if content == "" {
		return nil
	}
	var data struct {
		Matches []model.Match `json:"matches"`
	}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil
	}
	return data.Matches
}

package interfaces

import (
	"context"

	"FunRadar/internal/model"
)

// SuggestionGenerator 候选活动推荐生成器的核心接口。
// Generate 返回候选列表与来源标记（模型名或 fallback）。
// 契约：任何失败（偏好为空、请求超时、响应不可解析、零候选）都必须
// 返回内置兜底列表而非错误，调用方（匹配编排器）无需自带重试逻辑。
type SuggestionGenerator interface {
	Name() string
	Generate(ctx context.Context, req model.SuggestionRequest) (matches []model.Match, sourceTag string)
}

// MatchScheduler 后台匹配任务调度接口（fire-and-forget，至少一次投递）
type MatchScheduler interface {
	Schedule(eventID uint64)
}

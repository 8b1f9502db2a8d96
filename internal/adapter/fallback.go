package adapter

import (
	"context"

	"FunRadar/internal/config"
	"FunRadar/internal/interfaces"
	"FunRadar/internal/model"

	"github.com/sirupsen/logrus"
)

// SourceFallback 兜底列表的来源标记
const SourceFallback = "fallback"

func init() {
	Register("canned", func(_ *config.AIConfig, logger *logrus.Logger) interfaces.SuggestionGenerator {
		return NewCannedGenerator(logger)
	})
}

// fallbackMatches 内置兜底候选列表。生成器不可用时返回这份固定数据，
// 保证匹配编排器拿到的结果永远可用。
var fallbackMatches = []model.Match{
	{
		ID:            "1",
		Title:         "Free Jazz Picnic",
		Compatibility: 95,
		Image:         "https://images.unsplash.com/photo-1603543900250-275a638755a9",
		Location:      "Central Park",
		Price:         "$15/person",
		Time:          "Saturday, 3:00 PM",
		Emoji:         "🎶",
		Votes:         4,
		Description:   "Live jazz band with picnic setup and food trucks",
	},
	{
		ID:            "2",
		Title:         "Rooftop Dinner",
		Compatibility: 88,
		Image:         "https://images.unsplash.com/photo-1742002661612-771125d0c050",
		Location:      "Downtown Skybar",
		Price:         "$45/person",
		Time:          "Friday, 7:00 PM",
		Emoji:         "🍽️",
		Votes:         4,
		Description:   "Italian cuisine with city views",
	},
	{
		ID:            "3",
		Title:         "Coffee & Catch Up",
		Compatibility: 85,
		Image:         "https://images.unsplash.com/photo-1721845706930-b3a05aa70baa",
		Location:      "The Brew House",
		Price:         "$8/person",
		Time:          "Sunday, 10:00 AM",
		Emoji:         "☕",
		Votes:         4,
		Description:   "Cozy cafe with board games",
	},
}

// FallbackMatches 返回兜底候选列表的拷贝（防止调用方修改内置数据）
func FallbackMatches() []model.Match {
	matches := make([]model.Match, len(fallbackMatches))
	copy(matches, fallbackMatches)
	return matches
}

// CannedGenerator 直接返回兜底列表的生成器（本地开发、测试环境用）
type CannedGenerator struct {
	logger *logrus.Logger
}

func NewCannedGenerator(logger *logrus.Logger) *CannedGenerator {
	return &CannedGenerator{logger: logger}
}

func (g *CannedGenerator) Name() string { return "canned" }

func (g *CannedGenerator) Generate(_ context.Context, req model.SuggestionRequest) ([]model.Match, string) {
	g.logger.WithField("attendees", len(req.Attendees)).Info("canned生成器返回内置候选列表")
	return FallbackMatches(), SourceFallback
}

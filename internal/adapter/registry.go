package adapter

import (
	"fmt"

	"FunRadar/internal/config"
	"FunRadar/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// Factory 生成器工厂函数签名
// 入参：AI配置、日志实例
// 出参：实现SuggestionGenerator接口的生成器实例
type Factory func(cfg *config.AIConfig, logger *logrus.Logger) interfaces.SuggestionGenerator

// ========== 全局工厂函数注册表 ==========
var factoryRegistry = make(map[string]Factory)

// Register 供生成器init函数调用，注册工厂函数
func Register(provider string, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("生成器%s的工厂函数不能为nil", provider))
	}
	if _, exists := factoryRegistry[provider]; exists {
		logrus.Warnf("生成器%s已注册，将覆盖原有实现", provider)
	}
	factoryRegistry[provider] = factory
}

// NewGenerator 按配置创建推荐生成器实例。
// provider 未注册时回退到内置canned生成器，保证匹配流程总有可用的生成器。
func NewGenerator(cfg *config.AIConfig, logger *logrus.Logger) interfaces.SuggestionGenerator {
	factory, ok := factoryRegistry[cfg.Provider]
	if !ok {
		logger.WithField("provider", cfg.Provider).Warn("未找到对应的生成器工厂函数，使用canned兜底生成器")
		return NewCannedGenerator(logger)
	}
	gen := factory(cfg, logger)
	if gen == nil {
		logger.WithField("provider", cfg.Provider).Error("工厂函数返回nil生成器实例，使用canned兜底生成器")
		return NewCannedGenerator(logger)
	}
	logger.WithField("provider", cfg.Provider).Info("推荐生成器初始化成功")
	return gen
}

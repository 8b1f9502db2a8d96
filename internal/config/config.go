package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // PostgreSQL配置
	AI       AIConfig       `mapstructure:"ai"`       // 活动推荐生成器配置
	Worker   WorkerConfig   `mapstructure:"worker"`   // 后台匹配任务配置
	CORS     CORSConfig     `mapstructure:"cors"`     // 跨域配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// AIConfig 推荐生成器配置
// Provider 可选 openai / canned：canned 直接返回内置兜底活动列表（本地开发、测试环境用）
type AIConfig struct {
	Provider string `mapstructure:"provider"` // 生成器类型：openai/canned
	BaseURL  string `mapstructure:"base_url"` // OpenAI API基础地址（留空用官方默认）
	APIKey   string `mapstructure:"api_key"`  // API密钥（建议通过OPENAI_KEY环境变量注入）
	Model    string `mapstructure:"model"`    // 聊天模型名称
	Timeout  int    `mapstructure:"timeout"`  // 请求超时（秒），超时走兜底列表
	Proxy    string `mapstructure:"proxy"`    // 代理地址（可选）
}

// WorkerConfig 后台匹配任务配置
type WorkerConfig struct {
	QueueSize int `mapstructure:"queue_size"` // 任务队列缓冲长度
	Workers   int `mapstructure:"workers"`    // 并发worker数量
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"` // 允许的前端来源
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}

// applyDefaults 兜底默认值（配置文件缺失字段时服务仍可启动）
func applyDefaults(cfg *Config) {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-5-mini"
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30
	}
	if cfg.Worker.QueueSize <= 0 {
		cfg.Worker.QueueSize = 64
	}
	if cfg.Worker.Workers <= 0 {
		cfg.Worker.Workers = 2
	}
}

package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。启动时加载一次，之后只读。
type Config struct {
	Env       string
	LogLevel  string
	Server    ServerConfig
	AI        AIConfig
	Store     StoreConfig
	Feed      FeedConfig
	Room      RoomConfig
	Assistant AssistantConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	st, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	asst, err := loadAssistantConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		Server:   server,
		AI:       ai,
		Store:    st,
		Feed: FeedConfig{
			RedisURL: strings.TrimSpace(os.Getenv("REDIS_URL")),
			Channel:  getEnvOrDefault("FEED_CHANNEL", "securemov:messages"),
		},
		Room: RoomConfig{
			JoinCode:    strings.TrimSpace(os.Getenv("JOIN_CODE")),
			DefaultRoom: getEnvOrDefault("DEFAULT_ROOM", "default"),
		},
		Assistant: asst,
	}, nil
}

// IsDevelopment 表示是否运行在开发模式。
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Timeout     time.Duration
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	// 重试由调用方决定，模型客户端不自动重试。
	retryTimes := 0
	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
		RetryTimes:  &retryTimes,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	timeoutSeconds := 60
	if override, err := parseOptionalIntEnv("AI_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AIConfig{}, fmt.Errorf("invalid AI_TIMEOUT_SECONDS value %d: must be positive", *override)
		}
		timeoutSeconds = *override
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// StoreConfig 描述持久化配置。
type StoreConfig struct {
	Driver      string
	DatabaseURL string
}

// Configured 表示持久化协作方是否可用。postgres 驱动缺少 DATABASE_URL 时返回 false。
func (c StoreConfig) Configured() bool {
	return c.Driver == DriverMemory || c.DatabaseURL != ""
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverPostgres))
	if driver != DriverPostgres && driver != DriverMemory {
		return StoreConfig{}, fmt.Errorf("invalid STORE_DRIVER value %q", driver)
	}
	return StoreConfig{
		Driver:      driver,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
	}, nil
}

// FeedConfig 描述新消息通知配置。RedisURL 为空时只在进程内广播。
type FeedConfig struct {
	RedisURL string
	Channel  string
}

// RoomConfig 描述聊天室访问配置。
type RoomConfig struct {
	JoinCode    string
	DefaultRoom string
}

// AssistantConfig 描述助手接口的限流配置。
type AssistantConfig struct {
	RatePerMinute int
	Burst         int
}

func loadAssistantConfig() (AssistantConfig, error) {
	cfg := AssistantConfig{RatePerMinute: 20, Burst: 5}

	rate, err := parseOptionalIntEnv("ASSISTANT_RATE_PER_MINUTE")
	if err != nil {
		return AssistantConfig{}, err
	}
	if rate != nil {
		cfg.RatePerMinute = *rate
	}

	burst, err := parseOptionalIntEnv("ASSISTANT_RATE_BURST")
	if err != nil {
		return AssistantConfig{}, err
	}
	if burst != nil {
		cfg.Burst = *burst
	}

	if cfg.RatePerMinute < 0 || cfg.Burst < 0 {
		return AssistantConfig{}, fmt.Errorf("assistant rate limit values must not be negative")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/mitchellh/go-homedir"

	"github.com/zhouzirui/mindbff/backend/internal/service/completion"
	"github.com/zhouzirui/mindbff/backend/internal/service/voice"
)

// Config 聚合整个应用的配置项。
type Config struct {
	Server  ServerConfig
	Chat    ChatConfig
	Voice   VoiceConfig
	Storage StorageConfig
}

// Load 从环境变量加载配置。调用方负责先执行 godotenv.Load()。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	voiceCfg, err := loadVoiceConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Chat: chat, Voice: voiceCfg, Storage: storage}, nil
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

// Chat providers.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
)

// ChatConfig 描述聊天补全服务。密钥不在这里：它来自用户保存的 key pair。
type ChatConfig struct {
	Provider string
	BaseURL  string
	Model    string
	Timeout  time.Duration

	ArkBaseURL string
	ArkRegion  string
	ArkModel   string
}

// NewChatModel 使用用户的密钥创建一个 Ark 模型实例，签名与 completion.ModelFactory 一致。
func (c ChatConfig) NewChatModel(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
	if c.ArkModel == "" {
		return nil, fmt.Errorf("ARK_MODEL is required when CHAT_PROVIDER=ark")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL: c.ArkBaseURL,
		Region:  c.ArkRegion,
		APIKey:  apiKey,
		Model:   c.ArkModel,
	}

	return ark.NewChatModel(ctx, cfg)
}

// NewCompleter 根据 Provider 选择补全实现。
func (c ChatConfig) NewCompleter() (completion.Completer, error) {
	switch c.Provider {
	case ProviderOpenAI:
		return completion.NewOpenAI(c.BaseURL, c.Model, c.Timeout), nil
	case ProviderArk:
		if c.ArkModel == "" {
			return nil, fmt.Errorf("ARK_MODEL is required when CHAT_PROVIDER=ark")
		}
		return completion.NewEinoCompleter(c.NewChatModel), nil
	default:
		return nil, fmt.Errorf("unsupported CHAT_PROVIDER %q", c.Provider)
	}
}

func loadChatConfig() (ChatConfig, error) {
	timeout, err := parseOptionalDurationEnv("CHAT_TIMEOUT")
	if err != nil {
		return ChatConfig{}, err
	}
	chatTimeout := 60 * time.Second
	if timeout != nil {
		chatTimeout = *timeout
	}

	provider := strings.ToLower(getEnvOrDefault("CHAT_PROVIDER", ProviderOpenAI))
	if provider != ProviderOpenAI && provider != ProviderArk {
		return ChatConfig{}, fmt.Errorf("invalid CHAT_PROVIDER value %q", provider)
	}

	return ChatConfig{
		Provider:   provider,
		BaseURL:    getEnvOrDefault("CHAT_BASE_URL", completion.DefaultBaseURL),
		Model:      getEnvOrDefault("CHAT_MODEL", completion.DefaultModel),
		Timeout:    chatTimeout,
		ArkBaseURL: getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:  getEnvOrDefault("ARK_REGION", "cn-beijing"),
		ArkModel:   strings.TrimSpace(os.Getenv("ARK_MODEL")),
	}, nil
}

// VoiceConfig 描述语音陪伴的连接参数。
type VoiceConfig struct {
	BaseURL           string
	AgentID           string
	HandshakeTimeout  time.Duration
	MicrophoneGranted bool
}

func loadVoiceConfig() (VoiceConfig, error) {
	timeout, err := parseOptionalDurationEnv("VOICE_HANDSHAKE_TIMEOUT")
	if err != nil {
		return VoiceConfig{}, err
	}
	handshake := 30 * time.Second
	if timeout != nil {
		handshake = *timeout
	}

	var granted bool
	switch mic := strings.ToLower(getEnvOrDefault("VOICE_MICROPHONE", "granted")); mic {
	case "granted":
		granted = true
	case "denied":
		granted = false
	default:
		return VoiceConfig{}, fmt.Errorf("invalid VOICE_MICROPHONE value %q: want granted or denied", mic)
	}

	return VoiceConfig{
		BaseURL:           getEnvOrDefault("VOICE_BASE_URL", voice.DefaultBaseURL),
		AgentID:           getEnvOrDefault("VOICE_AGENT_ID", voice.DefaultAgentID),
		HandshakeTimeout:  handshake,
		MicrophoneGranted: granted,
	}, nil
}

// StorageConfig 描述本机数据位置。DBPath 为空时历史只保存在内存中。
type StorageConfig struct {
	DataDir string
	DBPath  string
}

func loadStorageConfig() (StorageConfig, error) {
	dataDir, err := homedir.Expand(getEnvOrDefault("MINDBFF_DATA_DIR", "~/.mindbff"))
	if err != nil {
		return StorageConfig{}, fmt.Errorf("invalid MINDBFF_DATA_DIR: %w", err)
	}

	dbPath := strings.TrimSpace(os.Getenv("MINDBFF_DB_PATH"))
	if dbPath != "" {
		if dbPath, err = homedir.Expand(dbPath); err != nil {
			return StorageConfig{}, fmt.Errorf("invalid MINDBFF_DB_PATH: %w", err)
		}
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(dataDir, dbPath)
		}
	}

	return StorageConfig{DataDir: dataDir, DBPath: dbPath}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
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

// parseOptionalDurationEnv 接受 "30s" 这样的时长，也接受纯数字（按秒计）。
func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	if seconds, err := parseOptionalIntEnv(key); err == nil {
		if seconds == nil {
			return nil, nil
		}
		d := time.Duration(*seconds) * time.Second
		return &d, nil
	}

	value := strings.TrimSpace(os.Getenv(key))
	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &d, nil
}

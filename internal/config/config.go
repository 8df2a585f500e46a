package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	DataDir        string
	StoreDriver    string
	SessionSecret  string
	GinMode        string
	LogDevelopment bool
	Chat           ChatConfig
}

// ChatConfig 描述对话模型的接入方式。
type ChatConfig struct {
	Provider  string
	BaseURL   string
	Model     string
	APIKey    string
	RemoteURL string
	Timeout   time.Duration
	WarmUp    bool
}

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverFile   = "file"
	StoreDriverMemory = "memory"
)

// Load 从环境变量（以及可选的 mindwell.yaml）读取应用配置，并为缺失项提供默认值。
func Load() (AppConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_PATH", "mindwell.db")
	v.SetDefault("DATA_DIR", "data")
	v.SetDefault("STORE_DRIVER", StoreDriverSQLite)
	v.SetDefault("SESSION_SECRET", "mindwell-dev-secret")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.SetDefault("CHAT_PROVIDER", "ollama")
	v.SetDefault("CHAT_BASE_URL", "")
	v.SetDefault("CHAT_MODEL", "")
	v.SetDefault("CHAT_TIMEOUT", "60s")
	v.SetDefault("CHAT_WARMUP", true)

	if err := readConfigFile(v); err != nil {
		return AppConfig{}, err
	}

	port := strings.TrimSpace(v.GetString("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(v.GetString("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER")))
	switch driver {
	case StoreDriverSQLite, StoreDriverFile, StoreDriverMemory:
	case "":
		driver = StoreDriverSQLite
	default:
		return AppConfig{}, fmt.Errorf("unsupported STORE_DRIVER %q", driver)
	}

	timeout := v.GetDuration("CHAT_TIMEOUT")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   strings.TrimSpace(v.GetString("DATABASE_PATH")),
		DataDir:        strings.TrimSpace(v.GetString("DATA_DIR")),
		StoreDriver:    driver,
		SessionSecret:  strings.TrimSpace(v.GetString("SESSION_SECRET")),
		GinMode:        strings.TrimSpace(v.GetString("GIN_MODE")),
		LogDevelopment: v.GetBool("LOG_DEVELOPMENT"),
		Chat: ChatConfig{
			Provider:  strings.ToLower(strings.TrimSpace(v.GetString("CHAT_PROVIDER"))),
			BaseURL:   strings.TrimSpace(v.GetString("CHAT_BASE_URL")),
			Model:     strings.TrimSpace(v.GetString("CHAT_MODEL")),
			APIKey:    strings.TrimSpace(v.GetString("CHAT_API_KEY")),
			RemoteURL: strings.TrimSpace(v.GetString("CHAT_REMOTE_URL")),
			Timeout:   timeout,
			WarmUp:    v.GetBool("CHAT_WARMUP"),
		},
	}, nil
}

// readConfigFile 合并 MINDWELL_CONFIG 指定的文件或当前目录下的 mindwell.yaml，环境变量优先。
func readConfigFile(v *viper.Viper) error {
	path := strings.TrimSpace(os.Getenv("MINDWELL_CONFIG"))
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mindwell")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (path == "" && os.IsNotExist(err)) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mindwell/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// ChatProviderOllama 表示本地 Ollama 的 OpenAI 兼容接口。
	ChatProviderOllama = "ollama"
	// ChatProviderOpenAI 表示使用 OpenAI 能力。
	ChatProviderOpenAI = "openai"

	defaultCompanionName = "MindWell AI"
	defaultOllamaBaseURL = "http://127.0.0.1:11434/v1"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
)

var supportedChatProviders = []string{ChatProviderOllama, ChatProviderOpenAI}

var (
	// ErrChatAPIKeyMissing 表示所选平台需要 API Key 但未配置。
	ErrChatAPIKeyMissing = errors.New("api key is required")
	// ErrSettingsUnavailable 表示当前存储驱动没有可写的设置表。
	ErrSettingsUnavailable = errors.New("system settings are not available")
)

// SystemSettings 描述可在运行时调整的系统信息。
// ChatProvider 为空表示沿用启动配置。
type SystemSettings struct {
	CompanionName    string `json:"companion_name"`
	ChatProvider     string `json:"chat_provider"`
	OpenAIAPIKey     string `json:"openai_api_key"`
	ChatSystemPrompt string `json:"chat_system_prompt"`
}

// SystemSettingsInput 用于更新系统设置。
// OpenAIAPIKey 留空表示保留已保存的 Key；ClearOpenAIAPIKey 为 true 时清除并忽略 OpenAIAPIKey。
type SystemSettingsInput struct {
	CompanionName     string
	ChatProvider      string
	OpenAIAPIKey      string
	ClearOpenAIAPIKey bool
	ChatSystemPrompt  string
}

// SystemSettingService 提供系统设置的读取与更新能力。
type SystemSettingService struct {
	db            *gorm.DB
	httpClient    httpDoer
	openAIBaseURL string
	ollamaBaseURL string
}

// NewSystemSettingService 构造 SystemSettingService。
func NewSystemSettingService(gdb *gorm.DB) *SystemSettingService {
	return &SystemSettingService{
		db:            gdb,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		openAIBaseURL: defaultOpenAIBaseURL,
		ollamaBaseURL: defaultOllamaBaseURL,
	}
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var settingKeys = []string{
	db.SettingKeyCompanionName,
	db.SettingKeyChatProvider,
	db.SettingKeyOpenAIAPIKey,
	db.SettingKeyChatSystemPrompt,
}

// GetSettings 读取系统设置，如未设置将返回默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := SystemSettings{CompanionName: defaultCompanionName}
	if s == nil || s.db == nil {
		return result, nil
	}

	var records []db.SystemSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeyCompanionName:
			if strings.TrimSpace(record.Value) != "" {
				result.CompanionName = record.Value
			}
		case db.SettingKeyChatProvider:
			result.ChatProvider = normalizeChatProvider(record.Value)
		case db.SettingKeyOpenAIAPIKey:
			result.OpenAIAPIKey = record.Value
		case db.SettingKeyChatSystemPrompt:
			result.ChatSystemPrompt = record.Value
		}
	}

	return result, nil
}

// UpdateSettings 保存系统设置，未填写名称时回退默认值，未知的平台视为沿用启动配置。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	sanitized := SystemSettings{
		CompanionName:    strings.TrimSpace(input.CompanionName),
		ChatProvider:     normalizeChatProvider(input.ChatProvider),
		OpenAIAPIKey:     strings.TrimSpace(input.OpenAIAPIKey),
		ChatSystemPrompt: strings.TrimSpace(input.ChatSystemPrompt),
	}
	if sanitized.CompanionName == "" {
		sanitized.CompanionName = defaultCompanionName
	}
	if input.ClearOpenAIAPIKey {
		sanitized.OpenAIAPIKey = ""
	}
	if s == nil || s.db == nil {
		return SystemSettings{}, ErrSettingsUnavailable
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, db.SettingKeyCompanionName, sanitized.CompanionName); err != nil {
			return err
		}
		if err := upsertSetting(tx, db.SettingKeyChatProvider, sanitized.ChatProvider); err != nil {
			return err
		}
		if sanitized.OpenAIAPIKey != "" || input.ClearOpenAIAPIKey {
			if err := upsertSetting(tx, db.SettingKeyOpenAIAPIKey, sanitized.OpenAIAPIKey); err != nil {
				return err
			}
		} else {
			key, err := storedSetting(tx, db.SettingKeyOpenAIAPIKey)
			if err != nil {
				return err
			}
			sanitized.OpenAIAPIKey = key
		}
		return upsertSetting(tx, db.SettingKeyChatSystemPrompt, sanitized.ChatSystemPrompt)
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return sanitized, nil
}

func storedSetting(tx *gorm.DB, key string) (string, error) {
	var records []db.SystemSetting
	if err := tx.Where("key = ?", key).Limit(1).Find(&records).Error; err != nil {
		return "", fmt.Errorf("load setting %s: %w", key, err)
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[0].Value, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// SetHTTPClient 替换用于访问模型服务的 HTTP 客户端，主要面向测试场景。
func (s *SystemSettingService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.httpClient = &http.Client{Timeout: 10 * time.Second}
		return
	}
	s.httpClient = client
}

// SetOpenAIBaseURL 覆盖 OpenAI API 的基础地址。
func (s *SystemSettingService) SetOpenAIBaseURL(base string) {
	s.openAIBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// SetOllamaBaseURL 覆盖 Ollama API 的基础地址。
func (s *SystemSettingService) SetOllamaBaseURL(base string) {
	s.ollamaBaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

// TestChatConnection 调用模型列表接口验证平台可达以及 API Key 有效。
func (s *SystemSettingService) TestChatConnection(ctx context.Context, provider, apiKey string) error {
	prov := normalizeChatProvider(provider)
	if prov == "" {
		prov = ChatProviderOllama
	}

	key := strings.TrimSpace(apiKey)
	base := s.ollamaBaseURL
	label := "Ollama"
	if prov == ChatProviderOpenAI {
		if key == "" {
			return ErrChatAPIKeyMissing
		}
		base = s.openAIBaseURL
		label = "OpenAI"
	}

	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	endpoint := strings.TrimRight(base, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", strings.ToLower(label), err)
	}
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	req.Header.Set("User-Agent", "mindwell/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s models: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("%s returned %s (%s)", label, resp.Status, msg)
		}
		return fmt.Errorf("%s returned %s", label, resp.Status)
	}

	return nil
}

func normalizeChatProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedChatProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}

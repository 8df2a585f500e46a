package db

import "gorm.io/gorm"

// SystemSetting 存储可配置的系统级键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyCompanionName 表示助手展示名称。
	SettingKeyCompanionName = "companion_name"
	// SettingKeyChatProvider 表示对话模型提供方（ollama/openai）。
	SettingKeyChatProvider = "chat_provider"
	// SettingKeyOpenAIAPIKey 表示 OpenAI API Key。
	SettingKeyOpenAIAPIKey = "openai_api_key"
	// SettingKeyChatSystemPrompt 表示自定义的对话系统提示词。
	SettingKeyChatSystemPrompt = "chat_system_prompt"
)

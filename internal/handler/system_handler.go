package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindwell/internal/service"
)

// HealthCheck 提供监控使用的健康检查端点；未使用数据库时只报告进程存活。
func (a *API) HealthCheck(c *gin.Context) {
	if a.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "none"})
		return
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type systemSettingsRequest struct {
	CompanionName     string `json:"companionName"`
	ChatProvider      string `json:"chatProvider"`
	OpenAIAPIKey      string `json:"openaiApiKey"`
	ClearOpenAIAPIKey bool   `json:"clearOpenaiApiKey"`
	ChatSystemPrompt  string `json:"chatSystemPrompt"`
}

type chatTestRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
}

// GetSystemSettings 返回当前系统设置。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.errorMessage(c, "save_failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": systemSettingsPayload(settings)})
}

// UpdateSystemSettings 保存系统设置。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var payload systemSettingsRequest
	if !bindJSON(c, &payload, a.errorMessage(c, "invalid_payload")) {
		return
	}

	settings, err := a.system.UpdateSettings(payload.toInput())
	if errors.Is(err, service.ErrSettingsUnavailable) {
		respondError(c, http.StatusServiceUnavailable, a.errorMessage(c, "settings_unavailable"))
		return
	}
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.errorMessage(c, "save_failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": systemSettingsPayload(settings)})
}

func (r systemSettingsRequest) toInput() service.SystemSettingsInput {
	return service.SystemSettingsInput{
		CompanionName:     r.CompanionName,
		ChatProvider:      r.ChatProvider,
		OpenAIAPIKey:      r.OpenAIAPIKey,
		ClearOpenAIAPIKey: r.ClearOpenAIAPIKey,
		ChatSystemPrompt:  r.ChatSystemPrompt,
	}
}

// systemSettingsPayload 不回显完整的 API Key。
func systemSettingsPayload(settings service.SystemSettings) gin.H {
	return gin.H{
		"companionName":    settings.CompanionName,
		"chatProvider":     settings.ChatProvider,
		"openaiApiKeySet":  settings.OpenAIAPIKey != "",
		"chatSystemPrompt": settings.ChatSystemPrompt,
	}
}

// TestChatConnection 测试对话模型平台的连通性。
func (a *API) TestChatConnection(c *gin.Context) {
	var payload chatTestRequest
	if !bindJSON(c, &payload, a.errorMessage(c, "invalid_payload")) {
		return
	}

	if err := a.system.TestChatConnection(c.Request.Context(), payload.Provider, payload.APIKey); err != nil {
		switch {
		case errors.Is(err, service.ErrChatAPIKeyMissing):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusBadGateway, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "chat provider reachable"})
}

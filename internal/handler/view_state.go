package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/mindwell/internal/locale"
	"github.com/mindwell/internal/logger"
	"github.com/mindwell/internal/service"
	"go.uber.org/zap"
)

// 会话中保存的界面状态，只存在于浏览器 cookie，不写入 Store。
const (
	sessionKeyLanguage       = "language"
	sessionKeyCategory       = "category"
	sessionKeyEditingTaskID  = "editing_task_id"
	sessionKeyLangMenuOpen   = "lang_menu_open"
	sessionKeyConversationID = "conversation_id"
)

// ViewState 是展示层持有的界面状态。
type ViewState struct {
	Language       string `json:"language"`
	Category       string `json:"category"`
	EditingTaskID  int64  `json:"editing_task_id"`
	LangMenuOpen   bool   `json:"lang_menu_open"`
	ConversationID string `json:"conversation_id"`
}

type viewStateRequest struct {
	Language      *string `json:"language"`
	Category      *string `json:"category"`
	EditingTaskID *int64  `json:"editing_task_id"`
	LangMenuOpen  *bool   `json:"lang_menu_open"`
}

func loadViewState(session sessions.Session, fallbackLanguage string) ViewState {
	state := ViewState{Language: fallbackLanguage}
	if session == nil {
		return state
	}
	if language, ok := session.Get(sessionKeyLanguage).(string); ok && locale.NormalizeLanguage(language) != "" {
		state.Language = locale.NormalizeLanguage(language)
	}
	if category, ok := session.Get(sessionKeyCategory).(string); ok {
		state.Category = category
	}
	if id, ok := session.Get(sessionKeyEditingTaskID).(int64); ok {
		state.EditingTaskID = id
	}
	if open, ok := session.Get(sessionKeyLangMenuOpen).(bool); ok {
		state.LangMenuOpen = open
	}
	if conversationID, ok := session.Get(sessionKeyConversationID).(string); ok {
		state.ConversationID = conversationID
	}
	return state
}

// GetViewState 返回当前会话的界面状态及可选项。
func (a *API) GetViewState(c *gin.Context) {
	state := loadViewState(sessionOrNil(c), a.requestLanguage(c))
	c.JSON(http.StatusOK, gin.H{
		"state":      state,
		"languages":  locale.Supported(),
		"categories": service.TaskCategories,
	})
}

// UpdateViewState 局部更新界面状态，未提供的字段保持不变。
func (a *API) UpdateViewState(c *gin.Context) {
	var payload viewStateRequest
	if !bindJSON(c, &payload, a.errorMessage(c, "invalid_payload")) {
		return
	}

	session := sessionOrNil(c)
	if session == nil {
		respondError(c, http.StatusServiceUnavailable, "session unavailable")
		return
	}

	if payload.Language != nil {
		language := locale.NormalizeLanguage(*payload.Language)
		if language == "" {
			respondError(c, http.StatusBadRequest, a.errorMessage(c, "invalid_payload"))
			return
		}
		session.Set(sessionKeyLanguage, language)
		// 切换语言后收起菜单
		session.Set(sessionKeyLangMenuOpen, false)
		c.Set(localeContextKey, language)
	}
	if payload.Category != nil {
		if *payload.Category == "" {
			session.Delete(sessionKeyCategory)
		} else {
			category, ok := service.ParseTaskCategory(*payload.Category)
			if !ok {
				respondError(c, http.StatusBadRequest, a.errorMessage(c, "task_category_invalid"))
				return
			}
			session.Set(sessionKeyCategory, string(category))
		}
	}
	if payload.EditingTaskID != nil {
		if *payload.EditingTaskID == 0 {
			session.Delete(sessionKeyEditingTaskID)
		} else {
			session.Set(sessionKeyEditingTaskID, *payload.EditingTaskID)
		}
	}
	if payload.LangMenuOpen != nil && payload.Language == nil {
		session.Set(sessionKeyLangMenuOpen, *payload.LangMenuOpen)
	}

	if err := session.Save(); err != nil {
		logger.Error("view-state: save session failed", err)
		respondError(c, http.StatusInternalServerError, a.errorMessage(c, "save_failed"))
		return
	}

	state := loadViewState(session, a.requestLanguage(c))
	logger.Info("view-state updated", zap.String("language", state.Language), zap.String("category", state.Category))
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// clearEditingTask 在任务被删除后清理编辑状态。
func clearEditingTask(c *gin.Context, id int64) {
	session := sessionOrNil(c)
	if session == nil {
		return
	}
	if current, ok := session.Get(sessionKeyEditingTaskID).(int64); ok && current == id {
		session.Delete(sessionKeyEditingTaskID)
		if err := session.Save(); err != nil {
			logger.Warn("view-state: clear editing task failed", zap.Error(err))
		}
	}
}

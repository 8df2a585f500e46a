package router

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/mindwell/internal/handler"
	"github.com/mindwell/internal/logger"
)

const (
	sessionName          = "mindwell_session"
	defaultSessionSecret = "mindwell-dev-secret"
	sessionMaxAge        = 30 * 24 * 60 * 60
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(sessionSecret string, api *handler.API) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinMiddleware(), gin.Recovery())

	// 配置会话中间件
	secret := strings.TrimSpace(sessionSecret)
	if secret == "" {
		secret = defaultSessionSecret
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(api.LocaleMiddleware())

	r.GET("/ping", api.HealthCheck)

	apiGroup := r.Group("/api")
	{
		tasks := apiGroup.Group("/tasks")
		{
			tasks.GET("", api.ListTasks)
			tasks.POST("", api.CreateTask)
			tasks.GET("/progress", api.GetTaskProgress)
			tasks.POST("/:id/toggle", api.ToggleTask)
			tasks.POST("/:id/priority", api.ToggleTaskPriority)
			tasks.PUT("/:id/title", api.UpdateTaskTitle)
			tasks.PUT("/:id/mood", api.SetTaskMood)
			tasks.DELETE("/:id", api.DeleteTask)
		}

		mood := apiGroup.Group("/mood")
		{
			mood.GET("/catalog", api.GetMoodCatalog)
			mood.GET("/entries", api.ListMoodEntries)
			mood.POST("/entries", api.SaveMoodEntry)
			mood.GET("/entries/:date", api.GetMoodEntry)
			mood.GET("/today", api.GetTodayMood)
			mood.GET("/stats", api.GetMoodStats)
		}

		apiGroup.POST("/chat", api.Chat)
		apiGroup.GET("/conversation", api.GetConversation)
		apiGroup.POST("/conversation/messages", api.PostConversationMessage)
		apiGroup.POST("/conversation/listen", api.ListenConversation)

		apiGroup.GET("/view-state", api.GetViewState)
		apiGroup.PUT("/view-state", api.UpdateViewState)

		apiGroup.GET("/settings", api.GetSystemSettings)
		apiGroup.PUT("/settings", api.UpdateSystemSettings)
		apiGroup.POST("/settings/test", api.TestChatConnection)
	}

	return r
}

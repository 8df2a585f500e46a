package handler

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/mindwell/internal/locale"
)

const localeContextKey = "__request_language"

// requestLanguage 依次取 ?lang=、会话中的语言、Accept-Language，最后回退英语。
func (a *API) requestLanguage(c *gin.Context) string {
	if cached, exists := c.Get(localeContextKey); exists {
		if language, ok := cached.(string); ok {
			return language
		}
	}

	language := locale.NormalizeLanguage(c.Query("lang"))
	if language == "" {
		if session := sessionOrNil(c); session != nil {
			if stored, ok := session.Get(sessionKeyLanguage).(string); ok {
				language = locale.NormalizeLanguage(stored)
			}
		}
	}
	if language == "" {
		language = locale.LanguageFromAcceptLanguage(c.GetHeader("Accept-Language"))
	}
	if language == "" {
		language = locale.LanguageEnglish
	}

	c.Set(localeContextKey, language)
	return language
}

// LocaleMiddleware 解析请求语言并写入 Content-Language。
func (a *API) LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Language", a.requestLanguage(c))
		c.Header("Vary", "Accept-Language, Cookie")
		c.Next()
	}
}

// sessionOrNil 在未挂载 sessions 中间件时返回 nil，避免 sessions.Default panic。
func sessionOrNil(c *gin.Context) sessions.Session {
	if _, exists := c.Get(sessions.DefaultKey); !exists {
		return nil
	}
	return sessions.Default(c)
}

func (a *API) errorMessage(c *gin.Context, key string) string {
	return localizedMessage(a.requestLanguage(c), key)
}

package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mindwell/internal/locale"
	"github.com/mindwell/internal/logger"
	"github.com/mindwell/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type chatRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

// renderMarkdownOrEscape 渲染失败时退回转义后的纯文本。
func renderMarkdownOrEscape(content string) template.HTML {
	rendered, err := renderMarkdown(content)
	if err != nil {
		logger.Warn("chat: render markdown failed", zap.Error(err))
		return template.HTML(template.HTMLEscapeString(content))
	}
	return rendered
}

// Chat 是无状态的单轮对话接口：{text, language} → {reply}，任何失败都返回兜底文案。
func (a *API) Chat(c *gin.Context) {
	var payload chatRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		// 与空白输入同等对待
		payload = chatRequest{}
	}

	language := locale.NormalizeLanguage(payload.Language)
	if language == "" {
		language = a.requestLanguage(c)
	}

	reply := service.AnswerChat(c.Request.Context(), a.replier, service.ChatRequest{
		Text:     strings.TrimSpace(payload.Text),
		Language: language,
	})

	c.JSON(http.StatusOK, gin.H{
		"reply": reply,
		"html":  renderMarkdownOrEscape(reply),
	})
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindwell/internal/logger"
	"github.com/mindwell/internal/service"
	"go.uber.org/zap"
)

type conversationMessagePayload struct {
	Text string `json:"text"`
}

type messageView struct {
	Sender    service.Sender `json:"sender"`
	Text      string         `json:"text"`
	HTML      string         `json:"html"`
	Timestamp time.Time      `json:"timestamp"`
}

func toMessageView(message service.Message) messageView {
	view := messageView{
		Sender:    message.Sender,
		Text:      message.Text,
		Timestamp: message.Timestamp,
	}
	if message.Sender == service.SenderBot {
		view.HTML = string(renderMarkdownOrEscape(message.Text))
	}
	return view
}

func toMessageViews(messages []service.Message) []messageView {
	views := make([]messageView, 0, len(messages))
	for _, message := range messages {
		views = append(views, toMessageView(message))
	}
	return views
}

// conversation 取回会话中记录的对话，不存在时新建并写回会话 ID。
func (a *API) conversation(c *gin.Context) *service.Conversation {
	session := sessionOrNil(c)

	var id string
	if session != nil {
		id, _ = session.Get(sessionKeyConversationID).(string)
	}

	conv := a.conversations.Resolve(id)
	if session != nil && conv.ID() != id {
		session.Set(sessionKeyConversationID, conv.ID())
		if err := session.Save(); err != nil {
			logger.Warn("conversation: persist session id failed", zap.Error(err))
		}
	}
	return conv
}

// GetConversation 返回当前会话的消息记录。首次发送前只返回问候语，不登记会话。
func (a *API) GetConversation(c *gin.Context) {
	var id string
	if session := sessionOrNil(c); session != nil {
		id, _ = session.Get(sessionKeyConversationID).(string)
	}
	conv := a.conversations.Preview(id)
	c.JSON(http.StatusOK, gin.H{
		"id":        conv.ID(),
		"messages":  toMessageViews(conv.Transcript()),
		"in_flight": conv.InFlight(),
	})
}

// PostConversationMessage 发送一条用户消息。已有回复在途时只排队。
func (a *API) PostConversationMessage(c *gin.Context) {
	var payload conversationMessagePayload
	if !bindJSON(c, &payload, a.errorMessage(c, "invalid_payload")) {
		return
	}

	conv := a.conversation(c)
	result, err := conv.Send(c.Request.Context(), payload.Text, a.requestLanguage(c))
	if errors.Is(err, service.ErrEmptyMessage) {
		respondError(c, http.StatusBadRequest, a.errorMessage(c, "message_required"))
		return
	}
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	a.respondSendResult(c, conv, result)
}

// ListenConversation 通过语音能力采集一句话并发送；不支持时返回提示而不是错误页面。
func (a *API) ListenConversation(c *gin.Context) {
	conv := a.conversation(c)
	result, err := conv.Listen(c.Request.Context(), a.speech, a.requestLanguage(c))
	switch {
	case errors.Is(err, service.ErrSpeechUnsupported):
		c.JSON(http.StatusOK, gin.H{
			"id":        conv.ID(),
			"supported": false,
			"notice":    a.errorMessage(c, "speech_unsupported"),
		})
		return
	case errors.Is(err, service.ErrNoTranscript):
		c.JSON(http.StatusOK, gin.H{
			"id":        conv.ID(),
			"supported": true,
			"notice":    a.errorMessage(c, "speech_no_transcript"),
		})
		return
	case err != nil:
		logger.Warn("conversation: listen failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}

	a.respondSendResult(c, conv, result)
}

func (a *API) respondSendResult(c *gin.Context, conv *service.Conversation, result service.SendResult) {
	replies := toMessageViews(result.Replies)

	// 语音朗读回复，失败只记录
	for _, reply := range result.Replies {
		if err := a.speech.Speak(c.Request.Context(), reply.Text, a.requestLanguage(c)); err != nil && !errors.Is(err, service.ErrSpeechUnsupported) {
			logger.Warn("conversation: speak reply failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      conv.ID(),
		"user":    toMessageView(result.User),
		"replies": replies,
		"queued":  result.Queued,
	})
}

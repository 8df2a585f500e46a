package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mindwell/internal/locale"
	"github.com/mindwell/internal/logger"
	"go.uber.org/zap"
)

const (
	// EmptyUtteranceReply 在用户发送空白内容时直接返回。
	EmptyUtteranceReply = "I’m here with you 💙 Take your time."
	// ChatFailureReply 在模型调用失败时替代真实回复。
	ChatFailureReply = "I’m having a little trouble right now, but I’m still here 💙"

	companionTemperature = 0.8
	companionTopP        = 0.9
)

const defaultCompanionSystemPrompt = `You are an empathetic, calm, emotionally supportive mental health companion.

IMPORTANT RESPONSE FORMAT RULES:
- Always respond in VALID MARKDOWN
- Use bullet points or numbered lists when giving steps or tips
- Use **bold** for headings or key ideas
- Add a blank line between paragraphs
- Keep responses structured and easy to read

Behavior rules:
- Always acknowledge emotions first
- Never judge or shame
- No medical diagnosis or medication advice
- Ask at most ONE gentle follow-up question
- Keep replies 2–8 short sentences
- Warm, human, comforting tone`

// ErrEmptyReply 表示模型返回了空内容。
var ErrEmptyReply = errors.New("empty reply")

// ChatRequest 是一次对话请求：用户原话与语言标签。
type ChatRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Replier 根据用户输入生成助手回复。
type Replier interface {
	Reply(ctx context.Context, req ChatRequest) (string, error)
}

// CompanionReplyService 通过 OpenAI 兼容接口（默认本地 Ollama）生成陪伴式回复。
type CompanionReplyService struct {
	client *aiChatClient
}

// NewCompanionReplyService 构造默认的 CompanionReplyService。
func NewCompanionReplyService(settings *SystemSettingService, opts ChatOptions) *CompanionReplyService {
	return &CompanionReplyService{client: newAIChatClient(settings, opts)}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *CompanionReplyService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetOllamaBaseURL 覆盖 Ollama 接口地址。
func (s *CompanionReplyService) SetOllamaBaseURL(base string) {
	s.client.SetOllamaBaseURL(base)
}

// SetOpenAIBaseURL 覆盖 OpenAI 接口地址。
func (s *CompanionReplyService) SetOpenAIBaseURL(base string) {
	s.client.SetOpenAIBaseURL(base)
}

// Reply 调用模型生成回复；非英语请求会要求模型直接用对应语言作答。
func (s *CompanionReplyService) Reply(ctx context.Context, req ChatRequest) (string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return EmptyUtteranceReply, nil
	}

	settings, err := s.client.currentSettings()
	if err != nil {
		logger.Warn("chat: read settings failed, using startup config", zap.Error(err))
	}

	systemPrompt := buildCompanionSystemPrompt(settings.ChatSystemPrompt, req.Language)
	logAIExchange("CHAT", "prompt", text)

	result, err := s.client.callWithSettings(ctx, settings, aiChatRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   text,
		Temperature:  companionTemperature,
		TopP:         companionTopP,
	})
	if err != nil {
		return "", err
	}
	if result.Content == "" {
		return "", ErrEmptyReply
	}

	logAIExchange("CHAT", "response", result.Content)
	return result.Content, nil
}

// WarmUp 发送一次问候以预加载模型，失败只记录日志。
func (s *CompanionReplyService) WarmUp(ctx context.Context) error {
	settings, _ := s.client.currentSettings()
	_, err := s.client.callWithSettings(ctx, settings, aiChatRequest{
		SystemPrompt: buildCompanionSystemPrompt(settings.ChatSystemPrompt, locale.LanguageEnglish),
		UserPrompt:   "Hello",
	})
	if err != nil {
		logger.Warn("chat: warm-up failed", zap.Error(err))
		return fmt.Errorf("warm up chat model: %w", err)
	}
	logger.Info("chat: model warmed up")
	return nil
}

func buildCompanionSystemPrompt(custom, language string) string {
	prompt := strings.TrimSpace(custom)
	if prompt == "" {
		prompt = defaultCompanionSystemPrompt
	}

	pref := locale.PreferenceForLanguage(language)
	if pref.Tag == locale.LanguageEnglish {
		return prompt
	}

	var builder strings.Builder
	builder.WriteString(prompt)
	builder.WriteString("\n\nThe user writes in ")
	builder.WriteString(pref.Name)
	builder.WriteString(". Always reply in ")
	builder.WriteString(pref.Name)
	builder.WriteString(".")
	return builder.String()
}

// AnswerChat 生成 /chat 的回复文本：空白输入与任何失败都转换为固定的本地回复。
func AnswerChat(ctx context.Context, replier Replier, req ChatRequest) string {
	if strings.TrimSpace(req.Text) == "" {
		return EmptyUtteranceReply
	}
	if replier == nil {
		return ChatFailureReply
	}

	reply, err := replier.Reply(ctx, req)
	if err != nil {
		logger.Error("chat: reply failed", err, zap.String("language", req.Language))
		return ChatFailureReply
	}
	if strings.TrimSpace(reply) == "" {
		return ChatFailureReply
	}
	return reply
}

// ReplierFunc 让普通函数满足 Replier。
type ReplierFunc func(ctx context.Context, req ChatRequest) (string, error)

func (f ReplierFunc) Reply(ctx context.Context, req ChatRequest) (string, error) {
	return f(ctx, req)
}

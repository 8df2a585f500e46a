package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mindwell/internal/logger"
	"go.uber.org/zap"
)

const (
	// ConversationGreeting 是每个新会话的第一条机器人消息。
	ConversationGreeting = "Hello, I am **MindWell AI** 💙\n\nHow are you feeling today?"
	// ConversationErrorReply 在回复失败时写入会话。
	ConversationErrorReply = "I’m having trouble, but I’m still here 💙"
	// ConversationEmptyReply 在模型返回空内容时写入会话。
	ConversationEmptyReply = "I’m here with you 💙"
)

// ErrEmptyMessage 表示发送的内容为空白。
var ErrEmptyMessage = errors.New("message is empty")

// Sender 标识消息来源。
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message 是会话记录中的一条消息。
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// SendResult 描述一次 Send 的结果：Queued 为 true 时本次调用没有发出请求，
// Replies 包含本次调用期间产生的所有机器人回复（含排队消息的回复）。
type SendResult struct {
	User    Message   `json:"user"`
	Replies []Message `json:"replies"`
	Queued  bool      `json:"queued"`
}

// Conversation 保存一个会话的消息记录，同一时间最多只有一个未完成的回复请求。
type Conversation struct {
	mu       sync.Mutex
	id       string
	replier  Replier
	now      func() time.Time
	messages []Message
	pending  []ChatRequest
	inFlight bool
}

// NewConversation 创建带问候语的会话。
func NewConversation(id string, replier Replier, now func() time.Time) *Conversation {
	if now == nil {
		now = time.Now
	}
	return &Conversation{
		id:      id,
		replier: replier,
		now:     now,
		messages: []Message{{
			Sender:    SenderBot,
			Text:      ConversationGreeting,
			Timestamp: now(),
		}},
	}
}

func (c *Conversation) ID() string {
	return c.id
}

// Transcript 返回消息记录的副本。
func (c *Conversation) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// InFlight 报告当前是否有回复请求尚未完成。
func (c *Conversation) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Send 追加用户消息。已有请求在途时只排队；否则由当前调用依次处理本条及其间排队的消息。
func (c *Conversation) Send(ctx context.Context, text, language string) (SendResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return SendResult{}, ErrEmptyMessage
	}

	c.mu.Lock()
	user := Message{Sender: SenderUser, Text: trimmed, Timestamp: c.now()}
	c.messages = append(c.messages, user)
	req := ChatRequest{Text: trimmed, Language: language}
	if c.inFlight {
		c.pending = append(c.pending, req)
		c.mu.Unlock()
		return SendResult{User: user, Queued: true}, nil
	}
	c.inFlight = true
	c.mu.Unlock()

	result := SendResult{User: user}
	for {
		text := c.resolve(ctx, req)

		c.mu.Lock()
		bot := Message{Sender: SenderBot, Text: text, Timestamp: c.now()}
		c.messages = append(c.messages, bot)
		result.Replies = append(result.Replies, bot)
		if len(c.pending) == 0 {
			c.inFlight = false
			c.mu.Unlock()
			return result, nil
		}
		req = c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()
	}
}

func (c *Conversation) resolve(ctx context.Context, req ChatRequest) string {
	if c.replier == nil {
		return ConversationErrorReply
	}
	reply, err := c.replier.Reply(ctx, req)
	if err != nil {
		logger.Error("conversation: reply failed", err, zap.String("conversation_id", c.id))
		return ConversationErrorReply
	}
	if strings.TrimSpace(reply) == "" {
		return ConversationEmptyReply
	}
	return reply
}

// Listen 启动一次语音识别，取第一条最终结果作为用户消息发送。
func (c *Conversation) Listen(ctx context.Context, speech SpeechCapability, language string) (SendResult, error) {
	if speech == nil {
		return SendResult{}, ErrSpeechUnsupported
	}

	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := speech.Start(listenCtx, language)
	if err != nil {
		return SendResult{}, err
	}

	for {
		select {
		case <-ctx.Done():
			return SendResult{}, ctx.Err()
		case event, ok := <-events:
			if !ok {
				return SendResult{}, ErrNoTranscript
			}
			if event.Err != nil {
				return SendResult{}, event.Err
			}
			if !event.Final || strings.TrimSpace(event.Text) == "" {
				continue
			}
			cancel()
			return c.Send(ctx, event.Text, language)
		}
	}
}

// DefaultConversationLimit 是内存中最多保留的会话数。
const DefaultConversationLimit = 512

// ConversationManager 按会话 ID 管理内存中的会话，每个浏览器会话对应一个。
// 超出上限时淘汰最久未使用且没有在途回复的会话。
type ConversationManager struct {
	mu            sync.Mutex
	replier       Replier
	now           func() time.Time
	limit         int
	seq           uint64
	conversations map[string]*managedConversation
}

type managedConversation struct {
	conv     *Conversation
	lastUsed uint64
}

func NewConversationManager(replier Replier, now func() time.Time) *ConversationManager {
	if now == nil {
		now = time.Now
	}
	return &ConversationManager{
		replier:       replier,
		now:           now,
		limit:         DefaultConversationLimit,
		conversations: make(map[string]*managedConversation),
	}
}

// SetLimit 调整保留的会话数，小于 1 时恢复默认值。
func (m *ConversationManager) SetLimit(limit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit < 1 {
		limit = DefaultConversationLimit
	}
	m.limit = limit
	m.evictLocked("")
}

// Get 查找已有会话。
func (m *ConversationManager) Get(id string) (*Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.conversations[id]
	if !ok {
		return nil, false
	}
	m.touchLocked(entry)
	return entry.conv, true
}

// Preview 返回已有会话；不存在时返回一个只带问候语、未登记的会话，ID 为空。
func (m *ConversationManager) Preview(id string) *Conversation {
	if conv, ok := m.Get(id); ok && id != "" {
		return conv
	}
	return NewConversation("", m.replier, m.now)
}

// Resolve 返回 id 对应的会话，不存在时新建一个并分配新的 ID。
func (m *ConversationManager) Resolve(id string) *Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.conversations[id]; ok && id != "" {
		m.touchLocked(entry)
		return entry.conv
	}

	conv := NewConversation(uuid.NewString(), m.replier, m.now)
	entry := &managedConversation{conv: conv}
	m.touchLocked(entry)
	m.conversations[conv.id] = entry
	m.evictLocked(conv.id)
	return conv
}

func (m *ConversationManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}

func (m *ConversationManager) touchLocked(entry *managedConversation) {
	m.seq++
	entry.lastUsed = m.seq
}

// evictLocked 淘汰最久未使用的会话，在途会话与 keep 跳过。
func (m *ConversationManager) evictLocked(keep string) {
	for len(m.conversations) > m.limit {
		var victim string
		var oldest uint64
		for id, entry := range m.conversations {
			if id == keep || entry.conv.InFlight() {
				continue
			}
			if victim == "" || entry.lastUsed < oldest {
				victim, oldest = id, entry.lastUsed
			}
		}
		if victim == "" {
			return
		}
		delete(m.conversations, victim)
		logger.Info("conversation: evicted idle conversation", zap.String("id", victim))
	}
}

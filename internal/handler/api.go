package handler

import (
	"time"

	"github.com/mindwell/internal/service"
	"gorm.io/gorm"
)

// Dependencies 汇总构造 API 所需的组件，零值字段使用默认实现。
type Dependencies struct {
	DB            *gorm.DB
	Routines      *service.TaskRegistry
	Moods         *service.MoodJournal
	Conversations *service.ConversationManager
	Replier       service.Replier
	Settings      *service.SystemSettingService
	Speech        service.SpeechCapability
	Now           func() time.Time
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db            *gorm.DB
	routines      *service.TaskRegistry
	moods         *service.MoodJournal
	conversations *service.ConversationManager
	replier       service.Replier
	system        *service.SystemSettingService
	speech        service.SpeechCapability
	now           func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Dependencies) *API {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	speech := deps.Speech
	if speech == nil {
		speech = service.UnsupportedSpeech{}
	}

	conversations := deps.Conversations
	if conversations == nil {
		conversations = service.NewConversationManager(deps.Replier, now)
	}

	system := deps.Settings
	if system == nil {
		system = service.NewSystemSettingService(deps.DB)
	}

	return &API{
		db:            deps.DB,
		routines:      deps.Routines,
		moods:         deps.Moods,
		conversations: conversations,
		replier:       deps.Replier,
		system:        system,
		speech:        speech,
		now:           now,
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/mindwell/internal/config"
	"github.com/mindwell/internal/logger"
	"github.com/mindwell/internal/service"
	"github.com/mindwell/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app 持有一次命令执行所需的配置与存储。
type app struct {
	cfg   config.AppConfig
	gdb   *gorm.DB
	store store.Store
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LogDevelopment); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	s, gdb, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("store opened", zap.String("driver", cfg.StoreDriver))
	return &app{cfg: cfg, gdb: gdb, store: s}, nil
}

func (a *app) routines() *service.TaskRegistry {
	return service.NewTaskRegistry(a.store, nil)
}

func (a *app) moods() *service.MoodJournal {
	return service.NewMoodJournal(a.store, nil)
}

// replier 配置了 CHAT_REMOTE_URL 时走外部 /chat 服务，否则直连模型。
func (a *app) replier(settings *service.SystemSettingService) (service.Replier, *service.CompanionReplyService) {
	if remote := strings.TrimSpace(a.cfg.Chat.RemoteURL); remote != "" {
		return service.NewRemoteChatClient(remote, a.cfg.Chat.Timeout), nil
	}

	companion := service.NewCompanionReplyService(settings, service.ChatOptions{
		Provider: a.cfg.Chat.Provider,
		BaseURL:  a.cfg.Chat.BaseURL,
		Model:    a.cfg.Chat.Model,
		APIKey:   a.cfg.Chat.APIKey,
		Timeout:  a.cfg.Chat.Timeout,
	})
	return companion, companion
}

func (a *app) close() {
	if a.gdb != nil {
		if sqlDB, err := a.gdb.DB(); err == nil {
			sqlDB.Close()
		}
	}
	logger.Sync()
}

package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mindwell/internal/handler"
	"github.com/mindwell/internal/logger"
	"github.com/mindwell/internal/router"
	"github.com/mindwell/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const warmUpTimeout = 2 * time.Minute

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.GinMode != "" {
				gin.SetMode(a.cfg.GinMode)
			}

			settings := service.NewSystemSettingService(a.gdb)
			replier, companion := a.replier(settings)

			// 预热模型，失败只记录日志
			if companion != nil && a.cfg.Chat.WarmUp {
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), warmUpTimeout)
					defer cancel()
					_ = companion.WarmUp(ctx)
				}()
			}

			api := handler.NewAPI(handler.Dependencies{
				DB:       a.gdb,
				Routines: a.routines(),
				Moods:    a.moods(),
				Replier:  replier,
				Settings: settings,
			})

			r := router.SetupRouter(a.cfg.SessionSecret, api)
			logger.Info("server listening", zap.String("addr", a.cfg.ListenAddr))
			return r.Run(a.cfg.ListenAddr)
		},
	}
}

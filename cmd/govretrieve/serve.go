package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/govretrieve/pkg/utils"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the index and serve the introspection HTTP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := utils.NewLogger(cfg.Debug)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			core, err := buildCore(cfg, logger)
			if err != nil {
				return fmt.Errorf("build core: %w", err)
			}
			defer core.Close()

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			httpServer := &http.Server{Addr: addr, Handler: core.Router()}

			go func() {
				logger.Info("introspection endpoint listening", zap.String("addr", addr))
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(ctx)
		},
	}
}

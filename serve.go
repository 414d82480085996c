package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/snapgen/snapgen/internal/config"
	"github.com/snapgen/snapgen/internal/generator"
	"github.com/snapgen/snapgen/internal/logging"
	"github.com/snapgen/snapgen/internal/scaffold"
	"github.com/snapgen/snapgen/internal/server"
	"github.com/snapgen/snapgen/internal/server/routes"
	"github.com/snapgen/snapgen/internal/version"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *cliOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP render service",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, path, err := opts.loadRuntime()
			if err != nil {
				return err
			}
			if port != 0 {
				if port < 1 || port > 65535 {
					return newUsageError("--port 超出范围: %d", port)
				}
				cfg.Global.ListenPort = port
			}

			fields := logging.BaseFields("startup", path)
			fields["listen_port"] = cfg.Global.ListenPort
			fields["kinds"] = scaffold.Keys()
			fields["version"] = version.Full()
			logger.WithFields(fields).Info("配置加载完成")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return startHTTPServer(ctx, cfg, logger)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "覆盖配置中的 ListenPort")
	return cmd
}

// startHTTPServer 监听端口直到 ctx 结束，随后优雅关闭。
func startHTTPServer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	app, err := server.NewApp(server.AppOptions{
		Logger:  logger,
		Config:  cfg,
		Planner: generator.New(cfg, nil, logger),
		Metrics: server.NewMetrics(),
	})
	if err != nil {
		return err
	}
	routes.RegisterScaffoldRoutes(app, cfg)

	port := cfg.Global.ListenPort
	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("关闭 HTTP 服务失败: %w", err)
	}
	logger.WithField("action", "shutdown").Info("Fiber 服务已停止")
	return nil
}

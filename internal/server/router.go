package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/snapgen/snapgen/internal/config"
	"github.com/snapgen/snapgen/internal/generator"
	"github.com/snapgen/snapgen/internal/scaffold"
)

// Planner 负责把渲染请求解析为文件列表，生产环境由 generator.Generator 实现。
type Planner interface {
	Plan(req generator.Request) (scaffold.KindMetadata, *scaffold.Result, string, error)
}

// AppOptions 汇总构建 Fiber 应用所需的依赖。
type AppOptions struct {
	Logger  *logrus.Logger
	Config  *config.Config
	Planner Planner
	Metrics *Metrics
}

const contextKeyRequestID = "_snapgen_request_id"

// NewApp 构建带请求 ID、panic 恢复与统一错误信封的 Fiber 应用，并挂载渲染与诊断路由。
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Planner == nil {
		return nil, errors.New("planner is required")
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	fiberCfg := fiber.Config{
		CaseSensitive: true,
		ErrorHandler:  errorHandler(opts.Logger),
	}
	if opts.Config != nil {
		fiberCfg.ReadTimeout = opts.Config.Global.ReadTimeout.DurationValue()
		fiberCfg.WriteTimeout = opts.Config.Global.WriteTimeout.DurationValue()
	}
	app := fiber.New(fiberCfg)

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	app.Get("/-/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/-/metrics", opts.Metrics.Handler())
	app.Post("/api/render", renderHandler(opts))

	return app, nil
}

// requestIDMiddleware 沿用调用方传入的 X-Request-ID，缺省时生成 uuid。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := strings.TrimSpace(c.Get(fiber.HeaderXRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Locals(contextKeyRequestID, reqID)
		c.Set(fiber.HeaderXRequestID, reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

// errorHandler 将 Fiber 内部错误（404/405/panic）统一为 {"error": code} 信封。
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		code := "internal_error"
		switch status {
		case fiber.StatusNotFound:
			code = "route_not_found"
		case fiber.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case fiber.StatusRequestTimeout:
			code = "request_timeout"
		}

		if status >= fiber.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"action":     "http_error",
				"request_id": RequestID(c),
				"path":       c.Path(),
				"error":      err.Error(),
			}).Error("request_failed")
		}
		return writeError(c, status, code)
	}
}

func writeError(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}

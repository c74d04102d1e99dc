package logger

import (
	"fmt"
	"time"

	"pos-service/pkg/config"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the header and echo context key carrying the request id
const RequestIDKey = "X-Request-ID"

var log *zap.Logger

// InitLogger builds the process logger and installs it as zap's global. Production
// writes JSON with ISO8601 timestamps, anything else writes colored console lines.
func InitLogger(cfg *config.Config) {
	l, err := New(cfg)
	if err != nil {
		// No logger to report through yet
		panic("failed to initialize logger: " + err.Error())
	}
	log = l
	zap.ReplaceGlobals(log)
}

// New builds a logger for the configuration without touching the global one
func New(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewDevelopmentConfig()
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if cfg.Server.Env == "production" {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build(zap.Fields(
		zap.String("service", config.ServiceName),
		zap.String("environment", cfg.Server.Env),
	))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return l, nil
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if log == nil {
		return zap.L()
	}
	return log
}

// Middleware logs one line per request and exposes a request-scoped logger through
// both the echo context and the request context. Runs after RequestIDMiddleware.
func Middleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			requestID := c.Request().Header.Get(RequestIDKey)
			if requestID == "" {
				requestID = c.Response().Header().Get(RequestIDKey)
			}

			reqLogger := base.With(zap.String("request_id", requestID))
			c.Set("logger", reqLogger)
			c.SetRequest(c.Request().WithContext(WithContext(c.Request().Context(), reqLogger)))

			err := next(c)

			// Session may have enriched the logger with identity fields
			reqLogger = FromEcho(c)
			fields := []zapcore.Field{
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}

			switch status := c.Response().Status; {
			case err != nil:
				reqLogger.Error("HTTP request failed", append(fields, zap.Error(err))...)
			case status >= 500:
				reqLogger.Error("HTTP request completed", fields...)
			case status >= 400:
				reqLogger.Warn("HTTP request completed", fields...)
			default:
				reqLogger.Info("HTTP request completed", fields...)
			}

			return err
		}
	}
}

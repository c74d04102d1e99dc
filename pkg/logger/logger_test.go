package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pos-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewFallsBackToInfo(t *testing.T) {
	l, err := New(&config.Config{Log: config.LogConfig{Level: "loud"}})
	require.NoError(t, err)

	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewHonorsLevel(t *testing.T) {
	l, err := New(&config.Config{Log: config.LogConfig{Level: "error"}, Server: config.ServerConfig{Env: "production"}})
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestMiddlewareLevelsByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	e := echo.New()
	e.Use(Middleware(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error {
		// Handlers see the same logger through both contexts
		assert.Same(t, FromEcho(c), FromContext(c.Request().Context()))
		return c.NoContent(http.StatusOK)
	})
	e.GET("/missing", func(c echo.Context) error { return c.NoContent(http.StatusNotFound) })
	e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(RequestIDKey, "req-"+path[1:])
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "HTTP request failed", entries[2].Message)
	assert.Equal(t, "req-ok", entries[0].ContextMap()["request_id"])
}

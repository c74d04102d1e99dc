package handler

import (
	"context"
	"net/http"
	"time"

	"pos-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Pinger checks a backing service, satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and, on request, database reachability
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a health handler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck handles the health check endpoint
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	log := logger.FromEcho(c)

	response := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}

	if c.QueryParam("check") == "db" {
		if err := h.db.PingContext(c.Request().Context()); err != nil {
			log.Error("Database ping error", zap.Error(err))
			response["status"] = "error"
			response["db_status"] = "error"
			response["db_error"] = "Failed to ping database"
			return c.JSON(http.StatusInternalServerError, response)
		}
		response["db_status"] = "ok"
	}

	return c.JSON(http.StatusOK, response)
}

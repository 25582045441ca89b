package handlers

import (
	"net/http"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"

	"github.com/zarenu/zare-api/pkg/dto"
)

type HealthHandler struct {
	db     HealthChecker
	logger zerolog.Logger
}

func NewHealthHandler(db HealthChecker, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Check(c *drift.Context) {
	if err := h.db.Health(c.Request.Context()); err != nil {
		h.logger.Error().Err(err).Msg("health check failed")
		_ = c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
		return
	}
	_ = c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

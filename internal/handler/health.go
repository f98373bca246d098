package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chargedrops/chargedrops-api/pkg/db"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	db *db.DB
}

func NewHealthHandler(database *db.DB) *HealthHandler {
	return &HealthHandler{db: database}
}

// Healthz reports process liveness only.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the database is reachable.
func (h *HealthHandler) Ready(c echo.Context) error {
	if err := h.db.Health(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "database unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

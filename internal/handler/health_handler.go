package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness and the active mode
func (h *Handler) Health(c echo.Context) error {
	mode := "live"
	if h.demoMode {
		mode = "demo"
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "mode": mode})
}

package handler

import (
	"net/http"

	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListVoices handles GET /api/voices
func (h *Handler) ListVoices(c echo.Context) error {
	voices, err := h.voices.List(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err, "Failed to list voices")
	}
	return c.JSON(http.StatusOK, voices)
}

// SyncVoices handles POST /api/admin/voices/sync
func (h *Handler) SyncVoices(c echo.Context) error {
	count, err := h.voices.Sync(c.Request().Context())
	if err != nil {
		return fail(c, err, "Voice sync failed")
	}

	logger.FromContext(c).Info("Voices synced", zap.Int("count", count))
	return c.JSON(http.StatusOK, echo.Map{"message": "voices synced", "count": count})
}

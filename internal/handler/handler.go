// Package handler exposes the dashboard REST API over echo.
package handler

import (
	"net/http"
	"strconv"

	"github.com/IBosman/zeeder-sub000/internal/apperr"
	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/internal/middleware"
	"github.com/IBosman/zeeder-sub000/internal/service"
	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler serves every API route
type Handler struct {
	directory   *service.Directory
	assignments *service.Assignments
	voices      *service.VoiceCatalog
	agents      *service.Agents
	demoMode    bool
}

// New creates the API handler
func New(directory *service.Directory, assignments *service.Assignments, voices *service.VoiceCatalog, agents *service.Agents, demoMode bool) *Handler {
	return &Handler{
		directory:   directory,
		assignments: assignments,
		voices:      voices,
		agents:      agents,
		demoMode:    demoMode,
	}
}

// fail logs err and writes it as {"error": message}
func fail(c echo.Context, err error, msg string) error {
	log := logger.FromContext(c)
	status := apperr.Status(err)

	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Int("status", status), zap.Error(err))
	} else {
		log.Warn(msg, zap.Int("status", status), zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": apperr.Message(err)})
}

func badRequest(c echo.Context, message string) error {
	return fail(c, apperr.BadRequest(message), "Invalid request")
}

// pathID parses a numeric path parameter
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("invalid " + name)
	}
	return uint(id), nil
}

func identity(c echo.Context) auth.Identity {
	id, _ := middleware.GetIdentity(c)
	return id
}

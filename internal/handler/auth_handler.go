package handler

import (
	"net/http"

	"github.com/IBosman/zeeder-sub000/internal/service"
	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login. Either username or email identifies the account.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}

	session, err := h.directory.Login(c.Request().Context(), login, req.Password)
	if err != nil {
		return fail(c, err, "Login failed")
	}
	return c.JSON(http.StatusOK, session)
}

// Register handles POST /auth/register
func (h *Handler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request")
	}

	session, err := h.directory.Register(c.Request().Context(), req)
	if err != nil {
		return fail(c, err, "Registration failed")
	}

	logger.FromContext(c).Info("User registered", zap.Uint("user_id", session.User.ID))
	return c.JSON(http.StatusCreated, session)
}

// Me handles GET /api/me
func (h *Handler) Me(c echo.Context) error {
	user, err := h.directory.Me(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err, "Failed to load current user")
	}
	return c.JSON(http.StatusOK, user)
}

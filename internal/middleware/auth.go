package middleware

import (
	"net/http"

	"github.com/IBosman/zeeder-sub000/internal/auth"
	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const identityKey = "identity"

// Auth resolves the caller with provider and stores the identity on the context
func Auth(provider auth.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			identity, err := provider.Authenticate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				log.Warn("Authentication failed", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}

			c.Set(identityKey, identity)
			c.Set("user_id", identity.UserID)
			c.Set("user_role", identity.Role)

			fields := []zap.Field{zap.Uint("user_id", identity.UserID), zap.String("role", identity.Role)}
			if identity.CompanyID != nil {
				fields = append(fields, zap.Uint("company_id", *identity.CompanyID))
			}
			logger.Attach(c, log.With(fields...))

			return next(c)
		}
	}
}

// RequireAdmin rejects callers without the admin role
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := GetIdentity(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
		if !identity.IsAdmin() {
			logger.FromContext(c).Warn("Admin route denied", zap.Uint("user_id", identity.UserID))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
		}
		return next(c)
	}
}

// GetIdentity retrieves the authenticated caller from the context
func GetIdentity(c echo.Context) (auth.Identity, bool) {
	identity, ok := c.Get(identityKey).(auth.Identity)
	return identity, ok
}

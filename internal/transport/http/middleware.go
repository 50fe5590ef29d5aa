package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medtrack/medtrack-api/internal/domain"
	"github.com/medtrack/medtrack-api/internal/service"
	"github.com/medtrack/medtrack-api/internal/util"
)

const (
	contextUserKey  = "auth.user"
	contextTokenKey = "auth.token"
)

// RequireAuth resolves the bearer token through the session manager, so
// every protected route re-checks the server-side session row, not just the
// token signature. Expired sessions are deactivated as a side effect of the
// check.
func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, util.Error("missing or invalid authorization header"))
			}
			result, err := auth.Verify(c.Request().Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrInvalidToken),
					errors.Is(err, service.ErrSessionNotFound),
					errors.Is(err, service.ErrSessionExpired):
					return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
				default:
					return c.JSON(http.StatusInternalServerError, util.Error("could not verify session"))
				}
			}
			c.Set(contextUserKey, &result.User)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

// RequireAdmin gates a route to role admin. It assumes RequireAuth already
// ran in the chain.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := CurrentUser(c)
			if !ok || principal == nil {
				return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
			}
			if principal.RoleID != domain.RoleAdmin {
				return c.JSON(http.StatusForbidden, util.Error("admin privileges required"))
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*domain.Principal, bool) {
	principal, ok := c.Get(contextUserKey).(*domain.Principal)
	return principal, ok
}

func currentToken(c echo.Context) string {
	token, _ := c.Get(contextTokenKey).(string)
	return token
}

func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if strings.TrimSpace(authHeader) == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medtrack/medtrack-api/internal/service"
	"github.com/medtrack/medtrack-api/internal/util"
)

type AuthHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

type registerRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, users *service.UserService) {
	handler := &AuthHandler{auth: auth, users: users}

	g := e.Group("/api/auth")
	g.POST("/register", handler.register)
	g.POST("/login", handler.login)

	protected := g.Group("", RequireAuth(auth))
	protected.POST("/logout", handler.logout)
	protected.GET("/profile", handler.profile)
	protected.GET("/verify-session", handler.verifySession)
	protected.POST("/refresh", handler.refresh)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, err := h.auth.Register(c.Request().Context(), req.Name, req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			return c.JSON(http.StatusBadRequest, util.Error("name, phone and password are required"))
		case errors.Is(err, service.ErrDuplicateUser):
			return c.JSON(http.StatusConflict, util.Error("name or phone already registered"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not create account"))
		}
	}

	return c.JSON(http.StatusCreated, util.Success("account created", util.Envelope{
		"id":    user.ID,
		"name":  user.Name,
		"phone": user.Phone,
	}))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			return c.JSON(http.StatusBadRequest, util.Error("name and password are required"))
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, util.Error("account not found, please register first"))
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error("name or password incorrect"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("login failed"))
		}
	}

	return c.JSON(http.StatusOK, util.Success("login successful", util.Envelope{
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
		"user":       result.User,
	}))
}

func (h *AuthHandler) logout(c echo.Context) error {
	principal, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	if err := h.auth.Logout(c.Request().Context(), principal.ID, currentToken(c)); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("logout failed"))
	}
	return c.JSON(http.StatusOK, util.Success("logout successful", nil))
}

func (h *AuthHandler) profile(c echo.Context) error {
	principal, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	user, err := h.users.Profile(c.Request().Context(), principal.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("account not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not load profile"))
	}

	return c.JSON(http.StatusOK, util.Success("profile retrieved", util.Envelope{
		"id":      user.ID,
		"name":    user.Name,
		"phone":   user.Phone,
		"role_id": user.RoleID,
	}))
}

// verifySession re-runs the full session check and reports remaining
// lifetime; RequireAuth already verified, so a second Verify keeps the
// response consistent with the row as of this instant.
func (h *AuthHandler) verifySession(c echo.Context) error {
	result, err := h.auth.Verify(c.Request().Context(), currentToken(c))
	if err != nil {
		return sessionErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, util.Success("session valid", util.Envelope{
		"user":              result.User,
		"expires_at":        result.ExpiresAt.Format(time.RFC3339),
		"time_until_expiry": int64(result.TimeToExpiry.Seconds()),
	}))
}

func (h *AuthHandler) refresh(c echo.Context) error {
	result, err := h.auth.Refresh(c.Request().Context(), currentToken(c))
	if err != nil {
		return sessionErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, util.Success("session extended", util.Envelope{
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
		"user": util.Envelope{
			"id":   result.UserID,
			"role": result.RoleID,
		},
	}))
}

func sessionErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, util.Error("token invalid"))
	case errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusUnauthorized, util.Error("session not found or inactive"))
	case errors.Is(err, service.ErrSessionExpired):
		return c.JSON(http.StatusUnauthorized, util.Error("session expired"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("could not verify session"))
	}
}

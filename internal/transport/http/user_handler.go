package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medtrack/medtrack-api/internal/service"
	"github.com/medtrack/medtrack-api/internal/util"
)

type UserHandler struct {
	users *service.UserService
}

func RegisterUsers(e *echo.Echo, auth *service.AuthService, users *service.UserService) {
	handler := &UserHandler{users: users}

	g := e.Group("/api/users", RequireAuth(auth), RequireAdmin())
	g.GET("", handler.list)
	g.GET("/active", handler.listActive)
	g.GET("/:id", handler.get)
	g.DELETE("/:id", handler.remove)
}

func (h *UserHandler) list(c echo.Context) error {
	patients, err := h.users.ListPatients(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list patients"))
	}
	return c.JSON(http.StatusOK, util.Success("patients retrieved", util.Envelope{"patients": patients}))
}

func (h *UserHandler) listActive(c echo.Context) error {
	active, err := h.users.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list active users"))
	}
	return c.JSON(http.StatusOK, util.Success("active users retrieved", util.Envelope{"users": active}))
}

func (h *UserHandler) get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid user id"))
	}

	patient, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("user not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not load user"))
	}
	return c.JSON(http.StatusOK, util.Success("user retrieved", util.Envelope{"user": patient}))
}

func (h *UserHandler) remove(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid user id"))
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("user not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not delete user"))
	}
	return c.JSON(http.StatusOK, util.Success("user deleted", nil))
}

func pathID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

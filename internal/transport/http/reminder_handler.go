package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medtrack/medtrack-api/internal/domain"
	"github.com/medtrack/medtrack-api/internal/service"
	"github.com/medtrack/medtrack-api/internal/util"
)

type ReminderHandler struct {
	reminders *service.ReminderService
}

type createReminderRequest struct {
	UserID     int64  `json:"user_id"`
	MedID      int64  `json:"med_id"`
	Quantity   int    `json:"quantity"`
	Time       string `json:"time"`
	BeforeMeal bool   `json:"before_meal"`
}

type logDoseRequest struct {
	TimesTaken  int        `json:"times_taken"`
	LastTakenAt *time.Time `json:"last_taken_at"`
}

type updateReminderRequest struct {
	Quantity   *int    `json:"quantity"`
	Time       *string `json:"time"`
	BeforeMeal *bool   `json:"before_meal"`
}

func RegisterReminders(e *echo.Echo, auth *service.AuthService, reminders *service.ReminderService) {
	handler := &ReminderHandler{reminders: reminders}

	g := e.Group("/api/reminders", RequireAuth(auth))
	g.POST("", handler.create)
	g.GET("/user/:userId", handler.listForUser)
	g.GET("/history/:userId", handler.history)
	g.PATCH("/:id/times-taken", handler.logDose)
	g.POST("/:id/reset", handler.reset)
	g.PUT("/:id", handler.update)
	g.DELETE("/:id", handler.remove)

	admin := g.Group("", RequireAdmin())
	admin.GET("", handler.listAll)
}

func (h *ReminderHandler) create(c echo.Context) error {
	var req createReminderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	principal, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	userID := req.UserID
	if userID == 0 || !principal.IsAdmin() {
		userID = principal.ID
	}

	result, err := h.reminders.Create(c.Request().Context(), service.ReminderCreateInput{
		UserID:     userID,
		MedID:      req.MedID,
		Quantity:   req.Quantity,
		Time:       req.Time,
		BeforeMeal: req.BeforeMeal,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			return c.JSON(http.StatusBadRequest, util.Error("med_id and time are required"))
		case errors.Is(err, service.ErrMedicineNotFound):
			return c.JSON(http.StatusNotFound, util.Error("medicine not found"))
		case errors.Is(err, service.ErrInsufficientStock):
			return c.JSON(http.StatusConflict, util.Error("insufficient medicine stock"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not create reminder"))
		}
	}
	return c.JSON(http.StatusCreated, util.Success("reminder created", util.Envelope{
		"reminder": result.Reminder,
		"medicine": result.Medicine,
	}))
}

func (h *ReminderHandler) listForUser(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid user id"))
	}
	if !requireSelfOrAdmin(c, userID) {
		return nil
	}

	items, err := h.reminders.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list reminders"))
	}
	return c.JSON(http.StatusOK, util.Success("reminders retrieved", util.Envelope{"reminders": items}))
}

func (h *ReminderHandler) listAll(c echo.Context) error {
	items, err := h.reminders.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list reminders"))
	}
	return c.JSON(http.StatusOK, util.Success("reminders retrieved", util.Envelope{"reminders": items}))
}

func (h *ReminderHandler) history(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid user id"))
	}
	if !requireSelfOrAdmin(c, userID) {
		return nil
	}

	days := 0
	if raw := c.QueryParam("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 0 {
			return c.JSON(http.StatusBadRequest, util.Error("days must be a non-negative number"))
		}
	}

	items, err := h.reminders.History(c.Request().Context(), userID, days)
	if err != nil {
		if errors.Is(err, service.ErrMissingField) {
			return c.JSON(http.StatusBadRequest, util.Error("invalid history window"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not load history"))
	}
	return c.JSON(http.StatusOK, util.Success("history retrieved", util.Envelope{"history": items}))
}

func (h *ReminderHandler) logDose(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid reminder id"))
	}

	var req logDoseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	reminder, err := h.reminders.LogDose(c.Request().Context(), id, req.TimesTaken, req.LastTakenAt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingField):
			return c.JSON(http.StatusBadRequest, util.Error("times_taken must be non-negative"))
		case errors.Is(err, service.ErrReminderNotFound):
			return c.JSON(http.StatusNotFound, util.Error("reminder not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update reminder"))
		}
	}
	return c.JSON(http.StatusOK, util.Success("dose logged", util.Envelope{"reminder": reminder}))
}

func (h *ReminderHandler) reset(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid reminder id"))
	}

	if err := h.reminders.Reset(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrReminderNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("reminder not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not reset reminder"))
	}
	return c.JSON(http.StatusOK, util.Success("reminder reset", nil))
}

func (h *ReminderHandler) update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid reminder id"))
	}

	var req updateReminderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, util.Error("quantity must be positive"))
	}

	reminder, err := h.reminders.Update(c.Request().Context(), id, domain.ReminderPatch{
		Quantity:   req.Quantity,
		Time:       req.Time,
		BeforeMeal: req.BeforeMeal,
	})
	if err != nil {
		if errors.Is(err, service.ErrReminderNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("reminder not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not update reminder"))
	}
	return c.JSON(http.StatusOK, util.Success("reminder updated", util.Envelope{"reminder": reminder}))
}

func (h *ReminderHandler) remove(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid reminder id"))
	}

	if err := h.reminders.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrReminderNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("reminder not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not delete reminder"))
	}
	return c.JSON(http.StatusOK, util.Success("reminder deleted", nil))
}

// requireSelfOrAdmin writes the error response itself and reports whether
// the caller may proceed.
func requireSelfOrAdmin(c echo.Context, userID int64) bool {
	principal, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
		return false
	}
	if principal.ID != userID && !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, util.Error("not allowed to access this user's reminders"))
		return false
	}
	return true
}

package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medtrack/medtrack-api/internal/service"
	"github.com/medtrack/medtrack-api/internal/util"
)

type MedicineHandler struct {
	medicines *service.MedicineService
}

func RegisterMedicines(e *echo.Echo, auth *service.AuthService, medicines *service.MedicineService) {
	handler := &MedicineHandler{medicines: medicines}

	g := e.Group("/api/medicines", RequireAuth(auth))
	g.GET("", handler.list)
	g.GET("/:id", handler.get)

	admin := g.Group("", RequireAdmin())
	admin.POST("", handler.create)
	admin.PUT("/:id", handler.update)
	admin.DELETE("/:id", handler.remove)
}

func (h *MedicineHandler) list(c echo.Context) error {
	medicines, err := h.medicines.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not list medicines"))
	}
	return c.JSON(http.StatusOK, util.Success("medicines retrieved", util.Envelope{"medicines": medicines}))
}

func (h *MedicineHandler) get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid medicine id"))
	}

	medicine, err := h.medicines.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMedicineNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("medicine not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not load medicine"))
	}
	return c.JSON(http.StatusOK, util.Success("medicine retrieved", util.Envelope{"medicine": medicine}))
}

func (h *MedicineHandler) create(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	stockValue := strings.TrimSpace(c.FormValue("stock"))
	if name == "" || stockValue == "" {
		return c.JSON(http.StatusBadRequest, util.Error("name and stock are required"))
	}
	stock, err := strconv.Atoi(stockValue)
	if err != nil || stock < 0 {
		return c.JSON(http.StatusBadRequest, util.Error("stock must be a non-negative number"))
	}

	input := service.MedicineCreateInput{Name: name, Stock: stock}
	if description := strings.TrimSpace(c.FormValue("description")); description != "" {
		input.Description = &description
	}

	upload, cleanup, err := formImage(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("could not read image upload"))
	}
	if cleanup != nil {
		defer cleanup()
	}
	input.Image = upload

	medicine, err := h.medicines.Create(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrMissingField) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not create medicine"))
	}
	return c.JSON(http.StatusCreated, util.Success("medicine created", util.Envelope{"medicine": medicine}))
}

func (h *MedicineHandler) update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid medicine id"))
	}

	var input service.MedicineUpdateInput
	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		input.Name = &name
	}
	if stockValue := strings.TrimSpace(c.FormValue("stock")); stockValue != "" {
		stock, err := strconv.Atoi(stockValue)
		if err != nil || stock < 0 {
			return c.JSON(http.StatusBadRequest, util.Error("stock must be a non-negative number"))
		}
		input.Stock = &stock
	}
	if description := strings.TrimSpace(c.FormValue("description")); description != "" {
		input.Description = &description
	}

	upload, cleanup, err := formImage(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("could not read image upload"))
	}
	if cleanup != nil {
		defer cleanup()
	}
	input.Image = upload

	medicine, err := h.medicines.Update(c.Request().Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMedicineNotFound):
			return c.JSON(http.StatusNotFound, util.Error("medicine not found"))
		case errors.Is(err, service.ErrMissingField):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update medicine"))
		}
	}
	return c.JSON(http.StatusOK, util.Success("medicine updated", util.Envelope{"medicine": medicine}))
}

func (h *MedicineHandler) remove(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid medicine id"))
	}

	if _, err := h.medicines.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrMedicineNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("medicine not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not delete medicine"))
	}
	return c.JSON(http.StatusOK, util.Success("medicine deleted", nil))
}

// formImage returns a nil upload when the field is absent so callers
// can treat the image as optional.
func formImage(c echo.Context, field string) (*service.MedicineImageUpload, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}

	upload := &service.MedicineImageUpload{
		Reader:      file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: contentTypeOf(fileHeader),
	}
	return upload, func() { file.Close() }, nil
}

func contentTypeOf(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

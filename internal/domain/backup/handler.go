package backup

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/backup", h.Export)
	api.POST("/backup", h.Import)
	api.DELETE("/records", h.Wipe)
}

// Export downloads the whole store as a JSON attachment.
func (h *Handler) Export(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.svc.WriteTo(c.Request().Context(), &buf); err != nil {
		return apperr.ToHTTP(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+h.svc.FileName()+`"`)
	return c.Stream(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, &buf)
}

// Import merges the request body into the store.
func (h *Handler) Import(c echo.Context) error {
	res, err := h.svc.Import(c.Request().Context(), c.Request().Body)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}

// Wipe requires ?confirm=true.
func (h *Handler) Wipe(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return echo.NewHTTPError(http.StatusBadRequest, "add ?confirm=true to wipe all records")
	}
	if err := h.svc.Wipe(c.Request().Context()); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

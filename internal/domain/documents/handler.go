package documents

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/agenda/internal/domain/scheduling"
	"github.com/clinicdesk/agenda/internal/platform/apperr"
	"github.com/clinicdesk/agenda/internal/platform/blobstore"
	"github.com/clinicdesk/agenda/internal/platform/render"
	"github.com/clinicdesk/agenda/pkg/pagination"
)

// Exporter keeps rendered PDFs in the export folder.
type Exporter interface {
	Put(ctx context.Context, name string, data []byte) (*blobstore.BlobMetadata, error)
}

type Handler struct {
	svc      *Service
	exporter Exporter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// WithExporter enables POST /documents/:id/export.
func (h *Handler) WithExporter(e Exporter) *Handler {
	h.exporter = e
	return h
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/documents", h.ListDocuments)
	api.GET("/documents/types", h.ListTypes)
	api.POST("/documents/template", h.GetTemplate)
	api.GET("/documents/draft", h.GetDraft)
	api.POST("/documents/draft", h.SaveDraft)
	api.POST("/documents/confirm", h.Confirm)
	api.POST("/documents/preview", h.PreviewUnsaved)
	api.POST("/documents/pdf", h.PDFUnsaved)
	api.DELETE("/documents/trash", h.EmptyTrash)

	api.GET("/documents/:id", h.GetDocument)
	api.GET("/documents/:id/preview", h.Preview)
	api.GET("/documents/:id/pdf", h.PDF)
	api.POST("/documents/:id/trash", h.Trash)
	api.POST("/documents/:id/restore", h.Restore)
	api.DELETE("/documents/:id/purge", h.Purge)
	api.DELETE("/documents/:id", h.DeleteDocument)
	if h.exporter != nil {
		api.POST("/documents/:id/export", h.Export)
	}
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// editorRequest is what the document editor posts: the appointment as it
// stands in the form (possibly unsaved) and the document content.
type editorRequest struct {
	Appointment *scheduling.Appointment `json:"appointment"`
	Type        string                  `json:"type"`
	Body        string                  `json:"body"`
	AllowEmpty  bool                    `json:"allowEmpty"`
}

type editorResponse struct {
	Appointment *scheduling.Appointment `json:"appointment"`
	Document    *Document               `json:"document"`
}

func bindEditor(c echo.Context) (*editorRequest, error) {
	var req editorRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return &req, nil
}

// ListDocuments serves ?status=confirmed (default) or ?status=trashed with
// the optional type, patient, from and to filters.
func (h *Handler) ListDocuments(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	f := Filter{
		Type:    c.QueryParam("type"),
		Patient: c.QueryParam("patient"),
		From:    c.QueryParam("from"),
		To:      c.QueryParam("to"),
	}

	var (
		items []*Document
		err   error
	)
	switch c.QueryParam("status") {
	case "", StatusConfirmed:
		items, err = h.svc.ListConfirmed(ctx, f)
	case StatusTrashed:
		items, err = h.svc.ListTrashed(ctx, f)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "status must be confirmed or trashed")
	}
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Of(items, pg))
}

type typeInfo struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

func (h *Handler) ListTypes(c echo.Context) error {
	out := make([]typeInfo, len(Types))
	for i, t := range Types {
		out[i] = typeInfo{Type: t, Label: Label(t)}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetTemplate(c echo.Context) error {
	req, err := bindEditor(c)
	if err != nil {
		return err
	}
	if !ValidType(req.Type) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid document type")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"type":  req.Type,
		"label": Label(req.Type),
		"body":  Template(req.Type, req.Appointment),
	})
}

// GetDraft returns the current draft of ?appointmentId=, or 204 when the
// appointment has none.
func (h *Handler) GetDraft(c echo.Context) error {
	id, err := strconv.ParseInt(c.QueryParam("appointmentId"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointmentId")
	}
	d, err := h.svc.CurrentDraft(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if d == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) SaveDraft(c echo.Context) error {
	req, err := bindEditor(c)
	if err != nil {
		return err
	}
	d, err := h.svc.SaveDraft(c.Request().Context(), req.Appointment, req.Type, req.Body)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, editorResponse{Appointment: req.Appointment, Document: d})
}

// Confirm answers 409 on an empty body, carrying the now saved appointment;
// the client asks the user and posts again with allowEmpty set.
func (h *Handler) Confirm(c echo.Context) error {
	req, err := bindEditor(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Confirm(c.Request().Context(), req.Appointment, req.Type, req.Body, req.AllowEmpty)
	if errors.Is(err, apperr.ErrEmptyBody) {
		return echo.NewHTTPError(http.StatusConflict, map[string]interface{}{
			"message":     err.Error(),
			"appointment": req.Appointment,
		}).SetInternal(err)
	}
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, editorResponse{Appointment: req.Appointment, Document: d})
}

func (h *Handler) GetDocument(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Preview(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	out, err := render.Preview(d.RenderInput())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.HTML(http.StatusOK, out)
}

func (h *Handler) PDF(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	name, data, err := h.svc.PDF(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return sendPDF(c, name, data)
}

func (h *Handler) PreviewUnsaved(c echo.Context) error {
	req, err := bindEditor(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Unsaved(c.Request().Context(), req.Appointment, req.Type, req.Body)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	out, err := render.Preview(d.RenderInput())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.HTML(http.StatusOK, out)
}

func (h *Handler) PDFUnsaved(c echo.Context) error {
	req, err := bindEditor(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Unsaved(c.Request().Context(), req.Appointment, req.Type, req.Body)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	data, err := render.PDF(d.RenderInput())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return sendPDF(c, d.FileName(), data)
}

// Export renders a stored document into the export folder under its
// download name. Exporting again overwrites the file.
func (h *Handler) Export(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	name, data, err := h.svc.PDF(ctx, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	meta, err := h.exporter.Put(ctx, name, data)
	if err != nil {
		return apperr.ToHTTP(apperr.Storage("export pdf", err))
	}
	return c.JSON(http.StatusCreated, meta)
}

func sendPDF(c echo.Context, name string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, blobstore.Attachment(name))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

func (h *Handler) Trash(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Trash(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Restore(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Restore(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Purge(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Purge(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteDocument trashes or hard-deletes depending on the profile and
// reports which one happened.
func (h *Handler) DeleteDocument(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	trashed, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"trashed": trashed})
}

func (h *Handler) EmptyTrash(c echo.Context) error {
	n, err := h.svc.EmptyTrash(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"purged": n})
}

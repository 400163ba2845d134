package workbench

import (
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
	api.GET("/workbench", h.Initial)
	api.POST("/workbench/:action", h.Dispatch)
}

// actionRequest carries the current state plus the argument of the action.
type actionRequest struct {
	State State  `json:"state"`
	Route string `json:"route"`
	Date  string `json:"date"`
	Delta int    `json:"delta"`
	ID    int64  `json:"id"`
}

func (h *Handler) Initial(c echo.Context) error {
	return c.JSON(http.StatusOK, outcome(h.svc.Initial(), ViewCalendar, ViewDay))
}

// Dispatch runs one action on the posted state.
func (h *Handler) Dispatch(c echo.Context) error {
	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	var (
		out *Outcome
		err error
	)
	switch c.Param("action") {
	case "navigate":
		out, err = h.svc.Navigate(req.State, req.Route)
	case "select-date":
		out, err = h.svc.SelectDate(req.State, req.Date)
	case "shift-month":
		out, err = h.svc.ShiftMonth(req.State, req.Delta)
	case "today":
		out, err = h.svc.Today(req.State)
	case "new-appointment":
		out, err = h.svc.NewAppointment(req.State)
	case "open-appointment":
		out, err = h.svc.OpenAppointment(ctx, req.State, req.ID)
	case "close-editor":
		out, err = h.svc.CloseEditor(req.State)
	case "toggle-trash":
		out, err = h.svc.ToggleTrash(req.State)
	case "save-appointment":
		out, err = h.svc.SaveAppointment(ctx, req.State)
	case "delete-appointment":
		out, err = h.svc.DeleteAppointment(ctx, req.State)
	default:
		return echo.NewHTTPError(http.StatusNotFound, "unknown action")
	}
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, out)
}

package scheduling

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
	"github.com/clinicdesk/agenda/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/new", h.NewAppointment)
	api.POST("/appointments/procedures", h.EditProcedures)
	api.GET("/appointments/:id", h.GetAppointment)
	api.POST("/appointments", h.CreateAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)

	api.GET("/calendar/:month", h.GetCalendar)
	api.GET("/calendar/:month/days", h.GetCalendarDays)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// ListAppointments serves ?date= (one day), ?from=&to= (range), ?patient=
// (history) or, without filters, every appointment.
func (h *Handler) ListAppointments(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	var (
		items []*Appointment
		err   error
	)
	switch {
	case c.QueryParam("date") != "":
		items, err = h.svc.ListDay(ctx, c.QueryParam("date"))
	case c.QueryParam("from") != "" || c.QueryParam("to") != "":
		items, err = h.svc.ListRange(ctx, c.QueryParam("from"), c.QueryParam("to"))
	case c.QueryParam("patient") != "":
		items, err = h.svc.ListByPatient(ctx, c.QueryParam("patient"))
	default:
		items, err = h.svc.List(ctx)
		if err == nil {
			sortDayDesc(items)
		}
	}
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.Of(items, pg))
}

func (h *Handler) NewAppointment(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.NewAppointment(c.QueryParam("date")))
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = 0
	if err := h.svc.Save(c.Request().Context(), &a); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.ID = id
	if err := h.svc.Save(c.Request().Context(), &a); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type procedureEdit struct {
	Appointment Appointment `json:"appointment"`
	Add         string      `json:"add"`
	Remove      *int        `json:"remove"`
}

// EditProcedures applies an add or remove to the posted appointment and
// returns it. Nothing is persisted.
func (h *Handler) EditProcedures(c echo.Context) error {
	var req procedureEdit
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a := req.Appointment
	if req.Add != "" {
		a.AddProcedure(req.Add)
	}
	if req.Remove != nil {
		a.RemoveProcedure(*req.Remove)
	}
	if a.Procedures == nil {
		a.Procedures = []string{}
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetCalendar(c echo.Context) error {
	cal, err := h.svc.Calendar(c.Request().Context(), c.Param("month"), c.QueryParam("selected"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, cal)
}

func (h *Handler) GetCalendarDays(c echo.Context) error {
	days, err := h.svc.CalendarDays(c.Request().Context(), c.Param("month"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"month": c.Param("month"), "days": days})
}

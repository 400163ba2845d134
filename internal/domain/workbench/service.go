package workbench

import (
	"context"
	"fmt"
	"time"

	"github.com/clinicdesk/agenda/internal/domain/documents"
	"github.com/clinicdesk/agenda/internal/domain/scheduling"
	"github.com/clinicdesk/agenda/internal/platform/apperr"
	"github.com/clinicdesk/agenda/pkg/dates"
)

// Appointments is the appointment manager as seen by the workbench.
type Appointments interface {
	NewAppointment(date string) *scheduling.Appointment
	Get(ctx context.Context, id int64) (*scheduling.Appointment, error)
	Save(ctx context.Context, a *scheduling.Appointment) error
	Delete(ctx context.Context, id int64) error
}

// Drafts yields the draft shown when an appointment is opened.
type Drafts interface {
	CurrentDraft(ctx context.Context, appointmentID int64) (*documents.Document, error)
}

type Service struct {
	appts  Appointments
	drafts Drafts
	now    func() time.Time
}

func NewService(appts Appointments, drafts Drafts) *Service {
	return &Service{appts: appts, drafts: drafts, now: time.Now}
}

func (s *Service) today() string { return dates.Today(s.now()) }

// Initial is the state of a fresh session: the agenda on today.
func (s *Service) Initial() State {
	today := s.today()
	month, _ := dates.MonthOf(today)
	return State{Route: RouteAgenda, SelectedDate: today, CalendarMonth: month}
}

// normalize fills a state coming from a client that omitted fields.
func (s *Service) normalize(st State) State {
	if st.Route == "" {
		st.Route = RouteAgenda
	}
	if !dates.Valid(st.SelectedDate) {
		st.SelectedDate = s.today()
	}
	if _, err := dates.ParseMonth(st.CalendarMonth); err != nil {
		st.CalendarMonth, _ = dates.MonthOf(st.SelectedDate)
	}
	return st
}

func (s *Service) Navigate(st State, route string) (*Outcome, error) {
	views, ok := routeViews[route]
	if !ok {
		return nil, apperr.Validation("route", fmt.Sprintf("unknown route: %s", route))
	}
	st = s.normalize(st)
	st.Route = route
	return outcome(st, views...), nil
}

// SelectDate picks a day and moves the calendar to its month.
func (s *Service) SelectDate(st State, date string) (*Outcome, error) {
	month, err := dates.MonthOf(date)
	if err != nil {
		return nil, apperr.Validation("date", err.Error())
	}
	st = s.normalize(st)
	st.SelectedDate = date
	st.CalendarMonth = month
	return outcome(st, ViewCalendar, ViewDay), nil
}

// ShiftMonth moves the calendar by delta months. The selected day stays.
func (s *Service) ShiftMonth(st State, delta int) (*Outcome, error) {
	st = s.normalize(st)
	month, err := dates.ShiftMonth(st.CalendarMonth, delta)
	if err != nil {
		return nil, apperr.Validation("calendarMonth", err.Error())
	}
	st.CalendarMonth = month
	return outcome(st, ViewCalendar), nil
}

func (s *Service) Today(st State) (*Outcome, error) {
	return s.SelectDate(st, s.today())
}

// NewAppointment opens the editor on an unsaved appointment for the
// selected day.
func (s *Service) NewAppointment(st State) (*Outcome, error) {
	st = s.normalize(st)
	st.Editing = s.appts.NewAppointment(st.SelectedDate)
	st.Draft = nil
	return outcome(st, ViewEditor), nil
}

// OpenAppointment loads an appointment and its current draft into the editor.
func (s *Service) OpenAppointment(ctx context.Context, st State, id int64) (*Outcome, error) {
	a, err := s.appts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := s.drafts.CurrentDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	st = s.normalize(st)
	st.Editing = a
	st.Draft = d
	return outcome(st, ViewEditor), nil
}

func (s *Service) CloseEditor(st State) (*Outcome, error) {
	st = s.normalize(st)
	st.Editing = nil
	st.Draft = nil
	return outcome(st, ViewEditor), nil
}

func (s *Service) ToggleTrash(st State) (*Outcome, error) {
	st = s.normalize(st)
	st.ShowTrash = !st.ShowTrash
	return outcome(st, ViewDocuments), nil
}

// SaveAppointment persists the appointment open in the editor. The editor
// stays open on the saved record.
func (s *Service) SaveAppointment(ctx context.Context, st State) (*Outcome, error) {
	if st.Editing == nil {
		return nil, apperr.Validation("editing", "no appointment is open")
	}
	if err := s.appts.Save(ctx, st.Editing); err != nil {
		return nil, err
	}
	st = s.normalize(st)
	return outcome(st, ViewCalendar, ViewDay, ViewEditor), nil
}

// DeleteAppointment deletes the open appointment, with its drafts, and
// closes the editor. An unsaved appointment is simply discarded.
func (s *Service) DeleteAppointment(ctx context.Context, st State) (*Outcome, error) {
	if st.Editing != nil && st.Editing.ID != 0 {
		if err := s.appts.Delete(ctx, st.Editing.ID); err != nil {
			return nil, err
		}
	}
	st = s.normalize(st)
	st.Editing = nil
	st.Draft = nil
	return outcome(st, ViewCalendar, ViewDay, ViewEditor), nil
}

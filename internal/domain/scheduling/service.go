package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
	"github.com/clinicdesk/agenda/pkg/dates"
)

// DraftPurger removes the draft documents attached to an appointment.
type DraftPurger interface {
	DeleteDrafts(ctx context.Context, appointmentID int64) (int, error)
}

type Service struct {
	repo   Repository
	drafts DraftPurger
	now    func() time.Time
}

func NewService(repo Repository, drafts DraftPurger) *Service {
	return &Service{repo: repo, drafts: drafts, now: time.Now}
}

// NewAppointment returns an unsaved planned appointment on date.
func (s *Service) NewAppointment(date string) *Appointment {
	if date == "" {
		date = dates.Today(s.now())
	}
	return &Appointment{Date: date, Status: StatusPlanned, Procedures: []string{}}
}

// Save validates and persists a, inserting when it has no id. On success a
// carries its id and timestamps.
func (s *Service) Save(ctx context.Context, a *Appointment) error {
	a.normalize()
	if a.PatientName == "" {
		return apperr.Validation("patientName", "is required")
	}
	if !dates.Valid(a.Date) {
		return apperr.Validation("date", "must be YYYY-MM-DD")
	}
	if !validStatuses[a.Status] {
		return apperr.Validation("status", fmt.Sprintf("invalid status: %s", a.Status))
	}

	now := s.now().UTC()
	a.UpdatedAt = now
	if a.ID == 0 {
		a.CreatedAt = now
		return s.repo.Insert(ctx, a)
	}
	if a.CreatedAt.IsZero() {
		// Put replaces the whole row; keep the stored creation time.
		prev, err := s.repo.Get(ctx, a.ID)
		switch {
		case err == nil:
			a.CreatedAt = prev.CreatedAt
		case errors.Is(err, apperr.ErrNotFound):
			a.CreatedAt = now
		default:
			return err
		}
	}
	return s.repo.Put(ctx, a)
}

func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes the drafts linked to the appointment, then the appointment.
// Confirmed and trashed documents stay. The steps are not atomic: if the
// second fails the drafts are already gone.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.drafts.DeleteDrafts(ctx, id); err != nil {
		return fmt.Errorf("delete drafts of appointment %d: %w", id, err)
	}
	return s.repo.Delete(ctx, id)
}

// ListDay returns the appointments of date sorted by time, then patient name.
// Appointments without a time sort first.
func (s *Service) ListDay(ctx context.Context, date string) ([]*Appointment, error) {
	if !dates.Valid(date) {
		return nil, apperr.Validation("date", "must be YYYY-MM-DD")
	}
	items, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	sortDay(items)
	return nonNil(items), nil
}

func (s *Service) List(ctx context.Context) ([]*Appointment, error) {
	items, err := s.repo.List(ctx)
	return nonNil(items), err
}

// ListRange returns the appointments between from and to inclusive, sorted by
// date then time.
func (s *Service) ListRange(ctx context.Context, from, to string) ([]*Appointment, error) {
	if !dates.Valid(from) || !dates.Valid(to) {
		return nil, apperr.Validation("date", "must be YYYY-MM-DD")
	}
	items, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return lessInDay(items[i], items[j])
	})
	return nonNil(items), nil
}

// ListByPatient returns the history of a patient name, newest first.
func (s *Service) ListByPatient(ctx context.Context, name string) ([]*Appointment, error) {
	items, err := s.repo.ListByPatientName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	sortDayDesc(items)
	return nonNil(items), nil
}

// CalendarDays returns the dates of month ("YYYY-MM") holding at least one
// appointment, ascending.
func (s *Service) CalendarDays(ctx context.Context, month string) ([]string, error) {
	first, last, err := dates.MonthRange(month)
	if err != nil {
		return nil, apperr.Validation("month", err.Error())
	}
	items, err := s.repo.ListByDateRange(ctx, first, last)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(items))
	days := []string{}
	for _, a := range items {
		if !seen[a.Date] {
			seen[a.Date] = true
			days = append(days, a.Date)
		}
	}
	sort.Strings(days)
	return days, nil
}

// Calendar builds the month grid with the appointment dots and the selected
// date marked. Padding days from neighbouring months are muted and never
// carry dots.
func (s *Service) Calendar(ctx context.Context, month, selected string) (*Calendar, error) {
	withAppts, err := s.CalendarDays(ctx, month)
	if err != nil {
		return nil, err
	}
	dots := make(map[string]bool, len(withAppts))
	for _, d := range withAppts {
		dots[d] = true
	}

	grid, err := dates.Grid(month)
	if err != nil {
		return nil, apperr.Validation("month", err.Error())
	}
	cal := &Calendar{Month: month}
	var week []CalendarDay
	for _, t := range grid {
		iso := dates.Format(t)
		week = append(week, CalendarDay{
			Date:            iso,
			Day:             t.Day(),
			Muted:           t.Format(dates.MonthLayout) != month,
			Selected:        iso == selected,
			HasAppointments: dots[iso],
		})
		if len(week) == 7 {
			cal.Weeks = append(cal.Weeks, week)
			week = nil
		}
	}
	return cal, nil
}

func sortDay(items []*Appointment) {
	sort.SliceStable(items, func(i, j int) bool { return lessInDay(items[i], items[j]) })
}

func lessInDay(a, b *Appointment) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return strings.ToLower(a.PatientName) < strings.ToLower(b.PatientName)
}

func sortDayDesc(items []*Appointment) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date > items[j].Date
		}
		return lessInDay(items[i], items[j])
	})
}

func nonNil(items []*Appointment) []*Appointment {
	if items == nil {
		return []*Appointment{}
	}
	return items
}

package workbench

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/clinicdesk/agenda/internal/domain/documents"
	"github.com/clinicdesk/agenda/internal/domain/scheduling"
	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

type fakeAppts struct {
	items   map[int64]*scheduling.Appointment
	nextID  int64
	deleted []int64
}

func newFakeAppts() *fakeAppts {
	return &fakeAppts{items: make(map[int64]*scheduling.Appointment)}
}

func (f *fakeAppts) NewAppointment(date string) *scheduling.Appointment {
	return &scheduling.Appointment{Date: date, Status: scheduling.StatusPlanned, Procedures: []string{}}
}

func (f *fakeAppts) Get(_ context.Context, id int64) (*scheduling.Appointment, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppts) Save(_ context.Context, a *scheduling.Appointment) error {
	if a.PatientName == "" {
		return apperr.Validation("patientName", "is required")
	}
	if a.ID == 0 {
		f.nextID++
		a.ID = f.nextID
	}
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAppts) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.items, id)
	return nil
}

type fakeDrafts map[int64]*documents.Document

func (f fakeDrafts) CurrentDraft(_ context.Context, id int64) (*documents.Document, error) {
	return f[id], nil
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *fakeAppts, fakeDrafts) {
	appts, drafts := newFakeAppts(), fakeDrafts{}
	svc := NewService(appts, drafts)
	svc.now = func() time.Time { return fixedNow }
	return svc, appts, drafts
}

func TestService_Initial(t *testing.T) {
	svc, _, _ := newTestService()
	want := State{Route: RouteAgenda, SelectedDate: "2024-03-10", CalendarMonth: "2024-03"}
	if got := svc.Initial(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestService_Navigate(t *testing.T) {
	svc, _, _ := newTestService()
	tests := []struct {
		route string
		views []View
	}{
		{RouteAgenda, []View{ViewCalendar, ViewDay}},
		{RoutePatients, []View{ViewPatients}},
		{RouteDocuments, []View{ViewDocuments}},
		{RouteSettings, []View{}},
	}
	for _, tt := range tests {
		out, err := svc.Navigate(svc.Initial(), tt.route)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.route, err)
		}
		if out.State.Route != tt.route || !reflect.DeepEqual(out.Render, tt.views) {
			t.Errorf("%s: unexpected outcome %+v", tt.route, out)
		}
	}

	_, err := svc.Navigate(svc.Initial(), "relatorios")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestService_SelectDateAndShiftMonth(t *testing.T) {
	svc, _, _ := newTestService()

	out, err := svc.SelectDate(svc.Initial(), "2024-01-31")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if out.State.SelectedDate != "2024-01-31" || out.State.CalendarMonth != "2024-01" {
		t.Errorf("unexpected state %+v", out.State)
	}

	out, err = svc.ShiftMonth(out.State, -1)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if out.State.CalendarMonth != "2023-12" || out.State.SelectedDate != "2024-01-31" {
		t.Errorf("unexpected state %+v", out.State)
	}
	if !reflect.DeepEqual(out.Render, []View{ViewCalendar}) {
		t.Errorf("unexpected render list %v", out.Render)
	}

	out, _ = svc.Today(out.State)
	if out.State.SelectedDate != "2024-03-10" || out.State.CalendarMonth != "2024-03" {
		t.Errorf("today: unexpected state %+v", out.State)
	}

	if _, err := svc.SelectDate(svc.Initial(), "10/03/2024"); err == nil {
		t.Error("expected an invalid date to be rejected")
	}
}

func TestService_NormalizesEmptyState(t *testing.T) {
	svc, _, _ := newTestService()
	out, err := svc.ToggleTrash(State{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := State{Route: RouteAgenda, SelectedDate: "2024-03-10", CalendarMonth: "2024-03", ShowTrash: true}
	if !reflect.DeepEqual(out.State, want) {
		t.Errorf("expected %+v, got %+v", want, out.State)
	}
}

func TestService_EditorLifecycle(t *testing.T) {
	svc, appts, drafts := newTestService()
	ctx := context.Background()
	st, _ := svc.SelectDate(svc.Initial(), "2024-03-15")

	out, _ := svc.NewAppointment(st.State)
	if out.State.Editing == nil || out.State.Editing.Date != "2024-03-15" || out.State.Editing.ID != 0 {
		t.Fatalf("expected an unsaved appointment on the selected day, got %+v", out.State.Editing)
	}

	if _, err := svc.SaveAppointment(ctx, out.State); err == nil {
		t.Fatal("expected a validation error without a patient")
	}

	out.State.Editing.PatientName = "Ana"
	out, err := svc.SaveAppointment(ctx, out.State)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	id := out.State.Editing.ID
	if id == 0 || appts.items[id] == nil {
		t.Fatal("expected the appointment to be stored")
	}
	if !reflect.DeepEqual(out.Render, []View{ViewCalendar, ViewDay, ViewEditor}) {
		t.Errorf("unexpected render list %v", out.Render)
	}

	out, _ = svc.CloseEditor(out.State)
	if out.State.Editing != nil || out.State.Draft != nil {
		t.Error("expected the editor to be cleared")
	}

	drafts[id] = &documents.Document{ID: 9, AppointmentID: id, Status: documents.StatusDraft}
	out, err = svc.OpenAppointment(ctx, out.State, id)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if out.State.Editing.PatientName != "Ana" || out.State.Draft == nil || out.State.Draft.ID != 9 {
		t.Errorf("unexpected editor state %+v", out.State)
	}

	out, err = svc.DeleteAppointment(ctx, out.State)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(appts.deleted) != 1 || appts.deleted[0] != id || out.State.Editing != nil {
		t.Errorf("expected appointment %d deleted and editor closed", id)
	}
}

func TestService_DeleteUnsavedAppointment(t *testing.T) {
	svc, appts, _ := newTestService()
	out, _ := svc.NewAppointment(svc.Initial())

	out, err := svc.DeleteAppointment(context.Background(), out.State)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appts.deleted) != 0 || out.State.Editing != nil {
		t.Error("an unsaved appointment is only discarded")
	}
}

func TestService_OpenAppointment_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.OpenAppointment(context.Background(), svc.Initial(), 42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

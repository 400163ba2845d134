package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

type mockRepo struct {
	items  map[int64]*Appointment
	nextID int64
	log    *[]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64]*Appointment), log: &[]string{}}
}

func clone(a *Appointment) *Appointment {
	cp := *a
	cp.Procedures = append([]string(nil), a.Procedures...)
	return &cp
}

func (m *mockRepo) Insert(_ context.Context, a *Appointment) error {
	m.nextID++
	a.ID = m.nextID
	m.items[a.ID] = clone(a)
	return nil
}

func (m *mockRepo) Put(_ context.Context, a *Appointment) error {
	m.items[a.ID] = clone(a)
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	*m.log = append(*m.log, "appointment")
	delete(m.items, id)
	return nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return clone(a), nil
}

func (m *mockRepo) filter(keep func(*Appointment) bool) []*Appointment {
	var out []*Appointment
	for _, a := range m.items {
		if keep(a) {
			out = append(out, clone(a))
		}
	}
	return out
}

func (m *mockRepo) List(_ context.Context) ([]*Appointment, error) {
	return m.filter(func(*Appointment) bool { return true }), nil
}

func (m *mockRepo) ListByDate(_ context.Context, date string) ([]*Appointment, error) {
	return m.filter(func(a *Appointment) bool { return a.Date == date }), nil
}

func (m *mockRepo) ListByDateRange(_ context.Context, from, to string) ([]*Appointment, error) {
	return m.filter(func(a *Appointment) bool { return a.Date >= from && a.Date <= to }), nil
}

func (m *mockRepo) ListByPatientName(_ context.Context, name string) ([]*Appointment, error) {
	return m.filter(func(a *Appointment) bool { return a.PatientName == name }), nil
}

func (m *mockRepo) Clear(_ context.Context) error {
	m.items = make(map[int64]*Appointment)
	return nil
}

type fakePurger struct {
	log    *[]string
	purged []int64
	err    error
}

func (f *fakePurger) DeleteDrafts(_ context.Context, appointmentID int64) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	*f.log = append(*f.log, "drafts")
	f.purged = append(f.purged, appointmentID)
	return 1, nil
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *mockRepo, *fakePurger) {
	repo := newMockRepo()
	purger := &fakePurger{log: repo.log}
	svc := NewService(repo, purger)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, purger
}

func TestService_NewAppointment(t *testing.T) {
	svc, repo, _ := newTestService()

	a := svc.NewAppointment("2024-03-15")
	if a.ID != 0 || a.Date != "2024-03-15" || a.Status != StatusPlanned || len(a.Procedures) != 0 {
		t.Errorf("unexpected new appointment %+v", a)
	}
	if len(repo.items) != 0 {
		t.Error("a new appointment must not be persisted")
	}

	if today := svc.NewAppointment(""); today.Date != "2024-03-10" {
		t.Errorf("expected today's date, got %q", today.Date)
	}
}

func TestService_Save_Insert(t *testing.T) {
	svc, repo, _ := newTestService()
	a := svc.NewAppointment("2024-03-15")
	a.PatientName = "  Maria  "

	if err := svc.Save(context.Background(), a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if a.PatientName != "Maria" {
		t.Errorf("expected trimmed name, got %q", a.PatientName)
	}
	if !a.CreatedAt.Equal(fixedNow) || !a.UpdatedAt.Equal(fixedNow) {
		t.Error("expected timestamps to be stamped")
	}
	if len(repo.items) != 1 {
		t.Errorf("expected 1 stored appointment, got %d", len(repo.items))
	}
}

func TestService_Save_Update(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	a := &Appointment{Date: "2024-03-15", PatientName: "Maria"}
	svc.Save(ctx, a)

	a.Status = StatusDone
	a.AddProcedure("Restauração")
	if err := svc.Save(ctx, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.items) != 1 {
		t.Errorf("update must not create a second row, got %d", len(repo.items))
	}
	got, _ := svc.Get(ctx, a.ID)
	if got.Status != StatusDone || len(got.Procedures) != 1 {
		t.Errorf("unexpected stored appointment %+v", got)
	}
}

func TestService_Save_UpdateKeepsCreatedAt(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	a := &Appointment{Date: "2024-03-15", PatientName: "Maria"}
	if err := svc.Save(ctx, a); err != nil {
		t.Fatal(err)
	}

	later := fixedNow.Add(48 * time.Hour)
	svc.now = func() time.Time { return later }
	update := &Appointment{ID: a.ID, Date: "2024-03-16", PatientName: "Maria"}
	if err := svc.Save(ctx, update); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := repo.items[a.ID]
	if !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("expected stored createdAt %v, got %v", fixedNow, got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("expected updatedAt %v, got %v", later, got.UpdatedAt)
	}

	fresh := &Appointment{ID: 77, Date: "2024-03-16", PatientName: "Ana"}
	if err := svc.Save(ctx, fresh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fresh.CreatedAt.Equal(later) {
		t.Errorf("unknown id should be stamped now, got %v", fresh.CreatedAt)
	}
}

func TestService_Save_Validation(t *testing.T) {
	svc, repo, _ := newTestService()
	tests := []struct {
		name  string
		appt  Appointment
		field string
	}{
		{"missing patient", Appointment{Date: "2024-03-15", PatientName: " "}, "patientName"},
		{"bad date", Appointment{Date: "15/03/2024", PatientName: "Ana"}, "date"},
		{"bad status", Appointment{Date: "2024-03-15", PatientName: "Ana", Status: "cancelado"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.appt
			err := svc.Save(context.Background(), &a)
			var ve *apperr.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, ve.Field)
			}
		})
	}
	if len(repo.items) != 0 {
		t.Error("nothing should be written on validation failure")
	}
}

func TestService_Delete_PurgesDraftsFirst(t *testing.T) {
	svc, repo, purger := newTestService()
	ctx := context.Background()
	a := &Appointment{Date: "2024-03-15", PatientName: "Maria"}
	svc.Save(ctx, a)

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(purger.purged) != 1 || purger.purged[0] != a.ID {
		t.Errorf("expected drafts of %d to be purged, got %v", a.ID, purger.purged)
	}
	if got := *repo.log; len(got) != 2 || got[0] != "drafts" || got[1] != "appointment" {
		t.Errorf("expected drafts then appointment, got %v", got)
	}
	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Delete_PurgeFailureKeepsAppointment(t *testing.T) {
	svc, repo, purger := newTestService()
	ctx := context.Background()
	a := &Appointment{Date: "2024-03-15", PatientName: "Maria"}
	svc.Save(ctx, a)

	purger.err = apperr.Storage("delete drafts", errors.New("locked"))
	err := svc.Delete(ctx, a.ID)
	var se *apperr.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if _, ok := repo.items[a.ID]; !ok {
		t.Error("appointment must remain when the draft purge fails")
	}
}

func TestService_ListDay_Sorted(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	for _, a := range []Appointment{
		{Date: "2024-03-15", Time: "14:00", PatientName: "Bruno"},
		{Date: "2024-03-15", Time: "09:00", PatientName: "Carla"},
		{Date: "2024-03-15", Time: "09:00", PatientName: "Ana"},
		{Date: "2024-03-15", PatientName: "Zeca"},
		{Date: "2024-03-16", Time: "08:00", PatientName: "Outro dia"},
	} {
		a := a
		svc.Save(ctx, &a)
	}

	items, err := svc.ListDay(ctx, "2024-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Zeca", "Ana", "Carla", "Bruno"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, name := range want {
		if items[i].PatientName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, items[i].PatientName)
		}
	}

	empty, err := svc.ListDay(ctx, "2024-01-01")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %v (%v)", empty, err)
	}
}

func TestService_CalendarDays(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	for _, d := range []string{"2024-03-20", "2024-03-05", "2024-03-20", "2024-04-01", "2024-02-29"} {
		svc.Save(ctx, &Appointment{Date: d, PatientName: "Ana"})
	}

	days, err := svc.CalendarDays(ctx, "2024-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 || days[0] != "2024-03-05" || days[1] != "2024-03-20" {
		t.Errorf("unexpected days %v", days)
	}

	if _, err := svc.CalendarDays(ctx, "março"); err == nil {
		t.Error("expected error for malformed month")
	}
}

func TestService_Calendar(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	svc.Save(ctx, &Appointment{Date: "2024-03-05", PatientName: "Ana"})
	svc.Save(ctx, &Appointment{Date: "2024-02-26", PatientName: "Bruno"})

	cal, err := svc.Calendar(ctx, "2024-03", "2024-03-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cal.Weeks) != 6 {
		t.Fatalf("expected 6 weeks for March 2024, got %d", len(cal.Weeks))
	}

	first := cal.Weeks[0][0]
	if first.Date != "2024-02-25" || !first.Muted {
		t.Errorf("expected muted padding day first, got %+v", first)
	}
	feb26 := cal.Weeks[0][1]
	if feb26.HasAppointments {
		t.Error("padding days never carry dots")
	}

	var found bool
	for _, w := range cal.Weeks {
		for _, d := range w {
			if d.Date == "2024-03-05" {
				found = true
				if !d.HasAppointments || !d.Selected || d.Muted {
					t.Errorf("unexpected cell %+v", d)
				}
			}
		}
	}
	if !found {
		t.Error("expected 2024-03-05 in the grid")
	}
}

func TestService_ListByPatient(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	svc.Save(ctx, &Appointment{Date: "2024-01-10", PatientName: "Ana"})
	svc.Save(ctx, &Appointment{Date: "2024-03-10", PatientName: "Ana"})
	svc.Save(ctx, &Appointment{Date: "2024-02-10", PatientName: "Bruno"})

	items, err := svc.ListByPatient(ctx, " Ana ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].Date != "2024-03-10" {
		t.Errorf("expected newest first, got %+v", items)
	}
}

package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

type mockRepo struct {
	items  map[int64]*Patient
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64]*Patient)}
}

func (m *mockRepo) Insert(_ context.Context, p *Patient) error {
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockRepo) Put(_ context.Context, p *Patient) error {
	if p.ID > m.nextID {
		m.nextID = p.ID
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) Get(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.items {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockRepo) ListByName(_ context.Context, name string) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.items {
		if p.Name == name {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockRepo) Clear(_ context.Context) error {
	m.items = make(map[int64]*Patient)
	return nil
}

func newTestService() *Service {
	svc := NewService(newMockRepo())
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_Save_Create(t *testing.T) {
	svc := newTestService()
	p := &Patient{Name: "  Maria Silva ", Contact: " 9199 "}
	if err := svc.Save(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if p.Name != "Maria Silva" || p.Contact != "9199" {
		t.Errorf("expected trimmed fields, got %+v", p)
	}
	if p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Error("expected createdAt and updatedAt to be stamped")
	}
}

func TestService_Save_NameRequired(t *testing.T) {
	svc := newTestService()
	err := svc.Save(context.Background(), &Patient{Name: "   "})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	items, _ := svc.List(context.Background(), "")
	if len(items) != 0 {
		t.Error("nothing should be written on validation failure")
	}
}

func TestService_Save_UpdateKeepsCreatedAt(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p := &Patient{Name: "Maria"}
	svc.Save(ctx, p)
	created := p.CreatedAt

	svc.now = func() time.Time { return created.Add(time.Hour) }
	upd := &Patient{ID: p.ID, Name: "Maria Souza"}
	if err := svc.Save(ctx, upd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !upd.CreatedAt.Equal(created) {
		t.Errorf("expected createdAt %v to be kept, got %v", created, upd.CreatedAt)
	}
	if !upd.UpdatedAt.After(created) {
		t.Error("expected updatedAt to advance")
	}
}

func TestService_List_SortedAndFiltered(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for _, n := range []string{"carla", "Ana", "Bruno", "ana"} {
		svc.Save(ctx, &Patient{Name: n})
	}

	items, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Ana", "ana", "Bruno", "carla"}
	for i, p := range items {
		if p.Name != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], p.Name)
		}
	}

	filtered, _ := svc.List(ctx, "AN")
	if len(filtered) != 2 {
		t.Errorf("expected 2 matches for 'AN', got %d", len(filtered))
	}

	none, _ := svc.List(ctx, "zzz")
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", none)
	}
}

func TestService_DeleteIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	p := &Patient{Name: "Maria"}
	svc.Save(ctx, p)

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

package patient

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Save inserts a patient when ID is zero and replaces it otherwise.
func (s *Service) Save(ctx context.Context, p *Patient) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Contact = strings.TrimSpace(p.Contact)
	p.Notes = strings.TrimSpace(p.Notes)
	if p.Name == "" {
		return apperr.Validation("name", "is required")
	}

	now := s.now().UTC()
	p.UpdatedAt = now
	if p.ID == 0 {
		p.CreatedAt = now
		return s.repo.Insert(ctx, p)
	}
	if p.CreatedAt.IsZero() {
		if old, err := s.repo.Get(ctx, p.ID); err == nil {
			p.CreatedAt = old.CreatedAt
		} else {
			p.CreatedAt = now
		}
	}
	return s.repo.Put(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes the patient only; appointments and documents keep their
// copy of the name.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// List returns patients sorted by name, optionally narrowed to names
// containing q (case-insensitive).
func (s *Service) List(ctx context.Context, q string) ([]*Patient, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
		items = lo.Filter(items, func(p *Patient, _ int) bool {
			return strings.Contains(strings.ToLower(p.Name), q)
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].ID < items[j].ID
	})
	if items == nil {
		items = []*Patient{}
	}
	return items, nil
}

func (s *Service) FindByName(ctx context.Context, name string) ([]*Patient, error) {
	return s.repo.ListByName(ctx, strings.TrimSpace(name))
}

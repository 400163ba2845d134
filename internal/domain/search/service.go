// Package search finds appointments and confirmed documents by free text.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/clinicdesk/agenda/internal/domain/documents"
	"github.com/clinicdesk/agenda/internal/domain/scheduling"
)

// Limit caps each result group.
const Limit = 5

type AppointmentLister interface {
	List(ctx context.Context) ([]*scheduling.Appointment, error)
}

type DocumentLister interface {
	ListConfirmed(ctx context.Context, f documents.Filter) ([]*documents.Document, error)
}

type Result struct {
	Query        string                    `json:"query"`
	Appointments []*scheduling.Appointment `json:"appointments"`
	Documents    []*documents.Document     `json:"documents"`
}

type Service struct {
	appts AppointmentLister
	docs  DocumentLister
}

func NewService(appts AppointmentLister, docs DocumentLister) *Service {
	return &Service{appts: appts, docs: docs}
}

// Search matches q case-insensitively against appointment patient names,
// notes and procedures, and against confirmed document patient names, bodies
// and types. Newest dates come first. A blank query matches nothing.
func (s *Service) Search(ctx context.Context, q string) (*Result, error) {
	q = strings.TrimSpace(q)
	res := &Result{
		Query:        q,
		Appointments: []*scheduling.Appointment{},
		Documents:    []*documents.Document{},
	}
	if q == "" {
		return res, nil
	}
	needle := strings.ToLower(q)
	has := func(v string) bool { return strings.Contains(strings.ToLower(v), needle) }

	appts, err := s.appts.List(ctx)
	if err != nil {
		return nil, err
	}
	appts = lo.Filter(appts, func(a *scheduling.Appointment, _ int) bool {
		return has(a.PatientName) || has(a.Notes) || lo.SomeBy(a.Procedures, has)
	})
	sort.SliceStable(appts, func(i, j int) bool {
		if appts[i].Date != appts[j].Date {
			return appts[i].Date > appts[j].Date
		}
		return appts[i].ID > appts[j].ID
	})
	res.Appointments = append(res.Appointments, lo.Slice(appts, 0, Limit)...)

	docs, err := s.docs.ListConfirmed(ctx, documents.Filter{})
	if err != nil {
		return nil, err
	}
	docs = lo.Filter(docs, func(d *documents.Document, _ int) bool {
		return has(d.PatientName) || has(d.Body) || has(d.Type)
	})
	res.Documents = append(res.Documents, lo.Slice(docs, 0, Limit)...)
	return res, nil
}

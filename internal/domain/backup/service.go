package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/agenda/internal/domain/documents"
	"github.com/clinicdesk/agenda/internal/domain/patient"
	"github.com/clinicdesk/agenda/internal/domain/profile"
	"github.com/clinicdesk/agenda/internal/domain/scheduling"
	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

// ProfileStore is the part of the profile service a backup needs.
type ProfileStore interface {
	Get(ctx context.Context) (*profile.Profile, error)
	Replace(ctx context.Context, raw json.RawMessage) (*profile.Profile, error)
}

type Service struct {
	profiles     ProfileStore
	patients     patient.Repository
	appointments scheduling.Repository
	documents    documents.Repository
	logger       zerolog.Logger
	now          func() time.Time
}

func NewService(profiles ProfileStore, patients patient.Repository, appointments scheduling.Repository,
	docs documents.Repository, logger zerolog.Logger) *Service {
	return &Service{
		profiles:     profiles,
		patients:     patients,
		appointments: appointments,
		documents:    docs,
		logger:       logger.With().Str("component", "backup").Logger(),
		now:          time.Now,
	}
}

// Export reads every collection. Rows are returned in storage order.
func (s *Service) Export(ctx context.Context) (*Payload, error) {
	p, err := s.profiles.Get(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	pats, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	appts, err := s.appointments.List(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &Payload{
		ExportedAt:   s.now().UTC(),
		Version:      Version,
		Profile:      raw,
		Patients:     nonNil(pats),
		Appointments: nonNil(appts),
		Documents:    nonNil(docs),
	}
	s.logger.Info().
		Int("patients", len(out.Patients)).
		Int("appointments", len(out.Appointments)).
		Int("documents", len(out.Documents)).
		Msg("backup exported")
	return out, nil
}

// WriteTo encodes an export as indented JSON.
func (s *Service) WriteTo(ctx context.Context, w io.Writer) error {
	payload, err := s.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// Decode parses a whole backup. Malformed input is an ImportError.
func Decode(r io.Reader) (*Payload, error) {
	var p Payload
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return nil, apperr.Import(fmt.Errorf("decode backup: %w", err))
	}
	if p.Version > Version {
		return nil, apperr.Import(fmt.Errorf("unsupported backup version %d", p.Version))
	}
	return &p, nil
}

// Import merges a backup into the store. The payload is decoded in full
// before anything is written. Records with an id replace the stored record
// with that id, records without one are inserted. Nothing is deleted, so a
// failed import can simply be run again.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	p, err := Decode(r)
	if err != nil {
		return nil, err
	}
	res, err := s.apply(ctx, p)
	if err != nil {
		s.logger.Error().Err(err).Interface("written", res).Msg("backup import stopped")
		return res, err
	}
	s.logger.Info().Interface("written", res).Msg("backup imported")
	return res, nil
}

func (s *Service) apply(ctx context.Context, p *Payload) (*Result, error) {
	res := &Result{}
	if hasProfile(p.Profile) {
		if _, err := s.profiles.Replace(ctx, p.Profile); err != nil {
			return res, err
		}
		res.Profile = true
	}

	for _, item := range p.Patients {
		if item == nil {
			continue
		}
		if err := upsert(ctx, item.ID, item, s.patients.Put, s.patients.Insert); err != nil {
			return res, err
		}
		res.Patients++
	}
	for _, item := range p.Appointments {
		if item == nil {
			continue
		}
		if item.Procedures == nil {
			item.Procedures = []string{}
		}
		if err := upsert(ctx, item.ID, item, s.appointments.Put, s.appointments.Insert); err != nil {
			return res, err
		}
		res.Appointments++
	}
	for _, item := range p.Documents {
		if item == nil {
			continue
		}
		if err := upsert(ctx, item.ID, item, s.documents.Put, s.documents.Insert); err != nil {
			return res, err
		}
		res.Documents++
	}
	return res, nil
}

func upsert[T any](ctx context.Context, id int64, item T, put, insert func(context.Context, T) error) error {
	if id > 0 {
		return put(ctx, item)
	}
	return insert(ctx, item)
}

// Wipe clears patients, appointments and documents. Settings are kept.
func (s *Service) Wipe(ctx context.Context) error {
	if err := s.documents.Clear(ctx); err != nil {
		return err
	}
	if err := s.appointments.Clear(ctx); err != nil {
		return err
	}
	if err := s.patients.Clear(ctx); err != nil {
		return err
	}
	s.logger.Warn().Msg("all records wiped")
	return nil
}

func (s *Service) FileName() string {
	return FileName(s.now())
}

func hasProfile(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

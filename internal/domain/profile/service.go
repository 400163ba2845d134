package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

type Service struct {
	settings SettingsRepository
}

func NewService(settings SettingsRepository) *Service {
	return &Service{settings: settings}
}

// Get loads the stored profile over the defaults, so fields missing from an
// older stored record keep their default value. The first call persists the
// defaults.
func (s *Service) Get(ctx context.Context) (*Profile, error) {
	raw, err := s.settings.Get(ctx, SettingsKey)
	if errors.Is(err, apperr.ErrNotFound) {
		p := Defaults()
		if err := s.put(ctx, &p); err != nil {
			return nil, err
		}
		return &p, nil
	}
	if err != nil {
		return nil, err
	}

	p, err := decode(raw)
	if err != nil {
		return nil, apperr.Storage("decode profile", err)
	}
	return p, nil
}

// Save trims and stores the whole profile.
func (s *Service) Save(ctx context.Context, p *Profile) error {
	p.trim()
	if p.WhatsApp != "" && !validWhatsApp(p.WhatsApp) {
		return apperr.Validation("whatsapp", "invalid phone number")
	}
	return s.put(ctx, p)
}

// Replace overwrites the profile wholesale with raw, default-filled. Used by
// backup import; the number is not validated so old backups always load.
func (s *Service) Replace(ctx context.Context, raw json.RawMessage) (*Profile, error) {
	p, err := decode(raw)
	if err != nil {
		return nil, apperr.Import(fmt.Errorf("profile: %w", err))
	}
	if err := s.put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Snapshot captures the frozen subset of the live profile.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return p.Snapshot(), nil
}

// TrashEnabled reports the live enableTrash flag.
func (s *Service) TrashEnabled(ctx context.Context) (bool, error) {
	p, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return p.EnableTrash, nil
}

func (s *Service) put(ctx context.Context, p *Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return s.settings.Put(ctx, SettingsKey, raw)
}

func decode(raw json.RawMessage) (*Profile, error) {
	p := Defaults()
	if len(raw) == 0 {
		return &p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

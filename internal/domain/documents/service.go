package documents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/clinicdesk/agenda/internal/domain/profile"
	"github.com/clinicdesk/agenda/internal/domain/scheduling"
	"github.com/clinicdesk/agenda/internal/platform/apperr"
)

// AppointmentSaver persists an appointment, assigning its id on first save.
type AppointmentSaver interface {
	Save(ctx context.Context, a *scheduling.Appointment) error
}

// ProfileSource yields the live practitioner profile.
type ProfileSource interface {
	Get(ctx context.Context) (*profile.Profile, error)
}

// Recorder is told about every lifecycle transition that reached the store.
type Recorder interface {
	DocumentEvent(event string, n int)
}

// Lifecycle events passed to Recorder.
const (
	EventDraftSaved = "draft_saved"
	EventConfirmed  = "confirmed"
	EventTrashed    = "trashed"
	EventRestored   = "restored"
	EventPurged     = "purged"
)

type nopRecorder struct{}

func (nopRecorder) DocumentEvent(string, int) {}

type Service struct {
	repo     Repository
	appts    AppointmentSaver
	profiles ProfileSource
	events   Recorder
	now      func() time.Time
}

func NewService(repo Repository, appts AppointmentSaver, profiles ProfileSource) *Service {
	return &Service{repo: repo, appts: appts, profiles: profiles, events: nopRecorder{}, now: time.Now}
}

// SetRecorder installs r as the lifecycle event sink. A nil r disables it.
func (s *Service) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	s.events = r
}

// ensureAppointment saves a when it has never been persisted so documents
// can point at its id.
func (s *Service) ensureAppointment(ctx context.Context, a *scheduling.Appointment) error {
	if a == nil {
		return apperr.Validation("appointment", "is required")
	}
	if a.ID != 0 {
		return nil
	}
	return s.appts.Save(ctx, a)
}

func (s *Service) snapshot(ctx context.Context) (profile.Snapshot, error) {
	p, err := s.profiles.Get(ctx)
	if err != nil {
		return profile.Snapshot{}, err
	}
	return p.Snapshot(), nil
}

func (s *Service) trashEnabled(ctx context.Context) (bool, error) {
	p, err := s.profiles.Get(ctx)
	if err != nil {
		return false, err
	}
	return p.EnableTrash, nil
}

// SaveDraft writes the editor content into the current draft of the
// appointment, creating the draft when there is none. Repeated calls keep
// rewriting the same row.
func (s *Service) SaveDraft(ctx context.Context, a *scheduling.Appointment, docType, body string) (*Document, error) {
	if !ValidType(docType) {
		return nil, apperr.Validation("type", fmt.Sprintf("invalid document type: %s", docType))
	}
	if err := s.ensureAppointment(ctx, a); err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	drafts, err := s.repo.ListByAppointment(ctx, a.ID, StatusDraft)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	d := latest(drafts)
	isNew := d == nil
	if isNew {
		d = &Document{Status: StatusDraft, AppointmentID: a.ID, CreatedAt: now}
	}
	d.Type = docType
	d.Body = body
	d.PatientName = a.PatientName
	d.Date = a.Date
	d.Snapshot = snap
	d.UpdatedAt = now

	if isNew {
		err = s.repo.Insert(ctx, d)
	} else {
		err = s.repo.Put(ctx, d)
	}
	if err != nil {
		return nil, err
	}
	s.events.DocumentEvent(EventDraftSaved, 1)
	return d, nil
}

// CurrentDraft returns the most recently updated draft of the appointment,
// or nil when it has none.
func (s *Service) CurrentDraft(ctx context.Context, appointmentID int64) (*Document, error) {
	drafts, err := s.repo.ListByAppointment(ctx, appointmentID, StatusDraft)
	if err != nil {
		return nil, err
	}
	return latest(drafts), nil
}

// Confirm issues a new official document from the editor content with a
// fresh snapshot of the live profile. Existing drafts are left untouched.
// An unsaved appointment is saved first. An empty body then returns
// apperr.ErrEmptyBody unless allowEmpty is set or the document is a
// prescription; the appointment keeps its new id so the retry reuses it.
func (s *Service) Confirm(ctx context.Context, a *scheduling.Appointment, docType, body string, allowEmpty bool) (*Document, error) {
	if !ValidType(docType) {
		return nil, apperr.Validation("type", fmt.Sprintf("invalid document type: %s", docType))
	}
	if err := s.ensureAppointment(ctx, a); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" && docType != TypeReceita && !allowEmpty {
		return nil, apperr.ErrEmptyBody
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	d := &Document{
		Type:          docType,
		Status:        StatusConfirmed,
		AppointmentID: a.ID,
		Date:          a.Date,
		PatientName:   a.PatientName,
		Body:          body,
		Snapshot:      snap,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, err
	}
	s.events.DocumentEvent(EventConfirmed, 1)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Document, error) {
	return s.repo.Get(ctx, id)
}

// Trash moves a confirmed document to the trash.
func (s *Service) Trash(ctx context.Context, id int64) (*Document, error) {
	enabled, err := s.trashEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, apperr.ErrTrashDisabled
	}
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != StatusConfirmed {
		return nil, fmt.Errorf("trash %s document %d: %w", d.Status, id, apperr.ErrInvalidTransition)
	}

	now := s.now().UTC()
	d.Status = StatusTrashed
	d.TrashedAt = &now
	if err := s.repo.Put(ctx, d); err != nil {
		return nil, err
	}
	s.events.DocumentEvent(EventTrashed, 1)
	return d, nil
}

// Restore returns a trashed document to the official record. TrashedAt is
// kept as history.
func (s *Service) Restore(ctx context.Context, id int64) (*Document, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status != StatusTrashed {
		return nil, fmt.Errorf("restore %s document %d: %w", d.Status, id, apperr.ErrInvalidTransition)
	}
	d.Status = StatusConfirmed
	if err := s.repo.Put(ctx, d); err != nil {
		return nil, err
	}
	s.events.DocumentEvent(EventRestored, 1)
	return d, nil
}

// Purge permanently deletes a trashed document.
func (s *Service) Purge(ctx context.Context, id int64) error {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if d.Status != StatusTrashed {
		return fmt.Errorf("purge %s document %d: %w", d.Status, id, apperr.ErrInvalidTransition)
	}
	return s.HardDelete(ctx, id)
}

// HardDelete removes a document regardless of its status.
func (s *Service) HardDelete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.DocumentEvent(EventPurged, 1)
	return nil
}

// Delete trashes the document when the trash is enabled and hard-deletes it
// otherwise. It reports whether the document went to the trash.
func (s *Service) Delete(ctx context.Context, id int64) (trashed bool, err error) {
	enabled, err := s.trashEnabled(ctx)
	if err != nil {
		return false, err
	}
	if enabled {
		if _, err := s.Trash(ctx, id); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, s.HardDelete(ctx, id)
}

// EmptyTrash purges every trashed document and returns how many were removed.
func (s *Service) EmptyTrash(ctx context.Context) (int, error) {
	trashed, err := s.repo.ListByStatus(ctx, StatusTrashed)
	if err != nil {
		return 0, err
	}
	for i, d := range trashed {
		if err := s.repo.Delete(ctx, d.ID); err != nil {
			s.events.DocumentEvent(EventPurged, i)
			return i, err
		}
	}
	s.events.DocumentEvent(EventPurged, len(trashed))
	return len(trashed), nil
}

// ListConfirmed returns the official documents matching f, newest date first
// and, within a date, most recently created first.
func (s *Service) ListConfirmed(ctx context.Context, f Filter) ([]*Document, error) {
	return s.list(ctx, StatusConfirmed, f)
}

// ListTrashed returns the trashed documents matching f. It is always empty
// while the trash is disabled.
func (s *Service) ListTrashed(ctx context.Context, f Filter) ([]*Document, error) {
	enabled, err := s.trashEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return []*Document{}, nil
	}
	return s.list(ctx, StatusTrashed, f)
}

func (s *Service) list(ctx context.Context, status string, f Filter) ([]*Document, error) {
	docs, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	docs = lo.Filter(docs, func(d *Document, _ int) bool { return f.match(d) })
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return docs, nil
}

// DraftPurger deletes the drafts of an appointment directly through the
// repository. It lets the appointment manager cascade deletes without
// depending on this service.
type DraftPurger struct {
	repo Repository
}

func NewDraftPurger(repo Repository) *DraftPurger {
	return &DraftPurger{repo: repo}
}

func (p *DraftPurger) DeleteDrafts(ctx context.Context, appointmentID int64) (int, error) {
	drafts, err := p.repo.ListByAppointment(ctx, appointmentID, StatusDraft)
	if err != nil {
		return 0, err
	}
	for i, d := range drafts {
		if err := p.repo.Delete(ctx, d.ID); err != nil {
			return i, err
		}
	}
	return len(drafts), nil
}

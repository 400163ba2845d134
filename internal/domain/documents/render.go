package documents

import (
	"context"
	"fmt"

	"github.com/clinicdesk/agenda/internal/domain/scheduling"
	"github.com/clinicdesk/agenda/internal/platform/apperr"
	"github.com/clinicdesk/agenda/internal/platform/render"
)

// contactTypes may print the practitioner phone in the footer.
var contactTypes = map[string]bool{
	TypeRecibo:    true,
	TypeOrcamento: true,
	TypeFicha:     true,
}

// RenderInput converts a stored document into render input. Practitioner
// data comes from the document snapshot.
func (d *Document) RenderInput() render.Input {
	return render.Input{
		Label:       Label(d.Type),
		Body:        d.Body,
		PatientName: d.PatientName,
		Date:        d.Date,
		Snapshot:    d.Snapshot,
		ShowContact: contactTypes[d.Type],
	}
}

// FileName is the download name of the document PDF.
func (d *Document) FileName() string {
	return render.FileName(Label(d.Type), d.PatientName, d.Date)
}

// PDF renders a stored document.
func (s *Service) PDF(ctx context.Context, id int64) (name string, data []byte, err error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	data, err = render.PDF(d.RenderInput())
	if err != nil {
		return "", nil, fmt.Errorf("render document %d: %w", id, err)
	}
	return d.FileName(), data, nil
}

// Unsaved builds the document the editor currently shows, with a snapshot of
// the live profile, without persisting anything.
func (s *Service) Unsaved(ctx context.Context, a *scheduling.Appointment, docType, body string) (*Document, error) {
	if !ValidType(docType) {
		return nil, apperr.Validation("type", fmt.Sprintf("invalid document type: %s", docType))
	}
	if a == nil {
		return nil, apperr.Validation("appointment", "is required")
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &Document{
		Type:          docType,
		AppointmentID: a.ID,
		Date:          a.Date,
		PatientName:   a.PatientName,
		Body:          body,
		Snapshot:      snap,
	}, nil
}

// Package backup exports every collection into one JSON document and merges
// such a document back into the store.
package backup

import (
	"encoding/json"
	"time"

	"github.com/clinicdesk/agenda/internal/domain/documents"
	"github.com/clinicdesk/agenda/internal/domain/patient"
	"github.com/clinicdesk/agenda/internal/domain/scheduling"
)

// Version is the payload format written by Export.
const Version = 1

// Payload is the backup file format. Profile stays raw on the way in so the
// profile store can default-fill it.
type Payload struct {
	ExportedAt   time.Time                 `json:"exportedAt"`
	Version      int                       `json:"version"`
	Profile      json.RawMessage           `json:"profile,omitempty"`
	Patients     []*patient.Patient        `json:"patients"`
	Appointments []*scheduling.Appointment `json:"appointments"`
	Documents    []*documents.Document     `json:"documents"`
}

// Result counts what an import wrote.
type Result struct {
	Profile      bool `json:"profile"`
	Patients     int  `json:"patients"`
	Appointments int  `json:"appointments"`
	Documents    int  `json:"documents"`
}

// FileName is the download name of a backup taken at t.
func FileName(t time.Time) string {
	return "backup_agenda_" + t.Format("2006-01-02") + ".json"
}

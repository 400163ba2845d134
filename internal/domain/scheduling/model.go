package scheduling

import (
	"strings"
	"time"
)

const (
	StatusPlanned     = "planejado"
	StatusDone        = "realizado"
	StatusNoShow      = "faltou"
	StatusRescheduled = "remarcado"
)

var validStatuses = map[string]bool{
	StatusPlanned: true, StatusDone: true, StatusNoShow: true, StatusRescheduled: true,
}

// Appointment is one visit on the agenda. PatientName is a copy typed by the
// user, not a reference into the patient registry.
type Appointment struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Date        string    `json:"date" gorm:"not null;index"`
	Time        string    `json:"time"`
	PatientName string    `json:"patientName" gorm:"not null;index"`
	Status      string    `json:"status" gorm:"not null"`
	Ficha       string    `json:"ficha"`
	Procedures  []string  `json:"procedures" gorm:"serializer:json"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// AddProcedure appends text to the procedure list; blank text is ignored.
func (a *Appointment) AddProcedure(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	a.Procedures = append(a.Procedures, text)
}

// RemoveProcedure drops the procedure at index i; out of range is a no-op.
func (a *Appointment) RemoveProcedure(i int) {
	if i < 0 || i >= len(a.Procedures) {
		return
	}
	a.Procedures = append(a.Procedures[:i:i], a.Procedures[i+1:]...)
}

func (a *Appointment) normalize() {
	a.Date = strings.TrimSpace(a.Date)
	a.Time = strings.TrimSpace(a.Time)
	a.PatientName = strings.TrimSpace(a.PatientName)
	a.Status = strings.TrimSpace(a.Status)
	a.Ficha = strings.TrimSpace(a.Ficha)
	a.Notes = strings.TrimSpace(a.Notes)
	if a.Status == "" {
		a.Status = StatusPlanned
	}
	if a.Procedures == nil {
		a.Procedures = []string{}
	}
}

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date            string `json:"date"`
	Day             int    `json:"day"`
	Muted           bool   `json:"muted"`
	Selected        bool   `json:"selected"`
	HasAppointments bool   `json:"hasAppointments"`
}

// Calendar is a Sunday-first month grid.
type Calendar struct {
	Month string          `json:"month"`
	Weeks [][]CalendarDay `json:"weeks"`
}

// Package workbench models the application state the UI carries between
// actions. Every action takes a State and returns the next one together with
// the views that must re-render.
package workbench

import (
	"github.com/clinicdesk/agenda/internal/domain/documents"
	"github.com/clinicdesk/agenda/internal/domain/scheduling"
)

const (
	RouteAgenda    = "agenda"
	RoutePatients  = "pacientes"
	RouteDocuments = "documentos"
	RouteSettings  = "config"
)

// View names a screen region the client re-renders.
type View string

const (
	ViewCalendar  View = "calendar"
	ViewDay       View = "day"
	ViewPatients  View = "patients"
	ViewDocuments View = "documents"
	ViewEditor    View = "editor"
)

var routeViews = map[string][]View{
	RouteAgenda:    {ViewCalendar, ViewDay},
	RoutePatients:  {ViewPatients},
	RouteDocuments: {ViewDocuments},
	RouteSettings:  {},
}

// State is the whole UI state. Editing is the appointment open in the
// editor, possibly unsaved; Draft is its current document draft.
type State struct {
	Route         string                  `json:"route"`
	SelectedDate  string                  `json:"selectedDate"`
	CalendarMonth string                  `json:"calendarMonth"`
	Editing       *scheduling.Appointment `json:"editing,omitempty"`
	Draft         *documents.Document     `json:"draft,omitempty"`
	ShowTrash     bool                    `json:"showTrash"`
}

// Outcome is what every action returns.
type Outcome struct {
	State  State  `json:"state"`
	Render []View `json:"render"`
}

func outcome(s State, views ...View) *Outcome {
	if views == nil {
		views = []View{}
	}
	return &Outcome{State: s, Render: views}
}

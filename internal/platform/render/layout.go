// Package render turns a document and its profile snapshot into the printed
// layout, an HTML preview and a PDF.
package render

import (
	"regexp"
	"strings"

	"github.com/clinicdesk/agenda/internal/domain/profile"
	"github.com/clinicdesk/agenda/pkg/dates"
)

// Input is everything needed to print a document. Practitioner data comes
// from the snapshot only, never from the live profile.
type Input struct {
	Label       string
	Body        string
	PatientName string
	Date        string
	Snapshot    profile.Snapshot
	// ShowContact is set for document types that may print the phone.
	ShowContact bool
}

// Layout is the ordered content shared by the preview and the PDF.
type Layout struct {
	Header []string
	Label  string
	Body   string
	Footer []string
}

// Build computes the layout: header lines from the snapshot, the label, the
// body, then the footer (address lines, optional contact, date).
func Build(in Input) Layout {
	s := in.Snapshot
	l := Layout{
		Header: []string{s.Name, s.CRO, s.Title, s.Spec},
		Label:  in.Label,
		Body:   in.Body,
	}
	if s.Address != "" {
		l.Footer = append(l.Footer, strings.Split(s.Address, "\n")...)
	}
	if in.ShowContact && s.ShowPhoneInPDF && s.Phone != "" {
		l.Footer = append(l.Footer, "Contato: "+s.Phone)
	}
	l.Footer = append(l.Footer, dates.Pretty(in.Date))
	return l
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-_ ]`)
	spaces      = regexp.MustCompile(`\s+`)
)

// FileName returns "{label}_{patient}_{date}.pdf" with the patient name
// reduced to ASCII letters, digits, dashes and underscores.
func FileName(label, patientName, date string) string {
	name := patientName
	if name == "" {
		name = "Paciente"
	}
	name = strings.TrimSpace(unsafeChars.ReplaceAllString(name, ""))
	name = spaces.ReplaceAllString(name, "_")
	return label + "_" + name + "_" + date + ".pdf"
}

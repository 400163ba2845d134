package documents

import (
	"strings"
	"time"

	"github.com/clinicdesk/agenda/internal/domain/profile"
	"github.com/clinicdesk/agenda/internal/domain/scheduling"
)

const (
	TypeReceita   = "receita"
	TypeAtestado  = "atestado"
	TypeRecibo    = "recibo"
	TypeOrcamento = "orcamento"
	TypeLaudo     = "laudo"
	TypeFicha     = "ficha"
)

const (
	StatusDraft     = "draft"
	StatusConfirmed = "confirmed"
	StatusTrashed   = "trashed"
)

var labels = map[string]string{
	TypeReceita:   "Receita",
	TypeAtestado:  "Atestado",
	TypeRecibo:    "Recibo",
	TypeOrcamento: "Orçamento",
	TypeLaudo:     "Laudo",
	TypeFicha:     "Ficha Clínica",
}

// Types lists the document types in menu order.
var Types = []string{TypeReceita, TypeAtestado, TypeRecibo, TypeOrcamento, TypeLaudo, TypeFicha}

func ValidType(t string) bool {
	_, ok := labels[t]
	return ok
}

// Label returns the printed title of a document type.
func Label(t string) string {
	if l, ok := labels[t]; ok {
		return l
	}
	return "Documento"
}

// Document is a clinical document. Only confirmed documents are part of the
// official record; drafts are editor scratch space and trashed documents are
// recoverable until purged. AppointmentID and PatientName are copies taken
// when the document was written.
type Document struct {
	ID            int64            `json:"id" gorm:"primaryKey"`
	Type          string           `json:"type" gorm:"not null;index"`
	Status        string           `json:"status" gorm:"not null;index;index:idx_documents_appointment_status,priority:2"`
	AppointmentID int64            `json:"appointmentId" gorm:"not null;default:0;index:idx_documents_appointment_status,priority:1"`
	Date          string           `json:"date" gorm:"index"`
	PatientName   string           `json:"patientName" gorm:"index"`
	Body          string           `json:"body"`
	Snapshot      profile.Snapshot `json:"snapshot" gorm:"serializer:json"`
	CreatedAt     time.Time        `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time        `json:"updatedAt" gorm:"autoUpdateTime:false"`
	TrashedAt     *time.Time       `json:"trashedAt,omitempty"`
}

// Filter narrows document listings. Empty fields do not filter; From and To
// are inclusive.
type Filter struct {
	Type    string
	Patient string
	From    string
	To      string
}

func (f Filter) match(d *Document) bool {
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if p := strings.ToLower(strings.TrimSpace(f.Patient)); p != "" &&
		!strings.Contains(strings.ToLower(d.PatientName), p) {
		return false
	}
	if f.From != "" && d.Date < f.From {
		return false
	}
	if f.To != "" && d.Date > f.To {
		return false
	}
	return true
}

const blankName = "________________________________"

// Template returns the default body of a document type for an appointment.
func Template(docType string, a *scheduling.Appointment) string {
	name := blankName
	var procs []string
	if a != nil {
		if n := strings.TrimSpace(a.PatientName); n != "" {
			name = n
		}
		procs = a.Procedures
	}

	switch docType {
	case TypeReceita:
		return "\n\n\n"
	case TypeAtestado:
		return "Atesto para os devidos fins que " + name +
			" esteve sob meus cuidados profissionais nesta data.\n\n" +
			"Recomenda-se afastamento por ____ dia(s), a contar de ____/____/____.\n"
	case TypeRecibo:
		return "Recebi de " + name + " a quantia de R$ ____________, referente a: ________________________________.\n\n" +
			"Forma de pagamento: ___________________.\n"
	case TypeOrcamento:
		list := "- __________________________________"
		if len(procs) > 0 {
			lines := make([]string, len(procs))
			for i, p := range procs {
				lines[i] = "- " + p
			}
			list = strings.Join(lines, "\n")
		}
		return "Orçamento para " + name + ":\n\n" + list + "\n\nValor total: R$ ____________\nValidade: ____ dias.\n"
	case TypeLaudo:
		return "Laudo clínico referente a " + name + ":\n\n" +
			"Descrever achados, exames, hipótese diagnóstica e conduta.\n"
	case TypeFicha:
		return "Ficha clínica (resumo) de " + name + ":\n\n" +
			"Queixa principal: _______________________\n" +
			"Histórico: ______________________________\n" +
			"Observações: ____________________________\n"
	}
	return ""
}

// latest returns the most recently updated document, the highest id winning
// ties, or nil.
func latest(docs []*Document) *Document {
	var cur *Document
	for _, d := range docs {
		if cur == nil || d.UpdatedAt.After(cur.UpdatedAt) ||
			(d.UpdatedAt.Equal(cur.UpdatedAt) && d.ID > cur.ID) {
			cur = d
		}
	}
	return cur
}

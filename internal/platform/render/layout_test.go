package render

import (
	"reflect"
	"testing"

	"github.com/clinicdesk/agenda/internal/domain/profile"
)

func testSnapshot() profile.Snapshot {
	return profile.Snapshot{
		Name:           "Dra. Ana Souza",
		CRO:            "CRO-PA 1234",
		Title:          "Cirurgiã-Dentista",
		Spec:           "Ortodontia",
		Address:        "Rua A, 10\nBelém - PA",
		Phone:          "(91) 3222-0000",
		ShowPhoneInPDF: true,
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name       string
		in         Input
		wantFooter []string
	}{
		{
			name:       "contact shown",
			in:         Input{Label: "Recibo", Date: "2024-03-15", Snapshot: testSnapshot(), ShowContact: true},
			wantFooter: []string{"Rua A, 10", "Belém - PA", "Contato: (91) 3222-0000", "15/03/2024"},
		},
		{
			name:       "type without contact",
			in:         Input{Label: "Receita", Date: "2024-03-15", Snapshot: testSnapshot()},
			wantFooter: []string{"Rua A, 10", "Belém - PA", "15/03/2024"},
		},
		{
			name: "phone hidden by preference",
			in: func() Input {
				s := testSnapshot()
				s.ShowPhoneInPDF = false
				return Input{Label: "Recibo", Date: "2024-03-15", Snapshot: s, ShowContact: true}
			}(),
			wantFooter: []string{"Rua A, 10", "Belém - PA", "15/03/2024"},
		},
		{
			name:       "empty address",
			in:         Input{Label: "Laudo", Date: "2024-03-15"},
			wantFooter: []string{"15/03/2024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Build(tt.in)
			if !reflect.DeepEqual(l.Footer, tt.wantFooter) {
				t.Errorf("footer: expected %q, got %q", tt.wantFooter, l.Footer)
			}
			if len(l.Header) != 4 {
				t.Fatalf("expected 4 header lines, got %d", len(l.Header))
			}
			if l.Header[0] != tt.in.Snapshot.Name || l.Header[3] != tt.in.Snapshot.Spec {
				t.Errorf("header does not follow the snapshot: %q", l.Header)
			}
			if l.Label != tt.in.Label {
				t.Errorf("expected label %q, got %q", tt.in.Label, l.Label)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		label, patient, date string
		want                 string
	}{
		{"Receita", "Maria Silva", "2024-03-15", "Receita_Maria_Silva_2024-03-15.pdf"},
		{"Recibo", "João  da Conceição", "2024-01-02", "Recibo_Joo_da_Conceio_2024-01-02.pdf"},
		{"Laudo", "", "2024-01-02", "Laudo_Paciente_2024-01-02.pdf"},
		{"Atestado", " Ana/Paula* ", "2024-01-02", "Atestado_AnaPaula_2024-01-02.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.label, tt.patient, tt.date); got != tt.want {
			t.Errorf("FileName(%q, %q, %q) = %q, want %q", tt.label, tt.patient, tt.date, got, tt.want)
		}
	}
}

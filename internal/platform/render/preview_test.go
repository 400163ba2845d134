package render

import (
	"strings"
	"testing"
)

func TestPreview(t *testing.T) {
	out, err := Preview(Input{
		Label:       "Atestado",
		Body:        "Paciente <b>Maria</b> & cia",
		Date:        "2024-03-15",
		Snapshot:    testSnapshot(),
		ShowContact: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "<b>Maria</b>") {
		t.Error("expected body markup to be escaped")
	}
	if !strings.Contains(out, "&lt;b&gt;Maria&lt;/b&gt; &amp; cia") {
		t.Errorf("escaped body missing from preview: %s", out)
	}
	for _, want := range []string{"Dra. Ana Souza", "CRO-PA 1234", "Atestado", "Contato: (91) 3222-0000", "15/03/2024"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected preview to contain %q", want)
		}
	}
}

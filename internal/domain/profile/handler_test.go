package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := NewService(newMockSettingsRepo())
	return NewHandler(svc), echo.New()
}

func TestHandler_GetProfile(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetProfile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var p Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !p.EnableTrash {
		t.Error("expected default profile")
	}
}

func TestHandler_SaveProfile(t *testing.T) {
	h, e := newTestHandler()
	body := `{"name":"Ana Souza","cro":"CRO-PA 1","enableTrash":true}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SaveProfile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	p, _ := h.svc.Get(context.Background())
	if p.Name != "Ana Souza" {
		t.Errorf("expected saved name, got %q", p.Name)
	}
}

func TestHandler_SaveProfile_InvalidWhatsApp(t *testing.T) {
	h, e := newTestHandler()
	body := `{"name":"Ana","whatsapp":"nope"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.SaveProfile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", he.Code)
	}
}

func TestHandler_GetContact(t *testing.T) {
	h, e := newTestHandler()
	h.svc.Save(context.Background(), &Profile{Name: "Ana Souza", WhatsApp: "+5591999873835"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetContact(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["greeting"] != "Bem-vindo, Dr. Ana" {
		t.Errorf("unexpected greeting %q", body["greeting"])
	}
	if body["whatsappLink"] != "https://wa.me/5591999873835" {
		t.Errorf("unexpected link %q", body["whatsappLink"])
	}
}

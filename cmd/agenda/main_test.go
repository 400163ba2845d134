package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/agenda/internal/config"
	"github.com/clinicdesk/agenda/internal/platform/middleware"
	"github.com/clinicdesk/agenda/internal/platform/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:           "0",
		Env:            "test",
		StoreDriver:    config.DriverSQLite,
		SQLitePath:     fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		PDFDir:         t.TempDir(),
		CORSOrigins:    []string{"http://localhost:5173"},
		BodyLimit:      "1M",
		BackupLimit:    "50M",
		RequestTimeout: 5 * time.Second,
		LogLevel:       "info",
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	cfg := testConfig(t)
	logger := zerolog.Nop()
	st, err := openStores(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("openStores() error: %v", err)
	}
	t.Cleanup(st.close)
	return newServer(cfg, st, newServices(st, logger, telemetry.NewProvider(false)), logger)
}

func TestServer_Health(t *testing.T) {
	e := newTestServer(t)

	for _, path := range []string{"/health", "/health/db"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
		if rec.Header().Get(middleware.RequestIDHeader) == "" {
			t.Errorf("GET %s: expected X-Request-ID header", path)
		}
		if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("GET %s: expected security headers", path)
		}
	}
}

func TestServer_ConfirmAndDownload(t *testing.T) {
	e := newTestServer(t)

	body := `{"appointment":{"date":"2024-05-10","patientName":"Maria Silva"},"type":"recibo","body":"Recebi a quantia de R$ 200,00."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/confirm", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("confirm: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Appointment struct {
			ID int64 `json:"id"`
		} `json:"appointment"`
		Document struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"document"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Appointment.ID == 0 {
		t.Error("expected the appointment to be saved first")
	}
	if created.Document.ID == 0 {
		t.Fatal("expected document id")
	}

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/documents/%d/pdf", created.Document.ID), nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("pdf: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "Recibo_Maria_Silva_2024-05-10.pdf") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("expected a PDF body")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/search?q=maria", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", rec.Code)
	}
	var found struct {
		Appointments []json.RawMessage `json:"appointments"`
		Documents    []json.RawMessage `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &found); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(found.Appointments) != 1 || len(found.Documents) != 1 {
		t.Errorf("expected 1 appointment and 1 document, got %d and %d", len(found.Appointments), len(found.Documents))
	}
}

func TestServer_Metrics(t *testing.T) {
	e := newTestServer(t)

	body := `{"appointment":{"date":"2024-05-10","patientName":"Ana"},"type":"atestado","body":"Atesto para os devidos fins."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/confirm", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("confirm: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	out := rec.Body.String()
	for _, want := range []string{
		`agenda_document_events_total{event="confirmed"} 1`,
		`route="/api/v1/documents/confirm"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	e := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_ExportAndList(t *testing.T) {
	e := newTestServer(t)

	body := `{"appointment":{"date":"2024-05-10","patientName":"Joana"},"type":"laudo","body":"Laudo."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/confirm", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("confirm: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Document struct {
			ID int64 `json:"id"`
		} `json:"document"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/documents/%d/export", created.Document.ID), nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("export: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exports", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list exports: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Laudo_Joana_2024-05-10.pdf") {
		t.Errorf("expected the exported file in the listing, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exports/Laudo_Joana_2024-05-10.pdf", nil))
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Errorf("download export: got %d", rec.Code)
	}
}

func setStoreEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("STORE_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "agenda.db"))
	t.Setenv("LOG_LEVEL", "error")
}

func TestRootCmd_BackupExport(t *testing.T) {
	setStoreEnv(t)
	out := filepath.Join(t.TempDir(), "backup.json")

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"backup", "export", out})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("backup export: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("backup is not json: %v", err)
	}
	for _, key := range []string{"exportedAt", "version", "patients", "appointments", "documents"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("backup missing %q", key)
		}
	}
	if !strings.Contains(stdout.String(), out) {
		t.Errorf("expected output to name the file, got %q", stdout.String())
	}
}

func TestRootCmd_WipeRequiresConfirmation(t *testing.T) {
	setStoreEnv(t)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"wipe"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected wipe without --yes to fail")
	}
}

func TestRootCmd_MigrateRejectsSQLite(t *testing.T) {
	setStoreEnv(t)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"migrate", "status"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "STORE_DRIVER") {
		t.Fatalf("expected driver error, got %v", err)
	}
}

func TestRootCmd_RenderRejectsBadID(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"render", "abc"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected invalid id error")
	}
}

package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/db"
	"github.com/minitcraft/minit/internal/ops"
)

const recordJSON = `{
  "Header": {"Title": "PERSATUAN PENDUDUK TAMAN MELATI", "Siri": "3/2024", "Tarikh": "23 Jun 2024", "Jenis": "exco"},
  "Attendance": {"Hadir": [{"siri": "1", "nama": "Ali bin Abu", "jawatan": "Presiden"}], "Tidak Hadir": []},
  "MattersArising": [{"Perkara": "Baiki pagar", "Keputusan": "Pelaksanaan", "Keterangan": "Sebut harga diterima"}],
  "NewMatters": [{"Perkara": "Hari keluarga <b>2025</b>", "Keputusan": "Diluluskan"}]
}`

type testServer struct {
	h       *Handlers
	handler http.Handler
}

func setupTest(t *testing.T) *testServer {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv(config.HomeEnv, tmpDir)
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		t.Fatalf("static sub-FS: %v", err)
	}
	renderer, err := NewRenderer(templateSub, "test")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	h := &Handlers{
		db:       database,
		cfg:      config.DefaultConfig(),
		renderer: renderer,
	}
	return &testServer{h: h, handler: h.routes(staticSub)}
}

// seedMeeting stores recordJSON and returns its ID.
func seedMeeting(t *testing.T, s *testServer) string {
	t.Helper()
	out, err := ops.Store(context.Background(), s.h.db, s.h.cfg, ops.StoreInput{RecordJSON: []byte(recordJSON)})
	if err != nil {
		t.Fatalf("seed meeting: %v", err)
	}
	return out.ID
}

func (s *testServer) get(path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// --- Routing ---

func TestRootRedirects(t *testing.T) {
	s := setupTest(t)

	rec := s.get("/")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/meetings" {
		t.Errorf("Location = %q, want /meetings", loc)
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := setupTest(t)

	rec := s.get("/meetings")
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected X-Frame-Options: DENY")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected X-Content-Type-Options: nosniff")
	}
	if !strings.Contains(rec.Header().Get("Content-Security-Policy"), "default-src 'self'") {
		t.Error("expected restrictive Content-Security-Policy")
	}
}

func TestStaticStylesheet(t *testing.T) {
	s := setupTest(t)

	rec := s.get("/static/style.css")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// --- HandleList ---

func TestHandleList_Default(t *testing.T) {
	s := setupTest(t)
	seedMeeting(t, s)

	rec := s.get("/meetings")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "3/2024") {
		t.Error("expected siri '3/2024' in response")
	}
	if !strings.Contains(body, "Mesyuarat") {
		t.Error("expected page title 'Mesyuarat' in response")
	}
}

func TestHandleList_Empty(t *testing.T) {
	s := setupTest(t)

	rec := s.get("/meetings")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Tiada mesyuarat.") {
		t.Error("expected empty state message")
	}
}

func TestHandleList_JenisFilter(t *testing.T) {
	s := setupTest(t)
	seedMeeting(t, s)

	rec := s.get("/meetings?jenis=agm")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "3/2024") {
		t.Error("exco meeting should not appear under the agm filter")
	}
}

func TestHandleList_InvalidJenis(t *testing.T) {
	s := setupTest(t)

	rec := s.get("/meetings?jenis=board")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleList_InvalidLimitFallsBack(t *testing.T) {
	s := setupTest(t)

	rec := s.get("/meetings?limit=notanumber&offset=bad")
	// Should not error; falls back to defaults
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleList_DeletedMeetingLinks(t *testing.T) {
	s := setupTest(t)
	id := seedMeeting(t, s)
	if _, err := ops.Delete(context.Background(), s.h.db, ops.DeleteInput{ID: id}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	rec := s.get("/meetings?include_deleted=true")
	body := rec.Body.String()
	if !strings.Contains(body, "/meetings/"+id+"?include_deleted=true") {
		t.Error("deleted meeting link should carry include_deleted=true")
	}

	rec = s.get("/meetings")
	if strings.Contains(rec.Body.String(), id) {
		t.Error("deleted meeting should be hidden by default")
	}
}

// --- HandleDetail ---

func TestHandleDetail_RendersMinutes(t *testing.T) {
	s := setupTest(t)
	id := seedMeeting(t, s)

	rec := s.get("/meetings/" + id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "MINIT MESYUARAT JAWATANKUASA EKSEKUTIF") {
		t.Error("expected exco document title")
	}
	if !strings.Contains(body, "Baiki pagar") {
		t.Error("expected matters arising in rendered document")
	}
	if strings.Contains(body, "<b>2025</b>") {
		t.Error("raw HTML in record text must be escaped")
	}
	if !strings.Contains(body, "/meetings/"+id+"/next.json") {
		t.Error("expected link to the next meeting draft")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	s := setupTest(t)

	rec := s.get("/meetings/01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Ralat 404") {
		t.Error("expected error page")
	}
}

// --- Downloads ---

func TestHandleRecord(t *testing.T) {
	s := setupTest(t)
	id := seedMeeting(t, s)

	rec := s.get("/meetings/" + id + "/record.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="3-2024-exco.json"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	var record map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	header := record["Header"].(map[string]any)
	if header["Siri"] != "3/2024" {
		t.Errorf("Siri = %v, want 3/2024", header["Siri"])
	}
}

func TestHandleNextDraft(t *testing.T) {
	s := setupTest(t)
	id := seedMeeting(t, s)

	rec := s.get("/meetings/" + id + "/next.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if src := rec.Header().Get("X-Minit-Matters-Source"); src != "new_matters" {
		t.Errorf("matters source = %q, want new_matters", src)
	}

	var record map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record["Header"].(map[string]any)["Siri"] != "4/2024" {
		t.Errorf("Siri = %v, want 4/2024", record["Header"])
	}

	// The draft is not stored
	list, err := ops.List(context.Background(), s.h.db, ops.ListInput{})
	if err != nil {
		t.Fatal(err)
	}
	if list.Pagination.Total != 1 {
		t.Errorf("total = %d, want 1", list.Pagination.Total)
	}
}

func TestHandleDocument(t *testing.T) {
	s := setupTest(t)
	id := seedMeeting(t, s)

	rec := s.get("/meetings/" + id + "/document/md")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "# MINIT MESYUARAT JAWATANKUASA EKSEKUTIF") {
		t.Error("expected markdown document")
	}

	rec = s.get("/meetings/" + id + "/document/html")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Error("expected standalone html page")
	}
	if !strings.Contains(rec.Header().Get("Content-Security-Policy"), "unsafe-inline") {
		t.Error("standalone page needs its inline stylesheet allowed")
	}

	rec = s.get("/meetings/"+id+"/document/pdf", "Accept", "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// --- Error rendering ---

func TestErrorRendering_JSONError(t *testing.T) {
	s := setupTest(t)

	rec := s.get("/meetings/01ARZ3NDEKTSV4RRFFQ69G5FAV", "Accept", "application/json")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	errObj := payload["error"].(map[string]any)
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("code = %v, want NOT_FOUND", errObj["code"])
	}
}

// --- Lock ---

func TestAcquireLock_Exclusive(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if lock.Path() != filepath.Join(dir, LockFile) {
		t.Errorf("lock path = %q", lock.Path())
	}

	if _, err := AcquireLock(dir); err == nil {
		t.Error("second AcquireLock should fail while the first is held")
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	again, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock after unlock: %v", err)
	}
	_ = again.Unlock()
}

// --- Helpers ---

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"limit=5", 5},
		{"limit=abc", 20},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/meetings?"+tt.query, nil)
		if got := parseIntParam(req, "limit", 20); got != tt.want {
			t.Errorf("parseIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestParseBoolParam(t *testing.T) {
	tests := map[string]bool{
		"":                     false,
		"include_deleted=true": true,
		"include_deleted=1":    true,
		"include_deleted=yes":  false,
	}
	for query, want := range tests {
		req := httptest.NewRequest("GET", "/meetings?"+query, nil)
		if got := parseBoolParam(req, "include_deleted"); got != want {
			t.Errorf("parseBoolParam(%q) = %v, want %v", query, got, want)
		}
	}
}

func TestJenisLabel(t *testing.T) {
	if jenisLabel("EXCO") != "EXCO" || jenisLabel("") != "AGM" {
		t.Error("unexpected jenis labels")
	}
}

package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/db"
	"github.com/minitcraft/minit/internal/errors"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	t.Setenv(config.HomeEnv, tmpDir)
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // Allow temp dirs in tests

	cleanup := func() {
		database.Close()
	}

	return database, cfg, cleanup
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// recordJSON is a finished exco meeting with one open matter arising and
// one new matter.
const recordJSON = `{
  "Header": {"Title": "PERSATUAN PENDUDUK TAMAN MELATI", "Siri": "3/2024", "Tarikh": "23 Jun 2024", "Masa": "9.00 pagi", "Tempat": "Dewan Komuniti", "Jenis": "exco"},
  "Attendance": {
    "Hadir": [{"siri": "1", "nama": "Ali bin Abu", "jawatan": "Presiden", "singkatan": "P"}],
    "Tidak Hadir": []
  },
  "MattersArising": [
    {"Perkara": "Baiki pagar", "Keputusan": "Pelaksanaan", "Keterangan": "Sebut harga diterima"},
    {"Perkara": "Lampu jalan", "Keputusan": "Selesai", "Keterangan": "Sudah dibaiki"}
  ],
  "NewMatters": [{"Perkara": "Hari keluarga", "Keputusan": "Diluluskan", "Keterangan": "Mac 2025"}],
  "Closing": "Mesyuarat ditangguhkan."
}`

// legacyDocument uses the older flat layout with numbered agenda slots.
const legacyDocument = `{
  "Siri": "2/2023",
  "Jenis": "EXCO",
  "Hadir": {"Nama": ["Ali", "Abu"], "Jawatan": ["Presiden", "Naib Presiden"]},
  "Agenda_3": {"Perkara": "PERKARA BERBANGKIT", "Keterangan": "a. **Pagar**. Sudah dibaiki"}
}`

// storeMeeting stores recordJSON and returns the new id.
func storeMeeting(t *testing.T, h *Handlers) string {
	t.Helper()
	result, err := h.HandleStore(context.Background(), makeRequest(map[string]any{"record": recordJSON}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return parseOutput(t, result)["id"].(string)
}

// TestHandleStore tests the store handler.
func TestHandleStore(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	var recordObject map[string]any
	if err := json.Unmarshal([]byte(recordJSON), &recordObject); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name:      "store record as JSON string",
			args:      map[string]any{"record": recordJSON},
			wantError: false,
		},
		{
			name:      "store record as object",
			args:      map[string]any{"record": recordObject},
			wantError: false,
		},
		{
			name:      "store partial record",
			args:      map[string]any{"record": `{"Header": {"Siri": "1/2025"}}`},
			wantError: false,
		},
		{
			name:      "store without record",
			args:      map[string]any{},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name:      "store malformed record",
			args:      map[string]any{"record": `{"Header":`},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := makeRequest(tt.args)
			result, err := h.HandleStore(ctx, req)

			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}

			if tt.wantError {
				if !result.IsError {
					t.Errorf("expected error result, got success")
				}
				if tt.errorCode != "" {
					assertErrorCode(t, result, tt.errorCode)
				}
			} else {
				if result.IsError {
					t.Errorf("expected success, got error: %v", extractErrorMessage(result))
				}
			}
		})
	}
}

func TestHandleStore_TooLarge(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.RecordMaxBytes = 100
	h := NewHandlers(database, cfg)

	result, err := h.HandleStore(context.Background(), makeRequest(map[string]any{"record": recordJSON}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertErrorCode(t, result, "RECORD_TOO_LARGE")
}

// TestHandleNew tests the new handler.
func TestHandleNew(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	t.Run("header fields are applied", func(t *testing.T) {
		result, err := h.HandleNew(ctx, makeRequest(map[string]any{
			"header": map[string]any{"siri": "1/2025", "jenis": "EXCO", "tempat": "Surau"},
		}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if output["siri"] != "1/2025" {
			t.Errorf("siri = %v, want 1/2025", output["siri"])
		}
		if output["jenis"] != "exco" {
			t.Errorf("jenis = %v, want exco", output["jenis"])
		}
	})

	t.Run("no arguments uses defaults", func(t *testing.T) {
		result, err := h.HandleNew(ctx, makeRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if output["jenis"] != "agm" {
			t.Errorf("jenis = %v, want agm", output["jenis"])
		}
	})

	t.Run("invalid jenis", func(t *testing.T) {
		result, err := h.HandleNew(ctx, makeRequest(map[string]any{
			"header": map[string]any{"jenis": "board"},
		}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		assertErrorCode(t, result, "INVALID_REQUEST")
	})
}

// TestHandleFetch tests the fetch handler.
func TestHandleFetch(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()
	id := storeMeeting(t, h)

	tests := []struct {
		name      string
		args      map[string]any
		errorCode string
	}{
		{name: "by id", args: map[string]any{"id": id}},
		{name: "by siri", args: map[string]any{"siri": " 3/2024 "}},
		{name: "by siri and jenis", args: map[string]any{"siri": "3/2024", "jenis": "exco"}},
		{name: "siri with wrong jenis", args: map[string]any{"siri": "3/2024", "jenis": "agm"}, errorCode: "NOT_FOUND"},
		{name: "unknown id", args: map[string]any{"id": "01ARZ3NDEKTSV4RRFFQ69G5FAV"}, errorCode: "NOT_FOUND"},
		{name: "id and siri", args: map[string]any{"id": id, "siri": "3/2024"}, errorCode: "AMBIGUOUS_ADDRESSING"},
		{name: "no address", args: map[string]any{}, errorCode: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleFetch(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if tt.errorCode != "" {
				assertErrorCode(t, result, tt.errorCode)
				return
			}

			output := parseOutput(t, result)
			if output["id"] != id {
				t.Errorf("id = %v, want %v", output["id"], id)
			}
			record, ok := output["record"].(map[string]any)
			if !ok {
				t.Fatal("expected record object in output")
			}
			attendance := record["Attendance"].(map[string]any)
			if _, ok := attendance["Tidak Hadir"]; !ok {
				t.Error("record should use the \"Tidak Hadir\" key")
			}
		})
	}
}

// TestHandleUpdate tests the update handler.
func TestHandleUpdate(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()
	id := storeMeeting(t, h)

	t.Run("header patch", func(t *testing.T) {
		result, err := h.HandleUpdate(ctx, makeRequest(map[string]any{
			"id":     id,
			"header": map[string]any{"siri": "3A/2024"},
		}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if output["siri"] != "3A/2024" {
			t.Errorf("siri = %v, want 3A/2024", output["siri"])
		}
	})

	t.Run("replace record by siri", func(t *testing.T) {
		result, err := h.HandleUpdate(ctx, makeRequest(map[string]any{
			"siri":   "3a/2024",
			"record": `{"Header": {"Siri": "3/2024", "Jenis": "exco"}, "Closing": "Tamat."}`,
		}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if output["siri"] != "3/2024" {
			t.Errorf("siri = %v, want 3/2024", output["siri"])
		}
	})

	t.Run("nothing to update", func(t *testing.T) {
		result, err := h.HandleUpdate(ctx, makeRequest(map[string]any{"id": id}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		assertErrorCode(t, result, "INVALID_REQUEST")
	})
}

// TestHandleDelete tests the delete handler.
func TestHandleDelete(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()
	id := storeMeeting(t, h)

	result, err := h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	if output["deleted"] != true {
		t.Errorf("deleted = %v, want true", output["deleted"])
	}

	// Deleted meetings are hidden from fetch unless requested
	result, _ = h.HandleFetch(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, result, "NOT_FOUND")

	result, _ = h.HandleFetch(ctx, makeRequest(map[string]any{"id": id, "include_deleted": true}))
	output = parseOutput(t, result)
	if output["deleted_at"] == nil {
		t.Error("expected deleted_at to be set")
	}

	// Deleting again is NOT_FOUND
	result, _ = h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, result, "NOT_FOUND")
}

// TestHandleLatest tests the latest handler with contract assertions.
func TestHandleLatest(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	t.Run("empty store returns null", func(t *testing.T) {
		result, err := h.HandleLatest(ctx, makeRequest(map[string]any{}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if output["item"] != nil {
			t.Errorf("item = %v, want nil", output["item"])
		}
	})

	id := storeMeeting(t, h)

	t.Run("include_record:false omits record", func(t *testing.T) {
		result, _ := h.HandleLatest(ctx, makeRequest(map[string]any{}))
		item := parseOutput(t, result)["item"].(map[string]any)
		if item["id"] != id {
			t.Errorf("id = %v, want %v", item["id"], id)
		}
		if _, ok := item["record"]; ok {
			t.Error("record should be omitted by default")
		}
	})

	t.Run("include_record:true includes record", func(t *testing.T) {
		result, _ := h.HandleLatest(ctx, makeRequest(map[string]any{"include_record": true}))
		item := parseOutput(t, result)["item"].(map[string]any)
		if _, ok := item["record"].(map[string]any); !ok {
			t.Error("expected record object")
		}
	})

	t.Run("jenis filter", func(t *testing.T) {
		result, _ := h.HandleLatest(ctx, makeRequest(map[string]any{"jenis": "agm"}))
		output := parseOutput(t, result)
		if output["item"] != nil {
			t.Errorf("item = %v, want nil for agm", output["item"])
		}
	})

	t.Run("invalid jenis", func(t *testing.T) {
		result, _ := h.HandleLatest(ctx, makeRequest(map[string]any{"jenis": "x"}))
		assertErrorCode(t, result, "INVALID_REQUEST")
	})
}

// TestHandleList tests the list handler with contract assertions.
func TestHandleList(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		storeMeeting(t, h)
	}
	deletedID := storeMeeting(t, h)
	if result, _ := h.HandleDelete(ctx, makeRequest(map[string]any{"id": deletedID})); result.IsError {
		t.Fatalf("delete failed: %s", extractErrorMessage(result))
	}

	t.Run("pagination metadata correct", func(t *testing.T) {
		result, _ := h.HandleList(ctx, makeRequest(map[string]any{"limit": 2}))
		output := parseOutput(t, result)

		items := output["items"].([]any)
		if len(items) != 2 {
			t.Errorf("items = %d, want 2", len(items))
		}
		pagination := output["pagination"].(map[string]any)
		if pagination["total"] != float64(3) {
			t.Errorf("total = %v, want 3", pagination["total"])
		}
		if pagination["has_more"] != true {
			t.Errorf("has_more = %v, want true", pagination["has_more"])
		}
		if output["sort"] != "updated_at_desc" {
			t.Errorf("sort = %v, want updated_at_desc", output["sort"])
		}
	})

	t.Run("include_deleted:true includes deleted", func(t *testing.T) {
		result, _ := h.HandleList(ctx, makeRequest(map[string]any{"include_deleted": true}))
		pagination := parseOutput(t, result)["pagination"].(map[string]any)
		if pagination["total"] != float64(4) {
			t.Errorf("total = %v, want 4", pagination["total"])
		}
	})

	t.Run("list never returns record", func(t *testing.T) {
		result, _ := h.HandleList(ctx, makeRequest(map[string]any{}))
		for _, item := range parseOutput(t, result)["items"].([]any) {
			if _, ok := item.(map[string]any)["record"]; ok {
				t.Error("list items should not include record")
			}
		}
	})
}

// TestHandlePurge tests the purge handler.
func TestHandlePurge(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()
	id := storeMeeting(t, h)
	h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))

	// Deleted just now, so nothing is older than a day
	result, _ := h.HandlePurge(ctx, makeRequest(map[string]any{"older_than_days": 1}))
	if parseOutput(t, result)["purged"] != float64(0) {
		t.Error("expected nothing purged with older_than_days=1")
	}

	result, _ = h.HandlePurge(ctx, makeRequest(map[string]any{}))
	output := parseOutput(t, result)
	if output["purged"] != float64(1) {
		t.Errorf("purged = %v, want 1", output["purged"])
	}

	result, _ = h.HandlePurge(ctx, makeRequest(map[string]any{"older_than_days": -1}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

// TestHandleNext tests deriving the next meeting from each source.
func TestHandleNext(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()
	id := storeMeeting(t, h)

	t.Run("from stored meeting", func(t *testing.T) {
		result, err := h.HandleNext(ctx, makeRequest(map[string]any{"id": id}))
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		output := parseOutput(t, result)
		if output["stored"] != true {
			t.Error("expected stored=true")
		}
		if output["previous_id"] != id {
			t.Errorf("previous_id = %v, want %v", output["previous_id"], id)
		}
		record := output["record"].(map[string]any)
		header := record["Header"].(map[string]any)
		if header["Siri"] != "4/2024" {
			t.Errorf("Siri = %v, want 4/2024", header["Siri"])
		}
		matters := record["MattersArising"].([]any)
		if len(matters) != 1 || matters[0].(map[string]any)["Perkara"] != "Hari keluarga" {
			t.Errorf("MattersArising = %v, want the carried new matter", matters)
		}
		report := output["report"].(map[string]any)
		if report["matters_source"] != "new_matters" {
			t.Errorf("matters_source = %v, want new_matters", report["matters_source"])
		}
	})

	t.Run("from legacy document dry run", func(t *testing.T) {
		result, _ := h.HandleNext(ctx, makeRequest(map[string]any{"document": legacyDocument, "dry_run": true}))
		output := parseOutput(t, result)
		if output["stored"] != false {
			t.Error("expected stored=false")
		}
		if _, ok := output["id"]; ok {
			t.Error("dry run should not return an id")
		}
		header := output["record"].(map[string]any)["Header"].(map[string]any)
		if header["Siri"] != "3/2023" {
			t.Errorf("Siri = %v, want 3/2023", header["Siri"])
		}
	})

	t.Run("from yaml document", func(t *testing.T) {
		doc := "Header:\n  Siri: 7/2024\n  Jenis: agm\nNewMatters:\n  - Perkara: Derma\n"
		result, _ := h.HandleNext(ctx, makeRequest(map[string]any{"document": doc, "format": "yaml", "dry_run": true}))
		header := parseOutput(t, result)["record"].(map[string]any)["Header"].(map[string]any)
		if header["Siri"] != "8/2024" {
			t.Errorf("Siri = %v, want 8/2024", header["Siri"])
		}
	})

	t.Run("from path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prev.json")
		if err := os.WriteFile(path, []byte(recordJSON), 0600); err != nil {
			t.Fatal(err)
		}
		result, _ := h.HandleNext(ctx, makeRequest(map[string]any{"path": path, "dry_run": true}))
		header := parseOutput(t, result)["record"].(map[string]any)["Header"].(map[string]any)
		if header["Siri"] != "4/2024" {
			t.Errorf("Siri = %v, want 4/2024", header["Siri"])
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name string
			args map[string]any
			code string
		}{
			{"no source", map[string]any{}, "INVALID_REQUEST"},
			{"two sources", map[string]any{"id": id, "document": legacyDocument}, "INVALID_REQUEST"},
			{"latest with id", map[string]any{"id": id, "latest": true}, "AMBIGUOUS_ADDRESSING"},
			{"bad document", map[string]any{"document": "{not json"}, "INVALID_REQUEST"},
			{"missing file", map[string]any{"path": filepath.Join(t.TempDir(), "none.json")}, "FILE_NOT_FOUND"},
			{"latest agm none", map[string]any{"latest": true, "jenis": "agm"}, "NOT_FOUND"},
		}
		for _, tt := range tests {
			result, err := h.HandleNext(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("%s: handler returned error: %v", tt.name, err)
			}
			if !result.IsError {
				t.Errorf("%s: expected error result", tt.name)
				continue
			}
			assertErrorCode(t, result, tt.code)
		}
	})
}

// TestHandleRenderExport tests the render and export handlers.
func TestHandleRenderExport(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()
	id := storeMeeting(t, h)
	dir := t.TempDir()

	t.Run("render html", func(t *testing.T) {
		path := filepath.Join(dir, "minit.html")
		result, _ := h.HandleRender(ctx, makeRequest(map[string]any{"id": id, "path": path}))
		output := parseOutput(t, result)
		if output["status"] != "ok" {
			t.Fatalf("status = %v, diagnostic = %v", output["status"], output["diagnostic"])
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "MINIT MESYUARAT JAWATANKUASA EKSEKUTIF") {
			t.Error("rendered document is missing the exco title")
		}
	})

	t.Run("render failure is a status", func(t *testing.T) {
		result, _ := h.HandleRender(ctx, makeRequest(map[string]any{"id": id, "path": filepath.Join(dir, "minit.pdf")}))
		output := parseOutput(t, result)
		if output["status"] != "failed" {
			t.Errorf("status = %v, want failed", output["status"])
		}
		if output["diagnostic"] == nil {
			t.Error("expected diagnostic")
		}
	})

	t.Run("export yaml", func(t *testing.T) {
		path := filepath.Join(dir, "minit.yaml")
		result, _ := h.HandleExport(ctx, makeRequest(map[string]any{"siri": "3/2024", "path": path}))
		output := parseOutput(t, result)
		if output["format"] != "yaml" {
			t.Errorf("format = %v, want yaml", output["format"])
		}

		// The export feeds straight back into next
		result, _ = h.HandleNext(ctx, makeRequest(map[string]any{"path": path, "dry_run": true}))
		header := parseOutput(t, result)["record"].(map[string]any)["Header"].(map[string]any)
		if header["Siri"] != "4/2024" {
			t.Errorf("Siri = %v, want 4/2024", header["Siri"])
		}
	})
}

// TestHandleAttendanceImport tests the attendance import handler.
func TestHandleAttendanceImport(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	h := NewHandlers(database, cfg)
	ctx := context.Background()
	id := storeMeeting(t, h)

	csv := "Nama,Jawatan,Hadir,Sebab\nSiti,Setiausaha,ya,\nRamli,AJK,tidak,Sakit\n"
	result, err := h.HandleAttendanceImport(ctx, makeRequest(map[string]any{"id": id, "csv": csv}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	output := parseOutput(t, result)
	if output["added_hadir"] != float64(1) || output["added_tidak_hadir"] != float64(1) {
		t.Errorf("added = %v/%v, want 1/1", output["added_hadir"], output["added_tidak_hadir"])
	}
	if output["hadir"] != float64(2) {
		t.Errorf("hadir = %v, want 2", output["hadir"])
	}

	result, _ = h.HandleAttendanceImport(ctx, makeRequest(map[string]any{"id": id, "csv": "jawatan\nAJK\n"}))
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestServerRegistration(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	s := NewServer(database, cfg, "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	expectedTools := []string{
		"meeting_new",
		"meeting_store",
		"meeting_fetch",
		"meeting_update",
		"meeting_delete",
		"meeting_latest",
		"meeting_list",
		"meeting_purge",
		"meeting_next",
		"meeting_render",
		"meeting_export",
		"meeting_attendance_import",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(expectedTools))
	}

	for _, name := range expectedTools {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = []string{"meeting_purge", "meeting_delete"}
	s := NewServer(database, cfg, "test")
	tools := s.ListTools()

	// Should have 10 tools (12 - 2 disabled)
	if len(tools) != 10 {
		t.Errorf("registered tool count = %d, want 10", len(tools))
	}

	for _, name := range []string{"meeting_purge", "meeting_delete"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}

	for _, name := range []string{"meeting_store", "meeting_fetch", "meeting_next"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("core tool %q should be registered", name)
		}
	}
}

func TestServerRegistration_WithDisabledTypes(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTypes = []string{"meeting"}
	s := NewServer(database, cfg, "test")

	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (type disabled)", len(tools))
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	cfg.DisabledTools = AllToolNames()
	s := NewServer(database, cfg, "test")
	tools := s.ListTools()

	if len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestServerRegistration_DuplicateDisabled(t *testing.T) {
	database, cfg, cleanup := testSetup(t)
	defer cleanup()

	// Duplicates should be handled gracefully (map lookup)
	cfg.DisabledTools = []string{"meeting_purge", "meeting_purge", "meeting_purge"}
	s := NewServer(database, cfg, "test")
	tools := s.ListTools()

	if len(tools) != 11 {
		t.Errorf("registered tool count = %d, want 11", len(tools))
	}

	if _, ok := tools["meeting_purge"]; ok {
		t.Error("disabled tool 'meeting_purge' should not be registered")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{
			name:    "all valid",
			input:   []string{"meeting_purge", "meeting_next"},
			wantLen: 0,
		},
		{
			name:    "one unknown",
			input:   []string{"meeting_purge", "fake_tool"},
			wantLen: 1,
		},
		{
			name:    "all unknown",
			input:   []string{"foo", "bar", "baz"},
			wantLen: 3,
		},
		{
			name:    "empty list",
			input:   []string{},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestValidateDisabledTypes(t *testing.T) {
	if unknown := ValidateDisabledTypes([]string{"meeting", "agenda"}); len(unknown) != 1 || unknown[0] != "agenda" {
		t.Errorf("ValidateDisabledTypes() = %v, want [agenda]", unknown)
	}
}

func TestGetTypeForTool(t *testing.T) {
	tests := map[string]string{
		"meeting_next":              "meeting",
		"meeting_attendance_import": "meeting",
		"purge":                     "",
		"_x":                        "",
	}
	for name, want := range tests {
		if got := GetTypeForTool(name); got != want {
			t.Errorf("GetTypeForTool(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()

	if len(names) != 12 {
		t.Errorf("AllToolNames() returned %d names, want 12", len(names))
	}

	// All returned names should be valid
	unknown := ValidateDisabledTools(names)
	if len(unknown) != 0 {
		t.Errorf("AllToolNames() returned invalid names: %v", unknown)
	}
}

func TestDocumentBytes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", ``, ""},
		{"null", `null`, ""},
		{"object passes through", ` {"a":1} `, `{"a":1}`},
		{"string is unwrapped", `"{\"b\":2,\"a\":1}"`, `{"b":2,"a":1}`},
		{"yaml text", `"Header:\n  Siri: 1/2024\n"`, "Header:\n  Siri: 1/2024\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := documentBytes(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("documentBytes() error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("documentBytes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewInternal(fmt.Errorf("sql error: open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedErrorPreservesContext(t *testing.T) {
	originalErr := errors.NewInvalidRequest("nama is required")
	wrappedErr := fmt.Errorf("row 3: %w", originalErr)

	r := errorResult(wrappedErr)
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	// Should extract the correct code from wrapped error
	if errObj["code"] != string(errors.ErrInvalidRequest) {
		t.Errorf("code=%v, want %v", errObj["code"], errors.ErrInvalidRequest)
	}

	msg := errObj["message"].(string)
	if !strings.Contains(msg, "row 3") {
		t.Errorf("message should contain wrapper context 'row 3', got: %s", msg)
	}
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewNotFound("abc"))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"].(map[string]any)

	if errObj["code"] != string(errors.ErrNotFound) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrNotFound)
	}
	if errObj["message"] != "meeting not found: abc" {
		t.Errorf("message=%v, want unwrapped message", errObj["message"])
	}
	if _, ok := errObj["details"]; !ok {
		t.Fatal("expected non-INTERNAL errors to include details when present")
	}
}

// Helper functions

// parseOutput extracts and unmarshals the JSON output from an MCP result.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return output
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}

	if code != expectedCode {
		t.Errorf("got error code %q, want %q", code, expectedCode)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}

package ops

import (
	"context"
	"testing"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/minutes"
)

func TestUpdate_HeaderPatch(t *testing.T) {
	database, _ := openTestDB(t)
	stored := storeSample(t, database)
	ctx := context.Background()

	output, err := Update(ctx, database, config.DefaultConfig(), UpdateInput{
		ID:     stored.ID,
		Header: HeaderPatch{Tempat: stringPtr("Surau Al-Hidayah")},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if output.ID != stored.ID {
		t.Errorf("ID = %q, want %q", output.ID, stored.ID)
	}

	fetched, err := Fetch(ctx, database, FetchInput{ID: stored.ID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetched.Record.Header.Tempat != "Surau Al-Hidayah" {
		t.Errorf("Tempat = %q", fetched.Record.Header.Tempat)
	}
	if fetched.Record.Header.Siri != "3/2024" {
		t.Errorf("Siri changed to %q", fetched.Record.Header.Siri)
	}
	if fetched.Source != minutes.SourceStore {
		t.Errorf("Source = %q, update must not change it", fetched.Source)
	}
}

func TestUpdate_ReplaceRecordThenPatch(t *testing.T) {
	database, _ := openTestDB(t)
	stored := storeSample(t, database)
	ctx := context.Background()

	output, err := Update(ctx, database, config.DefaultConfig(), UpdateInput{
		Siri:       "3/2024",
		Jenis:      "exco",
		RecordJSON: []byte(`{"Header": {"Siri": "3/2024", "Jenis": "exco"}, "Closing": "Tamat."}`),
		Header:     HeaderPatch{Siri: stringPtr("3A/2024")},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if output.Siri != "3A/2024" {
		t.Errorf("Siri = %q, want %q", output.Siri, "3A/2024")
	}

	fetched, err := Fetch(ctx, database, FetchInput{ID: stored.ID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetched.Record.Closing != "Tamat." {
		t.Errorf("Closing = %q", fetched.Record.Closing)
	}
	if len(fetched.Record.MattersArising) != 0 {
		t.Errorf("record should have been replaced, MattersArising = %d", len(fetched.Record.MattersArising))
	}
	if _, err := Fetch(ctx, database, FetchInput{Siri: "3A/2024"}); err != nil {
		t.Errorf("lookup by new siri failed: %v", err)
	}
}

func TestUpdate_Errors(t *testing.T) {
	database, _ := openTestDB(t)
	stored := storeSample(t, database)
	cfg := config.DefaultConfig()
	ctx := context.Background()

	_, err := Update(ctx, database, cfg, UpdateInput{ID: stored.ID})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("no fields: expected ErrInvalidRequest, got: %v", err)
	}

	_, err = Update(ctx, database, cfg, UpdateInput{ID: "01NONEXISTENT0000000000000", Header: HeaderPatch{Masa: stringPtr("10.00 pagi")}})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing: expected ErrNotFound, got: %v", err)
	}

	if _, err := Delete(ctx, database, DeleteInput{ID: stored.ID}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, err = Update(ctx, database, cfg, UpdateInput{ID: stored.ID, Header: HeaderPatch{Masa: stringPtr("10.00 pagi")}})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("deleted: expected ErrNotFound, got: %v", err)
	}
}

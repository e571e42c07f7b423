package ops

import (
	"context"
	"testing"

	"github.com/minitcraft/minit/internal/errors"
)

func TestDelete_ByID(t *testing.T) {
	database, _ := openTestDB(t)
	stored := storeSample(t, database)
	ctx := context.Background()

	output, err := Delete(ctx, database, DeleteInput{ID: stored.ID})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !output.Deleted || output.ID != stored.ID {
		t.Errorf("output = %+v", output)
	}

	_, err = Delete(ctx, database, DeleteInput{ID: stored.ID})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got: %v", err)
	}
}

func TestDelete_BySiri(t *testing.T) {
	database, _ := openTestDB(t)
	stored := storeSample(t, database)

	output, err := Delete(context.Background(), database, DeleteInput{Siri: "3/2024", Jenis: "exco"})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if output.ID != stored.ID {
		t.Errorf("ID = %q, want %q", output.ID, stored.ID)
	}
}

func TestDelete_Ambiguous(t *testing.T) {
	database, _ := openTestDB(t)

	_, err := Delete(context.Background(), database, DeleteInput{ID: "01ABC", Siri: "3/2024"})
	if !errors.Is(err, errors.ErrAmbiguousAddressing) {
		t.Errorf("expected ErrAmbiguousAddressing, got: %v", err)
	}
}

package ops

import (
	"context"
	"database/sql"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/minutes"
)

// NewInput contains parameters for the New operation.
type NewInput struct {
	Header HeaderPatch
}

// New stores a fresh default record with the given header fields.
func New(ctx context.Context, database *sql.DB, cfg *config.Config, input NewInput) (*StoreOutput, error) {
	rec := minutes.Default()
	if err := input.Header.apply(&rec.Header); err != nil {
		return nil, err
	}

	m, err := insertMeeting(ctx, database, cfg, rec, minutes.SourceNew, nil)
	if err != nil {
		return nil, err
	}
	return storeOutput(m), nil
}

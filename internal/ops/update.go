package ops

import (
	"context"
	"database/sql"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/db"
	"github.com/minitcraft/minit/internal/errors"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	// Addressing
	ID    string
	Siri  string
	Jenis string

	// RecordJSON replaces the whole record when set
	RecordJSON []byte

	// Header is applied after any record replacement
	Header HeaderPatch
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	ID        string `json:"id"`
	Siri      string `json:"siri"`
	Jenis     string `json:"jenis"`
	UpdatedAt int64  `json:"updated_at"`
}

// Update modifies an existing active meeting.
func Update(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateInput) (*UpdateOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Siri, input.Jenis)
	if err != nil {
		return nil, err
	}

	if len(input.RecordJSON) == 0 && input.Header.IsEmpty() {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	m, err := resolveMeeting(ctx, database, addr, false)
	if err != nil {
		return nil, err
	}

	if len(input.RecordJSON) > 0 {
		rec, err := decodeRecord(cfg, input.RecordJSON)
		if err != nil {
			return nil, err
		}
		m.Record = rec
	}
	if err := input.Header.apply(&m.Record.Header); err != nil {
		return nil, err
	}
	if err := checkSize(cfg, m.Record); err != nil {
		return nil, err
	}

	if err := db.UpdateRecord(ctx, database, m); err != nil {
		return nil, err
	}

	return &UpdateOutput{
		ID:        m.ID,
		Siri:      m.Siri,
		Jenis:     m.Jenis,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

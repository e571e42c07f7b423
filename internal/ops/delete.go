package ops

import (
	"context"
	"database/sql"

	"github.com/minitcraft/minit/internal/db"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID    string
	Siri  string
	Jenis string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete soft-deletes a meeting.
func Delete(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Siri, input.Jenis)
	if err != nil {
		return nil, err
	}

	// Resolve to an id first so siri addressing deletes exactly one row
	m, err := resolveMeeting(ctx, database, addr, false)
	if err != nil {
		return nil, err
	}

	if err := db.SoftDelete(ctx, database, m.ID); err != nil {
		return nil, err
	}

	return &DeleteOutput{
		Deleted: true,
		ID:      m.ID,
	}, nil
}

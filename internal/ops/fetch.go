package ops

import (
	"context"
	"database/sql"

	"github.com/minitcraft/minit/internal/minutes"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	Siri           string
	Jenis          string
	IncludeDeleted bool
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	minutes.MeetingSummary
	Record minutes.Record `json:"record"`
}

// Fetch retrieves a meeting by ID or siri.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Siri, input.Jenis)
	if err != nil {
		return nil, err
	}

	m, err := resolveMeeting(ctx, database, addr, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		MeetingSummary: m.ToSummary(),
		Record:         m.Record,
	}, nil
}

package ops

import (
	"context"
	"database/sql"

	"github.com/minitcraft/minit/internal/db"
	"github.com/minitcraft/minit/internal/minutes"
)

// LatestInput contains parameters for the Latest operation.
type LatestInput struct {
	Jenis          string // optional filter: agm or exco
	IncludeRecord  bool   // default: false (summary only)
	IncludeDeleted bool
}

// LatestOutput contains the result of the Latest operation.
type LatestOutput struct {
	Item *LatestItem `json:"item"` // nil if there are no meetings
}

// LatestItem contains the latest meeting with an optional record.
type LatestItem struct {
	minutes.MeetingSummary
	Record *minutes.Record `json:"record,omitempty"` // only if include_record
}

// Latest retrieves the most recently updated meeting.
func Latest(ctx context.Context, database *sql.DB, input LatestInput) (*LatestOutput, error) {
	jenis, err := validateJenis(input.Jenis)
	if err != nil {
		return nil, err
	}

	m, err := db.GetLatest(ctx, database, jenis, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return &LatestOutput{Item: nil}, nil
	}

	item := &LatestItem{MeetingSummary: m.ToSummary()}
	if input.IncludeRecord {
		item.Record = &m.Record
	}
	return &LatestOutput{Item: item}, nil
}

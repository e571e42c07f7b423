package ops

import (
	"context"
	"database/sql"

	"github.com/minitcraft/minit/internal/db"
	"github.com/minitcraft/minit/internal/minutes"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Jenis          string // optional filter: agm or exco
	Limit          int    // default: 20, max: 100
	Offset         int    // default: 0
	IncludeDeleted bool
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []minutes.MeetingSummary `json:"items"`
	Pagination Pagination               `json:"pagination"`
	Sort       string                   `json:"sort"`
}

// List retrieves meeting summaries with pagination.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	jenis, err := validateJenis(input.Jenis)
	if err != nil {
		return nil, err
	}

	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	summaries, total, err := db.List(ctx, database, db.ListFilter{
		Jenis:          jenis,
		Limit:          limit,
		Offset:         offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return nil, err
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}

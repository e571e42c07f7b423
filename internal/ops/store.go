package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/minutes"
)

// StoreInput contains parameters for the Store operation.
type StoreInput struct {
	RecordJSON []byte // required, a full minutes record
}

// Store saves a caller-supplied record as a new meeting. Missing keys take
// their zero value and sequences are completed to empty.
func Store(ctx context.Context, database *sql.DB, cfg *config.Config, input StoreInput) (*StoreOutput, error) {
	rec, err := decodeRecord(cfg, input.RecordJSON)
	if err != nil {
		return nil, err
	}

	m, err := insertMeeting(ctx, database, cfg, rec, minutes.SourceStore, nil)
	if err != nil {
		return nil, err
	}
	return storeOutput(m), nil
}

// decodeRecord parses a record from JSON. The raw size is checked first so
// an oversized payload is rejected before decoding.
func decodeRecord(cfg *config.Config, data []byte) (minutes.Record, error) {
	if len(data) == 0 {
		return minutes.Record{}, errors.NewInvalidRequest("record is required")
	}
	if cfg != nil && cfg.RecordMaxBytes > 0 && len(data) > cfg.RecordMaxBytes {
		return minutes.Record{}, errors.NewRecordTooLarge(cfg.RecordMaxBytes, len(data))
	}

	var rec minutes.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return minutes.Record{}, errors.NewInvalidRequest(fmt.Sprintf("invalid record JSON: %v", err))
	}
	rec.Complete()
	return rec, nil
}

package ops

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/db"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/ingest"
	"github.com/minitcraft/minit/internal/minutes"
)

// Document formats accepted by Next.
const (
	DocumentJSON = "json"
	DocumentYAML = "yaml"
)

// NextInput contains parameters for the Next operation. Exactly one source
// is given: a stored meeting (ID, or Siri optionally narrowed by Jenis), the
// Latest stored meeting (optionally of Jenis), raw Document bytes, or a Path
// to a .json/.yaml file.
type NextInput struct {
	ID    string
	Siri  string
	Jenis string

	Latest bool

	Document       []byte
	DocumentFormat string // json (default) or yaml

	Path string

	// DryRun derives the draft without storing it
	DryRun bool
}

// NextOutput contains the result of the Next operation.
type NextOutput struct {
	ID         string         `json:"id,omitempty"`
	PreviousID *string        `json:"previous_id,omitempty"`
	Stored     bool           `json:"stored"`
	Record     minutes.Record `json:"record"`
	Report     ingest.Report  `json:"report"`
}

// Next derives the next meeting's draft from previous minutes and, unless
// DryRun, stores it with source "ingest". Drafts from a stored meeting keep
// a previous_id link to it.
func Next(ctx context.Context, database *sql.DB, cfg *config.Config, input NextInput) (*NextOutput, error) {
	fromLatest := input.Latest
	fromStore := !fromLatest && (strings.TrimSpace(input.ID) != "" || strings.TrimSpace(input.Siri) != "" || strings.TrimSpace(input.Jenis) != "")
	fromDoc := len(input.Document) > 0
	fromPath := strings.TrimSpace(input.Path) != ""

	if fromLatest && (strings.TrimSpace(input.ID) != "" || strings.TrimSpace(input.Siri) != "") {
		return nil, errors.NewAmbiguousAddressing()
	}

	sources := 0
	for _, b := range []bool{fromStore, fromLatest, fromDoc, fromPath} {
		if b {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.NewInvalidRequest("specify exactly one source: id/siri, latest, document, or path")
	}

	var (
		rec        minutes.Record
		report     ingest.Report
		previousID *string
		err        error
	)
	switch {
	case fromStore, fromLatest:
		prev, err := previousMeeting(ctx, database, input)
		if err != nil {
			return nil, err
		}
		rec, report, err = ingest.FromRecord(prev.Record)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		id := prev.ID
		previousID = &id

	case fromDoc:
		rec, report, err = ingestDocument(cfg, input.Document, input.DocumentFormat)
		if err != nil {
			return nil, err
		}

	case fromPath:
		if err := ValidatePath(input.Path, PathCheckRead, cfg, documentExts...); err != nil {
			return nil, err
		}
		maxBytes := 0
		if cfg != nil {
			maxBytes = cfg.RecordMaxBytes
		}
		data, err := readFileNoFollow(input.Path, maxBytes)
		if err != nil {
			return nil, err
		}
		rec, report, err = ingestDocument(cfg, data, formatFromExt(input.Path))
		if err != nil {
			return nil, err
		}
	}

	logger := slog.Default()
	if report.Unrecognized {
		logger.Warn("previous minutes not recognized, using default record")
	}
	logger.Debug("carried forward minutes",
		"siri", rec.Header.Siri,
		"matters_source", report.MattersSource,
		"matters_arising", report.MattersArising,
		"hadir", report.Hadir,
		"tidak_hadir", report.TidakHadir,
	)

	out := &NextOutput{PreviousID: previousID, Record: rec, Report: report}
	if input.DryRun {
		return out, nil
	}

	m, err := insertMeeting(ctx, database, cfg, rec, minutes.SourceIngest, previousID)
	if err != nil {
		return nil, err
	}
	out.ID = m.ID
	out.Stored = true
	out.Record = m.Record
	return out, nil
}

// previousMeeting loads the stored source meeting of a Next call.
func previousMeeting(ctx context.Context, database *sql.DB, input NextInput) (*minutes.Meeting, error) {
	if !input.Latest {
		addr, err := ValidateAddress(input.ID, input.Siri, input.Jenis)
		if err != nil {
			return nil, err
		}
		return resolveMeeting(ctx, database, addr, false)
	}

	jenis, err := validateJenis(input.Jenis)
	if err != nil {
		return nil, err
	}
	m, err := db.GetLatest(ctx, database, jenis, false)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.NewNotFound("latest meeting")
	}
	return m, nil
}

func ingestDocument(cfg *config.Config, data []byte, format string) (minutes.Record, ingest.Report, error) {
	if cfg != nil && cfg.RecordMaxBytes > 0 && len(data) > cfg.RecordMaxBytes {
		return minutes.Record{}, ingest.Report{}, errors.NewRecordTooLarge(cfg.RecordMaxBytes, len(data))
	}

	var (
		rec    minutes.Record
		report ingest.Report
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", DocumentJSON:
		rec, report, err = ingest.PreviousJSON(data)
	case DocumentYAML, "yml":
		rec, report, err = ingest.PreviousYAML(data)
	default:
		return minutes.Record{}, ingest.Report{}, errors.NewInvalidRequest("document format must be one of: json, yaml")
	}
	if err != nil {
		return minutes.Record{}, ingest.Report{}, errors.NewInvalidRequest(fmt.Sprintf("invalid previous minutes: %v", err))
	}
	return rec, report, nil
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DocumentYAML
	}
	return DocumentJSON
}

package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/minutes"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID             string
	Siri           string
	Jenis          string
	IncludeDeleted bool

	// Path is optional, default: <base>/exports/<siri>-<jenis>.json.
	// The extension (.json, .yaml, .yml) selects the encoding.
	Path string
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Format     string `json:"format"`
	Bytes      int    `json:"bytes"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes a stored meeting's record to a JSON or YAML file. The file
// holds the bare record, so it can be fed back to store or next.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Siri, input.Jenis)
	if err != nil {
		return nil, err
	}
	m, err := resolveMeeting(ctx, database, addr, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	path := input.Path
	if path == "" {
		path, err = defaultOutputPath(m.Siri, m.Jenis, ".json")
		if err != nil {
			return nil, err
		}
	}

	// Validate ALL paths (both user-provided and default); a serial could
	// otherwise smuggle separators into the default name
	if err := ValidatePath(path, PathCheckWrite, cfg, exportExts...); err != nil {
		return nil, err
	}

	format := formatFromExt(path)
	data, err := encodeRecord(m.Record, format)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("export")
	}
	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		ID:         m.ID,
		Path:       path,
		Format:     format,
		Bytes:      len(data),
		ExportedAt: time.Now().Unix(),
	}, nil
}

func encodeRecord(rec minutes.Record, format string) ([]byte, error) {
	switch format {
	case DocumentYAML:
		var b strings.Builder
		enc := yaml.NewEncoder(&b)
		enc.SetIndent(2)
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	case DocumentJSON:
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

package ops

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/render"
)

// Render result statuses.
const (
	RenderOK     = "ok"
	RenderFailed = "failed"
)

// RenderInput contains parameters for the Render operation.
type RenderInput struct {
	ID    string
	Siri  string
	Jenis string

	// Format is md or html. Empty means infer from Path, else md.
	Format string

	// Path is optional, default: <base>/exports/<siri>-<jenis>.<ext>
	Path string
}

// RenderOutput reports a render attempt. Document-level failures are
// reported here instead of as an error so callers can show the diagnostic.
type RenderOutput struct {
	Status     string `json:"status"`
	Diagnostic string `json:"diagnostic,omitempty"`
	Path       string `json:"path,omitempty"`
	Bytes      int    `json:"bytes"`
}

// Render writes a stored meeting as a minutes document. Addressing and
// lookup errors are returned as errors; producing or writing the document
// yields a failed status with a diagnostic.
func Render(ctx context.Context, database *sql.DB, cfg *config.Config, input RenderInput) (*RenderOutput, error) {
	addr, err := ValidateAddress(input.ID, input.Siri, input.Jenis)
	if err != nil {
		return nil, err
	}
	m, err := resolveMeeting(ctx, database, addr, false)
	if err != nil {
		return nil, err
	}

	format, err := renderFormat(input.Format, input.Path)
	if err != nil {
		return failed("", err), nil
	}

	path := input.Path
	if path == "" {
		path, err = defaultOutputPath(m.Siri, m.Jenis, format.Extension())
		if err != nil {
			return failed("", err), nil
		}
	}
	if err := ValidatePath(path, PathCheckWrite, cfg, renderExts...); err != nil {
		return failed(path, err), nil
	}

	data, err := render.Render(m.Record, format)
	if err != nil {
		return failed(path, err), nil
	}
	if err := writeFileAtomic(path, data); err != nil {
		return failed(path, err), nil
	}

	slog.Default().Debug("rendered minutes", "id", m.ID, "format", string(format), "path", path, "bytes", len(data))
	return &RenderOutput{Status: RenderOK, Path: path, Bytes: len(data)}, nil
}

// renderFormat resolves the output format from an explicit value or the
// path extension. An explicit format must agree with the extension.
func renderFormat(format, path string) (render.Format, error) {
	if strings.TrimSpace(format) == "" {
		if path == "" {
			return render.FormatMarkdown, nil
		}
		return render.FormatFromPath(path)
	}
	f, err := render.ParseFormat(format)
	if err != nil {
		return "", err
	}
	if path != "" {
		if fromPath, err := render.FormatFromPath(path); err == nil && fromPath != f {
			return "", errors.NewInvalidRequest(fmt.Sprintf("format %s does not match path %s", f, path))
		}
	}
	return f, nil
}

func failed(path string, err error) *RenderOutput {
	slog.Default().Warn("render failed", "path", path, "error", err)
	return &RenderOutput{Status: RenderFailed, Diagnostic: err.Error(), Path: path}
}

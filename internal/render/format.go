package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minitcraft/minit/internal/minutes"
)

// Format is an output document format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "md", "markdown", "html" and "htm" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported render format %q (want md or html)", s)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer render format from %q", path)
	}
	return ParseFormat(ext)
}

// Extension returns the file extension for f, with the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Render renders rec in format f.
func Render(rec minutes.Record, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(Markdown(rec)), nil
	case FormatHTML:
		return HTML(rec)
	default:
		return nil, fmt.Errorf("unsupported render format %q", f)
	}
}

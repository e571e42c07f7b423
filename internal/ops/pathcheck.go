package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/errors"
)

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // next --path, attendance import
	PathCheckWrite                      // render, export
)

// Allowed extensions per operation.
var (
	renderExts     = []string{".md", ".html"}
	exportExts     = []string{".json", ".yaml", ".yml"}
	documentExts   = []string{".json", ".yaml", ".yml"}
	attendanceExts = []string{".csv"}
)

// ValidatePath performs path validation for file-backed operations.
// It checks:
// 1. Path traversal (.. sequences)
// 2. Extension (one of exts)
// 3. Directory restrictions (file must be DIRECTLY in <base>/exports or allowed_paths - no subdirectories)
// 4. Symlink safety (parent dir must not be a symlink, file must not be a symlink)
//
// The "no subdirectories" rule means no intermediate directory can be swapped
// for a symlink between validation and open. O_NOFOLLOW covers the final
// component.
func ValidatePath(path string, mode PathCheckMode, cfg *config.Config, exts ...string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}

	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if ext := strings.ToLower(filepath.Ext(cleaned)); !slices.Contains(exts, ext) {
		return errors.NewInvalidRequest(fmt.Sprintf("path must have one of the extensions %s", strings.Join(exts, ", ")))
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	// Unsafe mode skips directory checks only. Symlink files are still refused.
	if cfg != nil && cfg.AllowUnsafePaths {
		return checkTarget(path, absPath, mode)
	}

	allowedDirs, err := getAllowedDirs(cfg)
	if err != nil {
		return err
	}

	parentDir := filepath.Dir(absPath)
	if !isDirectlyInAllowedDir(parentDir, allowedDirs) {
		return errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in an allowed directory (no subdirectories); allowed: %v",
				allowedDirs))
	}

	if info, err := os.Lstat(parentDir); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("parent directory must not be a symlink")
	}

	return checkTarget(path, absPath, mode)
}

// checkTarget requires read targets to exist and refuses symlinked files.
func checkTarget(path, absPath string, mode PathCheckMode) error {
	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// getAllowedDirs returns the list of allowed directories (absolute, cleaned).
// Existing symlinked entries are resolved so they match their real target.
func getAllowedDirs(cfg *config.Config) ([]string, error) {
	defaultDir, err := DefaultExportsDir()
	if err != nil {
		return nil, err
	}
	dirs := []string{defaultDir}

	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, filepath.Clean(p))
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		result = append(result, abs)
	}
	return result, nil
}

// isDirectlyInAllowedDir checks if parentDir exactly matches one of the allowed directories.
func isDirectlyInAllowedDir(parentDir string, allowedDirs []string) bool {
	parentDir = filepath.Clean(parentDir)
	for _, dir := range allowedDirs {
		if parentDir == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

// DefaultExportsDir returns <base>/exports, where base honors MINIT_HOME.
func DefaultExportsDir() (string, error) {
	base, err := config.BaseDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to resolve base directory: %w", err))
	}
	return filepath.Join(base, "exports"), nil
}

// defaultOutputPath builds <base>/exports/<siri>-<jenis><ext>.
func defaultOutputPath(siri, jenis, ext string) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	name := SanitizeForFilename(siri) + "-" + SanitizeForFilename(jenis) + ext
	return filepath.Join(dir, name), nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// SanitizeForFilename makes s safe as a single filename component. Serials
// such as "4/2024" become "4-2024".
func SanitizeForFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")
	s = strings.Join(strings.Fields(s), "_")

	var b strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	s = b.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if s == "" {
		s = "untitled"
	}
	return s
}

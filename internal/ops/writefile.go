package ops

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/minitcraft/minit/internal/errors"
)

// writeFileAtomic writes data to a temp file beside path and renames it into
// place, so an existing file survives a failed write. path must already have
// passed ValidatePath.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create output directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create output file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}

	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close output file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink planted after validation
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("output path is a symlink")
	}

	// On Windows, os.Rename fails if the destination exists. Fail and keep
	// the existing file rather than delete-then-rename.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("output destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize output: %w", err))
	}

	success = true
	return nil
}

// readFileNoFollow reads a validated input file without following a
// symlinked final component.
func readFileNoFollow(path string, maxBytes int) ([]byte, error) {
	f, err := openFileNoFollowRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if maxBytes > 0 && info.Size() > int64(maxBytes) {
		return nil, errors.NewRecordTooLarge(maxBytes, int(info.Size()))
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

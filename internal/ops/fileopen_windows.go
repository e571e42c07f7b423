//go:build windows

package ops

import (
	"os"

	"github.com/minitcraft/minit/internal/errors"
)

// openFileNoFollow opens a file for writing. Windows has no O_NOFOLLOW;
// ValidatePath has already refused symlinks.
func openFileNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// openFileNoFollowRead opens a file for reading. See openFileNoFollow.
func openFileNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
		return nil, err
	}
	return f, nil
}

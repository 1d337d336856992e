//go:build !windows

package files

import (
	"errors"
	"io/fs"
	"syscall"
)

// isLocked reports whether a removal failed because the file is in use
func isLocked(err error) bool {
	return errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETXTBSY)
}

//go:build windows

package files

import (
	"errors"
	"io/fs"
	"syscall"
)

const (
	errorSharingViolation syscall.Errno = 32
	errorLockViolation    syscall.Errno = 33
)

// isLocked reports whether a removal failed because the file is open in
// another process, typically a spreadsheet application.
func isLocked(err error) bool {
	return errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, errorSharingViolation) ||
		errors.Is(err, errorLockViolation)
}

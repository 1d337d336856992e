package files

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "aqiclean/internal/errors"
	"aqiclean/internal/infrastructure"
)

// ErrOutputLocked is returned when the previous output could not be removed
// because another process still holds it open.
var ErrOutputLocked = errors.New("output file is locked by another process")

// Manager provides the file operations around the output file
type Manager struct {
	attempts int
	delay    time.Duration
	remove   func(string) error
	logger   *slog.Logger
}

// NewManager creates a file manager retrying a locked removal up to
// attempts times in total, waiting delay between attempts.
func NewManager(attempts int, delay time.Duration, logger *slog.Logger) *Manager {
	if attempts < 1 {
		attempts = 1
	}
	return &Manager{
		attempts: attempts,
		delay:    delay,
		remove:   os.Remove,
		logger:   infrastructure.WithComponent(logger, "file_manager"),
	}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	exists := err == nil

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.Bool("exists", exists))

	return exists
}

// EnsureDirectory creates path and any missing parents. "" and "." are
// the working directory and always exist.
func EnsureDirectory(path string) error {
	if path == "" || path == "." {
		return nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory %s", path), err).
			WithContext("path", path)
	}
	return nil
}

// RemoveExisting deletes the file at path if there is one. A removal that
// fails because the file is locked is retried with a constant delay; any
// other failure is returned at once. When the attempts run out the error
// wraps ErrOutputLocked.
func (m *Manager) RemoveExisting(ctx context.Context, path string) error {
	if !m.FileExists(path) {
		return nil
	}

	attempt := 0
	op := func() error {
		attempt++
		err := m.remove(path)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		if !isLocked(err) {
			return backoff.Permanent(apperrors.NewStorageError(
				fmt.Sprintf("failed to remove %s", path), err))
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.delay), uint64(m.attempts-1)),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		m.logger.WarnContext(ctx, "Output file is locked, retrying",
			slog.String("path", path),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", m.attempts),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()))
	}

	err := backoff.RetryNotify(op, policy, notify)
	if err == nil {
		m.logger.InfoContext(ctx, "Removed previous output",
			slog.String("path", filepath.Clean(path)),
			slog.Int("attempts", attempt))
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if isLocked(err) {
		return apperrors.NewLockedError(
			fmt.Sprintf("could not remove %s after %d attempts", path, attempt),
			fmt.Errorf("%w: %w", ErrOutputLocked, err),
		).WithContext("path", path)
	}
	return err
}

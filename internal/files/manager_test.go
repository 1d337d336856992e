package files

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "aqiclean/internal/errors"
)

func newTestManager(attempts int, remove func(string) error) *Manager {
	m := NewManager(attempts, time.Millisecond, quietLogger())
	if remove != nil {
		m.remove = remove
	}
	return m
}

func lockedErr(path string) error {
	return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrPermission}
}

func TestRemoveExistingNoFile(t *testing.T) {
	calls := 0
	m := newTestManager(3, func(string) error {
		calls++
		return nil
	})

	err := m.RemoveExisting(context.Background(), filepath.Join(t.TempDir(), "out.csv"))
	require.NoError(t, err)
	assert.Zero(t, calls, "nothing to remove")
}

func TestRemoveExistingDeletesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	touch(t, path)

	m := NewManager(3, time.Millisecond, quietLogger())
	require.NoError(t, m.RemoveExisting(context.Background(), path))
	assert.False(t, m.FileExists(path))
}

func TestRemoveExistingRetriesThenSucceeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	touch(t, path)

	calls := 0
	m := newTestManager(3, func(p string) error {
		calls++
		if calls < 3 {
			return lockedErr(p)
		}
		return os.Remove(p)
	})

	require.NoError(t, m.RemoveExisting(context.Background(), path))
	assert.Equal(t, 3, calls)
	assert.False(t, m.FileExists(path))
}

func TestRemoveExistingExhaustsAttempts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	touch(t, path)

	for _, attempts := range []int{1, 3, 5} {
		calls := 0
		m := newTestManager(attempts, func(p string) error {
			calls++
			return lockedErr(p)
		})

		err := m.RemoveExisting(context.Background(), path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutputLocked))
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLocked))
		assert.Equal(t, attempts, calls, "attempts=%d", attempts)
	}

	_, err := os.Stat(path)
	assert.NoError(t, err, "locked file must be left in place")
}

func TestRemoveExistingOtherErrorFailsImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	touch(t, path)

	boom := errors.New("disk on fire")
	calls := 0
	m := newTestManager(3, func(string) error {
		calls++
		return boom
	})

	err := m.RemoveExisting(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrOutputLocked))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestRemoveExistingHonoursCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	touch(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager(10, time.Hour, quietLogger())
	m.remove = func(p string) error {
		cancel()
		return lockedErr(p)
	}

	err := m.RemoveExisting(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnsureDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, EnsureDirectory(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, EnsureDirectory(dir), "existing directory is fine")
	assert.NoError(t, EnsureDirectory("."))
	assert.NoError(t, EnsureDirectory(""))
}

func TestEnsureDirectoryUnderFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := EnsureDirectory(filepath.Join(blocker, "sub"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

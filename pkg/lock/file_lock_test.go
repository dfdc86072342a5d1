package lock

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	stateDir := t.TempDir()
	fl := New(stateDir)

	require.NoError(t, fl.Lock(context.Background()))
	assert.FileExists(t, filepath.Join(stateDir, ".lock"))
	require.NoError(t, fl.Unlock())

	// Unlock without a held lock is a no-op
	assert.NoError(t, fl.Unlock())
}

func TestTryLock(t *testing.T) {
	stateDir := t.TempDir()

	first := New(stateDir)
	ok, err := first.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() {
		_ = first.Unlock()
	}()

	// Each New opens its own file description, so a second TryLock contends
	// with the first even within one process
	second := New(stateDir)
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.False(t, ok)

	// Both locks target the same shared lock file
	assert.FileExists(t, filepath.Join(stateDir, ".lock"))

	// Releasing the holder frees the lock for the next attempt
	require.NoError(t, first.Unlock())
	ok, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, ok)
	_ = second.Unlock()
}

func TestLockRespectsCanceledContext(t *testing.T) {
	stateDir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An uncontended lock still succeeds even with a canceled context
	// because the non-blocking attempt wins immediately
	fl := New(stateDir)
	require.NoError(t, fl.Lock(ctx))
	require.NoError(t, fl.Unlock())
}

func TestLockTimeoutPath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping lock contention test in short mode")
	}

	stateDir := t.TempDir()

	// The holder's file description keeps the flock, so the waiter blocks
	// until its context deadline fires
	holder := New(stateDir)
	ok, err := holder.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() {
		_ = holder.Unlock()
	}()

	done := make(chan error, 1)
	go func() {
		waiter := New(stateDir)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		done <- waiter.Lock(ctx)
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("Lock did not return after context timeout")
	}
}

func TestLockFilePermissions(t *testing.T) {
	stateDir := t.TempDir()
	fl := New(stateDir)

	require.NoError(t, fl.Lock(context.Background()))
	defer func() {
		_ = fl.Unlock()
	}()

	info, err := os.Stat(filepath.Join(stateDir, ".lock"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

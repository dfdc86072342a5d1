// Package lock provides the file-based run lock for a chore project.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileLock serializes chore runs within one project directory
type FileLock struct {
	file     *os.File
	lockPath string
}

// New creates a lock rooted in the given state directory
func New(stateDir string) *FileLock {
	return &FileLock{
		lockPath: filepath.Join(stateDir, ".lock"),
	}
}

// Lock acquires the lock with flock, blocking until it is free or the
// context is canceled
func (fl *FileLock) Lock(ctx context.Context) error {
	file, err := os.OpenFile(fl.lockPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	fl.file = file

	// Non-blocking attempt first so the common uncontended case is cheap
	err = syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		_ = fl.file.Close()
		fl.file = nil
		return ctx.Err()
	default:
	}

	done := make(chan error, 1)
	go func() {
		done <- syscall.Flock(int(file.Fd()), syscall.LOCK_EX)
	}()

	select {
	case err := <-done:
		if err != nil {
			_ = fl.file.Close()
			fl.file = nil
			return fmt.Errorf("failed to acquire file lock: %w", err)
		}
		return nil
	case <-ctx.Done():
		_ = fl.file.Close()
		fl.file = nil
		return ctx.Err()
	}
}

// TryLock acquires the lock without blocking; it reports false when another
// process holds it
func (fl *FileLock) TryLock() (bool, error) {
	file, err := os.OpenFile(fl.lockPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return false, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		return false, nil
	}

	fl.file = file
	return true, nil
}

// Unlock releases the lock
func (fl *FileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}

	if err := syscall.Flock(int(fl.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = fl.file.Close()
		fl.file = nil
		return fmt.Errorf("failed to release file lock: %w", err)
	}

	err := fl.file.Close()
	fl.file = nil
	if err != nil {
		return fmt.Errorf("failed to close lock file: %w", err)
	}
	return nil
}

package peerlock

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "pkgctl", "peer.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release(), "second release is a no-op")

	again, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquire_TimesOutWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peer.lock")
	held, err := Acquire(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = held.Release() })

	origTimeout, origPoll, origSleep := lockWaitTimeout, lockPollEvery, lockSleep
	lockWaitTimeout = 20 * time.Millisecond
	lockPollEvery = time.Millisecond
	sleeps := 0
	lockSleep = func(d time.Duration) {
		sleeps++
		time.Sleep(d)
	}
	t.Cleanup(func() {
		lockWaitTimeout, lockPollEvery, lockSleep = origTimeout, origPoll, origSleep
	})

	_, err = Acquire(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another pkgctl peer is running")
	assert.Greater(t, sleeps, 0)
}

func TestAcquire_FlockErrorIsReturned(t *testing.T) {
	orig := flockFn
	flockFn = func(fd int, how int) error { return unix.EBADF }
	t.Cleanup(func() { flockFn = orig })

	_, err := Acquire(filepath.Join(t.TempDir(), "peer.lock"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, unix.EBADF))
}

func TestAcquire_OpenError(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be opened read-write as the lock file.
	_, err := Acquire(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open peer lock")
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}

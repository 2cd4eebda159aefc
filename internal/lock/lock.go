// Package lock provides process-wide advisory locking keyed by
// (release:<id>, collage:<name>, playlist:<name>) for writers to
// serialize behind. Built on config.LocksDir and gofrs/flock, shared by
// internal/store and internal/collections so both lock under the exact
// same file per key.
package lock

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/azuline/rose-go/internal/roseerr"
)

// ReleaseKey, CollageKey, and PlaylistKey build the three lock namespaces
// described in §4.3.
func ReleaseKey(id string) string       { return "release:" + id }
func CollageKey(name string) string     { return "collage:" + name }
func PlaylistKey(name string) string    { return "playlist:" + name }

// With acquires the named lock under dir for the duration of fn, blocking
// indefinitely.
func With(dir, key string, fn func() error) error {
	l := flock.New(filepath.Join(dir, key+".lock"))
	if err := l.Lock(); err != nil {
		return roseerr.Unexpected(fmt.Errorf("acquire lock %s: %w", key, err))
	}
	defer l.Unlock()
	return fn()
}

// WithTimeout is With, bounded by timeout — for callers (the VFS bridge)
// that must not block a kernel upcall indefinitely.
func WithTimeout(dir, key string, timeout time.Duration, fn func() error) error {
	l := flock.New(filepath.Join(dir, key+".lock"))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ok, err := l.TryLockContext(ctx, 20*time.Millisecond)
	if err != nil {
		return roseerr.Unexpected(fmt.Errorf("acquire lock %s: %w", key, err))
	}
	if !ok {
		return roseerr.New(roseerr.DaemonAlreadyRunning, "timed out acquiring lock %s", key)
	}
	defer l.Unlock()
	return fn()
}

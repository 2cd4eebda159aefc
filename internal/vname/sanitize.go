package vname

import (
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// forbidden holds the filesystem-hostile characters §4.7 requires rejecting:
// `:?<>\*|"/`.
const forbidden = `:?<>\*|"/`

// Sanitize NFD-normalizes s, strips forbidden characters, trims
// surrounding whitespace and trailing dots, and truncates to maxLenBytes
// (UTF-8 safe), per §4.7's sanitization rule; inner whitespace is left
// as is.
func Sanitize(s string, maxLenBytes int) string {
	s = norm.NFD.String(s)
	s = stripForbidden(s)
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ".")
	if maxLenBytes > 0 {
		s = truncateUTF8(s, maxLenBytes)
	}
	return s
}

func stripForbidden(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbidden, r) {
			return -1
		}
		return r
	}, s)
}

func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	b := []byte(s)[:maxBytes]
	for len(b) > 0 && !isUTF8Boundary(b) {
		b = b[:len(b)-1]
	}
	return strings.TrimSpace(string(b))
}

func isUTF8Boundary(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	last := b[len(b)-1]
	return last&0xC0 != 0x80
}

// Sanitizer is the process-wide display<->sanitized-form map: populated as
// virtual names are produced, and able to recover from a miss by asking
// the caller to re-list the parent directory and retry once.
//
// Every sanitized string is recorded at the point it is produced; a
// readdir-then-retry is the fallback that covers the other, expired or
// untracked case.
type Sanitizer struct {
	mu  sync.RWMutex
	rev map[string]map[string]string // parent -> sanitized -> display
}

// NewSanitizer constructs an empty Sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{rev: make(map[string]map[string]string)}
}

// Record associates a sanitized form with its original display string under
// parent, called whenever the generator produces a virtual name.
func (s *Sanitizer) Record(parent, sanitized, display string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.rev[parent]
	if !ok {
		m = make(map[string]string)
		s.rev[parent] = m
	}
	m[sanitized] = display
}

// Forget drops all recorded mappings for parent, called when its listing is
// known to have changed.
func (s *Sanitizer) Forget(parent string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rev, parent)
}

// Lookup returns the display string recorded for (parent, sanitized).
func (s *Sanitizer) Lookup(parent, sanitized string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.rev[parent]
	if !ok {
		return "", false
	}
	display, ok := m[sanitized]
	return display, ok
}

// Readdir is invoked by Unsanitize to populate a parent's mappings on a
// miss, when the caller couldn't avoid the race described in §9: relist the
// parent and Record every entry's (sanitized, display) pair.
type Readdir func(parent string) (entries []struct{ Sanitized, Display string }, err error)

// Unsanitize resolves a sanitized filename back to its original display
// string under parent. On a cache miss it calls readdir once to repopulate
// the parent's mappings and retries, per §4.7; a second miss is a genuine
// ENOENT, surfaced as ok=false.
func (s *Sanitizer) Unsanitize(parent, sanitized string, readdir Readdir) (string, bool) {
	if display, ok := s.Lookup(parent, sanitized); ok {
		return display, true
	}
	if readdir == nil {
		return "", false
	}
	entries, err := readdir(parent)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		s.Record(parent, e.Sanitized, e.Display)
	}
	return s.Lookup(parent, sanitized)
}

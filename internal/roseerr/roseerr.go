// Package roseerr defines Rosé's stable error taxonomy: a closed set of
// "expected" errors that are user-visible and printed without a stack
// trace, versus "unexpected" errors that are logged with one and surfaced
// as EIO/internal failures.
//
// Errors carry a typed Kind so callers can errors.Is/As instead of
// comparing messages.
package roseerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one member of the stable taxonomy in §7.
type Kind string

const (
	ConfigNotFound             Kind = "ConfigNotFound"
	ConfigDecode               Kind = "ConfigDecode"
	MissingConfigKey           Kind = "MissingConfigKey"
	InvalidConfigValue         Kind = "InvalidConfigValue"
	RuleSyntax                 Kind = "RuleSyntax"
	InvalidRule                Kind = "InvalidRule"
	UnsupportedFiletype        Kind = "UnsupportedFiletype"
	UnsupportedTagValue        Kind = "UnsupportedTagValue"
	ReleaseDoesNotExist        Kind = "ReleaseDoesNotExist"
	TrackDoesNotExist          Kind = "TrackDoesNotExist"
	CollageDoesNotExist        Kind = "CollageDoesNotExist"
	CollageAlreadyExists       Kind = "CollageAlreadyExists"
	PlaylistDoesNotExist       Kind = "PlaylistDoesNotExist"
	PlaylistAlreadyExists      Kind = "PlaylistAlreadyExists"
	DescriptionMismatch        Kind = "DescriptionMismatch"
	InvalidCoverArtFile        Kind = "InvalidCoverArtFile"
	InvalidReleaseEditResume   Kind = "InvalidReleaseEditResumeFile"
	ReleaseEditFailed          Kind = "ReleaseEditFailed"
	UnknownArtistRole          Kind = "UnknownArtistRole"
	TrackTagNotAllowed         Kind = "TrackTagNotAllowed"
	InvalidReplacementValue    Kind = "InvalidReplacementValue"
	InvalidPathTemplate        Kind = "InvalidPathTemplate"
	DaemonAlreadyRunning       Kind = "DaemonAlreadyRunning"
)

// Error is an expected, user-visible error: no stack trace is printed for
// it, but the Kind is preserved for errors.As/Is.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is supports errors.Is(err, roseerr.New(kind, "")) treating two *Error
// values as equal when their Kind matches, regardless of Message.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New creates an expected error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an expected error of the given kind, retaining cause for
// Unwrap but not for user-facing display (expected errors render without a
// stack).
func Wrap(cause error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

// Unexpected wraps err with a stack trace via pkg/errors, for the
// "unexpected" bucket of §7: bugs and environmental failures that should be
// logged with a trace and surfaced generically (EIO in the VFS, exit code
// >1 on the CLI).
func Unexpected(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

// IsExpected reports whether err (or something it wraps) is a roseerr.Error
// — i.e. belongs to the user-visible, no-stack-trace bucket.
func IsExpected(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// KindOf extracts the Kind from err if it is a roseerr.Error, and ok=false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

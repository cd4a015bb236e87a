// Package exitcode defines the process exit codes and the error type that
// carries them from the point of failure up to main. Codes are stable so CI
// pipelines can branch on exit status.
package exitcode

import (
	"errors"
	"fmt"
)

const (
	// Success means the installation completed.
	Success = 0
	// General covers bad arguments, unsupported platforms and a
	// non-functional binary after install.
	General = 1
	// NotFound means the requested version or platform is not in the
	// manifest, or the artifact exists but is not yet released.
	NotFound = 2
	// ChecksumMismatch means the downloaded artifact's digest did not match
	// the manifest-declared digest.
	ChecksumMismatch = 3
	// DownloadFailed covers transport failures for both the manifest and
	// the artifact.
	DownloadFailed = 4
	// MissingDependency means a required external tool is not installed.
	MissingDependency = 5
)

// Error pairs an exit code with the underlying error.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error from a format string.
func New(code int, format string, args ...any) error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a code to an existing error. Returns nil for a nil error.
// If err already carries a code, the existing code wins so the original
// classification survives wrapping at call sites.
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}
	return &Error{Code: code, Err: err}
}

// FromError maps any error to its exit code. Uncoded errors are general
// errors; nil is success.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return General
}

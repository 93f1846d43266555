package capture

import (
	"errors"
	"fmt"

	"github.com/smazurov/vhsnode/internal/preset"
)

// Error is a supervisor level failure.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeAlreadyRunning = "ALREADY_RUNNING"
	ErrCodeNoActiveJob    = "NO_ACTIVE_JOB"
	ErrCodeSpawnFailed    = "SPAWN_FAILED"
)

// CodeOf returns the machine readable code carried by err, including
// request validation codes, or "" for foreign errors.
func CodeOf(err error) string {
	var captureErr *Error
	if errors.As(err, &captureErr) {
		return captureErr.Code
	}
	var presetErr *preset.Error
	if errors.As(err, &presetErr) {
		return presetErr.Code
	}
	return ""
}

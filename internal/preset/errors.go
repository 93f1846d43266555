package preset

import "fmt"

// Error is a request validation failure.
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
	ErrCodeInvalidDuration = "INVALID_DURATION"
	ErrCodeUnknownPreset   = "UNKNOWN_PRESET"
	ErrCodeDeviceNotFound  = "DEVICE_NOT_FOUND"
	ErrCodeInvalidParams   = "INVALID_PARAMS"
)

func newError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Package errors provides severity-aware error types.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// PredictionError is a structured failure of a single prediction request.
type PredictionError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Field       string   `json:"field,omitempty"`
	Recoverable bool     `json:"recoverable"`
	Err         error    `json:"-"`
}

func (e *PredictionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s (field: %s)", e.Severity, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Error codes
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeMissingField   = "MISSING_FIELD"
	ErrCodeEncodingFailed = "ENCODING_FAILED"
	ErrCodeModelFailed    = "MODEL_FAILED"
)

// NewInvalidRequestError reports a body that could not be decoded into a
// prediction request, including fields of the wrong JSON type.
func NewInvalidRequestError(err error) *PredictionError {
	return &PredictionError{
		Code:        ErrCodeInvalidRequest,
		Message:     fmt.Sprintf("Invalid request: %v", err),
		Severity:    SeverityWarning,
		Recoverable: true,
		Err:         err,
	}
}

// NewMissingFieldError creates an error for an absent required field.
func NewMissingFieldError(field string) *PredictionError {
	return &PredictionError{
		Code:        ErrCodeMissingField,
		Message:     fmt.Sprintf("Missing required field: %s", field),
		Severity:    SeverityWarning,
		Field:       field,
		Recoverable: true,
	}
}

// NewEncodingError wraps a failure to build the feature vector.
func NewEncodingError(err error) *PredictionError {
	return &PredictionError{
		Code:        ErrCodeEncodingFailed,
		Message:     err.Error(),
		Severity:    SeverityError,
		Recoverable: true,
		Err:         err,
	}
}

// NewModelError wraps a failure raised by the regressor.
func NewModelError(err error) *PredictionError {
	return &PredictionError{
		Code:        ErrCodeModelFailed,
		Message:     err.Error(),
		Severity:    SeverityError,
		Recoverable: true,
		Err:         err,
	}
}

// Code returns the code of a PredictionError anywhere in err's chain, or
// the empty string.
func Code(err error) string {
	for err != nil {
		if pe, ok := err.(*PredictionError); ok {
			return pe.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

package api

import "errors"

// Sentinel errors returned by the calculators. Callers classify with
// errors.Is and translate to wire codes via CodeForError.
var (
	// ErrMissingInput marks a required numeric field that is absent, zero,
	// or negative where positivity is required.
	ErrMissingInput = errors.New("missing input")

	// ErrInvalidRange marks a value outside its structurally valid range
	// (negative square footage, end date before start date).
	ErrInvalidRange = errors.New("invalid range")

	// ErrBadInput marks a payload the façade could not decode at all.
	ErrBadInput = errors.New("bad input")
)

// ErrorCode is the wire-level error classification.
type ErrorCode string

const (
	CodeMissingInput     ErrorCode = "MISSING_INPUT"
	CodeInvalidRange     ErrorCode = "INVALID_RANGE"
	CodeBadInput         ErrorCode = "BAD_INPUT"
	CodeUnknownOperation ErrorCode = "UNKNOWN_OPERATION"
	CodeInternal         ErrorCode = "INTERNAL"
)

// CodeForError maps a calculator error to its wire code.
func CodeForError(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrMissingInput):
		return CodeMissingInput
	case errors.Is(err, ErrInvalidRange):
		return CodeInvalidRange
	case errors.Is(err, ErrBadInput):
		return CodeBadInput
	default:
		return CodeInternal
	}
}

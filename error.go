package agentface

import (
	"errors"
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrSuccess Err = iota
	ErrNotFound
	ErrBadParameter
	ErrNotImplemented
	ErrConflict
	ErrInternalServerError
	ErrRenderEngineMissing
	ErrIOFailure
	ErrMaxSteps
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Errors
type Err int

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e Err) Error() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrNotFound:
		return "not found"
	case ErrBadParameter:
		return "bad parameter"
	case ErrNotImplemented:
		return "not implemented"
	case ErrConflict:
		return "conflict"
	case ErrInternalServerError:
		return "internal server error"
	case ErrRenderEngineMissing:
		return "render engine missing"
	case ErrIOFailure:
		return "i/o failure"
	case ErrMaxSteps:
		return "maximum number of agent steps reached"
	}
	return fmt.Sprintf("error code %d", int(e))
}

// Kind returns the short machine-readable name of the error code, used in
// structured tool results.
func (e Err) Kind() string {
	switch e {
	case ErrSuccess:
		return ""
	case ErrNotFound:
		return "not-found"
	case ErrBadParameter:
		return "invalid-input"
	case ErrNotImplemented:
		return "not-implemented"
	case ErrConflict:
		return "conflict"
	case ErrRenderEngineMissing:
		return "render-engine-missing"
	case ErrIOFailure:
		return "io-failure"
	case ErrMaxSteps:
		return "max-steps"
	}
	return "internal"
}

func (e Err) With(args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprint(args...))
}

func (e Err) Withf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

// ErrFromKind is the inverse of Kind. Unknown kinds map to
// ErrInternalServerError.
func ErrFromKind(kind string) Err {
	for e := ErrNotFound; e <= ErrMaxSteps; e++ {
		if e.Kind() == kind {
			return e
		}
	}
	return ErrInternalServerError
}

// KindOf returns the kind of the first Err found in the chain of err, or
// "internal" when err carries no code.
func KindOf(err error) string {
	var code Err
	if err == nil {
		return ""
	} else if errors.As(err, &code) {
		return code.Kind()
	}
	return ErrInternalServerError.Kind()
}

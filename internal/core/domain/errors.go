package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown stage or output format.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDecode indicates a package or one of its XML parts could not be parsed.
	ErrDecode = errors.New("decode failed")

	// ErrInvariant indicates a stage could not restore its own post-condition.
	ErrInvariant = errors.New("invariant violated")
)

// ErrEmptyBuffer is returned by the pipeline before any decoding is attempted.
var ErrEmptyBuffer = fmt.Errorf("%w: input must be a non-empty Buffer", ErrInvalidInput)

// DecodeError reports a package or part that cannot be parsed at all.
type DecodeError struct {
	// Part is the offending part path, empty when the archive itself is bad.
	Part string
	Err  error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	msg := ErrDecode.Error()
	if e.Part != "" {
		msg += ": " + e.Part
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func (e *DecodeError) Unwrap() error { return e.Err }

// InvariantError reports a post-condition a stage could not satisfy.
// It indicates a defect in the stage or a package beyond its contract.
type InvariantError struct {
	Stage string
	Part  string
	Msg   string
}

func (e *InvariantError) Error() string {
	if e == nil {
		return ""
	}
	msg := ErrInvariant.Error() + " in " + e.Stage
	if e.Part != "" {
		msg += " (" + e.Part + ")"
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariantf builds an InvariantError for stage and part.
func Invariantf(stage, part, format string, args ...any) error {
	return &InvariantError{Stage: stage, Part: part, Msg: fmt.Sprintf(format, args...)}
}

// StageError wraps the error that stopped a pipeline run.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

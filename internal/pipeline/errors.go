package pipeline

import "fmt"

// FailureKind classifies why one forecast hour failed. Failures are isolated
// per hour; the batch keeps going and tallies them.
type FailureKind int

const (
	// DecodeFailure: the decode boundary could not produce usable arrays.
	DecodeFailure FailureKind = iota
	// ShapeMismatch: the hour's grids disagree on dimensions or axes.
	ShapeMismatch
	// EncodingFailure: output serialization or writing did not complete.
	EncodingFailure
)

func (k FailureKind) String() string {
	switch k {
	case DecodeFailure:
		return "decode"
	case ShapeMismatch:
		return "shape"
	case EncodingFailure:
		return "encoding"
	}
	return "unknown"
}

// HourFailure records one failed input within a batch.
type HourFailure struct {
	Input string
	Kind  FailureKind
	Err   error
}

func (e *HourFailure) Error() string {
	return fmt.Sprintf("%s: %s failure: %v", e.Input, e.Kind, e.Err)
}

func (e *HourFailure) Unwrap() error { return e.Err }

package scylla

import (
	"errors"
	"fmt"
)

// Domain not-found errors. Callers must be able to tell "never happened"
// apart from "database is down", so these are sentinels distinct from any
// wrapped transport error.
var (
	// ErrInvalidUser means no player row exists for the address (it has
	// never placed a pixel), or a placement request carried no address.
	ErrInvalidUser = errors.New("scylla: invalid user")

	// ErrNoPixelData means no cell row exists for the coordinate.
	ErrNoPixelData = errors.New("scylla: no pixel data")
)

// RangeError reports a value that does not fit the int32 column width.
// Out-of-range values are rejected, never truncated.
type RangeError struct {
	Field string
	Value uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("scylla: %s value %d exceeds int32 column range", e.Field, e.Value)
}

// DecodeError reports a row that came back but did not match the expected
// shape. Distinct from not-found and from transport failures.
type DecodeError struct {
	Query string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("scylla: decoding %s row: %v", e.Query, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

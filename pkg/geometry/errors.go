package geometry

import (
	"errors"
	"fmt"
)

var (
	// ErrDivideByZero is returned when the inverse square root is asked for zero.
	ErrDivideByZero = errors.New("divide by zero")
	// ErrNegativeInput is returned when the inverse square root is asked for a negative number.
	ErrNegativeInput = errors.New("inverse square root of a negative number")
	// ErrDimensionMismatch matches any *DimensionMismatchError with errors.Is.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// DimensionMismatchError indicates two vectors that should share a dimensionality do not.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

// NewDimensionMismatch builds a DimensionMismatchError for the given lengths.
func NewDimensionMismatch(expected, actual int) *DimensionMismatchError {
	return &DimensionMismatchError{Expected: expected, Actual: actual}
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is reports ErrDimensionMismatch as equivalent.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

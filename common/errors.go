package common

import (
	"errors"
	"fmt"
)

var ErrUnsupportedFormat = errors.New("format recognized but no decoder is available")
var ErrAllFormatsFailed = errors.New("all formats failed to decode")
var ErrMediaTooLarge = errors.New("media too large")

// NativeDecodeFailure is returned when a codec engine reports a non-zero
// status. Code is engine-defined.
type NativeDecodeFailure struct {
	Format string
	Code   int
}

func (e *NativeDecodeFailure) Error() string {
	return fmt.Sprintf("%s: native decode failed with status %d", e.Format, e.Code)
}

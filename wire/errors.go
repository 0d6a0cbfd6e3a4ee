package wire

import "github.com/pkg/errors"

// DecodeError wraps a failure encountered while decoding a frame, keeping
// the byte offset at which decoding stopped so a caller can log enough
// to reproduce it without dumping the whole frame.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return errors.Wrapf(e.Err, "wire: decode failed at offset %d", e.Offset).Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError records the offset within the original frame that o
// (the remainder slice returned by a Decode* call) corresponds to,
// given the frame's starting length.
func NewDecodeError(frameLen, remainderLen int, err error) *DecodeError {
	return &DecodeError{Offset: frameLen - remainderLen, Err: err}
}

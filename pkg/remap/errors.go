package remap

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBuffer is matched by every *InvalidBufferError.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")
	// ErrInvalidConfiguration is matched by every *InvalidConfigurationError.
	ErrInvalidConfiguration = errors.New("invalid remap configuration")
)

// InvalidBufferError reports a malformed source buffer.
type InvalidBufferError struct {
	Width, Height int
	Length        int
	Reason        string
}

func (e *InvalidBufferError) Error() string {
	return fmt.Sprintf("invalid pixel buffer %dx%d (len %d): %s", e.Width, e.Height, e.Length, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidBuffer) succeed.
func (e *InvalidBufferError) Is(target error) bool {
	return target == ErrInvalidBuffer
}

// InvalidConfigurationError reports unusable remap parameters such as a
// non-positive destination size.
type InvalidConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid remap configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

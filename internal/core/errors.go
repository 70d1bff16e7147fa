package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Decoders wrap them in a *DecodeError carrying layer and offset.
var (
	// Packet decoding errors
	ErrTruncatedInput         = errors.New("dissector: truncated input")
	ErrInvalidHeaderLength    = errors.New("dissector: invalid header length")
	ErrMalformedLabel         = errors.New("dissector: malformed dns label")
	ErrUnsupportedCompression = errors.New("dissector: unsupported dns name compression")

	// Warning-class conditions, recorded in DecodedPacket.Warnings
	ErrVersionMismatch = errors.New("dissector: ip version mismatch")

	// Pipeline errors
	ErrPipelineStopped = errors.New("dissector: pipeline stopped")
	ErrSourceClosed    = errors.New("dissector: source closed")

	// Plugin errors
	ErrPluginNotFound = errors.New("dissector: plugin not found")

	// Configuration errors
	ErrConfigInvalid = errors.New("dissector: invalid configuration")
)

// DecodeError reports where in a frame a decoder gave up.
// Offset is relative to the start of the layer named by Layer.
type DecodeError struct {
	Layer  string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v at offset %d", e.Layer, e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NewDecodeError wraps err with layer and offset context.
func NewDecodeError(layer string, offset int, err error) *DecodeError {
	return &DecodeError{Layer: layer, Offset: offset, Err: err}
}

// Reason returns a short, stable name for the sentinel behind err,
// suitable for metric labels.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrTruncatedInput):
		return "truncated_input"
	case errors.Is(err, ErrInvalidHeaderLength):
		return "invalid_header_length"
	case errors.Is(err, ErrMalformedLabel):
		return "malformed_label"
	case errors.Is(err, ErrUnsupportedCompression):
		return "unsupported_compression"
	case errors.Is(err, ErrVersionMismatch):
		return "version_mismatch"
	default:
		return "other"
	}
}

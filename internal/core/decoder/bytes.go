package decoder

import (
	"encoding/binary"

	"firestige.xyz/dissector/internal/core"
)

// Field readers. Every multi-byte read in this package goes through them so
// the bounds check lives in one place. They report the offset that could
// not be satisfied; callers wrap it with their layer name.

// fieldError is returned by the readers; off is the offset of the read that failed.
type fieldError struct {
	off int
}

func (e fieldError) Error() string { return core.ErrTruncatedInput.Error() }
func (e fieldError) Unwrap() error { return core.ErrTruncatedInput }

func need(b []byte, off, n int) error {
	if off < 0 || n < 0 || off > len(b)-n {
		return fieldError{off: off}
	}
	return nil
}

func readUint8(b []byte, off int) (uint8, error) {
	if err := need(b, off, 1); err != nil {
		return 0, err
	}
	return b[off], nil
}

func readUint16(b []byte, off int) (uint16, error) {
	if err := need(b, off, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[off:]), nil
}

func readUint32(b []byte, off int) (uint32, error) {
	if err := need(b, off, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[off:]), nil
}

func readUint64(b []byte, off int) (uint64, error) {
	if err := need(b, off, 8); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[off:]), nil
}

// uint128 is a big-endian 128-bit value split in two halves.
type uint128 struct {
	hi, lo uint64
}

func (u uint128) bytes() [16]byte {
	var out [16]byte
	binary.BigEndian.PutUint64(out[:8], u.hi)
	binary.BigEndian.PutUint64(out[8:], u.lo)
	return out
}

func readUint128(b []byte, off int) (uint128, error) {
	hi, err := readUint64(b, off)
	if err != nil {
		return uint128{}, err
	}
	lo, err := readUint64(b, off+8)
	if err != nil {
		return uint128{}, err
	}
	return uint128{hi: hi, lo: lo}, nil
}

// readBytes returns an owned copy of b[off:off+n].
func readBytes(b []byte, off, n int) ([]byte, error) {
	if err := need(b, off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b[off:off+n])
	return out, nil
}

// tail returns the view b[off:].
func tail(b []byte, off int) ([]byte, error) {
	if err := need(b, off, 0); err != nil {
		return nil, err
	}
	return b[off:], nil
}

// wrap converts a reader error into a *core.DecodeError for layer.
func wrap(layer string, err error) error {
	if fe, ok := err.(fieldError); ok {
		return core.NewDecodeError(layer, fe.off, core.ErrTruncatedInput)
	}
	return err
}

// Package bytesx encodes and decodes the signed integer fields of the
// packet header as fixed-width big-endian words.
package bytesx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrEncodeField indicates a header field encoding error occurred.
	ErrEncodeField = errors.New("can't encode field")

	// ErrDecodeField indicates a header field decoding error occurred.
	ErrDecodeField = errors.New("can't decode field")
)

// WriteInt16 appends the given value to buf as a big-endian two-byte
// word. Returns [ErrEncodeField] when the value does not fit in 16 bits.
func WriteInt16(buf *bytes.Buffer, value int) error {
	if value < math.MinInt16 || value > math.MaxInt16 {
		return ErrEncodeField
	}
	return binary.Write(buf, binary.BigEndian, int16(value))
}

// ReadInt16 reads a big-endian two-byte word from buf. Returns
// [ErrDecodeField] when buf does not contain enough bytes.
func ReadInt16(buf *bytes.Buffer) (int, error) {
	var value int16
	if err := binary.Read(buf, binary.BigEndian, &value); err != nil {
		return 0, ErrDecodeField
	}
	return int(value), nil
}

// WriteInt32 appends the given value to buf as a big-endian four-byte
// word. Returns [ErrEncodeField] when the value does not fit in 32 bits.
func WriteInt32(buf *bytes.Buffer, value int) error {
	if value < math.MinInt32 || value > math.MaxInt32 {
		return ErrEncodeField
	}
	return binary.Write(buf, binary.BigEndian, int32(value))
}

// ReadInt32 reads a big-endian four-byte word from buf. Returns
// [ErrDecodeField] when buf does not contain enough bytes.
func ReadInt32(buf *bytes.Buffer) (int, error) {
	var value int32
	if err := binary.Read(buf, binary.BigEndian, &value); err != nil {
		return 0, ErrDecodeField
	}
	return int(value), nil
}

package binaryio

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrIoFailure is returned for any short read, open failure, or underlying
// stream error encountered while reading. No partial value is ever returned
// alongside it.
var ErrIoFailure = errors.New("binaryio: I/O failed")

// Reader reads little-endian primitives and composite values from an
// underlying io.Reader.
type Reader struct {
	r io.Reader
}

// NewReader wraps an existing io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// OpenReader opens path for reading, transparently gunzipping if path ends
// in ".gz". The caller must call Close on the returned closer when path
// names a real file.
func OpenReader(path string) (*Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open %s: %v", ErrIoFailure, path, err)
	}

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("%w: gzip open %s: %v", ErrIoFailure, path, err)
		}

		return NewReader(gz), multiCloser{gz, f}, nil
	}

	return NewReader(f), f, nil
}

type multiCloser struct {
	inner io.Closer
	outer io.Closer
}

func (m multiCloser) Close() error {
	err1 := m.inner.Close()
	err2 := m.outer.Close()

	if err1 != nil {
		return err1
	}

	return err2
}

func (rd *Reader) fail(context string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrIoFailure, context, err)
}

func (rd *Reader) readFull(buf []byte) error {
	_, err := io.ReadFull(rd.r, buf)
	if err != nil {
		return rd.fail("short read", err)
	}

	return nil
}

// Bytes reads a raw byte slice of exactly n bytes (used for fixed-size
// magic markers).
func (rd *Reader) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := rd.readFull(buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// Bool reads a single byte as a boolean (0 = false, non-zero = true).
func (rd *Reader) Bool() (bool, error) {
	var buf [1]byte
	if err := rd.readFull(buf[:]); err != nil {
		return false, err
	}

	return buf[0] != 0, nil
}

// I8 reads a signed 8-bit integer.
func (rd *Reader) I8() (int8, error) {
	var buf [1]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}

	return int8(buf[0]), nil
}

// U8 reads an unsigned 8-bit integer.
func (rd *Reader) U8() (uint8, error) {
	var buf [1]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}

	return buf[0], nil
}

// I16 reads a little-endian signed 16-bit integer.
func (rd *Reader) I16() (int16, error) {
	v, err := rd.U16()
	return int16(v), err
}

// U16 reads a little-endian unsigned 16-bit integer.
func (rd *Reader) U16() (uint16, error) {
	var buf [2]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(buf[:]), nil
}

// I32 reads a little-endian signed 32-bit integer.
func (rd *Reader) I32() (int32, error) {
	v, err := rd.U32()
	return int32(v), err
}

// U32 reads a little-endian unsigned 32-bit integer.
func (rd *Reader) U32() (uint32, error) {
	var buf [4]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(buf[:]), nil
}

// I64 reads a little-endian signed 64-bit integer.
func (rd *Reader) I64() (int64, error) {
	v, err := rd.U64()
	return int64(v), err
}

// U64 reads a little-endian unsigned 64-bit integer.
func (rd *Reader) U64() (uint64, error) {
	var buf [8]byte
	if err := rd.readFull(buf[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(buf[:]), nil
}

// F32 reads a little-endian IEEE-754 32-bit float.
func (rd *Reader) F32() (float32, error) {
	v, err := rd.U32()
	return math32FromBits(v), err
}

// F64 reads a little-endian IEEE-754 64-bit float.
func (rd *Reader) F64() (float64, error) {
	v, err := rd.U64()
	return math64FromBits(v), err
}

// Complex128 reads a complex128 as two consecutive f64 values, real first.
func (rd *Reader) Complex128() (complex128, error) {
	re, err := rd.F64()
	if err != nil {
		return 0, err
	}

	im, err := rd.F64()
	if err != nil {
		return 0, err
	}

	return complex(re, im), nil
}

// String reads a u32 length followed by that many bytes (no terminator).
func (rd *Reader) String() (string, error) {
	n, err := rd.U32()
	if err != nil {
		return "", err
	}

	buf, err := rd.Bytes(int(n))
	if err != nil {
		return "", err
	}

	return string(buf), nil
}

// SequenceLength reads the u32 length prefix of a homogeneous sequence.
func (rd *Reader) SequenceLength() (int, error) {
	n, err := rd.U32()
	if err != nil {
		return 0, err
	}

	return int(n), nil
}

// I32Slice reads a u32-length-prefixed sequence of int32 values.
func (rd *Reader) I32Slice() ([]int32, error) {
	n, err := rd.SequenceLength()
	if err != nil {
		return nil, err
	}

	out := make([]int32, n)
	for i := range out {
		v, err := rd.I32()
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

// Complex128Slice reads a u32-length-prefixed sequence of complex128 values.
func (rd *Reader) Complex128Slice() ([]complex128, error) {
	n, err := rd.SequenceLength()
	if err != nil {
		return nil, err
	}

	out := make([]complex128, n)
	for i := range out {
		v, err := rd.Complex128()
		if err != nil {
			return nil, err
		}

		out[i] = v
	}

	return out, nil
}

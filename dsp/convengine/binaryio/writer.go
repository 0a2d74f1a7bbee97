package binaryio

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// Writer writes little-endian primitives and composite values to an
// underlying io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps an existing io.Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// createCloser bundles the file handle(s) that must be closed (and, for
// gzip, flushed) after writing.
type createCloser struct {
	closers []io.Closer
}

func (c createCloser) Close() error {
	var firstErr error
	// Close in reverse order: gzip writer (flush) before the underlying file.
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// CreateWriter creates path for writing, transparently gzipping if path
// ends in ".gz". The caller must Close the returned closer to flush data.
func CreateWriter(path string) (*Writer, io.Closer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create %s: %v", ErrIoFailure, path, err)
	}

	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		return NewWriter(gz), createCloser{closers: []io.Closer{f, gz}}, nil
	}

	return NewWriter(f), f, nil
}

func (wr *Writer) fail(context string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrIoFailure, context, err)
}

func (wr *Writer) writeFull(buf []byte) error {
	_, err := wr.w.Write(buf)
	if err != nil {
		return wr.fail("short write", err)
	}

	return nil
}

// Bytes writes a raw byte slice verbatim (used for fixed-size magic markers).
func (wr *Writer) Bytes(b []byte) error {
	return wr.writeFull(b)
}

// Bool writes a single byte: 1 for true, 0 for false.
func (wr *Writer) Bool(v bool) error {
	var b byte
	if v {
		b = 1
	}

	return wr.writeFull([]byte{b})
}

// I8 writes a signed 8-bit integer.
func (wr *Writer) I8(v int8) error {
	return wr.writeFull([]byte{byte(v)})
}

// U8 writes an unsigned 8-bit integer.
func (wr *Writer) U8(v uint8) error {
	return wr.writeFull([]byte{v})
}

// I16 writes a little-endian signed 16-bit integer.
func (wr *Writer) I16(v int16) error {
	return wr.U16(uint16(v))
}

// U16 writes a little-endian unsigned 16-bit integer.
func (wr *Writer) U16(v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)

	return wr.writeFull(buf[:])
}

// I32 writes a little-endian signed 32-bit integer.
func (wr *Writer) I32(v int32) error {
	return wr.U32(uint32(v))
}

// U32 writes a little-endian unsigned 32-bit integer.
func (wr *Writer) U32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)

	return wr.writeFull(buf[:])
}

// I64 writes a little-endian signed 64-bit integer.
func (wr *Writer) I64(v int64) error {
	return wr.U64(uint64(v))
}

// U64 writes a little-endian unsigned 64-bit integer.
func (wr *Writer) U64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)

	return wr.writeFull(buf[:])
}

// F32 writes a little-endian IEEE-754 32-bit float.
func (wr *Writer) F32(v float32) error {
	return wr.U32(math32Bits(v))
}

// F64 writes a little-endian IEEE-754 64-bit float.
func (wr *Writer) F64(v float64) error {
	return wr.U64(math64Bits(v))
}

// Complex128 writes a complex128 as two consecutive f64 values, real first.
func (wr *Writer) Complex128(v complex128) error {
	if err := wr.F64(real(v)); err != nil {
		return err
	}

	return wr.F64(imag(v))
}

// String writes a u32 length prefix followed by the raw bytes, no terminator.
func (wr *Writer) String(s string) error {
	if err := wr.U32(uint32(len(s))); err != nil {
		return err
	}

	return wr.writeFull([]byte(s))
}

// SequenceLength writes the u32 length prefix of a homogeneous sequence.
func (wr *Writer) SequenceLength(n int) error {
	return wr.U32(uint32(n))
}

// I32Slice writes a u32-length-prefixed sequence of int32 values.
func (wr *Writer) I32Slice(v []int32) error {
	if err := wr.SequenceLength(len(v)); err != nil {
		return err
	}

	for _, x := range v {
		if err := wr.I32(x); err != nil {
			return err
		}
	}

	return nil
}

// Complex128Slice writes a u32-length-prefixed sequence of complex128 values.
func (wr *Writer) Complex128Slice(v []complex128) error {
	if err := wr.SequenceLength(len(v)); err != nil {
		return err
	}

	for _, x := range v {
		if err := wr.Complex128(x); err != nil {
			return err
		}
	}

	return nil
}

// Package binaryio provides little-endian primitive and composite I/O for
// the convolution engine's persisted FFT plans and related data.
//
// The format operates on a closed set of primitive types (8/16/32/64-bit
// signed and unsigned integers, 32- and 64-bit floats, complex128, bool, and
// length-prefixed strings) plus homogeneous sequences written as a u32
// length followed by elements. All failures (short read, open failure,
// underlying I/O error) are reported as ErrIoFailure.
package binaryio

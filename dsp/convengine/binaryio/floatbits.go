package binaryio

import "math"

func math32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func math64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

func math32Bits(v float32) uint32 {
	return math.Float32bits(v)
}

func math64Bits(v float64) uint64 {
	return math.Float64bits(v)
}

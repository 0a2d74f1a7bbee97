package stagedfft

import "github.com/cwbudde/algo-vecmath"

// Magnitude writes |spectrum[i]| into out for every bin, using the same
// vectorizable real/imaginary split the rest of this library's spectral
// code (dsp/spectrum) uses.
func Magnitude(out []float64, spectrum []complex128) {
	n := len(spectrum)
	if len(out) < n {
		n = len(out)
	}

	re := make([]float64, n)
	im := make([]float64, n)

	for i := 0; i < n; i++ {
		re[i] = real(spectrum[i])
		im[i] = imag(spectrum[i])
	}

	vecmath.Magnitude(out[:n], re, im)
}

// Package directsec implements the direct (overlap-save) convolution leg
// of the partitioned convolution engine: a length-n block section whose
// FFT/multiply/IFFT work is sized to run off the audio thread inside its
// scheduling lead time, while still offering a sample-by-sample Tick mode
// for sections small enough to run inline.
//
// Section follows the same overlap-save shape as dsp/conv's OverlapSave —
// a precomputed kernel transform, a 2n-length complex scratch window, and
// an algofft.Plan reused across blocks — generalised to the engine's two
// calling conventions: Execute reads its window directly from a shared
// syncdelay.Line and publishes to a syncdelay.OutputQueue; Tick keeps its
// own 2n-slot sliding buffer and returns one delayed output sample at a
// time.
package directsec

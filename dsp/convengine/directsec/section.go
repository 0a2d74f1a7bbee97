package directsec

import (
	"fmt"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/algo-dsp/dsp/convengine/syncdelay"
)

// Section performs length-n overlap-save convolution against one slice of
// an impulse response. It is not safe for concurrent use by more than one
// caller; Execute is intended to run on a worker goroutine and Tick on the
// audio thread, never both for the same Section.
type Section struct {
	n            int
	sampleOffset int
	delay        int

	plan       *algofft.Plan[complex128]
	impulseFFT []complex128

	window  []complex128 // 2n scratch, reused by both Execute and Tick
	scratch []complex128

	slidingBuffer []float64    // Tick-mode 2n input window
	tickOutput    []complex128 // Tick-mode 2n output window, refreshed each wrap
	tickIndex     int

	readBuf []float64 // Execute-mode 2n scratch for the delay-line read
}

// NewSection builds a section covering impulse[sampleOffset:sampleOffset+n]
// (zero-extended as needed). Delay defaults to n; override with SetDelay
// once the engine has computed a benchmarked lead time for this size.
func NewSection(n int, impulse []float64, sampleOffset int) (*Section, error) {
	if n <= 0 {
		return nil, fmt.Errorf("directsec: invalid section size %d", n)
	}

	size := 2 * n
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("directsec: new plan: %w", err)
	}

	padded := make([]complex128, size)
	for i := 0; i < n; i++ {
		idx := sampleOffset + i
		if idx >= 0 && idx < len(impulse) {
			padded[i] = complex(impulse[idx], 0)
		}
	}

	impulseFFT := make([]complex128, size)
	if err := plan.Forward(impulseFFT, padded); err != nil {
		return nil, fmt.Errorf("directsec: impulse transform: %w", err)
	}

	return &Section{
		n:             n,
		sampleOffset:  sampleOffset,
		delay:         n,
		plan:          plan,
		impulseFFT:    impulseFFT,
		window:        make([]complex128, size),
		scratch:       make([]complex128, size),
		slidingBuffer: make([]float64, size),
		tickOutput:    make([]complex128, size),
		readBuf:       make([]float64, size),
	}, nil
}

// Size returns the block size n.
func (s *Section) Size() int { return s.n }

// SampleOffset returns the section's offset within the impulse response.
func (s *Section) SampleOffset() int { return s.sampleOffset }

// Delay returns the section's scheduling lead time in samples.
func (s *Section) Delay() int { return s.delay }

// SetDelay overrides the default n-sample lead time with a caller-supplied
// value, typically derived from a benchmarked execution cost.
func (s *Section) SetDelay(delay int) { s.delay = delay }

// Execute reads the length-2n window ending at sample t from the shared
// delay line, transforms it, multiplies by the precomputed impulse
// transform, inverse-transforms, and writes the back half (n samples) to
// output. It returns ErrClosed if input was closed while waiting.
func (s *Section) Execute(input *syncdelay.Line, t uint64, output *syncdelay.OutputQueue) error {
	size := uint64(2 * s.n)
	start := t + 1 - size

	if err := input.ReadRange(start, size, 0, s.readBuf); err != nil {
		return err
	}

	for i, v := range s.readBuf {
		s.window[i] = complex(v, 0)
	}

	if err := s.plan.Forward(s.window, s.window); err != nil {
		return fmt.Errorf("directsec: forward: %w", err)
	}

	for i := range s.window {
		s.scratch[i] = s.window[i] * s.impulseFFT[i]
	}

	if err := s.plan.Inverse(s.window, s.scratch); err != nil {
		return fmt.Errorf("directsec: inverse: %w", err)
	}

	tail := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		tail[i] = real(s.window[s.n+i])
	}

	output.Write(s.n, 0, tail)
	return nil
}

// Tick drives the section sample-by-sample from the audio thread. It
// returns the output sample delayed by n samples (Delay()), computing the
// next block's transform once every n calls.
func (s *Section) Tick(x float64) float64 {
	out := real(s.tickOutput[s.n+s.tickIndex])

	s.slidingBuffer[s.n+s.tickIndex] = x
	s.tickIndex++

	if s.tickIndex == s.n {
		s.updateBuffer()
		s.tickIndex = 0
	}

	return out
}

// updateBuffer recomputes the transform once a full block of n new samples
// has accumulated, using the still-intact [history, new block] window, then
// shifts the new block into the history half for the next round.
func (s *Section) updateBuffer() {
	for i, v := range s.slidingBuffer {
		s.window[i] = complex(v, 0)
	}

	if err := s.plan.Forward(s.window, s.window); err == nil {
		for i := range s.window {
			s.scratch[i] = s.window[i] * s.impulseFFT[i]
		}
		_ = s.plan.Inverse(s.tickOutput, s.scratch)
	}

	copy(s.slidingBuffer[:s.n], s.slidingBuffer[s.n:])
}

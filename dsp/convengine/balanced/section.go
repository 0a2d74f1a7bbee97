// Package balanced implements the balanced-FFT convolution leg: sections
// whose compiled fftplan.Plan spreads butterfly work evenly across every
// sample tick instead of concentrating it at block boundaries.
package balanced

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/convengine/fftplan"
)

// Section convolves a length-n slice of the impulse response against a
// streaming input with flat per-sample cost, driven by a compiled Plan of
// size n (FFT length 2n internally).
type Section struct {
	size int
	plan *fftplan.Plan

	working []complex128
	slot    int
}

// NewSection builds a section covering impulse[sampleOffset:sampleOffset+n]
// (zero-extended as needed), consulting the on-disk plan cache (see
// SetPlanFileDirectory) before compiling one.
func NewSection(n int, impulse []float64, sampleOffset int) (*Section, error) {
	if n <= 0 {
		return nil, fmt.Errorf("balanced: invalid section size %d", n)
	}

	slice := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := sampleOffset + i
		if idx >= 0 && idx < len(impulse) {
			slice[i] = impulse[idx]
		}
	}

	plan, err := loadOrCompilePlan(n, slice)
	if err != nil {
		return nil, err
	}

	s := &Section{
		size: n,
		plan: plan,
	}
	s.Reset()
	return s, nil
}

// Size returns the section size n.
func (s *Section) Size() int { return s.size }

// Delay returns the section's algorithmic latency in samples: the plan's
// maximum delay, minus half the FFT length, since the section only needs
// to have accumulated half a window before its output is meaningful.
func (s *Section) Delay() int {
	return s.plan.Delay() - s.plan.Size()/2
}

// Tick accepts one input sample, advances the internal slot index, and
// returns the plan's output for this slot.
func (s *Section) Tick(x float64) float64 {
	result := real(s.plan.Tick(s.slot, complex(x, 0), s.working))
	s.slot++
	if s.slot >= s.plan.Size() {
		s.slot = 0
	}
	return result
}

// Reset reinitialises working memory and returns the slot index to the
// plan's starting slot.
func (s *Section) Reset() {
	s.working = make([]complex128, s.plan.StorageSize())
	s.plan.InitializeConstants(s.working)
	s.slot = s.plan.StartingIndex()
}

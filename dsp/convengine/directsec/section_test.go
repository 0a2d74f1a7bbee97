package directsec

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/convengine/syncdelay"
)

func TestSectionSizeAndDelay(t *testing.T) {
	impulse := []float64{1, 2, 3, 4}
	s, err := NewSection(4, impulse, 0)
	if err != nil {
		t.Fatalf("NewSection: %v", err)
	}
	if s.Size() != 4 {
		t.Errorf("Size() = %d, want 4", s.Size())
	}
	if s.Delay() != 4 {
		t.Errorf("Delay() = %d, want 4 (default n)", s.Delay())
	}
	s.SetDelay(10)
	if s.Delay() != 10 {
		t.Errorf("Delay() after SetDelay = %d, want 10", s.Delay())
	}
}

// TestSectionTickRecoversImpulseResponse feeds a unit impulse through Tick
// and checks the delayed output matches the section's impulse slice,
// confirming the forward/multiply/inverse round trip has unit gain.
func TestSectionTickRecoversImpulseResponse(t *testing.T) {
	n := 8
	impulse := make([]float64, n)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range impulse {
		impulse[i] = rng.Float64()*2 - 1
	}

	s, err := NewSection(n, impulse, 0)
	if err != nil {
		t.Fatalf("NewSection: %v", err)
	}

	total := 4 * n
	out := make([]float64, total)
	for i := 0; i < total; i++ {
		x := 0.0
		if i == 0 {
			x = 1
		}
		out[i] = s.Tick(x)
	}

	delay := s.Delay()
	for i := 0; i < n; i++ {
		got := out[delay+i]
		want := impulse[i]
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("out[%d] = %v, want %v", delay+i, got, want)
		}
	}
}

func TestSectionExecuteWritesOutputQueue(t *testing.T) {
	n := 8
	impulse := make([]float64, n)
	impulse[0] = 1

	s, err := NewSection(n, impulse, 0)
	if err != nil {
		t.Fatalf("NewSection: %v", err)
	}

	line := syncdelay.NewLine(256, 32)
	for i := 0; i < 2*n; i++ {
		x := 0.0
		if i == n {
			x = 1
		}
		line.Write(x)
	}
	line.SynchWrite()

	var q syncdelay.OutputQueue
	q.SetSize(n)

	if err := s.Execute(line, uint64(2*n), &q); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := q.Read()
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("first output sample = %v, want ~1 (impulse response onset)", got)
	}
}

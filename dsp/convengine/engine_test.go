package convengine

import (
	"fmt"
	"math"
	"testing"
)

func process(t *testing.T, e *Engine, in []float64) []float64 {
	t.Helper()
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = e.Tick(x)
	}
	return out
}

// TestEngineSeedScenarioS2 covers spec.md §8 S2: a short impulse recovered
// sample-for-sample from a unit impulse input, below the size that would
// engage any balanced or direct section (everything runs through the direct
// dot-product leg).
func TestEngineSeedScenarioS2(t *testing.T) {
	const n = 100
	h := make([]float64, n)
	for i := range h {
		h[i] = float64(i)
	}

	e, err := New(h, 48000, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	in := make([]float64, n)
	in[0] = 1
	out := process(t, e, in)

	for k := 0; k < n; k++ {
		want := h[k]
		got := out[k]
		if math.Abs(got-want) > math.Abs(want)*1e-4+1e-6 {
			t.Fatalf("k=%d: got %v, want %v", k, got, want)
		}
	}
}

// TestEngineImpulseResponseMatchesLargerImpulse exercises invariant 5 with
// an impulse response large enough to engage the balanced and direct-worker
// legs, checking pre-delay silence and post-delay recovery of h.
func TestEngineImpulseResponseMatchesLargerImpulse(t *testing.T) {
	const n = 4096
	h := make([]float64, n)
	for i := range h {
		h[i] = math.Sin(float64(i) * 0.013)
	}

	e, err := New(h, 48000, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	total := n + 2048
	in := make([]float64, total)
	in[0] = 1

	out := make([]float64, total)
	for i := 0; i < total; i += 256 {
		end := i + 256
		if end > total {
			end = total
		}
		if err := e.TickBuffer(out[i:end], in[i:end]); err != nil {
			t.Fatalf("TickBuffer: %v", err)
		}
	}

	delay := 0 // the direct leg alone has zero extra delay
	for k := 0; k < delay; k++ {
		if out[k] != 0 {
			t.Fatalf("pre-delay sample %d = %v, want exactly zero", k, out[k])
		}
	}

	var maxAbsErr float64
	for k := 0; k < n; k++ {
		want := h[k]
		got := out[k+delay]
		errAbs := math.Abs(got - want)
		tol := math.Abs(want)*1e-3 + 1e-3
		if errAbs > tol {
			t.Errorf("k=%d: got %v, want %v (err=%v, tol=%v)", k, got, want, errAbs, tol)
		}
		if errAbs > maxAbsErr {
			maxAbsErr = errAbs
		}
	}

	if e.UnderrunCount() != 0 {
		t.Fatalf("UnderrunCount() = %d, want 0", e.UnderrunCount())
	}
}

// TestEngineLinearity covers invariant 4: engine(h).process(ax+by) ==
// a*engine(h).process(x) + b*engine(h).process(y), within tolerance.
func TestEngineLinearity(t *testing.T) {
	const n = 1024
	h := make([]float64, n)
	for i := range h {
		h[i] = math.Cos(float64(i)*0.02) / float64(i+1)
	}

	newEngine := func(t *testing.T) *Engine {
		e, err := New(h, 48000, 256)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return e
	}

	const length = n + 512
	x := make([]float64, length)
	y := make([]float64, length)
	for i := range x {
		x[i] = math.Sin(float64(i) * 0.05)
		y[i] = math.Cos(float64(i) * 0.031)
	}

	const a, b = 1.7, -0.4
	mixed := make([]float64, length)
	for i := range mixed {
		mixed[i] = a*x[i] + b*y[i]
	}

	ex := newEngine(t)
	defer ex.Close()
	outX := process(t, ex, x)

	ey := newEngine(t)
	defer ey.Close()
	outY := process(t, ey, y)

	em := newEngine(t)
	defer em.Close()
	outMixed := process(t, em, mixed)

	for i := 0; i < length; i++ {
		want := a*outX[i] + b*outY[i]
		got := outMixed[i]
		tol := math.Abs(want)*1e-3 + 1e-3
		if math.Abs(got-want) > tol {
			t.Fatalf("i=%d: got %v, want %v", i, got, want)
		}
	}
}

// runPeriodicImpulse feeds a unit impulse at the start of every len(h)-
// sample period through e, in bufSize-sample blocks, for at least
// minSamples samples (rounded up to a whole number of periods so every
// period in the trace is complete), and returns the full output trace.
func runPeriodicImpulse(t *testing.T, e *Engine, h []float64, minSamples, bufSize int) []float64 {
	t.Helper()

	n := len(h)
	periods := (minSamples + n - 1) / n
	if periods < 2 {
		periods = 2
	}
	total := periods * n

	in := make([]float64, total)
	for i := 0; i < total; i += n {
		in[i] = 1
	}

	out := make([]float64, total)
	for i := 0; i < total; i += bufSize {
		end := i + bufSize
		if end > total {
			end = total
		}
		if err := e.TickBuffer(out[i:end], in[i:end]); err != nil {
			t.Fatalf("TickBuffer: %v", err)
		}
	}
	return out
}

// checkPeriodsMatch verifies every period in out after the first (the warm-up
// period) reproduces h within tolerance.
func checkPeriodsMatch(t *testing.T, out, h []float64) {
	t.Helper()

	n := len(h)
	for period := 1; period*n+n <= len(out); period++ {
		base := period * n
		for k := 0; k < n; k++ {
			want := h[k]
			got := out[base+k]
			tol := math.Abs(want)*1e-4 + 1e-4
			if math.Abs(got-want) > tol {
				t.Fatalf("period %d, k=%d: got %v, want %v", period, k, got, want)
			}
		}
	}
}

// TestEngineSeedScenarioS3 covers spec.md §8 S3: h[i] = i for a 65539-sample
// impulse, driven by a periodic unit impulse; every period after the first
// must reproduce h, and the engine must report zero underruns over a
// realtime-rate (48kHz/256-sample-buffer) 5-second simulation.
func TestEngineSeedScenarioS3(t *testing.T) {
	const n = 65539
	h := make([]float64, n)
	for i := range h {
		h[i] = float64(i)
	}

	e, err := New(h, 48000, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	const minSamples = 5 * 48000
	out := runPeriodicImpulse(t, e, h, minSamples, 256)
	checkPeriodsMatch(t, out, h)

	if e.UnderrunCount() != 0 {
		t.Fatalf("UnderrunCount() = %d, want 0", e.UnderrunCount())
	}
}

// TestEngineRealtimeSimulationZeroUnderruns covers spec.md §8 invariant 7:
// run a realtime-rate simulation (48kHz, 256-sample buffer, at least 5
// seconds) against each of the three named impulse lengths, and require the
// recovered output to match the impulse with zero underruns throughout.
func TestEngineRealtimeSimulationZeroUnderruns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping realtime-rate invariant-7 simulation in -short mode")
	}

	for _, n := range []int{683 + 255, 939 + 511, 32554} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			h := make([]float64, n)
			for i := range h {
				h[i] = math.Sin(float64(i)*0.017) + 1
			}

			e, err := New(h, 48000, 256)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer e.Close()

			const minSamples = 5 * 48000
			out := runPeriodicImpulse(t, e, h, minSamples, 256)
			checkPeriodsMatch(t, out, h)

			if e.UnderrunCount() != 0 {
				t.Fatalf("UnderrunCount() = %d, want 0", e.UnderrunCount())
			}
		})
	}
}

// TestEngineClosedIsIdempotentAndJoinsWorkers exercises the shutdown
// sequencing for an impulse large enough to spawn worker goroutines.
func TestEngineClosedIsIdempotentAndJoinsWorkers(t *testing.T) {
	h := make([]float64, 20000)
	h[0] = 1

	e, err := New(h, 48000, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 4096; i++ {
		e.Tick(float64(i % 7))
	}

	e.Close()
	e.Close() // idempotent
}

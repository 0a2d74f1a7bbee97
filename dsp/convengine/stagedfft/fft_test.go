package stagedfft

import (
	"math"
	"math/rand/v2"
	"testing"
)

func makeRandomSignal(t *testing.T, n int) []complex128 {
	t.Helper()

	rng := rand.New(rand.NewPCG(7, 11))
	sig := make([]complex128, n)

	for i := range sig {
		sig[i] = complex(rng.Float64()*2-1, rng.Float64()*2-1)
	}

	return sig
}

func TestForwardBackwardRoundTrip(t *testing.T) {
	t.Cleanup(resetPlanCacheForTest)

	for _, n := range []int{4, 32768} {
		fft, err := New(n)
		if err != nil {
			t.Fatalf("New(%d): %v", n, err)
		}

		input := makeRandomSignal(t, n)
		freq := make([]complex128, n)
		back := make([]complex128, n)

		if err := fft.Forward(freq, input); err != nil {
			t.Fatalf("Forward: %v", err)
		}

		if err := fft.Inverse(back, freq); err != nil {
			t.Fatalf("Inverse: %v", err)
		}

		for i := range input {
			if diff := cmplxAbs(back[i] - input[i]); diff > 1e-7 {
				t.Fatalf("n=%d i=%d: roundtrip error %g (got %v want %v)", n, i, diff, back[i], input[i])
			}
		}
	}
}

func TestForwardSineBinMagnitude(t *testing.T) {
	t.Cleanup(resetPlanCacheForTest)

	const n = 1024
	const freqBin = 7

	fft, err := New(n)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	input := make([]complex128, n)
	for i := range input {
		input[i] = complex(math.Sin(2*math.Pi*float64(freqBin)*float64(i)/float64(n)), 0)
	}

	out := make([]complex128, n)
	if err := fft.Forward(out, input); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	mag := make([]float64, n)
	Magnitude(mag, out)

	wantPeak := math.Sqrt(float64(n)) / 2

	for i, m := range mag {
		if i == freqBin || i == n-freqBin {
			if math.Abs(m-wantPeak) > 1e-7 {
				t.Fatalf("bin %d: got magnitude %g, want %g", i, m, wantPeak)
			}

			continue
		}

		if m > 1e-7 {
			t.Fatalf("bin %d: expected near-zero magnitude, got %g", i, m)
		}
	}
}

func TestInvalidSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size 0")
	}

	if _, err := New(100); err == nil {
		t.Fatal("expected error for non-power-of-two size")
	}
}

func TestStagingTierFlags(t *testing.T) {
	t.Cleanup(resetPlanCacheForTest)

	small, err := New(16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !small.IsL1Optimized() || !small.IsL2Optimized() {
		t.Fatalf("size 16 should be within both L1 and L2 thresholds")
	}

	SetCacheConfig(CacheConfig{L1: 8, L2: 64})
	t.Cleanup(func() { SetCacheConfig(DefaultCacheConfig()) })

	staged, err := New(32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if staged.IsL1Optimized() {
		t.Fatal("size 32 should exceed the overridden L1=8 threshold")
	}

	if !staged.IsL2Optimized() {
		t.Fatal("size 32 should be within the overridden L2=64 threshold")
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

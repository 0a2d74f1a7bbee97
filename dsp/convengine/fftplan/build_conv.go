package fftplan

import (
	"github.com/cwbudde/algo-dsp/dsp/convengine/stagedfft"
)

// buildConvolutionGraph constructs the dataflow graph for a balanced
// convolution section of size n: 3n input wires, processed as two
// overlapping 2n-sample windows (wires [0:2n) and [n:3n)), each
// independently forward-FFT'd, multiplied element-wise by the impulse's
// precomputed transform, inverse-FFT'd, and trimmed to its second half
// (standard overlap-save discard). The two halves' n-length output sets
// are concatenated into the plan's 2n outputs.
func buildConvolutionGraph(g *graph, n int, impulse []float64) (inputs, outputs []int32, impulseFftOffset int32, err error) {
	planSize := 2 * n

	impulseTransform, err := computeImpulseTransform(impulse, planSize)
	if err != nil {
		return nil, nil, 0, err
	}

	impulseConsts := make([]int32, planSize)
	for i, v := range impulseTransform {
		impulseConsts[i] = g.addConstantNoDedup(v)
	}
	impulseFftOffset = g.nodes[impulseConsts[0]].storageIndex // placeholder; storage assigned later by allocator
	zeroConst := g.addConstant(0)

	inputs = make([]int32, 3*n)
	for t := 0; t < 3*n; t++ {
		inputs[t] = g.addInput(int32(t))
	}

	firstWindow := inputs[0:planSize]
	secondWindow := inputs[n : n+planSize]

	firstOut := halfConvolutionSection(g, firstWindow, impulseConsts, zeroConst, n)
	secondOut := halfConvolutionSection(g, secondWindow, impulseConsts, zeroConst, n)

	outputs = make([]int32, 0, planSize)
	outputs = append(outputs, firstOut...)
	outputs = append(outputs, secondOut...)

	return inputs, outputs, impulseConsts[0], nil
}

// halfConvolutionSection forward-FFTs a 2n-sample window, multiplies it by
// the impulse transform via a "hacked" butterfly (a zero-valued left
// operand degenerates the butterfly's left output to exactly M*input),
// inverse-FFTs, and returns the kept second half.
func halfConvolutionSection(g *graph, window []int32, impulseConsts []int32, zeroConst int32, n int) []int32 {
	freq := buildFFTGraphFromInputs(g, window, Forward)

	multiplied := make([]int32, len(freq))
	for i := range freq {
		bf := g.addButterfly(zeroConst, freq[i], impulseConsts[i])
		multiplied[i] = g.addLeftOutput(bf)
	}

	inv := buildFFTGraphFromInputs(g, multiplied, Backward)

	return inv[n:]
}

// computeImpulseTransform zero-extends impulse to planSize complex
// samples, with the impulse placed in the second half, and returns its
// forward transform.
func computeImpulseTransform(impulse []float64, planSize int) ([]complex128, error) {
	padded := make([]complex128, planSize)
	offset := planSize - len(impulse)
	for i, v := range impulse {
		padded[offset+i] = complex(v, 0)
	}

	fft, err := stagedfft.New(planSize)
	if err != nil {
		return nil, err
	}

	out := make([]complex128, planSize)
	if err := fft.Forward(out, padded); err != nil {
		return nil, err
	}
	return out, nil
}

package fftplan

import "fmt"

const selfCheckGenerations = 20

const (
	generationUninitialized = -1
	generationConstant      = -2
)

// selfCheck simulates selfCheckGenerations cycles of plan execution,
// tagging every storage slot with the generation (tick count) of the
// sample currently occupying it, and verifies that every op only ever
// combines data from a single generation and that each step's designated
// output carries the generation its published delay implies.
func selfCheck(p *Plan) error {
	if len(p.steps) == 0 {
		return nil
	}

	gen := make([]int, p.storageSize)
	for i := range gen {
		gen[i] = generationUninitialized
	}
	for _, c := range p.constants {
		gen[c.Index] = generationConstant
	}

	expectedOutput := -1
	outputDelay := p.maxDelay
	stepIndex := 0

	for generation := 0; generation < selfCheckGenerations; generation++ {
		for range p.steps {
			step := &p.steps[stepIndex]

			if step.InputIndex2 != -1 {
				gen[step.InputIndex2] = gen[step.InputIndex]
			}
			gen[step.InputIndex] = generation

			for _, op := range step.Ops {
				l, r := gen[op.In0], gen[op.In1]
				var out int
				switch {
				case l < 0:
					out = r
				case r < 0:
					out = l
				default:
					if l != r {
						return fmt.Errorf("%w: step %d mixes generations %d and %d", ErrSelfCheckFailed, stepIndex, l, r)
					}
					out = l
				}
				gen[op.Out] = out
				gen[op.Out+1] = out
			}

			outputGen := gen[step.OutputIndex]
			if outputGen != generationConstant && outputGen != expectedOutput {
				return fmt.Errorf("%w: step %d: output carries generation %d, want %d", ErrSelfCheckFailed, stepIndex, outputGen, expectedOutput)
			}

			outputDelay--
			if outputDelay == 0 {
				expectedOutput++
				outputDelay = len(p.steps)
			}

			stepIndex++
			if stepIndex == len(p.steps) {
				stepIndex = 0
			}
		}
	}

	return nil
}

package fftplan

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/convengine/binaryio"
)

// planMagic is the 8-byte magic string at the head of every plan file.
const planMagic = "FftPlan\x00"

// planVersion is the wire-format version this package reads and writes.
const planVersion = 101

// planMagicTail closes every plan file as a last corruption check.
const planMagicTail = 0x10394A2BE7F3C34D

// WritePlan serialises p in the §6 wire format.
func WritePlan(wr *binaryio.Writer, p *Plan) error {
	if err := wr.Bytes([]byte(planMagic)); err != nil {
		return err
	}

	if err := wr.U64(planVersion); err != nil {
		return err
	}

	if err := wr.F64(p.norm); err != nil {
		return err
	}

	if err := wr.U64(uint64(p.maxDelay)); err != nil {
		return err
	}

	if err := wr.U64(uint64(p.storageSize)); err != nil {
		return err
	}

	if err := wr.U64(uint64(len(p.steps))); err != nil {
		return err
	}

	for i := range p.steps {
		if err := writeStep(wr, &p.steps[i]); err != nil {
			return err
		}
	}

	if err := wr.U64(uint64(p.constantsOffset)); err != nil {
		return err
	}

	if err := wr.U64(uint64(len(p.constants))); err != nil {
		return err
	}

	for _, c := range p.constants {
		if err := wr.Complex128(c.Value); err != nil {
			return err
		}
	}

	if err := wr.U64(uint64(p.startingIndex)); err != nil {
		return err
	}

	if err := wr.U64(uint64(p.impulseFftOffset)); err != nil {
		return err
	}

	return wr.U64(planMagicTail)
}

func writeStep(wr *binaryio.Writer, s *Step) error {
	if err := wr.I32(s.InputIndex); err != nil {
		return err
	}

	if err := wr.I32(s.InputIndex2); err != nil {
		return err
	}

	if err := wr.I32(s.OutputIndex); err != nil {
		return err
	}

	if err := wr.U64(uint64(len(s.Ops))); err != nil {
		return err
	}

	for _, op := range s.Ops {
		if err := wr.I32(op.In0); err != nil {
			return err
		}

		if err := wr.I32(op.In1 - op.In0); err != nil {
			return err
		}

		if err := wr.I32(op.Out); err != nil {
			return err
		}

		if err := wr.I32(op.M); err != nil {
			return err
		}
	}

	return nil
}

// ReadPlan deserialises a plan written by WritePlan. It returns
// ErrInvalidPlanFile on a bad magic string, version mismatch, truncated
// stream, or bad tail constant; ErrIoFailure propagates unchanged for
// underlying stream failures.
func ReadPlan(rd *binaryio.Reader) (*Plan, error) {
	magic, err := rd.Bytes(8)
	if err != nil {
		return nil, err
	}

	if string(magic) != planMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidPlanFile, magic)
	}

	version, err := rd.U64()
	if err != nil {
		return nil, err
	}

	if version != planVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrInvalidPlanFile, version, planVersion)
	}

	norm, err := rd.F64()
	if err != nil {
		return nil, err
	}

	maxDelay, err := rd.U64()
	if err != nil {
		return nil, err
	}

	storageSize, err := rd.U64()
	if err != nil {
		return nil, err
	}

	stepsCount, err := rd.U64()
	if err != nil {
		return nil, err
	}

	steps := make([]Step, stepsCount)
	for i := range steps {
		s, err := readStep(rd)
		if err != nil {
			return nil, err
		}

		steps[i] = s
	}

	constantsOffset, err := rd.U64()
	if err != nil {
		return nil, err
	}

	constantsCount, err := rd.U64()
	if err != nil {
		return nil, err
	}

	constants := make([]ConstantEntry, constantsCount)

	for i := range constants {
		v, err := rd.Complex128()
		if err != nil {
			return nil, err
		}

		constants[i] = ConstantEntry{Index: int32(constantsOffset) + int32(i), Value: v}
	}

	startingIndex, err := rd.U64()
	if err != nil {
		return nil, err
	}

	impulseFftOffset, err := rd.U64()
	if err != nil {
		return nil, err
	}

	tail, err := rd.U64()
	if err != nil {
		return nil, err
	}

	if tail != planMagicTail {
		return nil, fmt.Errorf("%w: bad tail constant %#x", ErrInvalidPlanFile, tail)
	}

	return &Plan{
		norm:             norm,
		maxDelay:         int(maxDelay),
		storageSize:      int(storageSize),
		constantsOffset:  int(constantsOffset),
		constants:        constants,
		startingIndex:    int(startingIndex),
		impulseFftOffset: int(impulseFftOffset),
		steps:            steps,
	}, nil
}

func readStep(rd *binaryio.Reader) (Step, error) {
	in0, err := rd.I32()
	if err != nil {
		return Step{}, err
	}

	in1, err := rd.I32()
	if err != nil {
		return Step{}, err
	}

	out, err := rd.I32()
	if err != nil {
		return Step{}, err
	}

	opsCount, err := rd.U64()
	if err != nil {
		return Step{}, err
	}

	ops := make([]Op, opsCount)
	for i := range ops {
		opIn0, err := rd.I32()
		if err != nil {
			return Step{}, err
		}

		opIn1Delta, err := rd.I32()
		if err != nil {
			return Step{}, err
		}

		opOut, err := rd.I32()
		if err != nil {
			return Step{}, err
		}

		opM, err := rd.I32()
		if err != nil {
			return Step{}, err
		}

		ops[i] = Op{In0: opIn0, In1: opIn0 + opIn1Delta, Out: opOut, M: opM}
	}

	return Step{InputIndex: in0, InputIndex2: in1, OutputIndex: out, Ops: ops}, nil
}

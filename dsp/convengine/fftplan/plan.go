package fftplan

// Op is a single radix-2 butterfly primitive over a working-memory buffer:
// t := w[m]*w[in1]; w[out] := w[in0]+t; w[out+1] := w[in0]-t.
type Op struct {
	In0 int32
	In1 int32
	Out int32
	M   int32
}

// tick executes one op against working memory.
func (o Op) tick(w []complex128) {
	t := w[o.M] * w[o.In1]
	in0 := w[o.In0]
	w[o.Out] = in0 + t
	w[o.Out+1] = in0 - t
}

// Step is one of a Plan's size per-slot records.
type Step struct {
	InputIndex  int32 // always valid
	InputIndex2 int32 // -1 if this plan has no secondary input alias
	OutputIndex int32
	Ops         []Op
}

// tick writes value into the step's input slot(s), executes its ops in
// order, and returns the designated output slot's value.
func (s *Step) tick(value complex128, w []complex128) complex128 {
	w[s.InputIndex] = value
	if s.InputIndex2 != -1 {
		w[s.InputIndex2] = value
	}
	for i := range s.Ops {
		s.Ops[i].tick(w)
	}
	return w[s.OutputIndex]
}

// ConstantEntry seeds one working-memory slot at construction and reset.
type ConstantEntry struct {
	Index int32
	Value complex128
}

// Plan is an immutable, cache-shareable, serialisable compiled schedule.
type Plan struct {
	norm             float64
	maxDelay         int
	storageSize      int
	constantsOffset  int
	constants        []ConstantEntry
	startingIndex    int
	impulseFftOffset int
	steps            []Step
}

// Size is the number of per-sample scheduling slots: the section size in
// samples for a convolution section, or the FFT length for a pure FFT plan.
func (p *Plan) Size() int { return len(p.steps) }

// Delay is the end-to-end algorithmic delay in samples.
func (p *Plan) Delay() int { return p.maxDelay }

// StorageSize is the number of complex slots a working buffer needs.
func (p *Plan) StorageSize() int { return p.storageSize }

// Norm is the per-tick input normalisation factor (1/sqrt(ops-per-cycle-ish)
// in the reference; here 1/sqrt(Size())).
func (p *Plan) Norm() float64 { return p.norm }

// ConstantsOffset is the storage index of the first pre-seeded constant.
func (p *Plan) ConstantsOffset() int { return p.constantsOffset }

// ImpulseFftOffset is the storage index of the first impulse-transform
// constant, for convolution-section plans; zero (unused) for pure FFT
// plans.
func (p *Plan) ImpulseFftOffset() int { return p.impulseFftOffset }

// StartingIndex is the slot index a freshly reset section begins ticking
// from.
func (p *Plan) StartingIndex() int { return p.startingIndex }

// Steps exposes the compiled per-slot records, read-only.
func (p *Plan) Steps() []Step { return p.steps }

// InitializeConstants seeds w's constant slots. Called once at
// construction and again on every section reset.
func (p *Plan) InitializeConstants(w []complex128) {
	for _, c := range p.constants {
		w[c.Index] = c.Value
	}
}

// Tick executes the step at the given slot index, writing value*Norm()
// into the step's input slot(s) and returning the designated output slot.
func (p *Plan) Tick(slot int, value complex128, w []complex128) complex128 {
	return p.steps[slot].tick(value*complex(p.norm, 0), w)
}

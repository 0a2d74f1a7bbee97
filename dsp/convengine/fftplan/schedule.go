package fftplan

import (
	"math"
	"sort"
)

// builder drives graph construction through to a compiled Plan: schedule
// butterflies into per-slot budgeted slots, allocate storage, assemble
// steps, and self-check the result.
type builder struct {
	g       *graph
	inputs  []int32 // input node indices, in logical order
	outputs []int32 // output node indices (leaf views), in logical order

	// startingSlot offsets a freshly reset section's first tick into the
	// cycle; 0 for plain FFT plans, n for an n-sized convolution section
	// whose graph was built from two n-apart overlapping windows.
	startingSlot int

	// impulseFftOffsetNode is the graph node whose allocated storage slot
	// becomes the plan's ImpulseFftOffset; -1 (the default) for plans with
	// no precomputed impulse transform (plain FFT plans).
	impulseFftOffsetNode int32

	planSize       int
	maxOpsPerCycle int
	schedule       [][]int32 // indexed by absolute (unbounded) slot
	visited        []bool    // global, shared across every output's walk
}

func newBuilder(g *graph, inputs, outputs []int32) *builder {
	return &builder{g: g, inputs: inputs, outputs: outputs, impulseFftOffsetNode: -1}
}

// build runs scheduling, allocation, step assembly and the self-check,
// returning the compiled plan.
func (b *builder) build() (*Plan, error) {
	b.planSize = len(b.outputs)
	if b.planSize <= 1 {
		return &Plan{
			norm:          normFor(b.planSize),
			storageSize:   len(b.inputs),
			startingIndex: b.startingSlot,
			steps:         nil,
		}, nil
	}

	totalOps := b.countTotalButterflies()
	base := (totalOps + b.planSize - 1) / b.planSize
	b.maxOpsPerCycle = base * 3 / 2
	if b.maxOpsPerCycle < 1 {
		b.maxOpsPerCycle = 1
	}

	if err := b.scheduleOps(); err != nil {
		return nil, err
	}

	nextIndex, constants := b.allocateConstants()
	discardSlot := nextIndex
	nextIndex++
	nextIndex = b.allocateButterflies(nextIndex)

	maxDelay := b.calculateMaxDelay()

	steps := b.assembleSteps(maxDelay, discardSlot)

	impulseFftOffset := 0
	if b.impulseFftOffsetNode != -1 {
		impulseFftOffset = int(b.g.getStorageIndex(b.impulseFftOffsetNode))
	}

	p := &Plan{
		norm:             normFor(b.planSize),
		maxDelay:         maxDelay,
		storageSize:      int(nextIndex),
		constantsOffset:  constantsOffset(b.inputs, constants),
		constants:        constants,
		startingIndex:    b.startingSlot,
		impulseFftOffset: impulseFftOffset,
		steps:            steps,
	}

	if err := selfCheck(p); err != nil {
		return nil, err
	}

	return p, nil
}

func normFor(planSize int) float64 {
	if planSize <= 0 {
		return 1
	}
	return 1 / math.Sqrt(float64(planSize))
}

func constantsOffset(inputs []int32, constants []ConstantEntry) int {
	if len(constants) == 0 {
		return len(inputs)
	}
	min := constants[0].Index
	for _, c := range constants[1:] {
		if c.Index < min {
			min = c.Index
		}
	}
	return int(min)
}

func (b *builder) countTotalButterflies() int {
	visited := make([]bool, len(b.g.nodes))
	count := 0
	var walk func(idx int32)
	walk = func(idx int32) {
		if visited[idx] {
			return
		}
		visited[idx] = true
		for _, in := range b.g.inputsOf(idx) {
			walk(in)
		}
		if b.g.nodes[idx].kind == nodeButterfly {
			count++
		}
	}
	for _, o := range b.outputs {
		walk(o)
	}
	return count
}

// gatherPending does the global-visited post-order walk from one output,
// returning every not-yet-gathered butterfly it depends on in topological
// (dependency-first) order.
func (b *builder) gatherPending(idx int32) []int32 {
	var ops []int32
	var walk func(idx int32)
	walk = func(idx int32) {
		if b.visited[idx] {
			return
		}
		b.visited[idx] = true
		for _, in := range b.g.inputsOf(idx) {
			walk(in)
		}
		if b.g.nodes[idx].kind == nodeButterfly {
			ops = append(ops, idx)
		}
	}
	walk(idx)
	return ops
}

func (b *builder) scheduleOps() error {
	b.visited = make([]bool, len(b.g.nodes))
	b.schedule = make([][]int32, b.planSize)

	for _, out := range b.outputs {
		pending := b.gatherPending(out)

		for _, op := range pending {
			n := &b.g.nodes[op]
			n.earliest = max3(b.g.getEarliest(n.in[0]), b.g.getEarliest(n.in[1]), b.g.getEarliest(n.in[2]))
		}

		sort.SliceStable(pending, func(i, j int) bool {
			return b.g.getEarliest(pending[i]) < b.g.getEarliest(pending[j])
		})

		slot := int32(0)
		for _, op := range pending {
			if e := b.g.getEarliest(op); e > slot {
				slot = e
			}
			placed, err := b.scheduleOp(slot, op)
			if err != nil {
				return err
			}
			slot = placed
			b.g.nodes[op].earliest = placed
		}
	}
	return nil
}

func (b *builder) opCountAt(slot int32) int {
	count := 0
	for i := int(slot) % b.planSize; i < len(b.schedule); i += b.planSize {
		count += len(b.schedule[i])
	}
	return count
}

func (b *builder) scheduleOp(slot int32, op int32) (int32, error) {
	slotsTried := 0
	for {
		if b.opCountAt(slot) < b.maxOpsPerCycle {
			for len(b.schedule) <= int(slot) {
				b.schedule = append(b.schedule, nil)
			}
			b.schedule[slot] = append(b.schedule[slot], op)
			return slot, nil
		}
		slot++
		slotsTried++
		if slotsTried == b.planSize {
			return 0, ErrPlanCompileFailure
		}
	}
}

// allocateConstants assigns every constant node (in creation order, for
// determinism) a fresh contiguous storage slot starting right after the
// input ring.
func (b *builder) allocateConstants() (int32, []ConstantEntry) {
	next := int32(len(b.inputs))
	entries := make([]ConstantEntry, 0, len(b.g.constantOrder))
	for _, idx := range b.g.constantOrder {
		n := &b.g.nodes[idx]
		n.storageIndex = next
		entries = append(entries, ConstantEntry{Index: next, Value: n.value})
		next++
	}
	return next, entries
}

// butterflyViews records a butterfly's left/right output-view node indices
// (-1 if that half was never wrapped, e.g. the "hacked" single-output
// multiply butterflies buildConvolutionGraph uses for the impulse product).
type butterflyViews struct {
	left, right int32
}

// allocateButterflies walks the flattened schedule in slot order, assigning
// every butterfly a 2-slot storage pair through an indexAllocator that
// recycles a pair once every consumer that reads it has been scheduled —
// ported from the reference's reference-counted IndexAllocator/SlotUsage
// (BalancedFft.cpp), which runs this recycling path by default.
//
// A butterfly's pair is freed once both its output views (when they exist)
// have had their single downstream consumer scheduled; nodes named in
// b.outputs hold one extra, never-released reference so the plan's final
// results are never recycled out from under it. Because a node's scheduled
// slot is always >= its operands' scheduled slots, walking the schedule in
// order guarantees dependencies are allocated before their dependents.
func (b *builder) allocateButterflies(next int32) int32 {
	consumerOf := make([]int32, len(b.g.nodes))
	views := make([]butterflyViews, len(b.g.nodes))
	for i := range b.g.nodes {
		consumerOf[i] = -1
		views[i] = butterflyViews{-1, -1}
	}
	for i := range b.g.nodes {
		n := &b.g.nodes[i]
		switch n.kind {
		case nodeLeftOutput:
			views[n.in[0]].left = int32(i)
		case nodeRightOutput:
			views[n.in[0]].right = int32(i)
		}
		for _, in := range n.in {
			if in >= 0 {
				consumerOf[in] = int32(i)
			}
		}
	}

	latestUse := func(bf int32) int32 {
		result := b.g.getEarliest(bf)
		v := views[bf]
		for _, viewIdx := range [2]int32{v.left, v.right} {
			if viewIdx < 0 {
				continue
			}
			t := b.g.getEarliest(viewIdx)
			if c := consumerOf[viewIdx]; c >= 0 {
				t = b.g.getEarliest(c)
			}
			if t > result {
				result = t
			}
		}
		return result
	}

	refcount := make([]int32, len(b.g.nodes))
	for _, out := range b.outputs {
		refcount[b.g.nodes[out].in[0]]++
	}

	alloc := newIndexAllocator(int32(b.planSize), next)

	allocateSelf := func(idx int32) {
		n := &b.g.nodes[idx]
		if n.storageIndex != -1 {
			return
		}
		n.storageIndex = alloc.allocate(n.earliest, latestUse(idx))
		refcount[idx] += 2
	}

	// Plan outputs get their slots reserved first, before recycling can
	// hand one to an unrelated occupant.
	for _, out := range b.outputs {
		allocateSelf(b.g.nodes[out].in[0])
	}

	for slot := 0; slot < len(b.schedule); slot++ {
		for _, op := range b.schedule[slot] {
			n := &b.g.nodes[op]

			for _, operand := range [2]int32{n.in[0], n.in[1]} {
				on := &b.g.nodes[operand]
				if on.kind != nodeLeftOutput && on.kind != nodeRightOutput {
					continue
				}
				bf := on.in[0]
				refcount[bf]--
				if refcount[bf] == 0 {
					bn := &b.g.nodes[bf]
					alloc.releaseSlot(bn.storageIndex, bn.earliest, latestUse(bf))
				}
			}

			allocateSelf(op)
		}
	}

	return alloc.nextIndex
}

func (b *builder) calculateMaxDelay() int {
	maxDelay := 0
	for i, out := range b.outputs {
		delay := int(b.g.getEarliest(out)) - i
		if delay > maxDelay {
			maxDelay = delay
		}
	}
	return maxDelay
}

// assembleSteps builds the final per-slot step records: the schedule's
// slot i collapses every repetition (i, i+planSize, i+2planSize, ...) into
// one ops list, most-recent repetition first, matching how the reference
// compiler orders accumulated passes.
func (b *builder) assembleSteps(maxDelay, discardSlot int32) []Step {
	numInputs := len(b.inputs)
	hasSecondary := numInputs > b.planSize

	steps := make([]Step, b.planSize)
	for i := 0; i < b.planSize; i++ {
		var inputIndex2 int32 = -1
		if hasSecondary {
			if i+b.planSize < numInputs {
				inputIndex2 = int32(i + b.planSize)
			} else {
				inputIndex2 = discardSlot
			}
		}

		outputIdx := (b.planSize + i - int(maxDelay)) % b.planSize
		outNode := b.outputs[outputIdx]

		var ops []Op
		for k := len(b.schedule) - b.planSize + i; k >= 0; k -= b.planSize {
			for _, opIdx := range b.schedule[k] {
				ops = append(ops, b.compileOp(opIdx))
			}
		}

		steps[i] = Step{
			InputIndex:  int32(i),
			InputIndex2: inputIndex2,
			OutputIndex: b.g.getStorageIndex(outNode),
			Ops:         ops,
		}
	}
	return steps
}

func (b *builder) compileOp(idx int32) Op {
	n := &b.g.nodes[idx]
	return Op{
		In0: b.g.getStorageIndex(n.in[0]),
		In1: b.g.getStorageIndex(n.in[1]),
		Out: n.storageIndex,
		M:   b.g.getStorageIndex(n.in[2]),
	}
}

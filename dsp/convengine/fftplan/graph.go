package fftplan

// nodeKind tags the five node shapes the compiler's dataflow graph is built
// from.
type nodeKind uint8

const (
	nodeInput nodeKind = iota
	nodeConstant
	nodeButterfly
	nodeLeftOutput
	nodeRightOutput
)

// constantAvailable is the sentinel "earliest available" time reported by
// constant nodes: a constant is ready before any sample arrives.
const constantAvailable = -1

// node is one arena entry. Nodes never hold owning references to each
// other; in[] holds indices into the owning graph's nodes slice. Consumer
// (output-side) edges are never stored here — allocateButterflies recovers
// them with a single pass over the arena when it needs to know a
// butterfly's output views' downstream readers.
type node struct {
	kind nodeKind

	// in holds this node's operand node indices. Meaning depends on kind:
	//   input/constant:     unused (all -1)
	//   butterfly:          in[0], in[1] the two signal operands, in[2] the
	//                       constant multiplier operand
	//   leftOutput/rightOutput: in[0] the wrapped butterfly
	in [3]int32

	// earliest is mutable for butterfly nodes: initialised to the max of
	// its operands' earliest-available time, then bumped to the slot the
	// scheduler actually placed it in, so that downstream consumers see
	// the real dependency time rather than the ideal one. Fixed at
	// construction for input and constant nodes.
	earliest int32

	storageIndex int32 // -1 until allocated

	value complex128 // constant nodes only
}

// graph is the arena a single plan compiles from.
type graph struct {
	nodes []node

	// dedup caches keyed by value. Twiddle/DFT constants share one cache;
	// impulse-transform coefficients use a separate, never-deduped
	// allocation path so that the whole coefficient block stays
	// contiguous in storage (see buildConvolutionGraph).
	constCache map[complex128]int32

	// constantOrder preserves creation order for deterministic constant
	// table serialisation; iterating constCache directly would not.
	constantOrder []int32
}

func newGraph() *graph {
	return &graph{constCache: make(map[complex128]int32)}
}

func (g *graph) addInput(t int32) int32 {
	idx := int32(len(g.nodes))
	g.nodes = append(g.nodes, node{
		kind:         nodeInput,
		in:           [3]int32{-1, -1, -1},
		earliest:     t,
		storageIndex: t,
	})
	return idx
}

// addConstant returns a deduplicated constant node for v, creating one on
// first use.
func (g *graph) addConstant(v complex128) int32 {
	if idx, ok := g.constCache[v]; ok {
		return idx
	}
	idx := g.addConstantNoDedup(v)
	g.constCache[v] = idx
	return idx
}

// addConstantNoDedup always creates a fresh constant node, bypassing the
// dedup cache. Used for impulse-transform coefficients so the whole block
// allocates to one contiguous storage run regardless of accidental value
// collisions.
func (g *graph) addConstantNoDedup(v complex128) int32 {
	idx := int32(len(g.nodes))
	g.nodes = append(g.nodes, node{
		kind:         nodeConstant,
		in:           [3]int32{-1, -1, -1},
		earliest:     constantAvailable,
		storageIndex: -1,
		value:        v,
	})
	g.constantOrder = append(g.constantOrder, idx)
	return idx
}

func (g *graph) addButterfly(in0, in1, m int32) int32 {
	idx := int32(len(g.nodes))
	g.nodes = append(g.nodes, node{
		kind:         nodeButterfly,
		in:           [3]int32{in0, in1, m},
		earliest:     max3(g.getEarliest(in0), g.getEarliest(in1), g.getEarliest(m)),
		storageIndex: -1,
	})
	return idx
}

func (g *graph) addLeftOutput(butterfly int32) int32 {
	idx := int32(len(g.nodes))
	g.nodes = append(g.nodes, node{kind: nodeLeftOutput, in: [3]int32{butterfly, -1, -1}, storageIndex: -1})
	return idx
}

func (g *graph) addRightOutput(butterfly int32) int32 {
	idx := int32(len(g.nodes))
	g.nodes = append(g.nodes, node{kind: nodeRightOutput, in: [3]int32{butterfly, -1, -1}, storageIndex: -1})
	return idx
}

func max3(a, b, c int32) int32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

// getEarliest returns idx's current earliest-available sample time.
// Constants report constantAvailable; inputs report their fixed time;
// butterflies report their (possibly rescheduled) mutable field;
// left/right output views pass through to their wrapped butterfly.
func (g *graph) getEarliest(idx int32) int32 {
	n := &g.nodes[idx]
	switch n.kind {
	case nodeLeftOutput, nodeRightOutput:
		return g.getEarliest(n.in[0])
	default:
		return n.earliest
	}
}

// getStorageIndex returns idx's allocated storage slot. Valid only after
// allocation has run for idx (and, for output views, for the butterfly it
// wraps).
func (g *graph) getStorageIndex(idx int32) int32 {
	n := &g.nodes[idx]
	switch n.kind {
	case nodeLeftOutput:
		return g.getStorageIndex(n.in[0])
	case nodeRightOutput:
		return g.getStorageIndex(n.in[0]) + 1
	default:
		return n.storageIndex
	}
}

// inputsOf returns idx's operand node indices (valid ones only), used by
// the dependency walk during scheduling.
func (g *graph) inputsOf(idx int32) []int32 {
	n := &g.nodes[idx]
	switch n.kind {
	case nodeInput, nodeConstant:
		return nil
	case nodeLeftOutput, nodeRightOutput:
		return []int32{n.in[0]}
	default: // butterfly
		return []int32{n.in[0], n.in[1], n.in[2]}
	}
}

package convengine

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/convengine/balanced"
)

const (
	initialSectionSize       = 128
	initialDirectSectionSize = 128
	maxBalancedSection       = 132 * 1024
)

// balancedSpec places one balanced.Section at sampleOffset in the impulse,
// read from the delay line inputDelay samples behind the current sample.
type balancedSpec struct {
	inputDelay   int
	sampleOffset int
	size         int
}

// directSpec places one directsec.Section at sampleOffset in the impulse,
// with a benchmarked leadTime (samples of scheduling slack it needs).
type directSpec struct {
	inputDelay   int
	sampleOffset int
	size         int
	leadTime     int
}

// partitionPlan is the result of sweeping an impulse response into a direct
// (dot-product) leg plus a geometrically increasing sequence of balanced
// and direct-convolution sections.
type partitionPlan struct {
	directConvolutionLength int
	balanced                []balancedSpec
	direct                  []directSpec
	delaySize               int
}

var (
	sectionDelayMu    sync.Mutex
	sectionDelayCache = map[int]int{}
)

// balancedSectionDelay returns the algorithmic delay of a balanced section
// of the given size, independent of impulse content, caching by size since
// computing it requires compiling a throwaway plan.
func balancedSectionDelay(size int) (int, error) {
	sectionDelayMu.Lock()
	defer sectionDelayMu.Unlock()

	if d, ok := sectionDelayCache[size]; ok {
		return d, nil
	}

	s, err := balanced.NewSection(size, []float64{0}, 0)
	if err != nil {
		return 0, fmt.Errorf("convengine: probing balanced section delay for size %d: %w", size, err)
	}
	d := s.Delay()
	sectionDelayCache[size] = d
	return d, nil
}

// preparePartition sweeps impulse into the direct leg plus a section list,
// following the reference implementation's PrepareSections: start with
// both a balanced and a direct candidate at the smallest usable size,
// double whichever is due to fire again, halve either one back down when
// little impulse remains, and prefer a direct section whenever it can meet
// its deadline (balanced only wins below 128 samples, or once both
// candidates would exceed the cutoff — a cutoff this engine never reaches,
// since DIRECT_SECTION_CUTOFF_LIMIT upstream is effectively unbounded).
func preparePartition(size int, impulse []float64, leadTimes *leadTimeTable) (*partitionPlan, error) {
	if size < initialSectionSize {
		return &partitionPlan{directConvolutionLength: size, delaySize: size}, nil
	}

	balancedSize := initialSectionSize
	balancedDelay, err := balancedSectionDelay(balancedSize)
	if err != nil {
		return nil, err
	}

	directSize := initialDirectSectionSize

	directConvLen := balancedDelay
	if directConvLen > size {
		directConvLen = size
	}

	plan := &partitionPlan{directConvolutionLength: directConvLen, delaySize: directConvLen}

	sampleOffset := directConvLen
	for sampleOffset < size {
		remaining := size - sampleOffset

		nextBalancedDelay := -1
		if balancedSize < maxBalancedSection {
			nextBalancedDelay, err = balancedSectionDelay(balancedSize * 2)
			if err != nil {
				return nil, err
			}
		}
		if nextBalancedDelay >= 0 && sampleOffset >= nextBalancedDelay {
			balancedSize *= 2
			balancedDelay = nextBalancedDelay
		}
		for remaining <= balancedSize/2 && balancedSize > initialSectionSize {
			balancedSize /= 2
			balancedDelay, err = balancedSectionDelay(balancedSize)
			if err != nil {
				return nil, err
			}
		}

		var directDelay int
		canUseDirect := false
		for {
			lt, ok := leadTimes.leadTime(directSize)
			if !ok {
				return nil, fmt.Errorf("convengine: no lead time entry for direct section size %d", directSize)
			}
			directDelay = lt

			if directDelay > sampleOffset {
				canUseDirect = false
				break
			}
			canUseDirect = true

			if directSize >= remaining {
				break
			}

			nextLt, ok := leadTimes.leadTime(directSize * 2)
			if !ok || nextLt > sampleOffset {
				break
			}
			directSize *= 2
		}

		for remaining <= balancedSize/2 && balancedSize > initialSectionSize {
			balancedSize /= 2
			balancedDelay, err = balancedSectionDelay(balancedSize)
			if err != nil {
				return nil, err
			}
		}
		for remaining <= directSize/2 && directSize > initialSectionSize {
			directSize /= 2
			lt, ok := leadTimes.leadTime(directSize)
			if !ok {
				return nil, fmt.Errorf("convengine: no lead time entry for direct section size %d", directSize)
			}
			directDelay = lt
		}

		useBalanced := !canUseDirect

		if useBalanced {
			inputDelay := sampleOffset - balancedDelay
			if inputDelay > plan.delaySize {
				plan.delaySize = inputDelay
			}
			plan.balanced = append(plan.balanced, balancedSpec{
				inputDelay:   inputDelay,
				sampleOffset: sampleOffset,
				size:         balancedSize,
			})
			sampleOffset += balancedSize
		} else {
			inputDelay := sampleOffset - directDelay
			mySize := sampleOffset + directSize + 256
			if mySize > plan.delaySize {
				plan.delaySize = mySize
			}
			plan.direct = append(plan.direct, directSpec{
				inputDelay:   inputDelay,
				sampleOffset: sampleOffset,
				size:         directSize,
				leadTime:     directDelay,
			})
			sampleOffset += directSize
		}
	}

	return plan, nil
}

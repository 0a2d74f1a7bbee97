package convengine

import "math"

// executionEntry is one row of the benchmarked direct-section execution
// cost table: size n, measured nanoseconds per sample, and the worker
// thread class that size is dispatched to.
type executionEntry struct {
	n                    int
	nanosecondsPerSample float64
	threadNumber         int
}

// invalidThreadID marks a direct-section size run inline on the audio
// thread rather than dispatched to a worker.
const invalidThreadID = -1

// maxThreadID is the highest worker thread class number in use.
const maxThreadID = 6

// executionTimePerSampleNs are benchmarked per-sample execution costs for
// each direct-section size, gathered on modest embedded-class hardware
// (the reference measurements were taken on a Raspberry Pi 4) and scaled
// at runtime to the engine's sample rate. Sizes below 128 run inline
// (invalidThreadID); everything else is dispatched to one of six worker
// thread classes, grouped so sizes with similar cost share a thread.
var executionTimePerSampleNs = []executionEntry{
	{4, 82.402, invalidThreadID},
	{8, 75.522, invalidThreadID},
	{16, 78.877, invalidThreadID},
	{32, 86.127, invalidThreadID},
	{64, 92.286, invalidThreadID},

	{128, 100.439, 1},
	{256, 107.703, 1},
	{512, 155.486, 1},
	{1024, 164.186, 2},
	{2048, 192.041, 2},
	{4096, 206.026, 2},
	{8192, 241.912, 3},
	{16384, 285.395, 3},
	{32768, 448.843, 4},
	{65536, 575.380, 4},
	{131072, 668.226, 5},
}

func log2(value int) int {
	n := 0
	for value > 0 {
		n++
		value >>= 1
	}
	return n
}

func directSectionThreadID(size int) int {
	for _, e := range executionTimePerSampleNs {
		if e.n == size {
			return e.threadNumber
		}
	}
	return invalidThreadID
}

// leadTimeTable maps log2(size) to a worst-case scheduling lead time in
// samples, for every size with a valid worker thread class.
type leadTimeTable struct {
	bySize map[int]int // keyed by log2(size)
}

// buildLeadTimeTable computes per-thread worst-case execution times scaled
// to sampleRate, adds scheduling jitter, and produces the lead time (in
// samples) a direct section of each size needs between being scheduled and
// its deadline.
//
// The scaling factors mirror the reference's conservative safety margins:
// 1.8/1.5 in case the host is throttled to a lower clock, 2x for cache
// contention with neighbouring sections, and 1.5x because a thread class
// may end up hosting more than one section of its largest size.
func buildLeadTimeTable(sampleRate, maxAudioBufferSize int) *leadTimeTable {
	basicExecutionTime := make([]int, maxThreadID+1)
	for _, e := range executionTimePerSampleNs {
		if e.threadNumber == invalidThreadID {
			continue
		}
		executionTimeSeconds := float64(e.n) * e.nanosecondsPerSample * 1e-9
		executionTimeSeconds *= float64(sampleRate) / 44100
		executionTimeSeconds *= 1.8 / 1.5
		executionTimeSeconds *= 2
		executionTimeSeconds *= 1.5
		samplesLeadTime := int(math.Ceil(executionTimeSeconds * float64(sampleRate)))
		basicExecutionTime[e.threadNumber] += samplesLeadTime
	}

	schedulingJitter := int(0.002*float64(sampleRate)) + maxAudioBufferSize

	t := &leadTimeTable{bySize: make(map[int]int)}
	for _, e := range executionTimePerSampleNs {
		if e.threadNumber == invalidThreadID {
			continue
		}
		log2N := log2(e.n)
		t.bySize[log2N] = basicExecutionTime[e.threadNumber] + schedulingJitter + e.n
	}
	return t
}

// leadTime returns the scheduling lead time for a direct section of the
// given size, and false if size has no benchmarked entry.
func (t *leadTimeTable) leadTime(size int) (int, bool) {
	v, ok := t.bySize[log2(size)]
	return v, ok
}

package syncdelay

import (
	"runtime"
	"sync"
)

func nextPowerOf2(value int) int {
	result := 1
	for result < value {
		result *= 2
	}
	return result
}

// Line is a single-writer multiple-reader sample-indexed ring buffer. The
// audio thread is the sole writer: it calls Write for every sample and
// SynchWrite once per block to publish the new horizon to readers. Any
// number of worker goroutines read by absolute sample position through
// ReadRange, IsReadReady and WaitForMoreReadData.
type Line struct {
	mu   sync.Mutex
	cond sync.Cond

	storage []float64
	mask    uint64

	head     uint64 // writer-private
	readHead uint64 // published: samples below this are settled history
	readTail uint64 // published: the writer's current lookahead horizon

	closed bool
	wg     sync.WaitGroup
}

// NewLine returns a Line sized by SetSize(usableSize, paddingSize).
func NewLine(usableSize, paddingSize int) *Line {
	l := &Line{}
	l.cond.L = &l.mu
	l.SetSize(usableSize, paddingSize)
	return l
}

// SetSize (re)allocates storage. usableSize+paddingSize is rounded up to a
// power of two; the usable history depth is usableSize. Not safe to call
// concurrently with readers or writers.
func (l *Line) SetSize(usableSize, paddingSize int) {
	capacity := nextPowerOf2(usableSize + paddingSize)
	l.storage = make([]float64, capacity)
	l.mask = uint64(capacity - 1)
	l.head = 0
	l.readHead = 0
	l.readTail = uint64(capacity - paddingSize)
}

// Write appends a sample at the writer's private head. It never blocks and
// does not publish the new head to readers; call SynchWrite to do that.
func (l *Line) Write(x float64) {
	l.head++
	l.storage[l.head&l.mask] = x
}

// At returns the sample offsetBack positions behind the writer's current
// head. Writer-only: it reads l.head without synchronisation, which is
// safe only because the writer is the sole caller.
func (l *Line) At(offsetBack int) float64 {
	return l.storage[(l.head-uint64(offsetBack))&l.mask]
}

// Linearize copies the n most-recently-written samples into out, most
// recent first: out[0]=At(0), out[1]=At(1), .... It splits the copy into two
// contiguous runs around the ring's wraparound point instead of computing a
// mask per sample, the same trick dsp/filter/fir's linearized dot-product
// path uses for its own delay line. Writer-only; n must not exceed the
// ring's capacity.
func (l *Line) Linearize(n int, out []float64) {
	pos := int(l.head & l.mask)

	len1 := pos + 1
	if len1 > n {
		len1 = n
	}
	for k := 0; k < len1; k++ {
		out[k] = l.storage[pos-k]
	}

	len2 := n - len1
	if len2 > 0 {
		size := len(l.storage)
		for k := 0; k < len2; k++ {
			out[len1+k] = l.storage[size-1-k]
		}
	}
}

// SynchWrite publishes readHead = head and readTail = head + capacity, then
// wakes every blocked reader. Writer-only.
func (l *Line) SynchWrite() {
	l.mu.Lock()
	l.readHead = l.head
	l.readTail = l.head + uint64(len(l.storage))
	l.mu.Unlock()
	l.cond.Broadcast()
}

// IsReadReady reports whether the range [position, position+count) is
// available to read. It returns ErrReadUnderrun if the range's upper bound
// has already advanced past the writer's published horizon, and ErrClosed
// if the line has been closed.
func (l *Line) IsReadReady(position, count uint64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isReadReadyLocked(position, count)
}

func (l *Line) isReadReadyLocked(position, count uint64) (bool, error) {
	if l.closed {
		return false, ErrClosed
	}
	end := position + count
	if position >= l.readHead {
		if end > l.readTail {
			return false, ErrReadUnderrun
		}
		return true, nil
	}
	return false, nil
}

// WaitForMoreReadData blocks until the published tail advances past
// previousTail, then returns the new tail. It returns ErrClosed immediately
// if the line is already closed, or as soon as a pending wait is woken by
// Close.
func (l *Line) WaitForMoreReadData(previousTail uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.readTail <= previousTail && !l.closed {
		l.cond.Wait()
	}
	if l.closed {
		return 0, ErrClosed
	}
	return l.readTail, nil
}

// waitForRead blocks until [position, position+count) is ready, mirroring
// IsReadReady's readiness test under the condition variable.
func (l *Line) waitForRead(position, count uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		ready, err := l.isReadReadyLocked(position, count)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		l.cond.Wait()
	}
}

// ReadRange copies count samples starting at the absolute position into
// out[offset:offset+count], blocking until the range is available.
func (l *Line) ReadRange(position, count, offset uint64, out []float64) error {
	if err := l.waitForRead(position, count); err != nil {
		return err
	}

	start := position & l.mask
	end := (position + count) & l.mask
	if end < start {
		n := uint64(len(l.storage))
		idx := offset
		for i := start; i < n; i++ {
			out[idx] = l.storage[i]
			idx++
		}
		for i := uint64(0); i < end; i++ {
			out[idx] = l.storage[i]
			idx++
		}
	} else {
		idx := offset
		for i := start; i < end; i++ {
			out[idx] = l.storage[i]
			idx++
		}
	}
	return nil
}

// NotifyReadReady wakes every blocked reader without advancing readHead or
// readTail. Used when a downstream SynchronizedSingleReaderDelayLine that
// had stalled on a full queue becomes writable again, so a worker parked in
// WaitForMoreReadData gets a chance to retry its section.
func (l *Line) NotifyReadReady() {
	l.cond.Broadcast()
}

// WorkerFunc is the body run by a Line-owned worker goroutine. It should
// loop until it observes ErrClosed, then return nil.
type WorkerFunc func() error

// CreateThread spawns body on a goroutine locked to its own OS thread,
// best-effort lowering its scheduling priority by relativePriority. Close
// joins every worker spawned this way.
func (l *Line) CreateThread(body WorkerFunc, relativePriority int) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		lowerCurrentThreadPriority(relativePriority)
		if err := body(); err != nil {
			panic(err)
		}
	}()
}

// Close marks the line closed, wakes every waiter, and joins every worker
// spawned through CreateThread. Idempotent.
func (l *Line) Close() {
	l.mu.Lock()
	alreadyClosed := l.closed
	l.closed = true
	l.mu.Unlock()

	l.cond.Broadcast()

	if !alreadyClosed {
		l.wg.Wait()
	}
}

// Package convengine assembles the balanced, direct and worker-threaded
// convolution legs into a single realtime engine: given an impulse response,
// a sample rate and an audio buffer size, it partitions the impulse, spawns
// worker goroutines for the sections too large to run inline, and exposes a
// Tick/TickBuffer API an effect chain can drive from its audio thread.
package convengine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dsp/dsp/convengine/balanced"
	"github.com/cwbudde/algo-dsp/dsp/convengine/directsec"
	"github.com/cwbudde/algo-dsp/dsp/convengine/syncdelay"
)

// delayLinePadding is the slack (in samples) reserved beyond the computed
// worst-case input delay, matching the reference's "+ 1, 256" constructor
// constants for its shared delay line.
const delayLinePadding = 256

// SetPlanFileDirectory points every balanced.Section built by a future
// Engine at a directory of pre-generated plan files. Process-wide, mirroring
// the reference's single configuration carrier for plan caching.
func SetPlanFileDirectory(dir string) {
	balanced.SetPlanFileDirectory(dir)
}

type balancedEntry struct {
	sampleDelay int
	section     *balanced.Section
}

type directEntry struct {
	section       *directsec.Section
	queue         *syncdelay.OutputQueue
	currentSample uint64
}

// directWorker owns every direct section dispatched to one worker thread
// class, and the goroutine that drives them.
type directWorker struct {
	threadID int
	sections []*directEntry
}

// Engine orchestrates the direct-dot-product leg, the balanced sections and
// the worker-threaded direct sections against one impulse response.
type Engine struct {
	directImpulse           []float64
	directConvolutionLength int
	directLinear            []float64 // scratch: last len(directImpulse) samples, linearized

	line *syncdelay.Line

	balancedSections []balancedEntry
	directSections   []*directEntry
	workers          []*directWorker

	underrunCount atomic.Int64

	closeOnce sync.Once
}

// underrunListener increments Engine.underrunCount whenever a worker's
// output queue is read before it has produced the corresponding sample.
type underrunListener struct {
	engine *Engine
}

func (l underrunListener) OnUnderrun()   { l.engine.underrunCount.Add(1) }
func (l underrunListener) OnWriteReady() { l.engine.line.NotifyReadReady() }

// New partitions impulse per the engine's sweep algorithm, compiles or loads
// every balanced section's plan, builds every direct section, and spawns one
// worker goroutine per thread class the partition actually uses.
func New(impulse []float64, sampleRate, maxAudioBufferSize int) (*Engine, error) {
	if len(impulse) == 0 {
		return nil, fmt.Errorf("convengine: empty impulse response")
	}

	leadTimes := buildLeadTimeTable(sampleRate, maxAudioBufferSize)

	plan, err := preparePartition(len(impulse), impulse, leadTimes)
	if err != nil {
		return nil, fmt.Errorf("convengine: partition: %w", err)
	}

	e := &Engine{
		directImpulse:           append([]float64(nil), impulse[:plan.directConvolutionLength]...),
		directConvolutionLength: plan.directConvolutionLength,
		directLinear:            make([]float64, plan.directConvolutionLength),
	}

	e.line = syncdelay.NewLine(plan.delaySize+1, delayLinePadding)

	for _, b := range plan.balanced {
		s, err := balanced.NewSection(b.size, impulse, b.sampleOffset)
		if err != nil {
			return nil, fmt.Errorf("convengine: balanced section at %d: %w", b.sampleOffset, err)
		}
		e.balancedSections = append(e.balancedSections, balancedEntry{
			sampleDelay: b.inputDelay,
			section:     s,
		})
	}

	byThread := map[int]*directWorker{}
	for _, d := range plan.direct {
		s, err := directsec.NewSection(d.size, impulse, d.sampleOffset)
		if err != nil {
			return nil, fmt.Errorf("convengine: direct section at %d: %w", d.sampleOffset, err)
		}
		s.SetDelay(d.leadTime)

		entry := &directEntry{
			section:       s,
			queue:         &syncdelay.OutputQueue{},
			currentSample: uint64(2*d.size - 1),
		}

		queueCapacity := d.sampleOffset + 2*d.size + delayLinePadding
		entry.queue.SetSize(queueCapacity)
		entry.queue.SetWriteReadyCallback(underrunListener{engine: e})

		zeros := make([]float64, d.sampleOffset)
		entry.queue.Write(len(zeros), 0, zeros)

		e.directSections = append(e.directSections, entry)

		threadID := directSectionThreadID(d.size)
		w, ok := byThread[threadID]
		if !ok {
			w = &directWorker{threadID: threadID}
			byThread[threadID] = w
			e.workers = append(e.workers, w)
		}
		w.sections = append(w.sections, entry)
	}

	for _, w := range e.workers {
		worker := w
		e.line.CreateThread(func() error {
			return e.runWorker(worker)
		}, worker.threadID)
	}

	return e, nil
}

// runWorker repeatedly executes every section assigned to worker, waiting
// on the shared delay line's tail whenever a full pass makes no progress. It
// returns nil (a normal exit) on ErrClosed, and propagates any other error,
// which CreateThread's caller turns into a panic — an error here means the
// section's own internal invariants are broken, not a shutdown signal.
func (e *Engine) runWorker(worker *directWorker) error {
	tail, err := e.line.WaitForMoreReadData(0)
	if err != nil {
		if errors.Is(err, syncdelay.ErrClosed) {
			return nil
		}
		return err
	}

	for {
		processed := false
		for _, entry := range worker.sections {
			size := uint64(entry.section.Size())
			for {
				t := entry.currentSample
				ready, err := e.line.IsReadReady(t+1-2*size, 2*size)
				if err != nil {
					if errors.Is(err, syncdelay.ErrClosed) {
						return nil
					}
					// ErrReadUnderrun means this window has already fallen
					// off the line's horizon: a scheduling/lead-time bug,
					// fatal for the worker per the error handling design.
					return err
				}
				if !ready {
					break
				}
				if !entry.queue.CanWrite(int(size)) {
					break
				}
				if err := entry.section.Execute(e.line, t, entry.queue); err != nil {
					if errors.Is(err, syncdelay.ErrClosed) {
						return nil
					}
					return err
				}
				entry.currentSample += size
				processed = true
			}
		}

		if !processed {
			tail, err = e.line.WaitForMoreReadData(tail)
			if err != nil {
				if errors.Is(err, syncdelay.ErrClosed) {
					return nil
				}
				return err
			}
		}
	}
}

// tickUnsynchronized writes x to the shared delay line and accumulates the
// direct dot product, every balanced section's contribution and every
// worker-owned direct section's queued output, without publishing the new
// write head to readers.
func (e *Engine) tickUnsynchronized(x float64) float64 {
	e.line.Write(x)

	e.line.Linearize(len(e.directImpulse), e.directLinear)
	sum := vecmath.DotProduct(e.directImpulse, e.directLinear)

	for _, b := range e.balancedSections {
		sum += b.section.Tick(e.line.At(b.sampleDelay))
	}

	for _, d := range e.directSections {
		sum += d.queue.Read()
	}

	return sum
}

// Tick processes one sample and publishes the new write head, making it
// immediately visible to worker threads.
func (e *Engine) Tick(x float64) float64 {
	v := e.tickUnsynchronized(x)
	e.line.SynchWrite()
	return v
}

// TickBuffer processes an entire audio buffer, publishing the new write head
// once at the end rather than after every sample, so worker threads only
// wake once per buffer.
func (e *Engine) TickBuffer(out, in []float64) error {
	if len(out) != len(in) {
		return fmt.Errorf("convengine: TickBuffer: len(out)=%d != len(in)=%d", len(out), len(in))
	}
	for i, x := range in {
		out[i] = e.tickUnsynchronized(x)
	}
	e.line.SynchWrite()
	return nil
}

// UnderrunCount returns the number of samples delivered as zero because a
// worker had not yet produced them when the audio thread asked.
func (e *Engine) UnderrunCount() int64 {
	return e.underrunCount.Load()
}

// Close shuts the engine down: it closes every worker's output queue
// (unblocking a reader stuck in Read), then closes the shared delay line
// (unblocking every worker waiting in WaitForMoreReadData), joining every
// worker goroutine before returning. Idempotent.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		for _, d := range e.directSections {
			d.queue.Close()
		}
		e.line.Close()
	})
}

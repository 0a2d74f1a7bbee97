package reverb

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/convengine"
)

// RealtimeConvolutionReverb applies a room or cabinet impulse response via
// convengine.Engine's balanced/direct/worker-threaded partitioning, trading
// ConvolutionReverb's simpler UPOLA staging for flatter audio-thread cost on
// long impulse responses (cabinet simulation is the intended use case).
//
// The wet signal is produced by convengine.Engine; unlike ConvolutionReverb
// it owns worker goroutines for the life of the reverb and must be closed.
type RealtimeConvolutionReverb struct {
	engine *convengine.Engine
	wet    float64
	dry    float64
}

// NewRealtimeConvolutionReverb creates a realtime convolution reverb from a
// mono impulse response, sampleRate and the host's audio buffer size (used
// to size the engine's worker lead-time table).
func NewRealtimeConvolutionReverb(kernel []float64, sampleRate, audioBufferSize int) (*RealtimeConvolutionReverb, error) {
	if len(kernel) == 0 {
		return nil, errors.New("reverb: empty impulse response kernel")
	}

	engine, err := convengine.New(kernel, sampleRate, audioBufferSize)
	if err != nil {
		return nil, fmt.Errorf("reverb: failed to create convolution engine: %w", err)
	}

	return &RealtimeConvolutionReverb{
		engine: engine,
		wet:    1.0,
		dry:    1.0,
	}, nil
}

// SetWetDry sets the wet and dry mix levels.
func (r *RealtimeConvolutionReverb) SetWetDry(wet, dry float64) {
	r.wet = wet
	r.dry = dry
}

// ProcessInPlace applies reverb to block in place (mono).
// The output is: block[i] = dry*block[i] + wet*reverb(block[i]).
func (r *RealtimeConvolutionReverb) ProcessInPlace(block []float64) error {
	n := len(block)
	if n == 0 {
		return nil
	}

	wet := r.wet
	dry := r.dry

	for i := 0; i < n; i++ {
		wetSample := r.engine.Tick(block[i])
		block[i] = dry*block[i] + wet*wetSample
	}

	return nil
}

// UnderrunCount returns the number of output samples delivered as zero
// because a worker thread had not yet produced them.
func (r *RealtimeConvolutionReverb) UnderrunCount() int64 {
	return r.engine.UnderrunCount()
}

// Close releases the engine's worker goroutines. Safe to call more than once.
func (r *RealtimeConvolutionReverb) Close() {
	r.engine.Close()
}

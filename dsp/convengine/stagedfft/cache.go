package stagedfft

import "sync"

// CacheConfig holds the cache-block sizes, in complex elements, that drive
// the staging strategy. Defaults are chosen for a small-core 64-bit ARM
// class machine per the design's "cache-size tuning constants ... treat as
// configuration" guidance; override with SetCacheConfig for other targets.
type CacheConfig struct {
	L1 int
	L2 int
}

// DefaultCacheConfig returns the built-in ARM-class defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{L1: 2048, L2: 32768}
}

var (
	cacheConfigMu sync.RWMutex
	cacheConfig   = DefaultCacheConfig()
)

// SetCacheConfig overrides the process-wide L1/L2 thresholds used to select
// a size's staging variant. Existing cached plans are invalidated since
// their boundary may change.
func SetCacheConfig(cfg CacheConfig) {
	cacheConfigMu.Lock()
	cacheConfig = cfg
	cacheConfigMu.Unlock()

	resetPlanCache()
}

func currentCacheConfig() CacheConfig {
	cacheConfigMu.RLock()
	defer cacheConfigMu.RUnlock()

	return cacheConfig
}

// plan is the cacheable, size-specific precomputation: the bit-reversal
// table and the local/cross-pass boundary. It carries no instance state and
// is safe to share across FFT instances and goroutines.
type plan struct {
	size       int
	log2N      int
	bitReverse []uint32
	boundary   int // stages with stride <= boundary run without twiddle resync
	isL1Opt    bool
	isL2Opt    bool
}

var (
	planCacheMu sync.Mutex
	planCache   = map[int]*plan{} // keyed by log2(N)
)

func resetPlanCache() {
	planCacheMu.Lock()
	planCache = map[int]*plan{}
	planCacheMu.Unlock()
}

// resetPlanCacheForTest clears the cache and restores the default cache
// config; intended for test isolation only.
func resetPlanCacheForTest() {
	cacheConfigMu.Lock()
	cacheConfig = DefaultCacheConfig()
	cacheConfigMu.Unlock()

	resetPlanCache()
}

func getCachedPlan(size int) (*plan, error) {
	log2N, err := log2Exact(size)
	if err != nil {
		return nil, err
	}

	planCacheMu.Lock()
	defer planCacheMu.Unlock()

	if p, ok := planCache[log2N]; ok && p.size == size {
		return p, nil
	}

	p := buildPlan(size, log2N)
	planCache[log2N] = p

	return p, nil
}

func buildPlan(size, log2N int) *plan {
	cfg := currentCacheConfig()

	boundary := size

	switch {
	case size > cfg.L1 && size <= cfg.L2:
		boundary = cfg.L1
	case size > cfg.L2:
		boundary = cfg.L2
	}

	return &plan{
		size:       size,
		log2N:      log2N,
		bitReverse: buildBitReverseTable(size, log2N),
		boundary:   boundary,
		isL1Opt:    size <= cfg.L1,
		isL2Opt:    size <= cfg.L2,
	}
}

func buildBitReverseTable(size, log2N int) []uint32 {
	table := make([]uint32, size)
	for i := range table {
		table[i] = reverseBits(uint32(i), log2N)
	}

	return table
}

func reverseBits(v uint32, bits int) uint32 {
	var r uint32
	for i := 0; i < bits; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}

	return r
}

package balanced

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cwbudde/algo-dsp/dsp/convengine/binaryio"
	"github.com/cwbudde/algo-dsp/dsp/convengine/fftplan"
)

// planFileExt is the on-disk extension for a compiled plan, before an
// optional ".gz" suffix for the gzipped variant.
const planFileExt = ".convolutionPlan"

var (
	cacheMu   sync.RWMutex
	planDir   string
	planCache = map[int]*fftplan.Plan{}
)

// SetPlanFileDirectory points every Section constructed afterwards at a
// directory of pre-generated plan files, named by size alone
// ("<size>.convolutionPlan" or "<size>.convolutionPlan.gz"). A plan
// directory is a deployment-time artifact tied to one impulse response's
// partitioning: because a given partition uses each balanced section size
// at most once (PrepareSections doubles the section size monotonically),
// naming files by size alone is unambiguous within that partition, exactly
// as the reference implementation assumes — mixing plan files generated
// for a different impulse response into the same directory is a caller
// error, not something this package detects.
func SetPlanFileDirectory(dir string) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	planDir = dir
}

// ClearPlanCache discards every in-memory compiled plan, forcing the next
// Section construction to recompile or reload from disk.
func ClearPlanCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	planCache = map[int]*fftplan.Plan{}
}

// PlanFileExists reports whether a plan file for the given size exists in
// the configured plan directory (gzipped or plain).
func PlanFileExists(size int) bool {
	cacheMu.RLock()
	dir := planDir
	cacheMu.RUnlock()

	if dir == "" {
		return false
	}

	if _, err := os.Stat(planFilePath(dir, size, false)); err == nil {
		return true
	}
	if _, err := os.Stat(planFilePath(dir, size, true)); err == nil {
		return true
	}
	return false
}

func planFilePath(dir string, size int, gzip bool) string {
	name := fmt.Sprintf("%d%s", size, planFileExt)
	if gzip {
		name += ".gz"
	}
	return filepath.Join(dir, name)
}

// loadOrCompilePlan returns the cached or on-disk plan for size if present,
// otherwise compiles one against impulse and (when a plan directory is
// configured) saves it for next time.
func loadOrCompilePlan(size int, impulse []float64) (*fftplan.Plan, error) {
	cacheMu.RLock()
	if p, ok := planCache[size]; ok {
		cacheMu.RUnlock()
		return p, nil
	}
	dir := planDir
	cacheMu.RUnlock()

	if dir != "" {
		if p, err := readPlanFile(dir, size); err == nil {
			cacheMu.Lock()
			planCache[size] = p
			cacheMu.Unlock()
			return p, nil
		}
	}

	p, err := fftplan.CompileConvolution(size, impulse)
	if err != nil {
		return nil, fmt.Errorf("balanced: compile plan size %d: %w", size, err)
	}

	cacheMu.Lock()
	planCache[size] = p
	cacheMu.Unlock()

	if dir != "" {
		if err := writePlanFile(dir, size, p); err != nil {
			return nil, fmt.Errorf("balanced: save plan size %d: %w", size, err)
		}
	}

	return p, nil
}

func readPlanFile(dir string, size int) (*fftplan.Plan, error) {
	for _, gz := range []bool{false, true} {
		path := planFilePath(dir, size, gz)
		rd, closer, err := binaryio.OpenReader(path)
		if err != nil {
			continue
		}
		p, err := fftplan.ReadPlan(rd)
		closeErr := closer.Close()
		if err != nil {
			continue
		}
		if closeErr != nil {
			return nil, closeErr
		}
		return p, nil
	}
	return nil, fmt.Errorf("balanced: no plan file for size %d in %s", size, dir)
}

func writePlanFile(dir string, size int, p *fftplan.Plan) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := planFilePath(dir, size, true)
	wr, closer, err := binaryio.CreateWriter(path)
	if err != nil {
		return err
	}
	if err := fftplan.WritePlan(wr, p); err != nil {
		_ = closer.Close()
		return err
	}
	return closer.Close()
}

package fftplan

import "errors"

// ErrPlanCompileFailure is returned when the greedy scheduler cannot fit a
// butterfly into any of the plan's slots within one full cycle.
var ErrPlanCompileFailure = errors.New("fftplan: scheduling failed to fit butterflies under the per-slot budget")

// ErrInvalidPlanFile is returned by ReadPlan on a bad magic string, version
// mismatch, truncated stream, or bad tail constant.
var ErrInvalidPlanFile = errors.New("fftplan: invalid plan file")

// ErrSelfCheckFailed is returned when the generation-simulation self-check
// (run before a freshly-compiled plan is handed out) finds an op reading a
// mix of two generations, or an output slot carrying the wrong generation.
var ErrSelfCheckFailed = errors.New("fftplan: generation self-check failed")

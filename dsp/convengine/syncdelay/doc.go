// Package syncdelay provides the convolution engine's shared-history
// synchronisation primitives: Line, a single-writer multiple-reader
// sample-indexed ring buffer the audio thread publishes into and worker
// threads read from; and OutputQueue, a one-producer/one-consumer ring that
// carries a worker section's finished output samples back to the audio
// thread.
//
// Both types signal shutdown with ErrClosed rather than a panic or OS
// signal: Close wakes every blocked reader/waiter, which then returns
// ErrClosed and exits cleanly. Line.CreateThread spawns a goroutine locked
// to its own OS thread and best-effort lowers its scheduling priority
// relative to the caller; failure to change priority is non-fatal and
// silently falls back to cooperative scheduling, per the design's "failure
// to set priority downgrades to best-effort" guidance.
package syncdelay

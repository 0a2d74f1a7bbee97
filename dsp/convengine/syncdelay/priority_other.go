//go:build !linux

package syncdelay

// lowerCurrentThreadPriority is a no-op on platforms without a per-thread
// priority facility; workers fall back to cooperative scheduling.
func lowerCurrentThreadPriority(relativePriority int) {}

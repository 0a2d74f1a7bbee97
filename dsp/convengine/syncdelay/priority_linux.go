//go:build linux

package syncdelay

import "golang.org/x/sys/unix"

// lowerCurrentThreadPriority best-effort lowers the calling OS thread's
// scheduling priority by relativePriority (larger values mean lower
// priority, matching the niceness direction). The caller must already be
// locked to this OS thread via runtime.LockOSThread. Failure is silently
// ignored: a worker that cannot change its priority still runs correctly,
// just without the scheduling hint.
func lowerCurrentThreadPriority(relativePriority int) {
	if relativePriority == 0 {
		return
	}
	tid := unix.Gettid()
	nice, err := unix.Getpriority(unix.PRIO_PROCESS, tid)
	if err != nil {
		return
	}
	// Getpriority returns 20-nice; undo that to recover the actual niceness.
	nice = 20 - nice
	_ = unix.Setpriority(unix.PRIO_PROCESS, tid, nice+relativePriority)
}

package syncdelay

import "errors"

// ErrClosed is returned by any blocking call on a Line or OutputQueue that
// was closed while the call was waiting, or is already closed. Worker
// bodies translate it into a normal goroutine exit via errors.Is.
var ErrClosed = errors.New("syncdelay: closed")

// ErrReadUnderrun is returned when a reader asks for a sample range whose
// upper bound has already advanced past the writer's published horizon: the
// writer has lapped the reader. It signals a latency/deadline bug in the
// caller, not an expected runtime condition.
var ErrReadUnderrun = errors.New("syncdelay: read underrun")

package fftplan

// indexAllocator hands out storage slot pairs to butterflies, recycling a
// freed pair once its prior occupancy window no longer overlaps the new
// occupant's [earliest, latestUse) lifetime. Ported from the reference's
// IndexAllocator (BalancedFft.cpp), which runs this recycling path by
// default (RECYCLE_SLOTS 1).
type indexAllocator struct {
	planSize   int32
	nextIndex  int32
	free       []int32 // indices currently free, donor-search order
	usageByIdx map[int32]*slotUsage
}

func newIndexAllocator(planSize, startIndex int32) *indexAllocator {
	return &indexAllocator{
		planSize:   planSize,
		nextIndex:  startIndex,
		usageByIdx: make(map[int32]*slotUsage),
	}
}

// allocate reserves a 2-wide storage slot pair for an occupant live over
// [earliest, latestUse). It first looks for a freed slot whose recorded
// occupancy history doesn't overlap that window; failing that, it grows the
// arena.
func (a *indexAllocator) allocate(earliest, latestUse int32) int32 {
	for i, idx := range a.free {
		usage := a.usageByIdx[idx]
		if usage == nil || !usage.containsAny(a.planSize, earliest, latestUse) {
			a.free = append(a.free[:i], a.free[i+1:]...)
			return idx
		}
	}

	result := a.nextIndex
	a.nextIndex += 2
	return result
}

// releaseSlot returns a 2-wide storage slot pair to the free list, recording
// that it was occupied over [earliest, latestUse) so a future allocate call
// can avoid handing it to an overlapping occupant.
func (a *indexAllocator) releaseSlot(index, earliest, latestUse int32) {
	usage := a.usageByIdx[index]
	if usage == nil {
		usage = &slotUsage{}
		a.usageByIdx[index] = usage
	}
	usage.add(a.planSize, earliest, latestUse)
	a.free = append(a.free, index)
}

// usageRange is a half-open [from, to) occupancy interval, already
// normalised into the allocator's planSize-periodic timeline.
type usageRange struct {
	from, to int32
}

// slotUsage accumulates the set of time ranges (mod planSize) during which a
// storage slot has been occupied by some now-freed butterfly, so a later
// allocate call can tell whether handing the slot to a new, overlapping
// occupant would corrupt still-pending data. Ported from the reference's
// SlotUsage (BalancedFft.cpp).
type slotUsage struct {
	used []usageRange
}

// add records [from, to) as occupied, wrapping and splitting across the
// planSize boundary as needed, merging into an adjacent existing range
// where possible.
func (u *slotUsage) add(planSize, from, to int32) {
	if from >= planSize {
		from -= planSize
		to -= planSize
	} else if to > planSize {
		to -= planSize
		u.add(planSize, 0, to)
		u.add(planSize, from, planSize)
		return
	}

	insertAt := len(u.used)
	for i, r := range u.used {
		if r.from >= from {
			insertAt = i
			break
		}
		if r.to == from {
			u.used[i].to = to
			return
		}
	}

	entry := usageRange{from, to}
	if insertAt < len(u.used) && entry.to >= u.used[insertAt].from {
		switch {
		case entry.to == u.used[insertAt].from:
			entry.to = u.used[insertAt].to
		case u.used[insertAt].to == u.used[insertAt].from && entry.from == u.used[insertAt].from:
			// degenerate (empty) placeholder range: just overwrite it.
		}
		u.used[insertAt] = entry
		return
	}

	u.used = append(u.used, usageRange{})
	copy(u.used[insertAt+1:], u.used[insertAt:])
	u.used[insertAt] = entry
}

// containsAny reports whether any instant in [from, to) — or, for a
// zero-width (from==to) probe, the instant from itself — falls inside an
// already-recorded occupied range, after folding the query mod planSize.
func (u *slotUsage) containsAny(planSize, from, to int32) bool {
	if from >= planSize {
		if from == to {
			to -= planSize
		}
		from -= planSize
	}
	if to > planSize {
		to -= planSize
	}
	if from > to {
		return u.containsAny(planSize, 0, to) || u.containsAny(planSize, from, planSize)
	}

	if from == to {
		for _, r := range u.used {
			if from < r.to && from >= r.from {
				return true
			}
		}
		return false
	}

	for _, r := range u.used {
		if from < r.to && to > r.from {
			return true
		}
	}
	return false
}

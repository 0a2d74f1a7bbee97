// Package fftplan compiles FFT and balanced-convolution-section dataflow
// graphs into an immutable, serialisable Plan: a fixed sequence of per-slot
// steps, each a short list of butterfly ops over a flat working-memory
// buffer, such that driving the plan one slot per sample spreads the total
// butterfly work evenly across the slot cycle.
//
// Compilation proceeds in four stages: graph construction (an arena of
// Input/Constant/Butterfly/LeftOutput/RightOutput nodes, never holding
// cyclic owning references — consumer edges are recovered with a second
// pass over the arena rather than stored bidirectionally), greedy
// earliest-available scheduling under a per-slot op budget, storage
// allocation, and a generation-simulation self-check that proves no op
// reads a mix of two different pending samples' data.
//
// Storage allocation recycles butterfly output pairs: once every consumer
// of a butterfly's output views has been scheduled, its 2-slot pair is
// handed back to an indexAllocator that tracks, per freed slot, the
// [earliest, latestUse) windows it was previously occupied over, and only
// reissues it to a new occupant whose own window doesn't overlap any of
// them. This mirrors the reference's IndexAllocator/SlotUsage
// (BalancedFft.cpp), which runs this recycling path by default
// (RECYCLE_SLOTS 1) rather than as an optional extra; see DESIGN.md.
package fftplan

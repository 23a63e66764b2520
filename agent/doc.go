// Package agent contains the run coordinator: the entry point that owns one
// invocation of the health agent from lock acquisition to report writing.
//
// The coordinator is a small state machine: Idle, AcquiringLock, Running,
// WritingReport, Done, with Failed reachable from any step on an
// infrastructure error. Overlapping invocations are refused, never queued:
// if the lock is held by a live process the new invocation exits
// immediately with a distinct already-running status. A lock left behind by
// a crashed run is reclaimed once its owner is dead or the lock has aged
// past the staleness window.
//
// The report is written in every run that gets past the lock, even when
// probes only partially collected, so failures are never silently dropped.
package agent

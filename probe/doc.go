// Package probe implements the agent's metric probes and the runner that
// collects them.
//
// A Probe is a stateless unit of measurement: CPU utilization, memory
// pressure, per-filesystem disk usage, load averages, network reachability,
// DNS resolution and nix-daemon liveness. Probes are invoked fresh each run
// and read from /proc, syscalls, bounded dials or bounded subprocesses.
//
// The Runner collects all registered probes in parallel, each bounded by its
// own timeout. A probe that fails or times out yields an unavailable
// measurement and never aborts the run: the runner always returns one entry
// (or more, for multi-value probes) per registered probe, in registration
// order, only after every probe has finished.
//
//	runner := probe.NewRunner(logger)
//	for _, p := range probe.DefaultSet(probe.NewExecRunner(), probe.SetConfig{}) {
//	    runner.Register(p)
//	}
//	measurements := runner.CollectAll(ctx)
package probe

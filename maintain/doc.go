// Package maintain implements the agent's unattended maintenance tasks and
// the runner that executes them.
//
// Tasks run sequentially in their declared order: nix garbage collection
// with an age-based retention, store optimisation, transient artifact
// removal, third-party cache clearing, and package-manager self-cleanup.
// Several tasks serialize mutation of shared package-manager state, which
// is why the runner never executes them concurrently.
//
// Failure isolation is the central contract: every task is independently
// wrapped, a failure (error, non-zero exit, even a panic) is captured into
// its TaskResult, and the next task always runs. RunAll returns one result
// per task regardless of individual outcomes.
package maintain

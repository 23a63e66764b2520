package maintain

import (
	"context"
	"fmt"
	"time"
)

// CommandRunner runs external commands for maintenance tasks. It is
// satisfied by probe.NewExecRunner; tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) bool
}

// GarbageCollectTask runs nix-collect-garbage with an age-based retention
// policy: generations older than the retention period are deleted.
type GarbageCollectTask struct {
	runner    CommandRunner
	retention string
}

// NewGarbageCollectTask creates the garbage collection task.
// Retention defaults to "7d".
func NewGarbageCollectTask(runner CommandRunner, retention string) *GarbageCollectTask {
	if retention == "" {
		retention = "7d"
	}
	return &GarbageCollectTask{runner: runner, retention: retention}
}

// Name returns the name of this task.
func (t *GarbageCollectTask) Name() string {
	return "garbage-collect"
}

// Run deletes store paths and generations older than the retention period.
func (t *GarbageCollectTask) Run(ctx context.Context) TaskResult {
	return runCommand(ctx, t.Name(), t.runner,
		"nix-collect-garbage", "--delete-older-than", t.retention)
}

// OptimiseStoreTask runs the nix store deduplication pass, hard-linking
// identical files.
type OptimiseStoreTask struct {
	runner CommandRunner
}

// NewOptimiseStoreTask creates the store optimisation task.
func NewOptimiseStoreTask(runner CommandRunner) *OptimiseStoreTask {
	return &OptimiseStoreTask{runner: runner}
}

// Name returns the name of this task.
func (t *OptimiseStoreTask) Name() string {
	return "optimise-store"
}

// Run performs the optimisation pass.
func (t *OptimiseStoreTask) Run(ctx context.Context) TaskResult {
	return runCommand(ctx, t.Name(), t.runner, "nix-store", "--optimise")
}

// SelfCleanupTask trims old profile generations, keeping the most recent.
type SelfCleanupTask struct {
	runner CommandRunner
	keep   int
}

// NewSelfCleanupTask creates the profile cleanup task.
// Keep defaults to 5 generations.
func NewSelfCleanupTask(runner CommandRunner, keep int) *SelfCleanupTask {
	if keep <= 0 {
		keep = 5
	}
	return &SelfCleanupTask{runner: runner, keep: keep}
}

// Name returns the name of this task.
func (t *SelfCleanupTask) Name() string {
	return "profile-cleanup"
}

// Run deletes all generations except the newest ones.
func (t *SelfCleanupTask) Run(ctx context.Context) TaskResult {
	return runCommand(ctx, t.Name(), t.runner,
		"nix-env", "--delete-generations", fmt.Sprintf("+%d", t.keep))
}

// runCommand executes one bounded subprocess and folds the outcome into a
// TaskResult. A missing binary is a failure here, not a skip: the nix tasks
// are the point of the maintenance run.
func runCommand(ctx context.Context, task string, runner CommandRunner, name string, args ...string) TaskResult {
	start := time.Now()

	out, err := runner.Run(ctx, name, args...)
	result := TaskResult{
		Task:     task,
		Duration: time.Since(start),
		Detail:   out,
	}
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	result.Succeeded = true
	return result
}

package maintain

import (
	"context"
	"fmt"
	"time"

	"github.com/mlgruby/nixmedic/observe"
)

// TaskResult is the outcome of one maintenance task.
type TaskResult struct {
	// Task is the task name.
	Task string

	// Succeeded reports whether the task completed without error.
	Succeeded bool

	// Skipped reports the task did nothing because its tool is absent.
	// A skipped task counts as not-failed.
	Skipped bool

	// Duration is how long the task ran.
	Duration time.Duration

	// Detail carries output or the captured error text.
	Detail string
}

// Task is one idempotent maintenance action.
type Task interface {
	// Name returns the name of this task.
	Name() string

	// Run performs the action. Implementations report failure through the
	// result, not by panicking; the runner still contains panics.
	Run(ctx context.Context) TaskResult
}

// Runner executes maintenance tasks sequentially in declared order.
type Runner struct {
	tasks  []Task
	logger observe.Logger
}

// NewRunner creates a maintenance runner over the given tasks.
func NewRunner(logger observe.Logger, tasks []Task) *Runner {
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	return &Runner{tasks: tasks, logger: logger}
}

// RunAll executes every task in order and returns one result per task.
//
// A failed task never blocks a later one. Tasks run strictly sequentially:
// garbage collection and store optimisation must not race.
func (r *Runner) RunAll(ctx context.Context) []TaskResult {
	results := make([]TaskResult, 0, len(r.tasks))

	for _, task := range r.tasks {
		result := r.runOne(ctx, task)
		results = append(results, result)

		switch {
		case result.Skipped:
			r.logger.Info(ctx, "maintenance task skipped",
				observe.Field{Key: "task", Value: result.Task},
				observe.Field{Key: "detail", Value: result.Detail},
			)
		case result.Succeeded:
			r.logger.Info(ctx, "maintenance task done",
				observe.Field{Key: "task", Value: result.Task},
				observe.Field{Key: "duration", Value: result.Duration.String()},
			)
		default:
			r.logger.Error(ctx, "maintenance task failed",
				observe.Field{Key: "task", Value: result.Task},
				observe.Field{Key: "detail", Value: result.Detail},
			)
		}
	}

	return results
}

// runOne wraps a single task so a panic becomes a failed result.
func (r *Runner) runOne(ctx context.Context, task Task) (result TaskResult) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			result = TaskResult{
				Task:     task.Name(),
				Duration: time.Since(start),
				Detail:   fmt.Sprintf("panic: %v", rec),
			}
		}
	}()

	result = task.Run(ctx)
	if result.Task == "" {
		result.Task = task.Name()
	}
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	return result
}

// AllFailed reports whether every non-skipped task failed. An empty or
// fully skipped result set is not a failure.
func AllFailed(results []TaskResult) bool {
	failed := 0
	attempted := 0
	for _, r := range results {
		if r.Skipped {
			continue
		}
		attempted++
		if !r.Succeeded {
			failed++
		}
	}
	return attempted > 0 && failed == attempted
}

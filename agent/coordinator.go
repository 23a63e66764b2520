package agent

import (
	"context"
	"errors"
	"time"

	"github.com/mlgruby/nixmedic/alert"
	"github.com/mlgruby/nixmedic/health"
	"github.com/mlgruby/nixmedic/maintain"
	"github.com/mlgruby/nixmedic/observe"
	"github.com/mlgruby/nixmedic/probe"
	"github.com/mlgruby/nixmedic/report"
)

// State is the coordinator's position in one run.
type State int

const (
	StateIdle State = iota
	StateAcquiringLock
	StateRunning
	StateWritingReport
	StateDone
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiringLock:
		return "acquiring-lock"
	case StateRunning:
		return "running"
	case StateWritingReport:
		return "writing-report"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ExitCode is the process exit status of one run.
type ExitCode int

const (
	// ExitOK: status excellent/good/fair, or at least one maintenance task
	// succeeded.
	ExitOK ExitCode = 0
	// ExitUnhealthy: status poor, or every maintenance task failed.
	ExitUnhealthy ExitCode = 1
	// ExitInfrastructure: the agent itself could not function (lock,
	// report store).
	ExitInfrastructure ExitCode = 2
	// ExitAlreadyRunning: another live instance holds the lock. Distinct
	// from the health statuses so schedulers can tell refusal from failure.
	ExitAlreadyRunning ExitCode = 3
)

// Coordinator drives one invocation end to end.
type Coordinator struct {
	lock       *Lock
	probes     *probe.Runner
	thresholds health.Thresholds
	tasks      *maintain.Runner
	writer     *report.Writer
	dispatcher *alert.Dispatcher
	logger     observe.Logger
	metrics    *observe.Metrics

	state State
}

// Deps carries the coordinator's collaborators.
type Deps struct {
	Lock       *Lock
	Probes     *probe.Runner
	Thresholds health.Thresholds
	Tasks      *maintain.Runner
	Writer     *report.Writer
	Dispatcher *alert.Dispatcher
	Logger     observe.Logger
	Metrics    *observe.Metrics
}

// New creates a coordinator.
func New(deps Deps) *Coordinator {
	logger := deps.Logger
	if logger == nil {
		logger = observe.NewNopLogger()
	}
	thresholds := deps.Thresholds
	if thresholds == nil {
		thresholds = health.DefaultThresholds()
	}
	return &Coordinator{
		lock:       deps.Lock,
		probes:     deps.Probes,
		thresholds: thresholds,
		tasks:      deps.Tasks,
		writer:     deps.Writer,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		state:      StateIdle,
	}
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	return c.state
}

// Run performs one invocation in the given mode and returns the persisted
// record plus the exit code the process should finish with. The record is
// nil only when the run was refused or failed before doing any work.
func (c *Coordinator) Run(ctx context.Context, mode report.Mode) (*report.RunRecord, ExitCode) {
	start := time.Now()

	c.transition(ctx, StateAcquiringLock)
	if err := c.lock.Acquire(); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			c.logger.Info(ctx, "run refused, another instance is live")
			c.state = StateDone
			return nil, ExitAlreadyRunning
		}
		c.fail(ctx, "lock", err)
		return nil, ExitInfrastructure
	}
	defer c.lock.Release()

	rec := report.NewRunRecord(mode)
	runLogger := c.logger.With(observe.Field{Key: "run_id", Value: rec.ID})
	runLogger.Info(ctx, "run started", observe.Field{Key: "mode", Value: string(mode)})

	c.transition(ctx, StateRunning)
	if mode == report.ModeMaintain {
		rec.TaskResults = c.tasks.RunAll(ctx)
		if c.metrics != nil {
			for _, tr := range rec.TaskResults {
				if !tr.Succeeded && !tr.Skipped {
					c.metrics.RecordTaskFailure(ctx, tr.Task)
				}
			}
		}
	} else {
		rec.Measurements = c.probes.CollectAll(ctx)
		rec.Issues = health.Evaluate(rec.Measurements, c.thresholds)
		rec.Status = health.Classify(rec.Issues)
		if len(rec.Measurements) > 0 && rec.Unavailable() == len(rec.Measurements) {
			runLogger.Error(ctx, "every probe failed, machine cannot be graded")
		}
		if c.metrics != nil {
			for _, m := range rec.Measurements {
				c.metrics.RecordProbe(ctx, m.Probe, m.Duration, m.Unavailable)
			}
		}
	}
	rec.Duration = time.Since(start)

	// The report always lands, even after partial probe failure.
	c.transition(ctx, StateWritingReport)
	if err := c.writer.LogRun(rec); err != nil {
		c.fail(ctx, "log run", err)
		return rec, ExitInfrastructure
	}
	if mode == report.ModeReport {
		handle, err := c.writer.WriteReport(rec)
		if err != nil {
			c.fail(ctx, "write report", err)
			return rec, ExitInfrastructure
		}
		runLogger.Info(ctx, "report written", observe.Field{Key: "path", Value: handle.Path})
	}

	if mode != report.ModeMaintain && c.dispatcher != nil {
		if _, err := c.dispatcher.Dispatch(ctx, rec); err != nil {
			c.fail(ctx, "alert log", err)
			return rec, ExitInfrastructure
		}
	}

	if c.metrics != nil {
		c.metrics.RecordRun(ctx, string(mode), rec.Duration, len(rec.Issues))
	}

	c.transition(ctx, StateDone)
	runLogger.Info(ctx, "run finished",
		observe.Field{Key: "status", Value: rec.Status.String()},
		observe.Field{Key: "duration", Value: rec.Duration.String()},
	)
	return rec, c.exitCode(rec)
}

func (c *Coordinator) exitCode(rec *report.RunRecord) ExitCode {
	if rec.Mode == report.ModeMaintain {
		if maintain.AllFailed(rec.TaskResults) {
			return ExitUnhealthy
		}
		return ExitOK
	}
	// No probe collected anything: the machine cannot be graded at all,
	// which is an infrastructure failure, not a clean bill of health.
	if len(rec.Measurements) > 0 && rec.Unavailable() == len(rec.Measurements) {
		return ExitInfrastructure
	}
	if rec.Status == health.StatusPoor {
		return ExitUnhealthy
	}
	return ExitOK
}

func (c *Coordinator) transition(ctx context.Context, next State) {
	c.logger.Debug(ctx, "state transition",
		observe.Field{Key: "from", Value: c.state.String()},
		observe.Field{Key: "to", Value: next.String()},
	)
	c.state = next
}

func (c *Coordinator) fail(ctx context.Context, step string, err error) {
	c.state = StateFailed
	c.logger.Error(ctx, "infrastructure failure",
		observe.Field{Key: "step", Value: step},
		observe.Field{Key: "error", Value: err.Error()},
	)
}

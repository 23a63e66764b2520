package probe

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mlgruby/nixmedic/health"
	"github.com/mlgruby/nixmedic/observe"
)

// Probe is the interface for metric probes.
type Probe interface {
	// Name returns the name of this probe.
	Name() string

	// Collect takes one sample. A probe may return multiple measurements
	// (one per filesystem, one per load-average window). A returned error
	// is recorded as an unavailable measurement, never propagated.
	Collect(ctx context.Context) ([]health.Measurement, error)

	// Timeout returns the per-collection timeout for this probe.
	// Zero means use the runner default.
	Timeout() time.Duration
}

// RunnerConfig configures the probe runner.
type RunnerConfig struct {
	// DefaultTimeout bounds probes that do not declare their own.
	// Default: 5 seconds
	DefaultTimeout time.Duration
}

// Runner collects a set of probes, in parallel, with per-probe timeouts.
type Runner struct {
	config RunnerConfig
	probes []Probe
	logger observe.Logger
}

// NewRunner creates a new probe runner.
func NewRunner(logger observe.Logger, config ...RunnerConfig) *Runner {
	cfg := RunnerConfig{
		DefaultTimeout: 5 * time.Second,
	}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.DefaultTimeout <= 0 {
			cfg.DefaultTimeout = 5 * time.Second
		}
	}
	if logger == nil {
		logger = observe.NewNopLogger()
	}

	return &Runner{config: cfg, logger: logger}
}

// Register adds a probe. Collection order follows registration order.
func (r *Runner) Register(p Probe) {
	r.probes = append(r.probes, p)
}

// Probes returns the registered probes in registration order.
func (r *Runner) Probes() []Probe {
	out := make([]Probe, len(r.probes))
	copy(out, r.probes)
	return out
}

// CollectAll runs every registered probe in parallel and returns the full
// measurement set in registration order.
//
// CollectAll is a barrier: it returns only after every probe has finished or
// timed out, so callers always evaluate a complete set. A probe failure or
// timeout yields an unavailable measurement for that probe; it never aborts
// the others.
func (r *Runner) CollectAll(ctx context.Context) []health.Measurement {
	collected := make([][]health.Measurement, len(r.probes))

	g := new(errgroup.Group)
	for i, p := range r.probes {
		i, p := i, p
		g.Go(func() error {
			collected[i] = r.collect(ctx, p)
			return nil
		})
	}
	g.Wait()

	var measurements []health.Measurement
	for _, ms := range collected {
		measurements = append(measurements, ms...)
	}
	return measurements
}

// collect runs one probe bounded by its timeout.
func (r *Runner) collect(ctx context.Context, p Probe) []health.Measurement {
	timeout := p.Timeout()
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	type outcome struct {
		measurements []health.Measurement
		err          error
	}
	resultCh := make(chan outcome, 1)

	go func() {
		ms, err := p.Collect(ctx)
		resultCh <- outcome{measurements: ms, err: err}
	}()

	select {
	case out := <-resultCh:
		elapsed := time.Since(start)
		if out.err != nil {
			r.logger.Warn(ctx, "probe unavailable",
				observe.Field{Key: "probe", Value: p.Name()},
				observe.Field{Key: "error", Value: out.err.Error()},
			)
			return []health.Measurement{health.Degraded(p.Name(), out.err).WithDuration(elapsed)}
		}
		for i := range out.measurements {
			out.measurements[i].Duration = elapsed
		}
		return out.measurements

	case <-ctx.Done():
		r.logger.Warn(ctx, "probe timed out",
			observe.Field{Key: "probe", Value: p.Name()},
			observe.Field{Key: "timeout", Value: timeout.String()},
		)
		return []health.Measurement{health.Degraded(p.Name(), ErrTimeout).WithDuration(time.Since(start))}
	}
}

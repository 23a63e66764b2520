package probe

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mlgruby/nixmedic/health"
)

// LoadProbeConfig configures the load-average probe.
type LoadProbeConfig struct {
	// LoadavgPath is the kernel load accounting file.
	// Default: /proc/loadavg
	LoadavgPath string

	// CollectTimeout bounds one collection. Default: 2 seconds
	CollectTimeout time.Duration
}

// LoadProbe reports the 1, 5 and 15 minute load averages as three
// measurements: load1, load5, load15.
type LoadProbe struct {
	config LoadProbeConfig
}

// NewLoadProbe creates a new load-average probe.
func NewLoadProbe(config LoadProbeConfig) *LoadProbe {
	if config.LoadavgPath == "" {
		config.LoadavgPath = "/proc/loadavg"
	}
	if config.CollectTimeout <= 0 {
		config.CollectTimeout = 2 * time.Second
	}
	return &LoadProbe{config: config}
}

// Name returns the name of this probe.
func (p *LoadProbe) Name() string {
	return "load"
}

// Timeout returns the per-collection timeout.
func (p *LoadProbe) Timeout() time.Duration {
	return p.config.CollectTimeout
}

// Collect reads the loadavg snapshot.
func (p *LoadProbe) Collect(ctx context.Context) ([]health.Measurement, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := os.ReadFile(p.config.LoadavgPath)
	if err != nil {
		return nil, fmt.Errorf("load probe: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: %s", ErrMalformedSource, p.config.LoadavgPath)
	}

	names := []string{"load1", "load5", "load15"}
	measurements := make([]health.Measurement, 0, 3)
	for i, name := range names {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedSource, p.config.LoadavgPath)
		}
		measurements = append(measurements, health.Sampled(name, health.KindLoad, v))
	}

	return measurements, nil
}

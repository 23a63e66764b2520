package probe

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mlgruby/nixmedic/health"
)

// CPUProbeConfig configures the CPU utilization probe.
type CPUProbeConfig struct {
	// StatPath is the kernel CPU accounting file.
	// Default: /proc/stat
	StatPath string

	// SampleInterval is the gap between the two stat readings the
	// utilization is computed from. Default: 200ms
	SampleInterval time.Duration

	// CollectTimeout bounds one collection. Default: 2 seconds
	CollectTimeout time.Duration
}

// CPUProbe samples instantaneous CPU utilization from two /proc/stat
// readings a short interval apart. It is a point sample, not an average
// over the run.
type CPUProbe struct {
	config CPUProbeConfig
}

// NewCPUProbe creates a new CPU utilization probe.
func NewCPUProbe(config CPUProbeConfig) *CPUProbe {
	if config.StatPath == "" {
		config.StatPath = "/proc/stat"
	}
	if config.SampleInterval <= 0 {
		config.SampleInterval = 200 * time.Millisecond
	}
	if config.CollectTimeout <= 0 {
		config.CollectTimeout = 2 * time.Second
	}
	return &CPUProbe{config: config}
}

// Name returns the name of this probe.
func (p *CPUProbe) Name() string {
	return "cpu"
}

// Timeout returns the per-collection timeout.
func (p *CPUProbe) Timeout() time.Duration {
	return p.config.CollectTimeout
}

// Collect takes the two-reading sample and returns utilization as a
// percentage.
func (p *CPUProbe) Collect(ctx context.Context) ([]health.Measurement, error) {
	first, err := readCPUSample(p.config.StatPath)
	if err != nil {
		return nil, err
	}

	select {
	case <-time.After(p.config.SampleInterval):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	second, err := readCPUSample(p.config.StatPath)
	if err != nil {
		return nil, err
	}

	busyDelta := second.busy() - first.busy()
	totalDelta := second.total() - first.total()

	var utilization float64
	if totalDelta > 0 {
		utilization = float64(busyDelta) / float64(totalDelta) * 100
	}

	m := health.Sampled("cpu", health.KindPercent, utilization).WithDetail(map[string]any{
		"sample_interval": p.config.SampleInterval.String(),
	})
	return []health.Measurement{m}, nil
}

// cpuSample carries the aggregate jiffy counters from one /proc/stat read.
type cpuSample struct {
	user, nice, system, idle, iowait, irq, softirq, steal uint64
}

func (s cpuSample) total() uint64 {
	return s.user + s.nice + s.system + s.idle + s.iowait + s.irq + s.softirq + s.steal
}

func (s cpuSample) busy() uint64 {
	return s.total() - s.idle - s.iowait
}

func readCPUSample(path string) (cpuSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return cpuSample{}, fmt.Errorf("cpu probe: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 8 {
			return cpuSample{}, fmt.Errorf("%w: %s", ErrMalformedSource, path)
		}

		values := make([]uint64, 8)
		for i := 0; i < 8; i++ {
			v, err := strconv.ParseUint(fields[i+1], 10, 64)
			if err != nil {
				return cpuSample{}, fmt.Errorf("%w: %s", ErrMalformedSource, path)
			}
			values[i] = v
		}

		return cpuSample{
			user: values[0], nice: values[1], system: values[2], idle: values[3],
			iowait: values[4], irq: values[5], softirq: values[6], steal: values[7],
		}, nil
	}

	return cpuSample{}, fmt.Errorf("%w: no cpu line in %s", ErrMalformedSource, path)
}

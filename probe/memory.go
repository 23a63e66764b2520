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

// MemoryProbeConfig configures the memory pressure probe.
type MemoryProbeConfig struct {
	// MeminfoPath is the kernel memory accounting file.
	// Default: /proc/meminfo
	MeminfoPath string

	// CollectTimeout bounds one collection. Default: 2 seconds
	CollectTimeout time.Duration
}

// MemoryProbe reports used memory as a percentage of total, where used is
// total minus MemAvailable.
type MemoryProbe struct {
	config MemoryProbeConfig
}

// NewMemoryProbe creates a new memory pressure probe.
func NewMemoryProbe(config MemoryProbeConfig) *MemoryProbe {
	if config.MeminfoPath == "" {
		config.MeminfoPath = "/proc/meminfo"
	}
	if config.CollectTimeout <= 0 {
		config.CollectTimeout = 2 * time.Second
	}
	return &MemoryProbe{config: config}
}

// Name returns the name of this probe.
func (p *MemoryProbe) Name() string {
	return "memory"
}

// Timeout returns the per-collection timeout.
func (p *MemoryProbe) Timeout() time.Duration {
	return p.config.CollectTimeout
}

// Collect reads the meminfo snapshot.
func (p *MemoryProbe) Collect(ctx context.Context) ([]health.Measurement, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(p.config.MeminfoPath)
	if err != nil {
		return nil, fmt.Errorf("memory probe: %w", err)
	}
	defer f.Close()

	var totalKB, availableKB uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB, _ = strconv.ParseUint(fields[1], 10, 64)
		case "MemAvailable:":
			availableKB, _ = strconv.ParseUint(fields[1], 10, 64)
		}
	}

	if totalKB == 0 {
		return nil, fmt.Errorf("%w: no MemTotal in %s", ErrMalformedSource, p.config.MeminfoPath)
	}

	usedPct := float64(totalKB-availableKB) / float64(totalKB) * 100

	m := health.Sampled("memory", health.KindPercent, usedPct).WithDetail(map[string]any{
		"total_kb":     totalKB,
		"available_kb": availableKB,
	})
	return []health.Measurement{m}, nil
}

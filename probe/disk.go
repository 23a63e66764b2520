package probe

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/mlgruby/nixmedic/health"
)

// DiskProbeConfig configures the per-filesystem disk usage probe.
type DiskProbeConfig struct {
	// MountsPath is the mount table to iterate.
	// Default: /proc/mounts
	MountsPath string

	// CollectTimeout bounds one collection. Default: 3 seconds
	CollectTimeout time.Duration

	// Usage resolves the usage of one mountpoint. Defaults to statfs;
	// tests substitute a fake.
	Usage func(mountpoint string) (DiskUsage, error)
}

// DiskUsage is the used/total byte counts of one filesystem.
type DiskUsage struct {
	UsedBytes  uint64
	TotalBytes uint64
}

// Percent returns used space as a percentage of total.
func (u DiskUsage) Percent() float64 {
	if u.TotalBytes == 0 {
		return 0
	}
	return float64(u.UsedBytes) / float64(u.TotalBytes) * 100
}

// DiskProbe reports usage for every real mounted filesystem, one
// measurement per mountpoint, named "disk:<mountpoint>".
type DiskProbe struct {
	config DiskProbeConfig
}

// NewDiskProbe creates a new disk usage probe.
func NewDiskProbe(config DiskProbeConfig) *DiskProbe {
	if config.MountsPath == "" {
		config.MountsPath = "/proc/mounts"
	}
	if config.CollectTimeout <= 0 {
		config.CollectTimeout = 3 * time.Second
	}
	if config.Usage == nil {
		config.Usage = statfsUsage
	}
	return &DiskProbe{config: config}
}

// Name returns the name of this probe.
func (p *DiskProbe) Name() string {
	return "disk"
}

// Timeout returns the per-collection timeout.
func (p *DiskProbe) Timeout() time.Duration {
	return p.config.CollectTimeout
}

// Collect iterates the mount table and measures each device-backed
// filesystem. A mountpoint whose usage cannot be resolved is reported
// unavailable; the others still measure.
func (p *DiskProbe) Collect(ctx context.Context) ([]health.Measurement, error) {
	mountpoints, err := p.mountpoints()
	if err != nil {
		return nil, err
	}

	var measurements []health.Measurement
	for _, mp := range mountpoints {
		select {
		case <-ctx.Done():
			return measurements, ctx.Err()
		default:
		}

		name := "disk:" + mp
		usage, err := p.config.Usage(mp)
		if err != nil {
			measurements = append(measurements, health.Degraded(name, err))
			continue
		}

		m := health.Sampled(name, health.KindPercent, usage.Percent()).WithDetail(map[string]any{
			"used_bytes":  usage.UsedBytes,
			"total_bytes": usage.TotalBytes,
		})
		measurements = append(measurements, m)
	}

	return measurements, nil
}

// mountpoints lists device-backed mounts, first occurrence per mountpoint.
func (p *DiskProbe) mountpoints() ([]string, error) {
	f, err := os.Open(p.config.MountsPath)
	if err != nil {
		return nil, fmt.Errorf("disk probe: %w", err)
	}
	defer f.Close()

	seen := make(map[string]bool)
	var mountpoints []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		device, mountpoint := fields[0], fields[1]
		if !strings.HasPrefix(device, "/dev/") {
			continue
		}
		if seen[mountpoint] {
			continue
		}
		seen[mountpoint] = true
		mountpoints = append(mountpoints, mountpoint)
	}

	return mountpoints, nil
}

func statfsUsage(mountpoint string) (DiskUsage, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(mountpoint, &stat); err != nil {
		return DiskUsage{}, fmt.Errorf("statfs %s: %w", mountpoint, err)
	}

	bsize := uint64(stat.Bsize)
	used := (stat.Blocks - stat.Bfree) * bsize
	// Total from the non-root perspective: used plus what is still available.
	total := used + stat.Bavail*bsize

	return DiskUsage{UsedBytes: used, TotalBytes: total}, nil
}

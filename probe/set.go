package probe

import (
	"time"
)

// SetConfig carries the externally configurable knobs of the default
// probe set. Zero values fall back to the per-probe defaults.
type SetConfig struct {
	ReachabilityAddr string
	DNSHost          string
	DaemonSocket     string
	CollectTimeout   time.Duration
}

// DefaultSet returns the agent's full probe set in its fixed order: CPU,
// memory, disk, load averages, internet reachability, DNS resolution and
// daemon liveness.
func DefaultSet(runner CommandRunner, cfg SetConfig) []Probe {
	return []Probe{
		NewCPUProbe(CPUProbeConfig{CollectTimeout: cfg.CollectTimeout}),
		NewMemoryProbe(MemoryProbeConfig{CollectTimeout: cfg.CollectTimeout}),
		NewDiskProbe(DiskProbeConfig{CollectTimeout: cfg.CollectTimeout}),
		NewLoadProbe(LoadProbeConfig{CollectTimeout: cfg.CollectTimeout}),
		NewReachabilityProbe(ReachabilityProbeConfig{
			Address:        cfg.ReachabilityAddr,
			CollectTimeout: cfg.CollectTimeout,
		}),
		NewDNSProbe(DNSProbeConfig{
			Host:           cfg.DNSHost,
			CollectTimeout: cfg.CollectTimeout,
		}),
		NewDaemonProbe(DaemonProbeConfig{
			SocketPath:     cfg.DaemonSocket,
			Runner:         runner,
			CollectTimeout: cfg.CollectTimeout,
		}),
	}
}

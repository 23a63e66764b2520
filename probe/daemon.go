package probe

import (
	"context"
	"net"
	"os"
	"time"

	"github.com/mlgruby/nixmedic/health"
)

// DaemonProbeConfig configures the nix-daemon liveness probe.
type DaemonProbeConfig struct {
	// SocketPath is the daemon's unix socket.
	// Default: /nix/var/nix/daemon-socket/socket
	SocketPath string

	// Runner is used for the pgrep fallback when the socket is absent.
	// Default: the exec-backed runner.
	Runner CommandRunner

	// ProcessName is the daemon process name for the fallback.
	// Default: nix-daemon
	ProcessName string

	// CollectTimeout bounds one collection. Default: 5 seconds
	CollectTimeout time.Duration
}

// DaemonProbe reports whether the local package-manager daemon is alive.
// It prefers dialing the daemon socket; when the socket does not exist it
// falls back to a process-table check.
type DaemonProbe struct {
	config DaemonProbeConfig
}

// NewDaemonProbe creates a new daemon liveness probe.
func NewDaemonProbe(config DaemonProbeConfig) *DaemonProbe {
	if config.SocketPath == "" {
		config.SocketPath = "/nix/var/nix/daemon-socket/socket"
	}
	if config.Runner == nil {
		config.Runner = NewExecRunner()
	}
	if config.ProcessName == "" {
		config.ProcessName = "nix-daemon"
	}
	if config.CollectTimeout <= 0 {
		config.CollectTimeout = 5 * time.Second
	}
	return &DaemonProbe{config: config}
}

// Name returns the name of this probe.
func (p *DaemonProbe) Name() string {
	return "daemon"
}

// Timeout returns the per-collection timeout.
func (p *DaemonProbe) Timeout() time.Duration {
	return p.config.CollectTimeout
}

// Collect checks daemon liveness. A dead daemon is a down measurement; a
// missing pgrep binary is a probe error and degrades instead.
func (p *DaemonProbe) Collect(ctx context.Context) ([]health.Measurement, error) {
	if _, err := os.Stat(p.config.SocketPath); err == nil {
		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, "unix", p.config.SocketPath)
		if err == nil {
			conn.Close()
			return p.up("socket"), nil
		}
		// Socket present but not accepting: the daemon is down.
		return p.down("socket", err.Error()), nil
	}

	if !p.config.Runner.LookPath("pgrep") {
		return nil, ErrToolMissing
	}

	if _, err := p.config.Runner.Run(ctx, "pgrep", "-x", p.config.ProcessName); err != nil {
		// pgrep exits non-zero when no process matches.
		return p.down("process-table", err.Error()), nil
	}
	return p.up("process-table"), nil
}

func (p *DaemonProbe) up(via string) []health.Measurement {
	m := health.Boolean("daemon", true).WithDetail(map[string]any{"via": via})
	return []health.Measurement{m}
}

func (p *DaemonProbe) down(via, detail string) []health.Measurement {
	m := health.Boolean("daemon", false).WithDetail(map[string]any{
		"via":   via,
		"error": detail,
	})
	return []health.Measurement{m}
}

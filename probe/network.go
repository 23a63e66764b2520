package probe

import (
	"context"
	"net"
	"time"

	"github.com/mlgruby/nixmedic/health"
)

// ReachabilityProbeConfig configures the internet reachability probe.
type ReachabilityProbeConfig struct {
	// Address is the fixed external address dialed to decide reachability.
	// Default: 1.1.1.1:443
	Address string

	// CollectTimeout bounds the dial. Default: 5 seconds
	CollectTimeout time.Duration
}

// ReachabilityProbe reports whether a fixed external address accepts a TCP
// connection. A failed dial is a down measurement, not a probe error: the
// unreachable network is the signal itself.
type ReachabilityProbe struct {
	config ReachabilityProbeConfig
}

// NewReachabilityProbe creates a new reachability probe.
func NewReachabilityProbe(config ReachabilityProbeConfig) *ReachabilityProbe {
	if config.Address == "" {
		config.Address = "1.1.1.1:443"
	}
	if config.CollectTimeout <= 0 {
		config.CollectTimeout = 5 * time.Second
	}
	return &ReachabilityProbe{config: config}
}

// Name returns the name of this probe.
func (p *ReachabilityProbe) Name() string {
	return "network"
}

// Timeout returns the per-collection timeout.
func (p *ReachabilityProbe) Timeout() time.Duration {
	return p.config.CollectTimeout
}

// Collect dials the configured address once.
func (p *ReachabilityProbe) Collect(ctx context.Context) ([]health.Measurement, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", p.config.Address)
	if err != nil {
		m := health.Boolean("network", false).WithDetail(map[string]any{
			"address": p.config.Address,
			"error":   err.Error(),
		})
		return []health.Measurement{m}, nil
	}
	conn.Close()

	m := health.Boolean("network", true).WithDetail(map[string]any{
		"address": p.config.Address,
	})
	return []health.Measurement{m}, nil
}

// DNSProbeConfig configures the DNS resolution probe.
type DNSProbeConfig struct {
	// Host is the fixed name resolved to decide DNS health.
	// Default: nixos.org
	Host string

	// CollectTimeout bounds the lookup. Default: 5 seconds
	CollectTimeout time.Duration

	// Resolver performs the lookup. Default: net.DefaultResolver
	Resolver *net.Resolver
}

// DNSProbe reports whether a fixed name resolves.
type DNSProbe struct {
	config DNSProbeConfig
}

// NewDNSProbe creates a new DNS resolution probe.
func NewDNSProbe(config DNSProbeConfig) *DNSProbe {
	if config.Host == "" {
		config.Host = "nixos.org"
	}
	if config.CollectTimeout <= 0 {
		config.CollectTimeout = 5 * time.Second
	}
	if config.Resolver == nil {
		config.Resolver = net.DefaultResolver
	}
	return &DNSProbe{config: config}
}

// Name returns the name of this probe.
func (p *DNSProbe) Name() string {
	return "dns"
}

// Timeout returns the per-collection timeout.
func (p *DNSProbe) Timeout() time.Duration {
	return p.config.CollectTimeout
}

// Collect resolves the configured name once.
func (p *DNSProbe) Collect(ctx context.Context) ([]health.Measurement, error) {
	addrs, err := p.config.Resolver.LookupHost(ctx, p.config.Host)
	if err != nil {
		m := health.Boolean("dns", false).WithDetail(map[string]any{
			"host":  p.config.Host,
			"error": err.Error(),
		})
		return []health.Measurement{m}, nil
	}

	m := health.Boolean("dns", true).WithDetail(map[string]any{
		"host":      p.config.Host,
		"addresses": len(addrs),
	})
	return []health.Measurement{m}, nil
}

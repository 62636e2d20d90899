// Package network tracks connectivity as a boolean event source. The core
// only consumes the latest value; it never gates sends on it.
package network

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"gemchat/internal/debug"
)

const probeTimeout = 2 * time.Second

// Probe reports whether the network currently looks reachable.
type Probe func(ctx context.Context) bool

// DialProbe probes by opening a TCP connection to the given host URL's
// address (port 443 when none is present).
func DialProbe(rawURL string) Probe {
	address := "generativelanguage.googleapis.com:443"
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Host != "" {
		address = parsed.Host
		if parsed.Port() == "" {
			address += ":443"
		}
	}
	return func(ctx context.Context) bool {
		dialer := &net.Dialer{Timeout: probeTimeout}
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
}

// Monitor polls a probe and publishes online/offline transitions. The zero
// state is online so a client without connectivity information behaves
// permissively.
type Monitor struct {
	mu     sync.Mutex
	online bool
	subs   []chan bool

	probe    Probe
	interval time.Duration
}

// NewMonitor builds a monitor around the probe.
func NewMonitor(probe Probe, interval time.Duration) *Monitor {
	return &Monitor{
		online:   true,
		probe:    probe,
		interval: interval,
	}
}

// Start polls until ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	log := debug.GetLogger()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.set(m.probe(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			online := m.probe(ctx)
			if m.set(online) {
				log.Info("network status changed", "online", online)
			}
		}
	}
}

// Online returns the latest observed status.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe returns a channel receiving each transition. The channel is
// buffered; a slow consumer drops transitions rather than blocking the
// monitor.
func (m *Monitor) Subscribe() <-chan bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan bool, 4)
	m.subs = append(m.subs, ch)
	return ch
}

// set records the status and notifies subscribers. Reports whether the
// status changed.
func (m *Monitor) set(online bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if online == m.online {
		return false
	}
	m.online = online
	for _, ch := range m.subs {
		select {
		case ch <- online:
		default:
		}
	}
	return true
}

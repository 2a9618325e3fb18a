package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-task-keeper/internal/adapter"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
)

// connectivityMonitor probes the server health endpoint on a ticker and
// reports reachability transitions. Only edges produce callbacks: staying
// online (or offline) across consecutive probes is silent.
type connectivityMonitor struct {
	adapter  adapter.ServerAdapter
	interval time.Duration

	mu       sync.Mutex
	online   bool
	onOnline func()
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	logger *logger.Logger
}

// NewConnectivityMonitor constructs a [ConnectivityMonitor] that probes the
// server every interval, defaulting to 10 seconds if interval is zero or
// negative.
func NewConnectivityMonitor(serverAdapter adapter.ServerAdapter, interval time.Duration, logger *logger.Logger) ConnectivityMonitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}

	return &connectivityMonitor{
		adapter:  serverAdapter,
		interval: interval,
		logger:   logger,
	}
}

// OnOnline implements [ConnectivityMonitor].
func (m *connectivityMonitor) OnOnline(fn func()) {
	m.mu.Lock()
	m.onOnline = fn
	m.mu.Unlock()
}

// Online implements [ConnectivityMonitor].
func (m *connectivityMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Start implements [ConnectivityMonitor]. The first probe happens
// synchronously, so a client that starts with a reachable server fires its
// online callback before Start returns.
func (m *connectivityMonitor) Start(ctx context.Context) {
	m.Stop()

	m.mu.Lock()
	monitorCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	m.probe(monitorCtx)

	go func() {
		defer m.wg.Done()

		t := time.NewTicker(m.interval)
		defer t.Stop()

		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-t.C:
				m.probe(monitorCtx)
			}
		}
	}()
}

// Stop implements [ConnectivityMonitor]. Safe to call when the monitor is not
// running.
func (m *connectivityMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// probe checks reachability once and fires the online callback when the state
// flips from offline to online.
func (m *connectivityMonitor) probe(ctx context.Context) {
	reachable := m.adapter.Health(ctx) == nil

	m.mu.Lock()
	wasOnline := m.online
	m.online = reachable
	callback := m.onOnline
	m.mu.Unlock()

	if reachable && !wasOnline {
		m.logger.Info().Msg("server is reachable, going online")
		if callback != nil {
			callback()
		}
	}
	if !reachable && wasOnline {
		m.logger.Info().Msg("server unreachable, going offline")
	}
}

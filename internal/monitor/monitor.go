package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/nikki/internal/metrics"
	"go.uber.org/zap"
)

// DefaultInterval is the probe period when none is configured.
const DefaultInterval = 60 * time.Second

// Probe is one monitored resource.
type Probe interface {
	Name() string
	Alive() bool
	Restore(ctx context.Context) error
}

// Monitor probes on a fixed ticker and signals after every pass.
type Monitor struct {
	interval time.Duration
	probes   []Probe
	after    func()
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a monitor. after runs at the end of every pass (the daemon
// passes the drain worker's Kick); it may be nil.
func New(interval time.Duration, after func(), logger *zap.Logger, probes ...Probe) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		interval: interval,
		probes:   probes,
		after:    after,
		logger:   logger,
	}
}

// Start runs the ticker loop in the background.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go m.loop(ctx)
}

// Stop stops the loop and waits for a running pass.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Check runs one pass: every dead probe gets a Restore attempt. Failures
// are logged and retried on the next pass.
func (m *Monitor) Check(ctx context.Context) {
	for _, p := range m.probes {
		if ctx.Err() != nil {
			return
		}
		if p.Alive() {
			continue
		}
		m.logger.Info("probe down, restoring", zap.String("probe", p.Name()))
		err := p.Restore(ctx)
		metrics.ProbeRestores.WithLabelValues(p.Name(), metrics.Result(err)).Inc()
		if err != nil {
			m.logger.Warn("restore failed", zap.String("probe", p.Name()), zap.Error(err))
			continue
		}
		m.logger.Info("probe restored", zap.String("probe", p.Name()))
	}
	if m.after != nil {
		m.after()
	}
}

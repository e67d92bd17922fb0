// Package health tracks graph store readiness and reports process status.
package health

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const defaultProbeInterval = 15 * time.Second

// Pinger is the connectivity check the probe runs.
type Pinger interface {
	VerifyConnectivity(ctx context.Context) error
}

// StoreState is the last observed store connectivity.
type StoreState struct {
	Up        bool      `json:"up"`
	LastCheck time.Time `json:"last_check"`
	LastError string    `json:"last_error,omitempty"`
}

// Probe periodically verifies graph store connectivity.
type Probe struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	onResult func(up bool)
	logger   *slog.Logger

	mu      sync.Mutex
	state   StoreState
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

type ProbeOption func(*Probe)

func WithInterval(d time.Duration) ProbeOption {
	return func(p *Probe) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithCheckTimeout bounds each connectivity check.
func WithCheckTimeout(d time.Duration) ProbeOption {
	return func(p *Probe) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithResultHook is called after every check, e.g. to update a gauge.
func WithResultHook(fn func(up bool)) ProbeOption {
	return func(p *Probe) {
		p.onResult = fn
	}
}

func WithProbeLogger(l *slog.Logger) ProbeOption {
	return func(p *Probe) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewProbe(pinger Pinger, opts ...ProbeOption) (*Probe, error) {
	if pinger == nil {
		return nil, errors.New("pinger is required")
	}
	p := &Probe{
		pinger:   pinger,
		interval: defaultProbeInterval,
		timeout:  5 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start runs one check immediately and then one per interval until Stop or ctx ends.
func (p *Probe) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("probe already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.wg.Add(1)
	p.mu.Unlock()

	go p.loop(ctx)
	return nil
}

func (p *Probe) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.running = false
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// CheckOnce runs a single connectivity check and records its outcome.
func (p *Probe) CheckOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.pinger.VerifyConnectivity(ctx)

	p.mu.Lock()
	wasUp := p.state.Up
	p.state = StoreState{Up: err == nil, LastCheck: time.Now().UTC()}
	if err != nil {
		p.state.LastError = err.Error()
	}
	p.mu.Unlock()

	if p.onResult != nil {
		p.onResult(err == nil)
	}
	switch {
	case err != nil && wasUp:
		p.logger.Warn("graph store became unreachable", slog.Any("error", err))
	case err == nil && !wasUp:
		p.logger.Info("graph store reachable")
	}
	return err
}

// Ready reports whether the last check succeeded.
func (p *Probe) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Up
}

func (p *Probe) State() StoreState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Probe) loop(ctx context.Context) {
	defer p.wg.Done()
	_ = p.CheckOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.CheckOnce(ctx)
		}
	}
}

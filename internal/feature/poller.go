package feature

import (
	"context"
	"sync"
	"time"
)

// defaultPollInterval is used for targets whose description declared
// polling without a usable interval.
const defaultPollInterval = 5 * time.Second

// SampleWriter receives polled numeric samples, typically backed by the
// InfluxDB client. Implementations must not block.
type SampleWriter interface {
	WriteSample(feature string, value float64, ts time.Time)
}

// PollerConfig configures the background sampler.
type PollerConfig struct {
	// Registry is the feature registry to sample. Required.
	Registry *Registry

	// Targets lists what to poll. When empty the registry's declared
	// poll targets are used.
	Targets []PollTarget

	// Writer receives every successful sample. Optional.
	Writer SampleWriter

	// Logger defaults to a no-op logger.
	Logger Logger
}

// Poller samples numeric features on their declared intervals. Each
// target runs its own ticker loop; samples flow through the registry,
// so they hit the history repository and the update notifier exactly
// like an API set does.
type Poller struct {
	registry *Registry
	targets  []PollTarget
	writer   SampleWriter
	logger   Logger

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewPoller creates a poller. Call Start to begin sampling.
func NewPoller(cfg PollerConfig) *Poller {
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	targets := cfg.Targets
	if len(targets) == 0 {
		targets = cfg.Registry.PollTargets()
	}
	for i := range targets {
		if targets[i].Interval <= 0 {
			targets[i].Interval = defaultPollInterval
		}
	}
	return &Poller{
		registry: cfg.Registry,
		targets:  targets,
		writer:   cfg.Writer,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches one sampling loop per target.
func (p *Poller) Start(ctx context.Context) {
	for _, t := range p.targets {
		p.wg.Add(1)
		go p.loop(ctx, t)
	}
	p.logger.Info("feature poller started", "targets", len(p.targets))
}

// Stop ends all sampling loops and waits for them. Safe to call more
// than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}

// Targets returns what the poller samples.
func (p *Poller) Targets() []PollTarget {
	out := make([]PollTarget, len(p.targets))
	copy(out, p.targets)
	return out
}

func (p *Poller) loop(ctx context.Context, t PollTarget) {
	defer p.wg.Done()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	// Sample immediately so consumers see a value before the first tick.
	p.sample(ctx, t)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			p.sample(ctx, t)
		}
	}
}

// sample reads one target. A failed read is logged and retried on the
// next tick; transient device faults must not kill the loop.
func (p *Poller) sample(ctx context.Context, t PollTarget) {
	v, err := p.registry.Sample(ctx, t.Name)
	if err != nil {
		p.logger.Debug("poll sample failed", "feature", t.Name, "error", err)
		return
	}
	if p.writer != nil {
		p.writer.WriteSample(t.Name, v, time.Now().UTC())
	}
}

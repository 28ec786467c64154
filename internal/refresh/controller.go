package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/acwatch/internal/units"
)

// DefaultInterval is the delay between the end of one cycle and the start of the next.
const DefaultInterval = time.Second

var ErrStopped = errors.New("refresh controller stopped")

// State is the controller lifecycle state.
type State int

const (
	Idle State = iota
	Active
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Fetcher retrieves the current unit snapshots from the data source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]units.Snapshot, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]units.Snapshot, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]units.Snapshot, error) {
	return f(ctx)
}

// Sink receives each successfully fetched collection.
type Sink interface {
	Set(units.Collection)
}

type Config struct {
	Clock   clockwork.Clock
	Fetcher Fetcher
	Store   Sink

	// Name labels the controller's metrics and log lines.
	Name string

	// Interval defaults to DefaultInterval.
	Interval time.Duration
}

func (cfg *Config) Validate() error {
	if cfg.Clock == nil {
		return errors.New("clock is required")
	}
	if cfg.Fetcher == nil {
		return errors.New("fetcher is required")
	}
	if cfg.Store == nil {
		return errors.New("store is required")
	}
	if cfg.Name == "" {
		return errors.New("name is required")
	}
	if cfg.Interval < 0 {
		return errors.New("interval must not be negative")
	}
	return nil
}

// Controller runs the fetch → apply → wait loop. Cycles never overlap: the
// next one is scheduled only after the previous fetch has resolved.
type Controller struct {
	log *slog.Logger
	cfg Config

	mu    sync.Mutex
	state State
	// done is closed by Stop; it cancels the pending timer wait.
	done chan struct{}
	// exited is closed once no cycle can run anymore.
	exited chan struct{}

	cycles      prometheus.Counter
	failures    prometheus.Counter
	updates     prometheus.Counter
	lastSuccess prometheus.Gauge
}

func NewController(log *slog.Logger, cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	labels := prometheus.Labels{"controller": cfg.Name}
	return &Controller{
		log:    log.With("controller", cfg.Name),
		cfg:    cfg,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "acwatch_refresh_cycles_total",
			Help:        "Refresh cycles started",
			ConstLabels: labels,
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "acwatch_refresh_failures_total",
			Help:        "Refresh cycles whose fetch failed",
			ConstLabels: labels,
		}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "acwatch_refresh_store_updates_total",
			Help:        "Fetched collections applied to the store",
			ConstLabels: labels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "acwatch_refresh_last_success_timestamp_seconds",
			Help:        "Unix time of the last applied fetch",
			ConstLabels: labels,
		}),
	}, nil
}

// Start activates the controller and runs the first cycle immediately.
// Calling Start on an active controller is a no-op. Cancelling ctx stops
// the controller.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case Active:
		c.mu.Unlock()
		return nil
	case Stopped:
		c.mu.Unlock()
		return ErrStopped
	}
	c.state = Active
	c.mu.Unlock()

	c.log.Debug("refresh: starting", "interval", c.cfg.Interval)
	go c.run(ctx)
	return nil
}

// Stop deactivates the controller. A pending timer is cancelled and the
// result of a fetch still in flight is discarded when it resolves. Stop is
// safe to call at any time and more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	if prev == Stopped {
		return
	}
	c.state = Stopped
	close(c.done)
	if prev == Idle {
		close(c.exited)
	}
	c.log.Debug("refresh: stopped", "from", prev.String())
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the controller is stopped and its loop has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.exited
}

func (c *Controller) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.cycles, c.failures, c.updates, c.lastSuccess}
}

func (c *Controller) run(ctx context.Context) {
	defer close(c.exited)

	unwatch := context.AfterFunc(ctx, c.Stop)
	defer unwatch()

	for {
		c.cycle(ctx)

		if c.State() != Active {
			return
		}

		timer := c.cfg.Clock.NewTimer(c.cfg.Interval)
		select {
		case <-c.done:
			timer.Stop()
			return
		case <-timer.Chan():
		}
	}
}

func (c *Controller) cycle(ctx context.Context) {
	// Stop may land between Start and the first cycle, or race the timer.
	if c.State() != Active {
		return
	}
	c.cycles.Inc()

	snapshots, err := c.cfg.Fetcher.Fetch(ctx)
	if err != nil {
		c.failures.Inc()
		c.log.Debug("refresh: fetch failed, keeping previous collection", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Active {
		c.log.Debug("refresh: discarding fetch that resolved after stop")
		return
	}
	c.cfg.Store.Set(units.Loaded(snapshots))
	c.updates.Inc()
	c.lastSuccess.Set(float64(c.cfg.Clock.Now().Unix()))
}

package guardians

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ControllerConfig bundles the three guardian configs.
type ControllerConfig struct {
	Rakshaka RakshakaConfig
	Gati     GatiConfig
	Satya    SatyaConfig
}

func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Rakshaka: DefaultRakshakaConfig(),
		Gati:     DefaultGatiConfig(),
		Satya:    DefaultSatyaConfig(),
	}
}

// Controller holds the three guardians behind a common interface, fanning
// tool executions and turn observations out to whichever guardians care,
// and broadcasting every emitted finding to registered listeners.
type Controller struct {
	rakshaka *Rakshaka
	gati     *Gati
	satya    *Satya

	mu        sync.Mutex
	listeners []Listener
	nextID    int
}

// NewController constructs the three guardians from cfg and wires them
// behind one controller.
func NewController(cfg ControllerConfig) *Controller {
	return &Controller{
		rakshaka: NewRakshaka(cfg.Rakshaka),
		gati:     NewGati(cfg.Gati),
		satya:    NewSatya(cfg.Satya),
	}
}

// OnFinding registers a listener, invoked synchronously in registration
// order whenever any guardian emits a finding. Returns an unsubscribe func.
// A panicking listener is isolated: it cannot prevent later listeners from
// running or abort the call that triggered the finding.
func (c *Controller) OnFinding(listener Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners = append(c.listeners, listener)
	idx := len(c.listeners) - 1

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if idx < len(c.listeners) {
			c.listeners[idx] = nil
		}
		_ = id
	}
}

func (c *Controller) broadcast(findings []Finding) {
	if len(findings) == 0 {
		return
	}
	c.mu.Lock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, f := range findings {
		event := Event{Kind: FindingEmitted, Finding: &f}
		for _, listener := range listeners {
			if listener == nil {
				continue
			}
			invokeListener(listener, event)
		}
	}
}

func invokeListener(listener Listener, event Event) {
	defer func() {
		_ = recover()
	}()
	listener(event)
}

// AfterToolExecution dispatches to Rakshaka.Scan and Gati.Observe
// concurrently (bounded by errgroup), returning the union of new findings.
func (c *Controller) AfterToolExecution(ctx context.Context, exec ToolExecution) ([]Finding, error) {
	var rakshakaFindings, gatiFindings []Finding
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		rakshakaFindings = c.rakshaka.Scan(exec)
		return nil
	})
	g.Go(func() error {
		gatiFindings = c.gati.Observe(exec)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := append(append([]Finding{}, rakshakaFindings...), gatiFindings...)
	c.broadcast(all)
	return all, nil
}

// AfterTurn dispatches to Satya.ObserveTurn and Gati.ObserveTurnMetrics.
func (c *Controller) AfterTurn(ctx context.Context, turn Turn, metrics TurnMetrics) ([]Finding, error) {
	var satyaFindings, gatiFindings []Finding
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		satyaFindings = c.satya.ObserveTurn(turn)
		return nil
	})
	g.Go(func() error {
		gatiFindings = c.gati.ObserveTurnMetrics(metrics)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := append(append([]Finding{}, satyaFindings...), gatiFindings...)
	c.broadcast(all)
	return all, nil
}

// AllFindings aggregates all guardian rings, sorted newest-first, respecting
// an optional limit (0 means no limit).
func (c *Controller) AllFindings(limit int) []Finding {
	all := append(append(append([]Finding{}, c.rakshaka.Ring().All()...), c.gati.Ring().All()...), c.satya.Ring().All()...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// FindingsByDomain filters AllFindings(0) by domain.
func (c *Controller) FindingsByDomain(domain Domain) []Finding {
	var out []Finding
	for _, f := range c.AllFindings(0) {
		if f.Domain == domain {
			out = append(out, f)
		}
	}
	return out
}

// CriticalFindings filters AllFindings(0) to critical severity.
func (c *Controller) CriticalFindings() []Finding {
	var out []Finding
	for _, f := range c.AllFindings(0) {
		if f.Severity == SeverityCritical {
			out = append(out, f)
		}
	}
	return out
}

// ControllerStats aggregates per-guardian stats.
type ControllerStats struct {
	Rakshaka RakshakaStats
	Gati     GatiStats
	Satya    SatyaStats
}

func (c *Controller) Stats() ControllerStats {
	return ControllerStats{
		Rakshaka: c.rakshaka.Stats(),
		Gati:     c.gati.Stats(),
		Satya:    c.satya.Stats(),
	}
}

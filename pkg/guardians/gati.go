package guardians

import (
	"fmt"
	"math"
	"sync"

	"samsara/pkg/decay"
)

// GatiConfig carries Gati's confidenceThreshold, hysteresis margins, and
// ring capacity.
type GatiConfig struct {
	ConfidenceThreshold float64
	WarnPct             float64 // default 0.75
	CriticalPct         float64 // default 0.90
	ResetMarginPct      float64 // default 0.05
	EWMAAlpha           float64 // smoothing factor for mean/variance, default 0.2
	RingCapacity        int
	Enabled             bool
}

// DefaultGatiConfig returns the spec-mandated hysteresis thresholds.
func DefaultGatiConfig() GatiConfig {
	return GatiConfig{
		ConfidenceThreshold: 0.5,
		WarnPct:             0.75,
		CriticalPct:         0.90,
		ResetMarginPct:      0.05,
		EWMAAlpha:           0.2,
		RingCapacity:        DefaultRingCapacity,
		Enabled:             true,
	}
}

func (c GatiConfig) Validate() GatiConfig {
	c.ConfidenceThreshold = decay.ClampRate(c.ConfidenceThreshold, 0.05, 1.0)
	c.WarnPct = decay.Clamp01(c.WarnPct)
	c.CriticalPct = decay.Clamp01(c.CriticalPct)
	c.ResetMarginPct = decay.Clamp01(c.ResetMarginPct)
	if c.EWMAAlpha <= 0 || c.EWMAAlpha > 1 {
		c.EWMAAlpha = 0.2
	}
	if c.RingCapacity <= 0 {
		c.RingCapacity = DefaultRingCapacity
	}
	if c.RingCapacity > MaxRingCapacity {
		c.RingCapacity = MaxRingCapacity
	}
	return c
}

type ewmaStat struct {
	mean     float64
	variance float64
	count    int
}

func (s *ewmaStat) observe(alpha, value float64) {
	if s.count == 0 {
		s.mean = value
		s.variance = 0
		s.count = 1
		return
	}
	delta := value - s.mean
	s.mean += alpha * delta
	s.variance = (1 - alpha) * (s.variance + alpha*delta*delta)
	s.count++
}

func (s *ewmaStat) stddev() float64 {
	return math.Sqrt(s.variance)
}

type contextHysteresis struct {
	warnActive     bool
	criticalActive bool
}

// Gati watches tool duration, token burn, repeated tool calls, and context
// window usage, each with its own spike/hysteresis logic.
type Gati struct {
	mu   sync.Mutex
	cfg  GatiConfig
	ring *FindingRing

	perTool     map[string]*ewmaStat
	tokenStat   ewmaStat
	lastTools   []string // most recent 3 tool names, oldest first
	contextHyst contextHysteresis
}

func NewGati(cfg GatiConfig) *Gati {
	cfg = cfg.Validate()
	return &Gati{
		cfg:     cfg,
		ring:    NewFindingRing(cfg.RingCapacity),
		perTool: make(map[string]*ewmaStat),
	}
}

func (g *Gati) Enabled() bool      { return g.cfg.Enabled }
func (g *Gati) Ring() *FindingRing { return g.ring }

func spikeThreshold(mean, stddev, floor float64) float64 {
	return math.Max(3*mean, math.Max(mean+3*stddev, floor))
}

// Observe processes a tool execution: latency spike and repeated-call
// detectors. Returns any new findings, pushed onto the ring as a side effect.
func (g *Gati) Observe(exec ToolExecution) []Finding {
	if !g.cfg.Enabled {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []Finding
	emit := func(severity Severity, confidence float64, title, description string) {
		if confidence < g.cfg.ConfidenceThreshold {
			return
		}
		f := newFinding("gati", DomainPerformance, severity, title, description, confidence, false)
		g.ring.Push(f)
		out = append(out, f)
	}

	stat, ok := g.perTool[exec.Name]
	if !ok {
		stat = &ewmaStat{}
		g.perTool[exec.Name] = stat
	}
	if stat.count >= 4 {
		threshold := spikeThreshold(stat.mean, stat.stddev(), 500)
		if float64(exec.DurationMs) > threshold {
			emit(SeverityMedium, 0.6, "Latency spike",
				fmt.Sprintf("%s took %dms, exceeding its rolling threshold of %.0fms.", exec.Name, exec.DurationMs, threshold))
		}
	}
	stat.observe(g.cfg.EWMAAlpha, float64(exec.DurationMs))

	g.lastTools = append(g.lastTools, exec.Name)
	if len(g.lastTools) > 3 {
		g.lastTools = g.lastTools[len(g.lastTools)-3:]
	}
	if len(g.lastTools) == 3 && g.lastTools[0] == g.lastTools[1] && g.lastTools[1] == g.lastTools[2] {
		emit(SeverityLow, 0.55, "Repeated tool call",
			fmt.Sprintf("%s was called three times consecutively.", exec.Name))
	}

	return out
}

// ObserveTurnMetrics processes per-turn token burn and context-window usage.
func (g *Gati) ObserveTurnMetrics(metrics TurnMetrics) []Finding {
	if !g.cfg.Enabled {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []Finding
	emit := func(severity Severity, confidence float64, title, description string) {
		if confidence < g.cfg.ConfidenceThreshold {
			return
		}
		f := newFinding("gati", DomainPerformance, severity, title, description, confidence, false)
		g.ring.Push(f)
		out = append(out, f)
	}

	if g.tokenStat.count >= 4 {
		threshold := spikeThreshold(g.tokenStat.mean, g.tokenStat.stddev(), 500)
		if float64(metrics.TokensThisTurn) > threshold {
			emit(SeverityMedium, 0.6, "Token burn spike",
				fmt.Sprintf("turn consumed %d tokens, exceeding its rolling threshold of %.0f.", metrics.TokensThisTurn, threshold))
		}
	}
	g.tokenStat.observe(g.cfg.EWMAAlpha, float64(metrics.TokensThisTurn))

	pct := metrics.ContextUsedPct
	switch {
	case pct >= g.cfg.CriticalPct*100:
		if !g.contextHyst.criticalActive {
			emit(SeverityCritical, 0.85, "Context window critical",
				fmt.Sprintf("context usage reached %.0f%%.", pct))
			g.contextHyst.criticalActive = true
			g.contextHyst.warnActive = true
		}
	case pct >= g.cfg.WarnPct*100:
		if !g.contextHyst.warnActive {
			emit(SeverityMedium, 0.6, "Context window warning",
				fmt.Sprintf("context usage reached %.0f%%.", pct))
			g.contextHyst.warnActive = true
		}
		if pct < g.cfg.CriticalPct*100-g.cfg.ResetMarginPct*100 {
			g.contextHyst.criticalActive = false
		}
	default:
		if pct < g.cfg.WarnPct*100-g.cfg.ResetMarginPct*100 {
			g.contextHyst.warnActive = false
			g.contextHyst.criticalActive = false
		}
	}

	return out
}

// GatiStats summarizes Gati's running counts.
type GatiStats struct {
	TotalFindings int
	ToolsTracked  int
}

func (g *Gati) Stats() GatiStats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GatiStats{TotalFindings: g.ring.Len(), ToolsTracked: len(g.perTool)}
}

// Package guardians implements the three Lokapala watchers — Rakshaka
// (security), Gati (performance), Satya (correctness) — behind a shared
// Controller that fans tool executions and turn observations out to each
// guardian, aggregates findings through a capacity-bounded ring, and
// broadcasts synchronously to registered listeners.
package guardians

import (
	"time"

	"github.com/google/uuid"
)

// Domain names the guardian family that produced a Finding.
type Domain string

const (
	DomainSecurity    Domain = "security"
	DomainPerformance Domain = "performance"
	DomainCorrectness Domain = "correctness"
)

// Severity ranks a Finding's impact, low to high.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Finding is an immutable observation emitted by a guardian. Confidence is
// guaranteed >= the emitting guardian's confidenceThreshold; findings that
// fall short are discarded before construction.
type Finding struct {
	ID          string
	GuardianID  string
	Domain      Domain
	Severity    Severity
	Title       string
	Description string
	Confidence  float64
	AutoFixable bool
	Timestamp   time.Time
}

func newFinding(guardianID string, domain Domain, severity Severity, title, description string, confidence float64, autoFixable bool) Finding {
	return Finding{
		ID:          uuid.NewString(),
		GuardianID:  guardianID,
		Domain:      domain,
		Severity:    severity,
		Title:       title,
		Description: description,
		Confidence:  confidence,
		AutoFixable: autoFixable,
		Timestamp:   time.Now(),
	}
}

// ToolExecution is the concrete shape guardians observe after a tool runs.
type ToolExecution struct {
	Name       string
	Args       map[string]any
	Output     string
	DurationMs int64
}

// TurnRole distinguishes user from assistant turns for Satya's pattern scans.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is the minimal turn shape guardians need: role, content, and whether
// any tool call in the turn failed (used by Satya's error-streak detector).
type Turn struct {
	SessionID   string
	TurnNumber  int
	Role        TurnRole
	Content     string
	ToolFailed  bool
	ToolName    string // populated when ToolFailed, used by the test-failure detector
}

// TurnMetrics carries the per-turn numeric signals Gati needs that are not
// derivable from a single ToolExecution: tokens consumed and context usage.
type TurnMetrics struct {
	TokensThisTurn  int
	ContextUsedPct  float64
}

// EventKind tags the variant held by an Event.
type EventKind int

const (
	ToolObserved EventKind = iota
	TurnObserved
	FindingEmitted
)

// Event is a tagged union delivered to Controller listeners. Only the field
// matching Kind is populated.
type Event struct {
	Kind    EventKind
	Tool    *ToolExecution
	Turn    *Turn
	Finding *Finding
}

// Listener receives Events synchronously, in registration order. A panicking
// listener is isolated — it must not prevent other listeners from running or
// abort the originating operation.
type Listener func(Event)

// Package logging provides audit logging that outputs structured, queryable
// facts alongside the categorized text logs. Audit events are newline-delimited
// JSON plus a compact predicate-style string for downstream grep/awk analysis.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType defines the type of audit event.
type AuditEventType string

const (
	// Turiya routing events -> route_event/6
	AuditRouteDecision AuditEventType = "route_decision"
	AuditRouteOutcome  AuditEventType = "route_outcome"
	AuditRouteCascade  AuditEventType = "route_cascade"

	// Recall engine events -> recall_event/5
	AuditRecallQuery   AuditEventType = "recall_query"
	AuditRecallHit     AuditEventType = "recall_hit"
	AuditRecallMiss    AuditEventType = "recall_miss"
	AuditRecallStore   AuditEventType = "recall_store"
	AuditRecallMigrate AuditEventType = "recall_migrate"

	// Hybrid recall events -> hybrid_event/5
	AuditHybridSearch   AuditEventType = "hybrid_search"
	AuditHybridFeedback AuditEventType = "hybrid_feedback"
	AuditHybridGateSkip AuditEventType = "hybrid_gate_skip"

	// Guardian events -> guardian_event/5
	AuditFindingEmitted    AuditEventType = "finding_emitted"
	AuditGuardianSecurity  AuditEventType = "guardian_security"
	AuditGuardianPerf      AuditEventType = "guardian_perf"
	AuditGuardianCorrectness AuditEventType = "guardian_correctness"

	// Kala Chakra events -> kala_event/4
	AuditKalaContextBuilt AuditEventType = "kala_context_built"

	// Embedding provider events -> embedding_call/5
	AuditEmbeddingRequest AuditEventType = "embedding_request"
	AuditEmbeddingError   AuditEventType = "embedding_error"

	// Session/turn events -> session_event/4
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionEnd   AuditEventType = "session_end"
	AuditTurnStart    AuditEventType = "turn_start"
	AuditTurnEnd      AuditEventType = "turn_end"

	// Config events -> config_event/4
	AuditConfigLoaded    AuditEventType = "config_loaded"
	AuditConfigReloaded  AuditEventType = "config_reloaded"
	AuditConfigInvalid   AuditEventType = "config_invalid"

	// Error events -> error_event/4
	AuditErrorGeneric  AuditEventType = "error_generic"
	AuditErrorCritical AuditEventType = "error_critical"
	AuditErrorRecovery AuditEventType = "error_recovery"
)

// =============================================================================
// AUDIT EVENT STRUCTURE
// =============================================================================

// AuditEvent represents a structured audit log entry.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`
	EventType  AuditEventType         `json:"event"`
	Category   string                 `json:"cat"`
	SessionID  string                 `json:"session"`
	RequestID  string                 `json:"req"`
	ArmID      string                 `json:"arm,omitempty"`
	Target     string                 `json:"target"`
	Action     string                 `json:"action"`
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms"`
	Error      string                 `json:"error"`
	Message    string                 `json:"msg"`
	Fields     map[string]interface{} `json:"fields"`
	Fact       string                 `json:"fact"`
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger handles structured audit logging with predicate-fact generation.
type AuditLogger struct {
	sessionID string
	category  Category
	armID     string
}

// InitAudit initializes the audit logging system
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	header := fmt.Sprintf("# Audit log started at %s\n# Format: structured events, one JSON object per line\n", time.Now().Format(time.RFC3339))
	auditFile.WriteString(header)

	return nil
}

// CloseAudit closes the audit log file
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger
func Audit() *AuditLogger {
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithSession creates an audit logger scoped to a session
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// AuditWithArm creates an audit logger scoped to a routing arm
func AuditWithArm(armID string) *AuditLogger {
	return &AuditLogger{armID: armID}
}

// AuditWithContext creates a fully-scoped audit logger
func AuditWithContext(sessionID, armID string, category Category) *AuditLogger {
	return &AuditLogger{
		sessionID: sessionID,
		armID:     armID,
		category:  category,
	}
}

// =============================================================================
// AUDIT LOGGING METHODS
// =============================================================================

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() || auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" && a.sessionID != "" {
		event.SessionID = a.sessionID
	}
	if event.ArmID == "" && a.armID != "" {
		event.ArmID = a.armID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}
	if event.Fields == nil {
		event.Fields = make(map[string]interface{})
	}

	event.Fact = generateFact(event)

	auditMu.Lock()
	defer auditMu.Unlock()

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.WriteString(string(data) + "\n")
	}
}

// generateFact creates a predicate-style fact string from an event, suitable
// for line-oriented grep/awk analysis without parsing the full JSON record.
func generateFact(e AuditEvent) string {
	switch e.EventType {
	case AuditRouteDecision, AuditRouteOutcome, AuditRouteCascade:
		return fmt.Sprintf("route_event(%d, /%s, \"%s\", \"%s\", %v, %d).",
			e.Timestamp, e.EventType, e.ArmID, e.Target, e.Success, e.DurationMs)

	case AuditRecallQuery, AuditRecallHit, AuditRecallMiss, AuditRecallStore, AuditRecallMigrate:
		return fmt.Sprintf("recall_event(%d, /%s, \"%s\", %v, %d).",
			e.Timestamp, e.EventType, e.Target, e.Success, e.DurationMs)

	case AuditHybridSearch, AuditHybridFeedback, AuditHybridGateSkip:
		return fmt.Sprintf("hybrid_event(%d, /%s, \"%s\", %v, %d).",
			e.Timestamp, e.EventType, e.Target, e.Success, e.DurationMs)

	case AuditFindingEmitted, AuditGuardianSecurity, AuditGuardianPerf, AuditGuardianCorrectness:
		return fmt.Sprintf("guardian_event(%d, /%s, \"%s\", \"%s\", %v).",
			e.Timestamp, e.EventType, e.Target, e.Action, e.Success)

	case AuditKalaContextBuilt:
		return fmt.Sprintf("kala_event(%d, /%s, \"%s\", %d).",
			e.Timestamp, e.EventType, e.SessionID, e.DurationMs)

	case AuditEmbeddingRequest, AuditEmbeddingError:
		dims := 0
		if d, ok := e.Fields["dimensions"].(int); ok {
			dims = d
		}
		return fmt.Sprintf("embedding_call(%d, /%s, \"%s\", %v, %d, %d).",
			e.Timestamp, e.EventType, e.Target, e.Success, e.DurationMs, dims)

	case AuditSessionStart, AuditSessionEnd, AuditTurnStart, AuditTurnEnd:
		return fmt.Sprintf("session_event(%d, /%s, \"%s\").",
			e.Timestamp, e.EventType, e.SessionID)

	case AuditConfigLoaded, AuditConfigReloaded, AuditConfigInvalid:
		return fmt.Sprintf("config_event(%d, /%s, \"%s\", %v).",
			e.Timestamp, e.EventType, e.Target, e.Success)

	case AuditErrorGeneric, AuditErrorCritical, AuditErrorRecovery:
		return fmt.Sprintf("error_event(%d, /%s, \"%s\", \"%s\").",
			e.Timestamp, e.EventType, e.Category, escapeString(e.Error))

	default:
		return fmt.Sprintf("audit_event(%d, /%s, \"%s\", \"%s\", %v).",
			e.Timestamp, e.EventType, e.Category, escapeString(e.Message), e.Success)
	}
}

func escapeString(s string) string {
	// strings.Builder avoids O(N^2) concatenation on long error messages.
	var b strings.Builder
	b.Grow(len(s) + len(s)/10)

	for _, c := range s {
		switch c {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// =============================================================================
// CONVENIENCE METHODS FOR COMMON EVENTS
// =============================================================================

// RouteDecision logs a routing arm selection.
func (a *AuditLogger) RouteDecision(armID, reason string, predictedCost float64) {
	a.Log(AuditEvent{
		EventType: AuditRouteDecision,
		ArmID:     armID,
		Target:    reason,
		Success:   true,
		Fields:    map[string]interface{}{"predicted_cost": predictedCost},
		Message:   fmt.Sprintf("Routed to arm %s: %s (predicted_cost=%.4f)", armID, reason, predictedCost),
	})
}

// RouteCascade logs a confidence-triggered tier escalation.
func (a *AuditLogger) RouteCascade(fromArm, toArm string, confidence float64) {
	a.Log(AuditEvent{
		EventType: AuditRouteCascade,
		ArmID:     toArm,
		Target:    fromArm,
		Success:   true,
		Fields:    map[string]interface{}{"confidence": confidence},
		Message:   fmt.Sprintf("Cascaded %s -> %s (confidence=%.4f)", fromArm, toArm, confidence),
	})
}

// RouteOutcome logs the observed reward for a routing decision.
func (a *AuditLogger) RouteOutcome(armID string, reward float64, durationMs int64) {
	a.Log(AuditEvent{
		EventType:  AuditRouteOutcome,
		ArmID:      armID,
		Success:    reward > 0,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"reward": reward},
		Message:    fmt.Sprintf("Outcome for arm %s: reward=%.4f (%dms)", armID, reward, durationMs),
	})
}

// RecallQuery logs a memory recall query.
func (a *AuditLogger) RecallQuery(queryPreview string, hits int, durationMs int64) {
	eventType := AuditRecallHit
	if hits == 0 {
		eventType = AuditRecallMiss
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Target:     queryPreview,
		Success:    hits > 0,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"hits": hits},
		Message:    fmt.Sprintf("Recall query %q -> %d hits (%dms)", queryPreview, hits, durationMs),
	})
}

// RecallStore logs a memory entry being persisted.
func (a *AuditLogger) RecallStore(entryID string, durationMs int64, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType:  AuditRecallStore,
		Target:     entryID,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("Recall store: %s (success=%v, %dms)", entryID, success, durationMs),
	})
}

// HybridSearch logs a hybrid recall fan-out.
func (a *AuditLogger) HybridSearch(queryPreview string, backendCount, resultCount int, durationMs int64) {
	a.Log(AuditEvent{
		EventType:  AuditHybridSearch,
		Target:     queryPreview,
		Success:    resultCount > 0,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"backends": backendCount, "results": resultCount},
		Message:    fmt.Sprintf("Hybrid search %q across %d backends -> %d results (%dms)", queryPreview, backendCount, resultCount, durationMs),
	})
}

// HybridFeedback logs a reward signal fed back into the weight learner.
func (a *AuditLogger) HybridFeedback(signal string, reward float64) {
	a.Log(AuditEvent{
		EventType: AuditHybridFeedback,
		Target:    signal,
		Success:   reward > 0,
		Fields:    map[string]interface{}{"reward": reward},
		Message:   fmt.Sprintf("Hybrid feedback for %s: reward=%.4f", signal, reward),
	})
}

// FindingEmitted logs a guardian finding pushed onto the finding ring.
func (a *AuditLogger) FindingEmitted(guardian, severity, summary string) {
	a.Log(AuditEvent{
		EventType: AuditFindingEmitted,
		Target:    guardian,
		Action:    severity,
		Success:   true,
		Fields:    map[string]interface{}{"summary": summary},
		Message:   fmt.Sprintf("Finding from %s [%s]: %s", guardian, severity, summary),
	})
}

// EmbeddingCall logs an embedding provider round trip.
func (a *AuditLogger) EmbeddingCall(provider string, dimensions int, durationMs int64, success bool, errMsg string) {
	eventType := AuditEmbeddingRequest
	if !success {
		eventType = AuditEmbeddingError
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Target:     provider,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Fields:     map[string]interface{}{"dimensions": dimensions},
		Message:    fmt.Sprintf("Embedding call: %s -> %d dims (%dms, success=%v)", provider, dimensions, durationMs, success),
	})
}

// SessionStart logs session start
func (a *AuditLogger) SessionStart(sessionID string) {
	a.Log(AuditEvent{
		EventType: AuditSessionStart,
		SessionID: sessionID,
		Success:   true,
		Message:   fmt.Sprintf("Session started: %s", sessionID),
	})
}

// SessionEnd logs session end
func (a *AuditLogger) SessionEnd(sessionID string, turnCount int, durationMs int64) {
	a.Log(AuditEvent{
		EventType:  AuditSessionEnd,
		SessionID:  sessionID,
		Success:    true,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"turn_count": turnCount},
		Message:    fmt.Sprintf("Session ended: %s (%d turns, %dms)", sessionID, turnCount, durationMs),
	})
}

// TurnStart logs turn start
func (a *AuditLogger) TurnStart(sessionID string, turnNum int, inputLen int) {
	a.Log(AuditEvent{
		EventType: AuditTurnStart,
		SessionID: sessionID,
		Success:   true,
		Fields:    map[string]interface{}{"turn": turnNum, "input_len": inputLen},
		Message:   fmt.Sprintf("Turn %d started (%d chars)", turnNum, inputLen),
	})
}

// TurnEnd logs turn end
func (a *AuditLogger) TurnEnd(sessionID string, turnNum int, durationMs int64, success bool) {
	a.Log(AuditEvent{
		EventType:  AuditTurnEnd,
		SessionID:  sessionID,
		Success:    success,
		DurationMs: durationMs,
		Fields:     map[string]interface{}{"turn": turnNum},
		Message:    fmt.Sprintf("Turn %d ended (%dms, success=%v)", turnNum, durationMs, success),
	})
}

// ConfigEvent logs a configuration load/reload/validation event.
func (a *AuditLogger) ConfigEvent(eventType AuditEventType, path string, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType: eventType,
		Target:    path,
		Success:   success,
		Error:     errMsg,
		Message:   fmt.Sprintf("Config %s: %s (success=%v)", eventType, path, success),
	})
}

// Error logs an error event
func (a *AuditLogger) Error(category string, err error, critical bool) {
	eventType := AuditErrorGeneric
	if critical {
		eventType = AuditErrorCritical
	}
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	a.Log(AuditEvent{
		EventType: eventType,
		Category:  category,
		Success:   false,
		Error:     errMsg,
		Message:   fmt.Sprintf("Error in %s: %s (critical=%v)", category, errMsg, critical),
	})
}

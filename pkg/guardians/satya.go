package guardians

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"samsara/pkg/decay"
)

// SatyaConfig carries Satya's confidenceThreshold plus streak/storm/
// incomplete-task thresholds.
type SatyaConfig struct {
	ConfidenceThreshold  float64
	StreakThreshold      int // default 3
	StormThreshold       int // default 5
	StormWindowTurns     int // default 6
	IncompleteTaskTurns  int // default 15
	CorrectionEscalation int // default 3 (nth correction escalates to critical)
	RingCapacity         int
	Enabled              bool
}

func DefaultSatyaConfig() SatyaConfig {
	return SatyaConfig{
		ConfidenceThreshold:  0.5,
		StreakThreshold:      3,
		StormThreshold:       5,
		StormWindowTurns:     6,
		IncompleteTaskTurns:  15,
		CorrectionEscalation: 3,
		RingCapacity:         DefaultRingCapacity,
		Enabled:              true,
	}
}

func (c SatyaConfig) Validate() SatyaConfig {
	c.ConfidenceThreshold = decay.ClampRate(c.ConfidenceThreshold, 0.05, 1.0)
	if c.StreakThreshold <= 0 {
		c.StreakThreshold = 3
	}
	if c.StormThreshold <= 0 {
		c.StormThreshold = 5
	}
	if c.StormWindowTurns <= 0 {
		c.StormWindowTurns = 6
	}
	if c.IncompleteTaskTurns <= 0 {
		c.IncompleteTaskTurns = 15
	}
	if c.CorrectionEscalation <= 0 {
		c.CorrectionEscalation = 3
	}
	if c.RingCapacity <= 0 {
		c.RingCapacity = DefaultRingCapacity
	}
	if c.RingCapacity > MaxRingCapacity {
		c.RingCapacity = MaxRingCapacity
	}
	return c
}

var reUserCorrection = regexp.MustCompile(`(?i)(no,?\s*that'?s\s*wrong|not\s+what\s+i\s+(meant|asked)|try\s+again|undo|i\s+said|i\s+meant)`)

var reTaskStart = regexp.MustCompile(`(?i)(i'?ll\s+start|let\s+me\s+begin|starting\s+now|i'?ll\s+begin)`)
var reTaskComplete = regexp.MustCompile(`(?i)(\bdone\b|\bfinished\b|all\s+changes\s+have\s+been\s+made)`)

var testRunnerFamilies = []string{"vitest", "pytest", "jest", "go test", "cargo test"}

type satyaSession struct {
	correctionCount  int
	errorStreak      int
	recentFailures   []int // turn numbers of recent tool failures within the storm window
	openTaskSince    int   // turn number the open task started, 0 if none open
	stormSeenUpTo    int   // last turn number a storm finding was emitted for, avoids re-emitting every turn
}

// Satya watches user-turn corrections, tool-failure streaks/storms,
// incomplete tasks, and known test-runner failures.
type Satya struct {
	mu       sync.Mutex
	cfg      SatyaConfig
	ring     *FindingRing
	sessions map[string]*satyaSession
}

func NewSatya(cfg SatyaConfig) *Satya {
	cfg = cfg.Validate()
	return &Satya{cfg: cfg, ring: NewFindingRing(cfg.RingCapacity), sessions: make(map[string]*satyaSession)}
}

func (s *Satya) Enabled() bool      { return s.cfg.Enabled }
func (s *Satya) Ring() *FindingRing { return s.ring }

func (s *Satya) sessionFor(id string) *satyaSession {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &satyaSession{}
		s.sessions[id] = sess
	}
	return sess
}

func matchesTestRunner(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, family := range testRunnerFamilies {
		if strings.Contains(lower, family) {
			return family, true
		}
	}
	return "", false
}

// ObserveTurn processes one turn: user corrections, error streaks/storms,
// incomplete-task tracking, and test-runner failures.
func (s *Satya) ObserveTurn(turn Turn) []Finding {
	if !s.cfg.Enabled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessionFor(turn.SessionID)
	var out []Finding
	emit := func(severity Severity, confidence float64, title, description string) {
		if confidence < s.cfg.ConfidenceThreshold {
			return
		}
		f := newFinding("satya", DomainCorrectness, severity, title, description, confidence, false)
		s.ring.Push(f)
		out = append(out, f)
	}

	if turn.Role == RoleUser && reUserCorrection.MatchString(turn.Content) {
		sess.correctionCount++
		severity := SeverityMedium
		if sess.correctionCount >= s.cfg.CorrectionEscalation {
			severity = SeverityCritical
		}
		emit(severity, 0.65, "User correction detected",
			fmt.Sprintf("correction #%d this session: %q", sess.correctionCount, turn.Content))
	}

	if turn.Role == RoleAssistant {
		if sess.openTaskSince == 0 && reTaskStart.MatchString(turn.Content) {
			sess.openTaskSince = turn.TurnNumber
		} else if sess.openTaskSince != 0 && reTaskComplete.MatchString(turn.Content) {
			sess.openTaskSince = 0
		}
	}
	if sess.openTaskSince != 0 && turn.TurnNumber-sess.openTaskSince > s.cfg.IncompleteTaskTurns {
		emit(SeverityMedium, 0.55, "Incomplete task",
			fmt.Sprintf("task opened at turn %d remains open at turn %d.", sess.openTaskSince, turn.TurnNumber))
		sess.openTaskSince = 0
	}

	if turn.ToolFailed {
		sess.errorStreak++
		sess.recentFailures = append(sess.recentFailures, turn.TurnNumber)
		cutoff := turn.TurnNumber - s.cfg.StormWindowTurns
		filtered := sess.recentFailures[:0]
		for _, t := range sess.recentFailures {
			if t > cutoff {
				filtered = append(filtered, t)
			}
		}
		sess.recentFailures = filtered

		if sess.errorStreak == s.cfg.StreakThreshold {
			emit(SeverityHigh, 0.7, "Error streak",
				fmt.Sprintf("%d consecutive tool failures.", sess.errorStreak))
		}
		if len(sess.recentFailures) >= s.cfg.StormThreshold && sess.stormSeenUpTo < turn.TurnNumber {
			emit(SeverityCritical, 0.8, "Error storm",
				fmt.Sprintf("%d tool failures within the last %d turns.", len(sess.recentFailures), s.cfg.StormWindowTurns))
			sess.stormSeenUpTo = turn.TurnNumber
		}

		if family, ok := matchesTestRunner(turn.ToolName); ok {
			emit(SeverityHigh, 0.75, "Test failure",
				fmt.Sprintf("%s reported a failing run.", family))
		}
	} else {
		sess.errorStreak = 0
	}

	return out
}

// SatyaStats summarizes Satya's running counts.
type SatyaStats struct {
	TotalFindings int
	SessionCount  int
}

func (s *Satya) Stats() SatyaStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SatyaStats{TotalFindings: s.ring.Len(), SessionCount: len(s.sessions)}
}

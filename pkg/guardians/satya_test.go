package guardians

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSatyaUserCorrectionEscalatesOnThird(t *testing.T) {
	s := NewSatya(DefaultSatyaConfig())
	var last []Finding
	for i := 0; i < 3; i++ {
		last = s.ObserveTurn(Turn{SessionID: "a", TurnNumber: i + 1, Role: RoleUser, Content: "no that's wrong"})
	}
	assert.NotEmpty(t, last)
	assert.Equal(t, SeverityCritical, last[0].Severity)
}

func TestSatyaErrorStreakAndStorm(t *testing.T) {
	s := NewSatya(DefaultSatyaConfig())
	var streakFindings []Finding
	for i := 1; i <= 3; i++ {
		streakFindings = s.ObserveTurn(Turn{SessionID: "a", TurnNumber: i, Role: RoleAssistant, ToolFailed: true})
	}
	found := false
	for _, f := range streakFindings {
		if f.Title == "Error streak" {
			found = true
		}
	}
	assert.True(t, found)

	var stormFindings []Finding
	for i := 4; i <= 5; i++ {
		stormFindings = s.ObserveTurn(Turn{SessionID: "a", TurnNumber: i, Role: RoleAssistant, ToolFailed: true})
	}
	foundStorm := false
	for _, f := range stormFindings {
		if f.Title == "Error storm" {
			foundStorm = true
		}
	}
	assert.True(t, foundStorm)
}

func TestSatyaSuccessResetsStreak(t *testing.T) {
	s := NewSatya(DefaultSatyaConfig())
	s.ObserveTurn(Turn{SessionID: "a", TurnNumber: 1, Role: RoleAssistant, ToolFailed: true})
	s.ObserveTurn(Turn{SessionID: "a", TurnNumber: 2, Role: RoleAssistant, ToolFailed: true})
	s.ObserveTurn(Turn{SessionID: "a", TurnNumber: 3, Role: RoleAssistant, ToolFailed: false})
	findings := s.ObserveTurn(Turn{SessionID: "a", TurnNumber: 4, Role: RoleAssistant, ToolFailed: true})
	for _, f := range findings {
		assert.NotEqual(t, "Error streak", f.Title)
	}
}

func TestSatyaIncompleteTask(t *testing.T) {
	s := NewSatya(DefaultSatyaConfig())
	s.ObserveTurn(Turn{SessionID: "a", TurnNumber: 1, Role: RoleAssistant, Content: "I'll start refactoring the module."})
	var findings []Finding
	for turn := 2; turn <= 17; turn++ {
		findings = s.ObserveTurn(Turn{SessionID: "a", TurnNumber: turn, Role: RoleAssistant, Content: "still working"})
	}
	found := false
	for _, f := range findings {
		if f.Title == "Incomplete task" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSatyaTestFailure(t *testing.T) {
	s := NewSatya(DefaultSatyaConfig())
	findings := s.ObserveTurn(Turn{SessionID: "a", TurnNumber: 1, Role: RoleAssistant, ToolFailed: true, ToolName: "pytest"})
	found := false
	for _, f := range findings {
		if f.Title == "Test failure" {
			found = true
		}
	}
	assert.True(t, found)
}

package guardians

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRakshakaCredentialLeak(t *testing.T) {
	r := NewRakshaka(DefaultRakshakaConfig())
	findings := r.Scan(ToolExecution{
		Name:   "bash",
		Args:   map[string]any{"cmd": "echo test"},
		Output: `api_key = "sk-abc12345678901234567890"`,
	})
	assert.NotEmpty(t, findings)
	foundSeverity := false
	foundCredentialTitle := false
	for _, f := range findings {
		if f.Severity == SeverityCritical {
			foundSeverity = true
		}
		if strings.Contains(f.Title, "Credential") {
			foundCredentialTitle = true
		}
	}
	assert.True(t, foundSeverity)
	assert.True(t, foundCredentialTitle, "expected a finding titled with Credential alongside any provider-keyed finding")
}

func TestRakshakaDangerousShellOnlyOnShellTool(t *testing.T) {
	r := NewRakshaka(DefaultRakshakaConfig())
	findings := r.Scan(ToolExecution{Name: "bash", Args: map[string]any{"cmd": "rm -rf /"}})
	assert.NotEmpty(t, findings)

	r2 := NewRakshaka(DefaultRakshakaConfig())
	findings2 := r2.Scan(ToolExecution{Name: "write_file", Args: map[string]any{"content": "rm -rf /"}})
	for _, f := range findings2 {
		assert.NotEqual(t, "Dangerous shell command", f.Title)
	}
}

func TestRakshakaPathTraversal(t *testing.T) {
	r := NewRakshaka(DefaultRakshakaConfig())
	findings := r.Scan(ToolExecution{Name: "read_file", Args: map[string]any{"path": "../../etc/shadow"}})
	assert.NotEmpty(t, findings)
}

func TestRakshakaDisabledReturnsEmpty(t *testing.T) {
	cfg := DefaultRakshakaConfig()
	cfg.Enabled = false
	r := NewRakshaka(cfg)
	findings := r.Scan(ToolExecution{Name: "bash", Output: `api_key = "sk-abc12345678901234567890"`})
	assert.Empty(t, findings)
}

func TestRakshakaBelowThresholdDropped(t *testing.T) {
	cfg := DefaultRakshakaConfig()
	cfg.ConfidenceThreshold = 0.99
	r := NewRakshaka(cfg)
	findings := r.Scan(ToolExecution{Name: "read_file", Args: map[string]any{"path": "/etc/passwd"}})
	assert.Empty(t, findings)
}

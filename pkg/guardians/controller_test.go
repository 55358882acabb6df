package guardians

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestControllerAfterToolExecutionUnionsFindings(t *testing.T) {
	c := NewController(DefaultControllerConfig())
	findings, err := c.AfterToolExecution(context.Background(), ToolExecution{
		Name:   "bash",
		Output: `api_key = "sk-abc12345678901234567890"`,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, findings)
}

func TestControllerListenersInvokedInOrderAndPanicIsolated(t *testing.T) {
	c := NewController(DefaultControllerConfig())
	var order []int

	c.OnFinding(func(Event) { order = append(order, 1) })
	c.OnFinding(func(Event) { panic("boom") })
	c.OnFinding(func(Event) { order = append(order, 3) })

	_, err := c.AfterToolExecution(context.Background(), ToolExecution{
		Name:   "bash",
		Output: `api_key = "sk-abc12345678901234567890"`,
	})
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 3}, order)
}

func TestControllerUnsubscribe(t *testing.T) {
	c := NewController(DefaultControllerConfig())
	var calls int
	unsubscribe := c.OnFinding(func(Event) { calls++ })
	unsubscribe()

	c.AfterToolExecution(context.Background(), ToolExecution{
		Name:   "bash",
		Output: `api_key = "sk-abc12345678901234567890"`,
	})
	assert.Equal(t, 0, calls)
}

func TestControllerAllFindingsSortedNewestFirstAndRespectsLimit(t *testing.T) {
	c := NewController(DefaultControllerConfig())
	c.AfterToolExecution(context.Background(), ToolExecution{Name: "bash", Output: `api_key = "sk-abc12345678901234567890"`})
	c.AfterToolExecution(context.Background(), ToolExecution{Name: "read_file", Args: map[string]any{"path": "/etc/passwd"}})

	all := c.AllFindings(0)
	assert.GreaterOrEqual(t, len(all), 2)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Timestamp.After(all[i-1].Timestamp))
	}

	limited := c.AllFindings(1)
	assert.Len(t, limited, 1)
}

func TestControllerCriticalFindings(t *testing.T) {
	c := NewController(DefaultControllerConfig())
	c.AfterToolExecution(context.Background(), ToolExecution{Name: "bash", Output: `api_key = "sk-abc12345678901234567890"`})
	for _, f := range c.CriticalFindings() {
		assert.Equal(t, SeverityCritical, f.Severity)
	}
}

func TestControllerAfterTurn(t *testing.T) {
	c := NewController(DefaultControllerConfig())
	findings, err := c.AfterTurn(context.Background(),
		Turn{SessionID: "s1", TurnNumber: 1, Role: RoleUser, Content: "no that's wrong"},
		TurnMetrics{ContextUsedPct: 10})
	assert.NoError(t, err)
	assert.NotEmpty(t, findings)
}

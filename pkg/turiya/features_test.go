package turiya

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"samsara/internal/collab"
)

func TestDefaultExtractorClampsToUnitInterval(t *testing.T) {
	e := NewDefaultExtractor()
	turns := []collab.Turn{{Content: "urgent production issue, this is critical and must be fixed precisely"}}
	ctx := e.Extract(turns, "", nil, 50)

	for _, v := range []float64{ctx.Complexity, ctx.Urgency, ctx.Creativity, ctx.Precision, ctx.CodeRatio, ctx.ConversationDepth, ctx.MemoryLoad} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestDefaultExtractorUrgencyMarker(t *testing.T) {
	e := NewDefaultExtractor()
	ctx := e.Extract([]collab.Turn{{Content: "this is urgent, please help asap"}}, "", nil, 0)
	assert.Greater(t, ctx.Urgency, 0.0)
}

func TestDefaultExtractorConversationDepth(t *testing.T) {
	e := NewDefaultExtractor()
	turns := make([]collab.Turn, 20)
	ctx := e.Extract(turns, "", nil, 0)
	assert.InDelta(t, 1.0, ctx.ConversationDepth, 1e-9)
}

func TestDefaultExtractorMemoryLoad(t *testing.T) {
	e := NewDefaultExtractor()
	ctx := e.Extract(nil, "", nil, 100)
	assert.InDelta(t, 1.0, ctx.MemoryLoad, 1e-9)
}

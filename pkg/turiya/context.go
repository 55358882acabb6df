package turiya

import "samsara/pkg/decay"

// Context is the seven-feature Turiya Context, every value clamped to
// [0,1]. A constant bias of 1.0 is appended when used in linear models.
type Context struct {
	Complexity        float64
	Urgency           float64
	Creativity        float64
	Precision         float64
	CodeRatio         float64
	ConversationDepth float64
	MemoryLoad        float64
}

// Clamp returns a copy with every field clamped to [0,1].
func (c Context) Clamp() Context {
	return Context{
		Complexity:        decay.Clamp01(c.Complexity),
		Urgency:           decay.Clamp01(c.Urgency),
		Creativity:        decay.Clamp01(c.Creativity),
		Precision:         decay.Clamp01(c.Precision),
		CodeRatio:         decay.Clamp01(c.CodeRatio),
		ConversationDepth: decay.Clamp01(c.ConversationDepth),
		MemoryLoad:        decay.Clamp01(c.MemoryLoad),
	}
}

// Vector returns the 8-dimensional feature vector (7 features + bias).
func (c Context) Vector() Vector8 {
	return Vector8{
		c.Complexity, c.Urgency, c.Creativity, c.Precision,
		c.CodeRatio, c.ConversationDepth, c.MemoryLoad, 1.0,
	}
}

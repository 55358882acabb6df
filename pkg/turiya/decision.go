package turiya

// Decision is an immutable router output. OriginalTier is populated only on
// a cascade result, preserving the tier the uncascaded decision held.
type Decision struct {
	Tier         Tier
	ArmIndex     int
	Confidence   float64
	CostEstimate float64
	Context      Context
	Rationale    string
	OriginalTier *Tier
}

const (
	heuristicTag = "[heuristic]"
	cascadeTag   = "[cascade]"
)

// DefaultQualityThreshold is cascadeDecision's default confidence floor.
const DefaultQualityThreshold = 0.5

// CascadeDecision escalates one tier up when confidence < threshold and the
// tier isn't already Opus; otherwise returns the decision unchanged. The
// escalated decision keeps the same context object and records the
// pre-cascade tier in OriginalTier.
func CascadeDecision(d Decision, qualityThreshold float64) Decision {
	if qualityThreshold <= 0 {
		qualityThreshold = DefaultQualityThreshold
	}
	if d.Confidence >= qualityThreshold || d.Tier == TierOpus {
		return d
	}
	next, ok := d.Tier.Next()
	if !ok {
		return d
	}

	original := d.Tier
	escalated := d
	escalated.Tier = next
	escalated.ArmIndex = int(next)
	escalated.CostEstimate = DefaultTierCost[next]
	escalated.Rationale = d.Rationale + " " + cascadeTag
	escalated.OriginalTier = &original
	return escalated
}

package turiya

// StateSchema is the current bandit-state document schema version.
const StateSchema = 1

// ArmState is one arm's portable snapshot.
type ArmState struct {
	Tier        Tier
	AFlat       [64]float64
	B           [FeatureDim]float64
	Alpha       float64
	Beta        float64
	Plays       uint64
	TotalReward float64
	TotalCost   float64
}

// State is the router's full portable snapshot, one JSON document per
// project.
type State struct {
	Schema           int
	TotalPlays       uint64
	LinUCBAlpha      float64
	BudgetLambda     float64
	OpusBaselineCost float64
	Arms             [4]ArmState
}

// Serialize produces a consistent snapshot of the router's full state.
func (r *Router) Serialize() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	var state State
	state.Schema = StateSchema
	state.TotalPlays = r.totalPlays
	state.LinUCBAlpha = r.cfg.LinUCBAlpha
	state.BudgetLambda = r.lambda
	state.OpusBaselineCost = r.opusBaselineCost

	for i, t := range Tiers {
		arm := r.arms[t]
		state.Arms[i] = ArmState{
			Tier: arm.Tier, AFlat: arm.A.Flatten(), B: [FeatureDim]float64(arm.B),
			Alpha: arm.Alpha, Beta: arm.Beta, Plays: arm.Plays,
			TotalReward: arm.TotalReward, TotalCost: arm.TotalCost,
		}
	}
	return state
}

// Deserialize restores a router's state from a snapshot. Missing or
// ill-typed fields (zero alpha/beta, negative plays) are clamped rather
// than propagated; core invariants are preserved regardless of input.
func Deserialize(cfg Config, state State) *Router {
	r := NewRouter(cfg)
	r.totalPlays = state.TotalPlays
	r.lambda = state.BudgetLambda
	if r.lambda < 0 {
		r.lambda = 0
	}
	r.opusBaselineCost = state.OpusBaselineCost
	if state.LinUCBAlpha > 0 {
		r.cfg.LinUCBAlpha = state.LinUCBAlpha
	}

	for _, as := range state.Arms {
		if int(as.Tier) < 0 || int(as.Tier) >= len(r.arms) {
			continue
		}
		arm := r.arms[as.Tier]
		arm.A = Unflatten(as.AFlat)
		arm.B = Vector8(as.B)
		arm.Alpha = as.Alpha
		if arm.Alpha < 1 {
			arm.Alpha = 1
		}
		arm.Beta = as.Beta
		if arm.Beta < 1 {
			arm.Beta = 1
		}
		arm.Plays = as.Plays
		arm.TotalReward = as.TotalReward
		arm.TotalCost = as.TotalCost
	}
	return r
}

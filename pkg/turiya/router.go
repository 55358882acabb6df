package turiya

import (
	"fmt"
	"math"
	"sync"

	"samsara/pkg/decay"
)

// Config parameterizes a Router's bandit behavior.
type Config struct {
	LinUCBAlpha           float64 // default 0.5
	ColdStartThreshold     uint64  // default 12
	DailyBudget            *float64
	ExpectedDailyRequests  *float64
	LambdaLearningRate     float64 // default 1.0
	CostWeight             *float64 // in [0,1], optional preference blend
	QualityThreshold       float64  // default 0.5, for CascadeDecision
}

func DefaultConfig() Config {
	return Config{
		LinUCBAlpha:        0.5,
		ColdStartThreshold: 12,
		LambdaLearningRate: 1.0,
		QualityThreshold:   DefaultQualityThreshold,
	}
}

func (c Config) budgetPerRequest() (float64, bool) {
	if c.DailyBudget == nil || c.ExpectedDailyRequests == nil || *c.ExpectedDailyRequests <= 0 {
		return 0, false
	}
	return *c.DailyBudget / *c.ExpectedDailyRequests, true
}

// Router is the Turiya contextual bandit: one Arm per tier, a shared
// budget-penalty lambda, and total play/cost bookkeeping.
type Router struct {
	mu sync.Mutex

	cfg    Config
	arms   [4]*Arm
	lambda float64

	totalPlays      uint64
	opusBaselineCost float64
}

// NewRouter constructs a router with fresh arms (A=identity, alpha=beta=1).
func NewRouter(cfg Config) *Router {
	if cfg.LinUCBAlpha <= 0 {
		cfg.LinUCBAlpha = 0.5
	}
	if cfg.ColdStartThreshold == 0 {
		cfg.ColdStartThreshold = 12
	}
	if cfg.LambdaLearningRate <= 0 {
		cfg.LambdaLearningRate = 1.0
	}
	if cfg.QualityThreshold <= 0 {
		cfg.QualityThreshold = DefaultQualityThreshold
	}

	var arms [4]*Arm
	for _, t := range Tiers {
		arms[t] = NewArm(t)
	}
	return &Router{cfg: cfg, arms: arms}
}

func coldStartTier(ctx Context) Tier {
	switch {
	case ctx.Complexity < 0.1 && ctx.Urgency < 0.1:
		return TierNoLLM
	case ctx.Complexity < 0.3:
		return TierHaiku
	case ctx.Complexity < 0.7:
		return TierSonnet
	default:
		return TierOpus
	}
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Classify picks a tier for ctx: the cold-start heuristic below
// ColdStartThreshold total plays, else the learned LinUCB+budget+preference
// regime. Always returns a Decision, even when an arm's matrix is
// momentarily non-invertible (falls back to the heuristic for that call).
func (r *Router) Classify(ctx Context) Decision {
	ctx = ctx.Clamp()
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.totalPlays < r.cfg.ColdStartThreshold {
		tier := coldStartTier(ctx)
		return Decision{
			Tier:         tier,
			ArmIndex:     int(tier),
			Confidence:   0.5,
			CostEstimate: DefaultTierCost[tier],
			Context:      ctx,
			Rationale:    fmt.Sprintf("%s cold-start complexity=%.2f urgency=%.2f", heuristicTag, ctx.Complexity, ctx.Urgency),
		}
	}

	x := ctx.Vector()
	type scoredArm struct {
		tier  Tier
		score float64
		ucb   float64
	}
	scores := make([]scoredArm, 0, 4)

	budgetPerRequest, budgetActive := r.cfg.budgetPerRequest()

	for _, t := range Tiers {
		arm := r.arms[t]
		theta, err := arm.Theta()
		if err != nil {
			tier := coldStartTier(ctx)
			return Decision{
				Tier: tier, ArmIndex: int(tier), Confidence: 0.5,
				CostEstimate: DefaultTierCost[tier], Context: ctx,
				Rationale: fmt.Sprintf("%s fallback (non-invertible arm matrix)", heuristicTag),
			}
		}
		mu := theta.Dot(x)
		variance, err := arm.A.QuadraticForm(x)
		if err != nil || variance < 0 {
			variance = 0
		}
		sigma := math.Sqrt(variance)
		ucb := mu + r.cfg.LinUCBAlpha*sigma

		penalized := ucb
		if budgetActive {
			penalized -= r.lambda * DefaultTierCost[t]
		}

		final := penalized
		if r.cfg.CostWeight != nil {
			w := decay.Clamp01(*r.cfg.CostWeight)
			final = (1-w)*penalized + w*cheapnessScore(t)
		}

		scores = append(scores, scoredArm{tier: t, score: final, ucb: ucb})
	}

	bestIdx := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].score > scores[bestIdx].score {
			bestIdx = i
		}
	}
	secondBest := math.Inf(-1)
	for i, s := range scores {
		if i == bestIdx {
			continue
		}
		if s.score > secondBest {
			secondBest = s.score
		}
	}
	if math.IsInf(secondBest, -1) {
		secondBest = scores[bestIdx].score
	}

	best := scores[bestIdx]
	confidence := decay.Clamp01(sigmoid(best.score - secondBest))

	return Decision{
		Tier:         best.tier,
		ArmIndex:     int(best.tier),
		Confidence:   confidence,
		CostEstimate: DefaultTierCost[best.tier],
		Context:      ctx,
		Rationale:    fmt.Sprintf("learned ucb=%.4f score=%.4f", best.ucb, best.score),
	}
}

// RecordOutcome applies the LinUCB/Beta update for the arm named by
// decision.ArmIndex, accumulates play/cost statistics, and updates the
// budget-penalty lambda when budget tracking is active. A Decision not
// produced by this router (e.g. replayed from disk) is treated as a
// no-op update against the indicated arm.
func (r *Router) RecordOutcome(decision Decision, reward float64) {
	reward = decay.Clamp01(reward)

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := decision.ArmIndex
	if idx < 0 || idx >= len(r.arms) {
		return
	}
	arm := r.arms[idx]
	cost := DefaultTierCost[arm.Tier]

	x := decision.Context.Vector()
	arm.Update(x, reward, cost)

	r.totalPlays++
	r.opusBaselineCost += DefaultTierCost[TierOpus]

	if budgetPerRequest, active := r.cfg.budgetPerRequest(); active {
		r.lambda = math.Max(0, r.lambda+r.cfg.LambdaLearningRate*(cost-budgetPerRequest))
	}
}

// Cascade applies CascadeDecision using the router's configured quality
// threshold.
func (r *Router) Cascade(decision Decision) Decision {
	r.mu.Lock()
	threshold := r.cfg.QualityThreshold
	r.mu.Unlock()
	return CascadeDecision(decision, threshold)
}

// TierStats summarizes one arm's running counts.
type TierStats struct {
	Tier          Tier
	Calls         uint64
	AverageReward float64
	TotalCost     float64
	Alpha         float64
	Beta          float64
}

// Stats aggregates per-tier and whole-router statistics.
type Stats struct {
	PerTier          [4]TierStats
	TotalRequests    uint64
	TotalCost        float64
	OpusBaselineCost float64
	CostSavings      float64
	SavingsPercent   float64
}

func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats Stats
	var totalCost float64
	for i, t := range Tiers {
		arm := r.arms[t]
		stats.PerTier[i] = TierStats{
			Tier: t, Calls: arm.Plays, AverageReward: arm.AverageReward(),
			TotalCost: arm.TotalCost, Alpha: arm.Alpha, Beta: arm.Beta,
		}
		totalCost += arm.TotalCost
	}
	stats.TotalRequests = r.totalPlays
	stats.TotalCost = totalCost
	stats.OpusBaselineCost = r.opusBaselineCost
	stats.CostSavings = r.opusBaselineCost - totalCost
	if r.opusBaselineCost > 0 {
		stats.SavingsPercent = stats.CostSavings / r.opusBaselineCost * 100
	}
	return stats
}

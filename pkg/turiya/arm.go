package turiya

// Arm holds one tier's LinUCB normal-equation accumulators and Beta
// posterior.
type Arm struct {
	Tier        Tier
	A           Matrix8
	B           Vector8
	Alpha       float64 // Beta posterior alpha, >= 1
	Beta        float64 // Beta posterior beta, >= 1
	Plays       uint64
	TotalReward float64
	TotalCost   float64
}

// NewArm constructs an arm with A=identity and alpha=beta=1, per the data
// model's arm-initialization rule.
func NewArm(tier Tier) *Arm {
	return &Arm{Tier: tier, A: IdentityMatrix8(), Alpha: 1, Beta: 1}
}

// Theta returns A^-1 * b, the current linear coefficient estimate.
func (a *Arm) Theta() (Vector8, error) {
	return a.A.Solve(a.B)
}

// Update applies the LinUCB and Beta posterior updates for one observed
// (x, reward, cost) outcome.
func (a *Arm) Update(x Vector8, reward, cost float64) {
	a.A.AddOuterProduct(x)
	for i := range a.B {
		a.B[i] += reward * x[i]
	}
	a.Alpha += reward
	a.Beta += 1 - reward
	a.Plays++
	a.TotalReward += reward
	a.TotalCost += cost
}

// AverageReward is TotalReward/Plays, or 0 if never played.
func (a *Arm) AverageReward() float64 {
	if a.Plays == 0 {
		return 0
	}
	return a.TotalReward / float64(a.Plays)
}

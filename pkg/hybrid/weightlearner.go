package hybrid

import (
	"math/rand"
	"sync"

	"samsara/pkg/decay"
)

// signalIndex fixes the order of the four tracked signals for the flat
// alphas[4]/betas[4] serialization form.
var signalOrder = [4]Source{SourceBM25, SourceVector, SourceGraphRAG, Source("pramana")}

func signalIndex(s Source) int {
	for i, sig := range signalOrder {
		if sig == s {
			return i
		}
	}
	return -1
}

// WeightLearnerState is the flat, portable serialization of a WeightLearner.
type WeightLearnerState struct {
	Alphas        [4]float64
	Betas         [4]float64
	TotalFeedback uint64
}

// WeightLearner holds four independent Beta(alpha,beta) posteriors, one per
// signal (bm25, vector, graphrag, pramana), each with a Jeffreys prior.
type WeightLearner struct {
	mu            sync.Mutex
	alphas        [4]float64
	betas         [4]float64
	totalFeedback uint64
}

// NewWeightLearner constructs a learner with the Jeffreys prior (1,1) per
// signal.
func NewWeightLearner() *WeightLearner {
	return &WeightLearner{
		alphas: [4]float64{1, 1, 1, 1},
		betas:  [4]float64{1, 1, 1, 1},
	}
}

// Sample draws one value per signal from its Beta posterior and normalizes
// the four draws to sum to 1, using rng (nil uses the package-level source).
func (w *WeightLearner) Sample(rng *rand.Rand) map[Source]float64 {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	w.mu.Lock()
	a, b := w.alphas, w.betas
	w.mu.Unlock()

	var draws [4]float64
	var sum float64
	for i := range draws {
		draws[i] = decay.BetaSample(rng, a[i], b[i])
		sum += draws[i]
	}
	out := make(map[Source]float64, 4)
	if sum == 0 {
		for i, sig := range signalOrder {
			out[sig] = 1.0 / 4
			_ = i
		}
		return out
	}
	for i, sig := range signalOrder {
		out[sig] = draws[i] / sum
	}
	return out
}

// Update adds 1 to the signal's alpha on success, else 1 to its beta.
func (w *WeightLearner) Update(signal Source, success bool) {
	idx := signalIndex(signal)
	if idx < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if success {
		w.alphas[idx]++
	} else {
		w.betas[idx]++
	}
	w.totalFeedback++
}

// Means returns alpha/(alpha+beta) per signal.
func (w *WeightLearner) Means() map[Source]float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[Source]float64, 4)
	for i, sig := range signalOrder {
		out[sig] = w.alphas[i] / (w.alphas[i] + w.betas[i])
	}
	return out
}

// Serialize returns a portable snapshot.
func (w *WeightLearner) Serialize() WeightLearnerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WeightLearnerState{Alphas: w.alphas, Betas: w.betas, TotalFeedback: w.totalFeedback}
}

// Deserialize restores state, clamping any alpha/beta below 1 up to 1.
func (w *WeightLearner) Deserialize(state WeightLearnerState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := 0; i < 4; i++ {
		a, b := state.Alphas[i], state.Betas[i]
		if a < 1 {
			a = 1
		}
		if b < 1 {
			b = 1
		}
		w.alphas[i] = a
		w.betas[i] = b
	}
	w.totalFeedback = state.TotalFeedback
}

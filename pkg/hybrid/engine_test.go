package hybrid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"samsara/pkg/hybrid/graphwalk"
)

type stubBackend struct {
	hits []BackendHit
	err  error
}

func (s stubBackend) Search(ctx context.Context, query string, limit int) ([]BackendHit, error) {
	return s.hits, s.err
}

func TestEngineGatedSearchSkipsWhenGateClosed(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil, nil)
	results, err := e.GatedSearch(context.Background(), "hi")
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestEngineGatedSearchFansOutAndFuses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backends = map[Source]Backend{
		SourceBM25:   stubBackend{hits: []BackendHit{{ID: "a", Rank: 1}}},
		SourceVector: stubBackend{hits: []BackendHit{{ID: "a", Rank: 2}, {ID: "b", Rank: 1}}},
	}
	e := NewEngine(cfg, NewWeightLearner(), nil)
	results, err := e.GatedSearch(context.Background(), "remember what we discussed")
	assert.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestEngineGatedSearchToleratesBackendFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backends = map[Source]Backend{
		SourceBM25:   stubBackend{hits: []BackendHit{{ID: "a", Rank: 1}}},
		SourceVector: stubBackend{err: assert.AnError},
	}
	e := NewEngine(cfg, NewWeightLearner(), nil)
	results, err := e.GatedSearch(context.Background(), "remember what we discussed")
	assert.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestEngineRecordFeedbackUpdatesContributingSources(t *testing.T) {
	e := NewEngine(DefaultConfig(), NewWeightLearner(), nil)
	result := Result{ID: "a", Ranks: map[Source]int{SourceBM25: 1}, Pramana: PramanaShabda}
	before := e.Learner().Means()[SourceBM25]
	e.RecordFeedback(result, true)
	after := e.Learner().Means()[SourceBM25]
	assert.Greater(t, after, before)
}

func TestEngineWithGraphwalkBackend(t *testing.T) {
	gw := graphwalk.New()
	gw.AddEdge("root", "child")
	gw.IndexTerm("remember the config", "root")

	cfg := DefaultConfig()
	cfg.Backends = map[Source]Backend{SourceGraphRAG: gw}
	e := NewEngine(cfg, NewWeightLearner(), nil)
	results, err := e.GatedSearch(context.Background(), "remember the config")
	assert.NoError(t, err)
	assert.NotEmpty(t, results)
}

package hybrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRRFFuseSingleSourceNoBoost(t *testing.T) {
	hits := map[Source][]BackendHit{
		SourceBM25: {{ID: "a", Rank: 1}},
	}
	cfg := DefaultFuseConfig()
	cfg.PramanaEnabled = false
	results := RRFFuse(hits, nil, cfg)
	assert.Len(t, results, 1)
	expected := 1.0 / (cfg.K + 1)
	assert.InDelta(t, expected, results[0].Score, 1e-9)
}

func TestRRFFuseThreeSourceBoost(t *testing.T) {
	hits := map[Source][]BackendHit{
		SourceBM25:     {{ID: "a", Rank: 1}},
		SourceVector:   {{ID: "a", Rank: 2}},
		SourceGraphRAG: {{ID: "a", Rank: 1}},
	}
	cfg := DefaultFuseConfig()
	cfg.PramanaEnabled = false
	results := RRFFuse(hits, nil, cfg)
	assert.Len(t, results, 1)

	unboosted := 1.0/(cfg.K+1) + 1.0/(cfg.K+2) + 1.0/(cfg.K+1)
	assert.InDelta(t, unboosted*1.15, results[0].Score, 1e-9)
}

func TestRRFFuseTwoSourceBoost(t *testing.T) {
	hits := map[Source][]BackendHit{
		SourceBM25:   {{ID: "a", Rank: 1}},
		SourceVector: {{ID: "a", Rank: 1}},
	}
	cfg := DefaultFuseConfig()
	cfg.PramanaEnabled = false
	results := RRFFuse(hits, nil, cfg)
	unboosted := 2.0 / (cfg.K + 1)
	assert.InDelta(t, unboosted*1.05, results[0].Score, 1e-9)
}

func TestRRFFusePramanaBoost(t *testing.T) {
	hits := map[Source][]BackendHit{
		SourceBM25: {{ID: "a", Rank: 1}},
	}
	meta := map[string]DocMeta{"a": {Pramana: PramanaPratyaksha}}
	cfg := DefaultFuseConfig()
	results := RRFFuse(hits, meta, cfg)
	base := 1.0 / (cfg.K + 1)
	assert.InDelta(t, base+cfg.PramanaDelta*1.0, results[0].Score, 1e-9)
}

func TestRRFFuseMinScoreFloor(t *testing.T) {
	hits := map[Source][]BackendHit{
		SourceBM25: {{ID: "a", Rank: 1}},
	}
	cfg := DefaultFuseConfig()
	cfg.PramanaEnabled = false
	cfg.MinScore = 1.0
	results := RRFFuse(hits, nil, cfg)
	assert.Empty(t, results)
}

func TestRRFFuseSortedDescendingAndRespectsLimit(t *testing.T) {
	hits := map[Source][]BackendHit{
		SourceBM25: {{ID: "a", Rank: 1}, {ID: "b", Rank: 2}, {ID: "c", Rank: 3}},
	}
	cfg := DefaultFuseConfig()
	cfg.PramanaEnabled = false
	cfg.Limit = 2
	results := RRFFuse(hits, nil, cfg)
	assert.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.Equal(t, "a", results[0].ID)
}

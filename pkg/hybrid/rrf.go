package hybrid

import (
	"sort"

	"samsara/pkg/decay"
)

// FuseConfig parameterizes RRFFuse: per-source weights, the RRF smoothing
// constant, the pramana boost coefficient, and the minimum score floor.
type FuseConfig struct {
	Weights       map[Source]float64
	K             float64 // default 60
	PramanaDelta  float64 // default 0.10
	PramanaEnabled bool
	MinScore      float64
	Limit         int
}

// DefaultFuseConfig returns equal per-source weight, k=60, pramana enabled
// with delta=0.10, no score floor.
func DefaultFuseConfig() FuseConfig {
	return FuseConfig{
		Weights: map[Source]float64{
			SourceBM25:     1.0,
			SourceVector:   1.0,
			SourceGraphRAG: 1.0,
		},
		K:              decay.DefaultRRFK,
		PramanaDelta:   0.10,
		PramanaEnabled: true,
		MinScore:       0,
		Limit:          20,
	}
}

// DocMeta accumulates a document's metadata across backends before the
// fused Result is produced: Title/Content/Pramana travel with whichever
// backend hit supplied them, RRF only touches Score and Ranks. Exported so
// callers outside this package (the recall store, the demo binary) can
// build a MetaLookup.
type DocMeta struct {
	Title   string
	Content string
	Pramana Pramana
	ranks   map[Source]int
}

// RRFFuse merges per-backend hits keyed by source into a score-sorted,
// multi-source-boosted, pramana-boosted []Result. meta supplies the
// title/content/pramana for each document ID (missing entries are left
// blank). Never returns nil.
func RRFFuse(hits map[Source][]BackendHit, meta map[string]DocMeta, cfg FuseConfig) []Result {
	if cfg.K <= 0 {
		cfg.K = decay.DefaultRRFK
	}
	if cfg.Weights == nil {
		cfg.Weights = DefaultFuseConfig().Weights
	}

	docs := make(map[string]*DocMeta)
	scores := make(map[string]float64)

	for source, sourceHits := range hits {
		weight := cfg.Weights[source]
		if weight == 0 {
			weight = 1.0
		}
		for _, hit := range sourceHits {
			if hit.Rank < 1 {
				continue
			}
			d, ok := docs[hit.ID]
			if !ok {
				d = &DocMeta{ranks: make(map[Source]int)}
				if m, ok := meta[hit.ID]; ok {
					d.Title = m.Title
					d.Content = m.Content
					d.Pramana = m.Pramana
				}
				docs[hit.ID] = d
			}
			d.ranks[source] = hit.Rank
			scores[hit.ID] += weight * decay.RRFScore(hit.Rank, cfg.K)
		}
	}

	results := make([]Result, 0, len(docs))
	for id, d := range docs {
		sourceCount := len(d.ranks)
		score := scores[id]
		switch sourceCount {
		case 3:
			score *= 1.15
		case 2:
			score *= 1.05
		}

		pramana := d.Pramana
		if pramana == "" {
			pramana = DefaultPramana
		}
		if cfg.PramanaEnabled {
			score += cfg.PramanaDelta * pramanaWeight(pramana)
		}

		if score < cfg.MinScore {
			continue
		}

		sources := make([]Source, 0, sourceCount)
		for s := range d.ranks {
			sources = append(sources, s)
		}
		sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

		results = append(results, Result{
			ID:      id,
			Title:   d.Title,
			Content: d.Content,
			Sources: sources,
			Score:   score,
			Ranks:   d.ranks,
			Pramana: pramana,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	limit := cfg.Limit
	if limit <= 0 {
		limit = len(results)
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

package hybrid

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config parameterizes an Engine: which backends to query, how long to wait
// for each, and the fusion settings.
type Config struct {
	Backends       map[Source]Backend
	BackendTimeout time.Duration
	Fuse           FuseConfig
	SearchLimit    int
}

func DefaultConfig() Config {
	return Config{
		BackendTimeout: 2 * time.Second,
		Fuse:           DefaultFuseConfig(),
		SearchLimit:    20,
	}
}

// MetaLookup resolves document metadata (title/content/pramana) for fusion.
// Engines are not required to supply one; results default to blank metadata.
type MetaLookup func(ctx context.Context, ids []string) map[string]DocMeta

// Engine composes the retrieval gate, bounded concurrent backend fan-out,
// RRF fusion, and the weight learner into one gated-search operation.
type Engine struct {
	cfg     Config
	learner *WeightLearner
	meta    MetaLookup

	mu          sync.Mutex
	lastResults map[string]Result // by ID, for RecordFeedback lookups
}

// NewEngine constructs an Engine. meta may be nil, in which case fused
// results carry blank title/content/pramana.
func NewEngine(cfg Config, learner *WeightLearner, meta MetaLookup) *Engine {
	if learner == nil {
		learner = NewWeightLearner()
	}
	return &Engine{cfg: cfg, learner: learner, meta: meta, lastResults: make(map[string]Result)}
}

// GatedSearch runs ShouldRetrieve, and if true, fans out to every configured
// backend (bounded by cfg.BackendTimeout via errgroup), fuses with RRF using
// weights sampled from the learner, and returns []Result — never nil, even
// on partial backend failure.
func (e *Engine) GatedSearch(ctx context.Context, query string) ([]Result, error) {
	if !ShouldRetrieve(query) {
		return []Result{}, nil
	}

	hits := make(map[Source][]BackendHit)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for source, backend := range e.cfg.Backends {
		source, backend := source, backend
		g.Go(func() error {
			callCtx := gctx
			if e.cfg.BackendTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, e.cfg.BackendTimeout)
				defer cancel()
			}
			result, err := backend.Search(callCtx, query, e.cfg.SearchLimit)
			if err != nil {
				// a single backend's failure degrades the fused result set
				// rather than aborting the whole search (§7 BackendUnavailable).
				return nil
			}
			mu.Lock()
			hits[source] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	weights := e.learner.Sample(nil)
	fuseCfg := e.cfg.Fuse
	fuseCfg.Weights = weights

	var meta map[string]DocMeta
	if e.meta != nil {
		ids := make([]string, 0)
		for _, sourceHits := range hits {
			for _, h := range sourceHits {
				ids = append(ids, h.ID)
			}
		}
		meta = e.meta(ctx, ids)
	}

	results := RRFFuse(hits, meta, fuseCfg)

	e.mu.Lock()
	for _, r := range results {
		e.lastResults[r.ID] = r
	}
	e.mu.Unlock()

	return results, nil
}

// RecordFeedback updates the weight learner's posterior for every source
// that contributed a rank to the given result (and for the pramana signal
// if the result carries a non-default tag).
func (e *Engine) RecordFeedback(result Result, success bool) {
	for source := range result.Ranks {
		e.learner.Update(source, success)
	}
	if result.Pramana != "" {
		e.learner.Update(Source("pramana"), success)
	}
}

// Learner exposes the underlying WeightLearner for persistence.
func (e *Engine) Learner() *WeightLearner { return e.learner }

package main

import (
	"context"
	"sort"
	"strings"

	"samsara/pkg/hybrid"
	"samsara/pkg/recall"
)

// vectorBackend adapts pkg/recall's cosine-similarity Recall operation to
// hybrid.Backend, so the demo's vector source is the same store the rest of
// the module writes through rather than a second index.
type vectorBackend struct {
	store *recall.Store
}

func newVectorBackend(store *recall.Store) *vectorBackend {
	return &vectorBackend{store: store}
}

func (b *vectorBackend) Search(ctx context.Context, query string, limit int) ([]hybrid.BackendHit, error) {
	hits, err := b.store.Recall(ctx, query, recall.Options{Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]hybrid.BackendHit, len(hits))
	for i, h := range hits {
		out[i] = hybrid.BackendHit{ID: h.Entry.ID, Rank: i + 1}
	}
	return out, nil
}

// bm25Backend is a minimal term-overlap ranker standing in for a real BM25
// index, in the same spirit as graphwalk.Backend: a reference Backend
// implementation for tests and this demo, not a production search engine.
type bm25Backend struct {
	docs map[string]string // id -> lowercased text
}

func newBM25Backend() *bm25Backend {
	return &bm25Backend{docs: make(map[string]string)}
}

func (b *bm25Backend) Index(id, text string) {
	b.docs[id] = strings.ToLower(text)
}

func (b *bm25Backend) Search(ctx context.Context, query string, limit int) ([]hybrid.BackendHit, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score int
	}
	var ranked []scored
	for id, text := range b.docs {
		score := 0
		for _, term := range terms {
			score += strings.Count(text, term)
		}
		if score > 0 {
			ranked = append(ranked, scored{id, score})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]hybrid.BackendHit, len(ranked))
	for i, s := range ranked {
		out[i] = hybrid.BackendHit{ID: s.id, Rank: i + 1}
	}
	return out, nil
}

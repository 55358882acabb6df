// Package collabtest provides deterministic in-memory test doubles for the
// internal/collab interfaces, following the pack's plain-struct-with-
// optional-func-field mocking style rather than a generated/mockery double.
package collabtest

import (
	"context"
	"sync"

	"samsara/internal/collab"
)

// FixedClock returns a constant NowMillis value, advanced only by test code.
type FixedClock struct {
	mu  sync.Mutex
	now int64
}

func NewFixedClock(now int64) *FixedClock { return &FixedClock{now: now} }

func (c *FixedClock) NowMillis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by deltaMs milliseconds.
func (c *FixedClock) Advance(deltaMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += deltaMs
}

// Embedder is a scriptable collab.EmbeddingService test double.
type Embedder struct {
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)
	Calls     []string
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.Calls = append(e.Calls, text)
	if e.EmbedFunc != nil {
		return e.EmbedFunc(ctx, text)
	}
	return make([]float32, 8), nil
}

// VectorStore is an in-memory collab.VectorStore test double.
type VectorStore struct {
	mu   sync.Mutex
	rows map[string]collab.VectorRow
}

func NewVectorStore() *VectorStore {
	return &VectorStore{rows: make(map[string]collab.VectorRow)}
}

func (v *VectorStore) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	sourceID, _ := metadata["source_id"].(string)
	for existingID, row := range v.rows {
		if row.SourceID != "" && row.SourceID == sourceID {
			delete(v.rows, existingID)
		}
	}
	v.rows[id] = collab.VectorRow{
		ID:       id,
		Vector:   vector,
		Metadata: metadata,
		SourceID: sourceID,
	}
	return nil
}

func (v *VectorStore) GetAll(ctx context.Context) ([]collab.VectorRow, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]collab.VectorRow, 0, len(v.rows))
	for _, row := range v.rows {
		out = append(out, row)
	}
	return out, nil
}

func (v *VectorStore) DeleteBySourceID(ctx context.Context, sourceID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for id, row := range v.rows {
		if row.SourceID == sourceID {
			delete(v.rows, id)
		}
	}
	return nil
}

// SessionStore is a fixed, in-memory collab.SessionStore test double.
type SessionStore struct {
	Sessions map[string]collab.SessionMeta
	Turns    map[string][]collab.Turn
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		Sessions: make(map[string]collab.SessionMeta),
		Turns:    make(map[string][]collab.Turn),
	}
}

func (s *SessionStore) List(ctx context.Context, project string) ([]collab.SessionMeta, error) {
	out := make([]collab.SessionMeta, 0, len(s.Sessions))
	for _, meta := range s.Sessions {
		if project == "" || meta.Project == project {
			out = append(out, meta)
		}
	}
	return out, nil
}

func (s *SessionStore) Load(ctx context.Context, id, project string) (collab.SessionMeta, []collab.Turn, error) {
	return s.Sessions[id], s.Turns[id], nil
}

// MemoryStore is an in-memory collab.MemoryStore test double.
type MemoryStore struct {
	mu      sync.Mutex
	content map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{content: make(map[string]string)}
}

func scopeKey(scope collab.Scope) string {
	switch scope.Type {
	case collab.ScopeProject:
		return "project:" + scope.Path
	case collab.ScopeAgent:
		return "agent:" + scope.AgentID
	default:
		return "global"
	}
}

func (m *MemoryStore) Get(ctx context.Context, scope collab.Scope) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content[scopeKey(scope)], nil
}

func (m *MemoryStore) Update(ctx context.Context, scope collab.Scope, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[scopeKey(scope)] = content
	return nil
}

func (m *MemoryStore) Append(ctx context.Context, scope collab.Scope, entry string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scopeKey(scope)
	if existing, ok := m.content[key]; ok && existing != "" {
		m.content[key] = existing + "\n" + entry
	} else {
		m.content[key] = entry
	}
	return nil
}

// Package collab defines the interfaces every external collaborator of the
// samsara core must satisfy: the embedding provider, the vector store, and
// the (read-mostly) session and memory stores. The core owns no concrete
// implementation of these beyond the deterministic fallback embedder
// (pkg/recall.FallbackEmbedder) and the SQLite-backed reference store
// (internal/store), both of which exist to exercise the contracts, not to
// be the only valid implementation.
package collab

import "context"

// Clock supplies monotonic milliseconds since epoch. Test fixtures inject a
// fixed value so router/guardian decisions stay deterministic.
type Clock interface {
	NowMillis() int64
}

// EmbeddingService turns text into a dense vector. Implementations may fail
// (network, quota, model error); callers are expected to fall back to the
// deterministic hash embedder on error rather than propagate it.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorRow is one row of the embedding table as handed back by GetAll.
type VectorRow struct {
	ID         string
	Vector     []float32
	Metadata   map[string]any
	SourceType string
	SourceID   string
	Dimensions int
	CreatedAt  int64
}

// VectorStore is the single-writer embedding index. Upsert on a duplicate
// SourceID must replace the prior entry atomically (last-writer-wins).
type VectorStore interface {
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]any) error
	GetAll(ctx context.Context) ([]VectorRow, error)
	DeleteBySourceID(ctx context.Context, sourceID string) error
}

// Turn is one immutable message in a session transcript.
type Turn struct {
	TurnNumber     uint32
	Role           string // "user" | "assistant"
	Content        string
	ToolCalls      []ToolCall
	TokensConsumed uint32
	StartedAt      int64
}

// ToolCall records a single tool invocation embedded in a Turn.
type ToolCall struct {
	Name string
	Args map[string]any
}

// SessionMeta is the list-view summary of a stored session.
type SessionMeta struct {
	ID        string
	Project   string
	Title     string
	CreatedAt int64
	UpdatedAt int64
	TurnCount int
}

// SessionStore is read-only from the core's perspective: it never writes
// session transcripts, only reads them for recall and context-building.
type SessionStore interface {
	List(ctx context.Context, project string) ([]SessionMeta, error)
	Load(ctx context.Context, id, project string) (SessionMeta, []Turn, error)
}

// ScopeType identifies the addressing level of a MemoryStore scope.
type ScopeType int

const (
	ScopeGlobal ScopeType = iota
	ScopeProject
	ScopeAgent
)

// Scope addresses one memory stream: a global note, a per-project note, or a
// per-agent note.
type Scope struct {
	Type    ScopeType
	Path    string // populated for ScopeProject
	AgentID string // populated for ScopeAgent
}

// MemoryStore holds long-lived, free-text memory streams addressed by Scope.
type MemoryStore interface {
	Get(ctx context.Context, scope Scope) (string, error)
	Update(ctx context.Context, scope Scope, content string) error
	Append(ctx context.Context, scope Scope, entry string) error
}

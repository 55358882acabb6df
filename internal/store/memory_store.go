package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"samsara/internal/collab"
	"samsara/internal/logging"
)

// MemoryStore adapts Store's memory_scopes table to collab.MemoryStore.
type MemoryStore struct {
	s *Store
}

// Memory returns the collab.MemoryStore view of s.
func (s *Store) Memory() *MemoryStore { return &MemoryStore{s: s} }

func scopeKey(scope collab.Scope) (scopeType, key string) {
	switch scope.Type {
	case collab.ScopeProject:
		return "project", scope.Path
	case collab.ScopeAgent:
		return "agent", scope.AgentID
	default:
		return "global", ""
	}
}

// Get returns the free-text content for scope, or "" if nothing has been
// written there yet.
func (m *MemoryStore) Get(ctx context.Context, scope collab.Scope) (string, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	st, key := scopeKey(scope)
	var content string
	row := m.s.db.QueryRowContext(ctx, `
		SELECT content FROM memory_scopes WHERE scope_type = ? AND scope_key = ?
	`, st, key)
	err := row.Scan(&content)
	switch {
	case err == nil:
		return content, nil
	case err == sql.ErrNoRows:
		return "", nil
	default:
		return "", fmt.Errorf("memory get failed: %w", err)
	}
}

// Update replaces the content for scope wholesale.
func (m *MemoryStore) Update(ctx context.Context, scope collab.Scope, content string) error {
	timer := logging.StartTimer(logging.CategoryStore, "MemoryStore.Update")
	defer timer.Stop()

	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	st, key := scopeKey(scope)
	_, err := m.s.db.ExecContext(ctx, `
		INSERT INTO memory_scopes (scope_type, scope_key, content, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope_type, scope_key) DO UPDATE SET content=excluded.content, updated_at=excluded.updated_at
	`, st, key, content, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("memory update failed: %w", err)
	}
	return nil
}

// Append concatenates entry onto the existing content for scope, separated
// by a newline.
func (m *MemoryStore) Append(ctx context.Context, scope collab.Scope, entry string) error {
	existing, err := m.Get(ctx, scope)
	if err != nil {
		return err
	}
	if existing != "" {
		existing += "\n"
	}
	return m.Update(ctx, scope, existing+entry)
}

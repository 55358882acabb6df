package store

import (
	"context"
	"encoding/json"
	"fmt"

	"samsara/internal/collab"
	"samsara/internal/logging"
)

// SessionStore adapts Store's sessions/turns tables to collab.SessionStore.
// samsara's core only ever reads through this interface; nothing here
// writes a transcript, matching collab.SessionStore's read-only contract.
type SessionStore struct {
	s *Store
}

// Sessions returns the collab.SessionStore view of s.
func (s *Store) Sessions() *SessionStore { return &SessionStore{s: s} }

// PutSession is a test/seed helper, not part of collab.SessionStore: the
// reference store needs a way to have transcripts in the first place since
// nothing else in this module writes them.
func (ss *SessionStore) PutSession(ctx context.Context, meta collab.SessionMeta, turns []collab.Turn) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	_, err := ss.s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, project, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id, project) DO UPDATE SET
			title=excluded.title, updated_at=excluded.updated_at
	`, meta.ID, meta.Project, meta.Title, meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	for _, t := range turns {
		toolJSON, _ := json.Marshal(t.ToolCalls)
		_, err := ss.s.db.ExecContext(ctx, `
			INSERT INTO turns (session_id, project, turn_number, role, content, tool_calls_json, tokens_consumed, started_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, project, turn_number) DO UPDATE SET
				role=excluded.role, content=excluded.content,
				tool_calls_json=excluded.tool_calls_json,
				tokens_consumed=excluded.tokens_consumed, started_at=excluded.started_at
		`, meta.ID, meta.Project, t.TurnNumber, t.Role, t.Content, string(toolJSON), t.TokensConsumed, t.StartedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert turn %d: %w", t.TurnNumber, err)
		}
	}
	return nil
}

// List returns every session under project, newest-updated first.
func (ss *SessionStore) List(ctx context.Context, project string) ([]collab.SessionMeta, error) {
	timer := logging.StartTimer(logging.CategoryStore, "SessionStore.List")
	defer timer.Stop()

	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	rows, err := ss.s.db.QueryContext(ctx, `
		SELECT s.id, s.project, s.title, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM turns t WHERE t.session_id = s.id AND t.project = s.project)
		FROM sessions s WHERE s.project = ?
		ORDER BY s.updated_at DESC
	`, project)
	if err != nil {
		return nil, fmt.Errorf("session list query failed: %w", err)
	}
	defer rows.Close()

	var out []collab.SessionMeta
	for rows.Next() {
		var m collab.SessionMeta
		if err := rows.Scan(&m.ID, &m.Project, &m.Title, &m.CreatedAt, &m.UpdatedAt, &m.TurnCount); err != nil {
			return nil, fmt.Errorf("session row scan failed: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Load returns a session's metadata and full turn transcript, ordered by
// turn number.
func (ss *SessionStore) Load(ctx context.Context, id, project string) (collab.SessionMeta, []collab.Turn, error) {
	timer := logging.StartTimer(logging.CategoryStore, "SessionStore.Load")
	defer timer.Stop()

	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	var meta collab.SessionMeta
	row := ss.s.db.QueryRowContext(ctx, `
		SELECT id, project, title, created_at, updated_at FROM sessions WHERE id = ? AND project = ?
	`, id, project)
	if err := row.Scan(&meta.ID, &meta.Project, &meta.Title, &meta.CreatedAt, &meta.UpdatedAt); err != nil {
		return collab.SessionMeta{}, nil, fmt.Errorf("session %s/%s not found: %w", project, id, err)
	}

	rows, err := ss.s.db.QueryContext(ctx, `
		SELECT turn_number, role, content, tool_calls_json, tokens_consumed, started_at
		FROM turns WHERE session_id = ? AND project = ? ORDER BY turn_number ASC
	`, id, project)
	if err != nil {
		return meta, nil, fmt.Errorf("turn query failed: %w", err)
	}
	defer rows.Close()

	var turns []collab.Turn
	for rows.Next() {
		var t collab.Turn
		var toolJSON string
		if err := rows.Scan(&t.TurnNumber, &t.Role, &t.Content, &toolJSON, &t.TokensConsumed, &t.StartedAt); err != nil {
			return meta, nil, fmt.Errorf("turn row scan failed: %w", err)
		}
		if toolJSON != "" {
			_ = json.Unmarshal([]byte(toolJSON), &t.ToolCalls)
		}
		turns = append(turns, t)
	}
	meta.TurnCount = len(turns)
	return meta, turns, rows.Err()
}

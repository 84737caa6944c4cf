package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperengineering/cadence/internal/types"
)

const insertEventSQL = `
	INSERT INTO behavior_events (user_id, kind, entity_id, payload, created_at)
	VALUES (?, ?, ?, ?, ?)`

// AppendEvent appends a single entry to the behavior log.
// Returns the assigned sequence number.
func (s *SQLiteStore) AppendEvent(ctx context.Context, event *types.BehaviorEvent) (int64, error) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, insertEventSQL,
		event.UserID, event.Kind, event.EntityID,
		nullablePayload(event.Payload),
		event.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("append behavior event: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	event.Sequence = seq
	return seq, nil
}

// ListEvents returns events for a user with sequence > afterSeq, up to limit.
func (s *SQLiteStore) ListEvents(ctx context.Context, userID string, afterSeq int64, limit int) ([]types.BehaviorEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sequence, user_id, kind, entity_id, payload, created_at
		FROM behavior_events
		WHERE user_id = ? AND sequence > ?
		ORDER BY sequence ASC
		LIMIT ?
	`, userID, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("query behavior events: %w", err)
	}
	defer rows.Close()

	events := make([]types.BehaviorEvent, 0)
	for rows.Next() {
		var e types.BehaviorEvent
		var payload, entityID, createdAt *string

		if err := rows.Scan(&e.Sequence, &e.UserID, &e.Kind, &entityID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan behavior event: %w", err)
		}

		if entityID != nil {
			e.EntityID = *entityID
		}
		if payload != nil {
			e.Payload = []byte(*payload)
		}
		if createdAt != nil {
			if t, err := time.Parse(time.RFC3339Nano, *createdAt); err == nil {
				e.CreatedAt = t
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// nullablePayload converts a json.RawMessage to a sql-friendly value.
// Returns nil for empty/null payloads, string otherwise.
func nullablePayload(p json.RawMessage) any {
	if len(p) == 0 {
		return nil
	}
	return string(p)
}

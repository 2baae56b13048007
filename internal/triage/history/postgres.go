// Package history keeps an append-only audit log of processed turns and
// their outcomes in Postgres. A failed append never fails the request that
// produced it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pediatric-triage/internal/common/logger"
)

// Turn is one processed utterance and its outcome.
type Turn struct {
	ConversationID string
	UserID         string
	Message        string
	IsDanger       bool
	Intent         string
	TriageLevel    string
	TriageReason   string
	CreatedAt      time.Time
}

type Repository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: log.With(map[string]interface{}{"component": "history"}),
	}
}

// Append records one turn.
func (r *Repository) Append(ctx context.Context, t Turn) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversation_turns
			(conversation_id, user_id, message, is_danger, intent, triage_level, triage_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ConversationID, t.UserID, t.Message, t.IsDanger,
		t.Intent, t.TriageLevel, t.TriageReason, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// Recent returns up to limit turns for a conversation, newest first.
func (r *Repository) Recent(ctx context.Context, conversationID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT conversation_id, user_id, message, is_danger, intent, triage_level, triage_reason, created_at
		FROM conversation_turns
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(
			&t.ConversationID, &t.UserID, &t.Message, &t.IsDanger,
			&t.Intent, &t.TriageLevel, &t.TriageReason, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return turns, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/orderlens/internal/llm"
)

var _ llm.ReplyCache = (*SQLiteStorage)(nil)

// GetReply returns a cached raw reply for a prompt hash.
func (s *SQLiteStorage) GetReply(ctx context.Context, key string) (string, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}

	var (
		raw       string
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT raw, created_at FROM replies WHERE prompt_hash = ?`, key).Scan(&raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get reply: %w", err)
	}

	if s.replyTTL > 0 && s.now().Sub(createdAt) > s.replyTTL {
		return "", false, nil
	}
	return raw, true, nil
}

// PutReply stores or replaces a cached raw reply.
func (s *SQLiteStorage) PutReply(ctx context.Context, key, raw string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO replies (prompt_hash, raw, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(prompt_hash) DO UPDATE SET raw = excluded.raw, created_at = excluded.created_at`,
		key, raw, s.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save reply: %w", err)
	}
	return nil
}

// ClearReplies deletes every cached reply and reports how many were removed.
func (s *SQLiteStorage) ClearReplies(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM replies`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear replies: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared replies: %w", err)
	}
	return n, nil
}

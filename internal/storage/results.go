package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/orderlens/internal/common"
	"github.com/Veraticus/orderlens/internal/model"
	"github.com/Veraticus/orderlens/internal/service"
)

var _ service.ResultStore = (*SQLiteStorage)(nil)

// DefaultListLimit is used when ListResults is called without a positive limit.
const DefaultListLimit = 20

// SaveResult stores a finished pipeline result and returns its new ID.
func (s *SQLiteStorage) SaveResult(ctx context.Context, source string, result *model.ProfileInferenceResult) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateResult(result); err != nil {
		return "", err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO results (id, source, result_json, has_error, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, source, string(data), result.Failed(), s.now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save result: %w", err)
	}

	return id, nil
}

// GetResult loads one stored result.
func (s *SQLiteStorage) GetResult(ctx context.Context, id string) (*service.StoredResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, result_json, has_error, created_at FROM results WHERE id = ?`, id)

	stored, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: result %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ListResults returns the most recent results first.
func (s *SQLiteStorage) ListResults(ctx context.Context, limit int) ([]service.StoredResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, result_json, has_error, created_at FROM results
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []service.StoredResult
	for rows.Next() {
		stored, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}

	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*service.StoredResult, error) {
	var (
		stored    service.StoredResult
		data      string
		createdAt time.Time
	)
	if err := row.Scan(&stored.ID, &stored.Source, &data, &stored.HasError, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan result: %w", err)
	}

	var result model.ProfileInferenceResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to decode result %s: %w", stored.ID, err)
	}
	if result.Profile == nil {
		result.Profile = model.Profile{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []model.Recommendation{}
	}

	stored.Result = &result
	stored.CreatedAt = createdAt
	return &stored, nil
}

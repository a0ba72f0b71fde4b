package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MikeSquared-Agency/hive/internal/hive"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const learningColumns = `id, learning_type, content, context, success_count, created_at`

// UpsertLearning inserts a learning with success_count 1, or bumps the existing row for the same
// content by one. Only the counter changes on conflict. xmax = 0 identifies a fresh insert.
func (s *Store) UpsertLearning(ctx context.Context, content, learningType string, c hive.Context) (hive.Learning, bool, error) {
	ctxJSON, err := json.Marshal(c)
	if err != nil {
		return hive.Learning{}, false, fmt.Errorf("marshal learning context: %w", err)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO learnings (id, learning_type, content, context, success_count, created_at)
		VALUES ($1, $2, $3, $4, 1, now())
		ON CONFLICT (content)
		DO UPDATE SET success_count = learnings.success_count + 1
		RETURNING `+learningColumns+`, (xmax = 0) AS inserted`,
		uuid.New(), learningType, content, ctxJSON,
	)

	var (
		l       hive.Learning
		raw     []byte
		created bool
	)
	if err := row.Scan(&l.ID, &l.LearningType, &l.Content, &raw, &l.SuccessCount, &l.CreatedAt, &created); err != nil {
		return hive.Learning{}, false, fmt.Errorf("upsert learning: %w", err)
	}
	if err := json.Unmarshal(raw, &l.Context); err != nil {
		return hive.Learning{}, false, fmt.Errorf("parse learning context: %w", err)
	}
	return l, created, nil
}

// ListLearnings returns learnings ranked by success_count desc, created_at asc.
func (s *Store) ListLearnings(ctx context.Context, f hive.Filter) ([]hive.Learning, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+learningColumns+`
		FROM learnings
		WHERE ($1::text = '' OR learning_type = $1)
		ORDER BY success_count DESC, created_at ASC, id ASC
		LIMIT $2`,
		f.Type, f.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query learnings: %w", err)
	}
	defer rows.Close()

	var out []hive.Learning
	for rows.Next() {
		l, err := scanLearning(rows)
		if err != nil {
			return nil, fmt.Errorf("scan learning: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func scanLearning(row pgx.Row) (hive.Learning, error) {
	var l hive.Learning
	var raw []byte
	if err := row.Scan(&l.ID, &l.LearningType, &l.Content, &raw, &l.SuccessCount, &l.CreatedAt); err != nil {
		return hive.Learning{}, err
	}
	if err := json.Unmarshal(raw, &l.Context); err != nil {
		return hive.Learning{}, err
	}
	return l, nil
}

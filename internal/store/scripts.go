package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/hive/internal/script"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const scriptColumns = `id, prospect_id, tenant_id, script_type, text, feedback, feedback_at, created_at`

// InsertScript writes a freshly generated, pending script and returns its id.
func (s *Store) InsertScript(ctx context.Context, sc script.Script) (uuid.UUID, error) {
	id := sc.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := sc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scripts (id, prospect_id, tenant_id, script_type, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, sc.ProspectID, sc.TenantID, string(sc.Type), sc.Text, createdAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert script: %w", err)
	}
	return id, nil
}

// GetScript fetches a script by ID.
func (s *Store) GetScript(ctx context.Context, id uuid.UUID) (script.Script, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+scriptColumns+` FROM scripts WHERE id = $1`, id)
	sc, err := scanScript(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return script.Script{}, script.ErrNotFound
	}
	if err != nil {
		return script.Script{}, fmt.Errorf("get script: %w", err)
	}
	return sc, nil
}

// UpdateScriptFeedback sets feedback and feedback_at together and returns the updated row.
func (s *Store) UpdateScriptFeedback(ctx context.Context, id uuid.UUID, value script.Feedback, at time.Time) (script.Script, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE scripts SET feedback = $1, feedback_at = $2
		WHERE id = $3
		RETURNING `+scriptColumns,
		string(value), at, id,
	)
	sc, err := scanScript(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return script.Script{}, script.ErrNotFound
	}
	if err != nil {
		return script.Script{}, fmt.Errorf("update script feedback: %w", err)
	}
	return sc, nil
}

func scanScript(row pgx.Row) (script.Script, error) {
	var (
		sc         script.Script
		scriptType string
		feedback   *string
		feedbackAt *time.Time
	)
	if err := row.Scan(&sc.ID, &sc.ProspectID, &sc.TenantID, &scriptType, &sc.Text, &feedback, &feedbackAt, &sc.CreatedAt); err != nil {
		return script.Script{}, err
	}
	sc.Type = script.Type(scriptType)
	sc.State = script.Pending()
	if feedback != nil && feedbackAt != nil {
		sc.State = script.Resolved(script.Feedback(*feedback), *feedbackAt)
	}
	return sc, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/hive/internal/prospect"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const prospectColumns = `id, name, source, status, score, signal, created_at`

// InsertProspect writes a discovered prospect. Ingestion collaborators own this path.
func (s *Store) InsertProspect(ctx context.Context, p prospect.Prospect) (uuid.UUID, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = prospect.StatusNew
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO prospects (id, name, source, status, score, signal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.Source, string(p.Status), prospect.ClampScore(p.Score), p.Signal, p.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert prospect: %w", err)
	}
	return p.ID, nil
}

// GetProspect fetches a prospect by ID.
func (s *Store) GetProspect(ctx context.Context, id uuid.UUID) (prospect.Prospect, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+prospectColumns+` FROM prospects WHERE id = $1`, id)
	p, err := scanProspect(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return prospect.Prospect{}, prospect.ErrNotFound
	}
	if err != nil {
		return prospect.Prospect{}, fmt.Errorf("get prospect: %w", err)
	}
	return p, nil
}

// ListProspectsSince returns prospects created at or after since, highest score first.
func (s *Store) ListProspectsSince(ctx context.Context, since time.Time) ([]prospect.Prospect, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+prospectColumns+`
		FROM prospects
		WHERE created_at >= $1
		ORDER BY score DESC, created_at ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("query prospects: %w", err)
	}
	defer rows.Close()

	var out []prospect.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prospect: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// UpdateProspectStatus sets a prospect's funnel status. Any transition is allowed.
func (s *Store) UpdateProspectStatus(ctx context.Context, id uuid.UUID, status prospect.Status) error {
	tag, err := s.pool.Exec(ctx, `UPDATE prospects SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update prospect status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return prospect.ErrNotFound
	}
	return nil
}

// CountProspects returns the all-time prospect count.
func (s *Store) CountProspects(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM prospects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count prospects: %w", err)
	}
	return n, nil
}

// CountProspectsByStatus returns the number of prospects currently in a status.
func (s *Store) CountProspectsByStatus(ctx context.Context, status prospect.Status) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM prospects WHERE status = $1`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count prospects by status: %w", err)
	}
	return n, nil
}

func scanProspect(row pgx.Row) (prospect.Prospect, error) {
	var p prospect.Prospect
	var status string
	if err := row.Scan(&p.ID, &p.Name, &p.Source, &status, &p.Score, &p.Signal, &p.CreatedAt); err != nil {
		return prospect.Prospect{}, err
	}
	p.Status = prospect.Status(status)
	return p, nil
}

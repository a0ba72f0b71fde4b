package hive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/hive/internal/hermes"
	"github.com/MikeSquared-Agency/hive/internal/metrics"
)

// ErrEmptyContent rejects wins with no script text; an empty string would otherwise become a
// shared dedup key.
var ErrEmptyContent = errors.New("learning content is empty")

// Store is the persistence contract for learnings. UpsertLearning must be a single atomic
// insert-or-increment keyed by exact content: a new row starts at success_count 1, an existing
// row gains +1 and keeps its original type and context.
type Store interface {
	UpsertLearning(ctx context.Context, content, learningType string, c Context) (Learning, bool, error)
	ListLearnings(ctx context.Context, f Filter) ([]Learning, error)
}

// Publisher emits hive events. Optional.
type Publisher interface {
	Publish(subject string, data any) error
}

type Aggregator struct {
	store   Store
	events  Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewAggregator(store Store, events Publisher, m *metrics.Metrics, logger *slog.Logger) *Aggregator {
	return &Aggregator{store: store, events: events, metrics: m, logger: logger}
}

// RecordWin folds one positive outcome into the learning set.
func (a *Aggregator) RecordWin(ctx context.Context, content, learningType string, c Context) (Learning, bool, error) {
	if content == "" {
		return Learning{}, false, ErrEmptyContent
	}

	l, created, err := a.store.UpsertLearning(ctx, content, learningType, c)
	if err != nil {
		a.count("failed")
		return Learning{}, false, fmt.Errorf("upsert learning: %w", err)
	}

	if created {
		a.count("created")
	} else {
		a.count("incremented")
	}

	a.logger.Info("learning recorded",
		"learning_id", l.ID,
		"learning_type", l.LearningType,
		"success_count", l.SuccessCount,
		"created", created,
	)

	if a.events != nil {
		if err := a.events.Publish(hermes.SubjectLearningRecorded, hermes.LearningRecorded{
			LearningID:   l.ID.String(),
			LearningType: l.LearningType,
			SuccessCount: l.SuccessCount,
			Created:      created,
		}); err != nil {
			a.logger.Warn("failed to publish learning recorded", "error", err)
		}
	}
	return l, created, nil
}

// List returns learnings by success count descending, oldest first on ties.
func (a *Aggregator) List(ctx context.Context, f Filter) ([]Learning, error) {
	f.Limit = normalizeLimit(f.Limit)
	out, err := a.store.ListLearnings(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list learnings: %w", err)
	}
	return out, nil
}

// Leaderboard is the top of the unfiltered ranking, read fresh on every call.
func (a *Aggregator) Leaderboard(ctx context.Context) ([]Learning, error) {
	return a.List(ctx, Filter{Limit: LeaderboardSize})
}

func (a *Aggregator) count(result string) {
	if a.metrics != nil {
		a.metrics.LearningsRecorded.WithLabelValues(result).Inc()
	}
}

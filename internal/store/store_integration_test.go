//go:build integration

package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/hive/internal/hive"
	"github.com/MikeSquared-Agency/hive/internal/prospect"
	"github.com/MikeSquared-Agency/hive/internal/script"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	require.NoError(t, err, "connect")
	require.NoError(t, s.Migrate(ctx), "migrate")

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_ScriptFeedbackRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	pid, err := s.InsertProspect(ctx, prospect.Prospect{
		Name:   "Integration Prospect",
		Source: "LINE",
		Score:  85,
		Signal: "asked about pricing",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM prospects WHERE id = $1", pid)
	})

	sid, err := s.InsertScript(ctx, script.Script{
		ProspectID: &pid,
		TenantID:   "integration",
		Type:       script.TypeApproach,
		Text:       "Hi! Saw you asking about pricing...",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM scripts WHERE id = $1", sid)
	})

	sc, err := s.GetScript(ctx, sid)
	require.NoError(t, err)
	require.False(t, sc.State.IsResolved(), "fresh script should be pending")

	at := time.Now().UTC().Truncate(time.Microsecond)
	sc, err = s.UpdateScriptFeedback(ctx, sid, script.FeedbackConverted, at)
	require.NoError(t, err)
	v, gotAt, ok := sc.State.Feedback()
	assert.True(t, ok)
	assert.Equal(t, script.FeedbackConverted, v)
	assert.True(t, gotAt.Equal(at), "feedback_at %v, want %v", gotAt, at)

	_, err = s.UpdateScriptFeedback(ctx, uuid.New(), script.FeedbackConverted, at)
	assert.ErrorIs(t, err, script.ErrNotFound)
}

func TestIntegration_UpsertLearningConcurrent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	content := "integration-learning-" + uuid.New().String()
	const n = 20

	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM learnings WHERE content = $1", content)
	})

	var wg sync.WaitGroup
	created := make(chan bool, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, c, err := s.UpsertLearning(ctx, content, "winning_approach", hive.Context{Source: "LINE"})
			if !assert.NoError(t, err) {
				return
			}
			created <- c
		}()
	}
	wg.Wait()
	close(created)

	inserts := 0
	for c := range created {
		if c {
			inserts++
		}
	}
	assert.Equal(t, 1, inserts, "exactly one insert")

	var count int
	require.NoError(t, s.pool.QueryRow(ctx, "SELECT success_count FROM learnings WHERE content = $1", content).Scan(&count))
	assert.Equal(t, n, count)
}

func TestIntegration_UpdateProspectStatus(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	pid, err := s.InsertProspect(ctx, prospect.Prospect{Name: "Status Prospect", Score: 40})
	require.NoError(t, err)
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM prospects WHERE id = $1", pid)
	})

	require.NoError(t, s.UpdateProspectStatus(ctx, pid, prospect.StatusQualified))
	p, err := s.GetProspect(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, prospect.StatusQualified, p.Status)

	assert.ErrorIs(t, s.UpdateProspectStatus(ctx, uuid.New(), prospect.StatusLost), prospect.ErrNotFound)
}

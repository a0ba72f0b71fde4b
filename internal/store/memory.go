package store

import (
	"context"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/hive/internal/hive"
	"github.com/MikeSquared-Agency/hive/internal/prospect"
	"github.com/MikeSquared-Agency/hive/internal/script"
	"github.com/google/uuid"
)

// Memory is an in-process store with the same contracts as Store. Every operation runs under
// one mutex, which makes UpsertLearning atomic. Data does not survive a restart.
type Memory struct {
	mu        sync.Mutex
	prospects map[uuid.UUID]prospect.Prospect
	scripts   map[uuid.UUID]script.Script
	learnings map[uuid.UUID]hive.Learning
	byContent map[string]uuid.UUID
	lastStamp time.Time
}

func NewMemory() *Memory {
	return &Memory{
		prospects: make(map[uuid.UUID]prospect.Prospect),
		scripts:   make(map[uuid.UUID]script.Script),
		learnings: make(map[uuid.UUID]hive.Learning),
		byContent: make(map[string]uuid.UUID),
	}
}

// stamp returns a strictly increasing timestamp so creation order is never ambiguous.
// Caller holds mu.
func (m *Memory) stamp() time.Time {
	now := time.Now().UTC()
	if !now.After(m.lastStamp) {
		now = m.lastStamp.Add(time.Microsecond)
	}
	m.lastStamp = now
	return now
}

func (m *Memory) InsertProspect(_ context.Context, p prospect.Prospect) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = prospect.StatusNew
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.stamp()
	}
	p.Score = prospect.ClampScore(p.Score)
	m.prospects[p.ID] = p
	return p.ID, nil
}

// DeleteProspect removes a prospect and detaches its scripts, mirroring ON DELETE SET NULL.
func (m *Memory) DeleteProspect(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prospects[id]; !ok {
		return prospect.ErrNotFound
	}
	delete(m.prospects, id)
	for sid, sc := range m.scripts {
		if sc.ProspectID != nil && *sc.ProspectID == id {
			sc.ProspectID = nil
			m.scripts[sid] = sc
		}
	}
	return nil
}

func (m *Memory) GetProspect(_ context.Context, id uuid.UUID) (prospect.Prospect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prospects[id]
	if !ok {
		return prospect.Prospect{}, prospect.ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListProspectsSince(_ context.Context, since time.Time) ([]prospect.Prospect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []prospect.Prospect
	for _, p := range m.prospects {
		if !p.CreatedAt.Before(since) {
			out = append(out, p)
		}
	}
	sortProspects(out)
	return out, nil
}

func (m *Memory) UpdateProspectStatus(_ context.Context, id uuid.UUID, status prospect.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prospects[id]
	if !ok {
		return prospect.ErrNotFound
	}
	p.Status = status
	m.prospects[id] = p
	return nil
}

func (m *Memory) CountProspects(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prospects), nil
}

func (m *Memory) CountProspectsByStatus(_ context.Context, status prospect.Status) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.prospects {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *Memory) InsertScript(_ context.Context, sc script.Script) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sc.ID == uuid.Nil {
		sc.ID = uuid.New()
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = m.stamp()
	}
	sc.State = script.Pending()
	m.scripts[sc.ID] = sc
	return sc.ID, nil
}

func (m *Memory) GetScript(_ context.Context, id uuid.UUID) (script.Script, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.scripts[id]
	if !ok {
		return script.Script{}, script.ErrNotFound
	}
	return sc, nil
}

func (m *Memory) UpdateScriptFeedback(_ context.Context, id uuid.UUID, value script.Feedback, at time.Time) (script.Script, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.scripts[id]
	if !ok {
		return script.Script{}, script.ErrNotFound
	}
	sc.State = script.Resolved(value, at)
	m.scripts[id] = sc
	return sc, nil
}

func (m *Memory) UpsertLearning(_ context.Context, content, learningType string, c hive.Context) (hive.Learning, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byContent[content]; ok {
		l := m.learnings[id]
		l.SuccessCount++
		m.learnings[id] = l
		return l, false, nil
	}
	l := hive.Learning{
		ID:           uuid.New(),
		LearningType: learningType,
		Content:      content,
		Context:      c,
		SuccessCount: 1,
		CreatedAt:    m.stamp(),
	}
	m.learnings[l.ID] = l
	m.byContent[content] = l.ID
	return l, true, nil
}

func (m *Memory) ListLearnings(_ context.Context, f hive.Filter) ([]hive.Learning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]hive.Learning, 0, len(m.learnings))
	for _, l := range m.learnings {
		if f.Type == "" || l.LearningType == f.Type {
			out = append(out, l)
		}
	}
	hive.Rank(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Package script generates outreach scripts for prospects and records how they landed.
package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/hive/internal/hermes"
	"github.com/MikeSquared-Agency/hive/internal/hive"
	"github.com/MikeSquared-Agency/hive/internal/metrics"
	"github.com/MikeSquared-Agency/hive/internal/prospect"
	"github.com/google/uuid"
)

// ProspectReader resolves prospects. GetProspect returns prospect.ErrNotFound for unknown ids.
type ProspectReader interface {
	GetProspect(ctx context.Context, id uuid.UUID) (prospect.Prospect, error)
}

// Store persists scripts. GetScript and UpdateScriptFeedback return ErrNotFound for unknown
// ids. UpdateScriptFeedback writes value and timestamp in one statement and returns the
// updated row.
type Store interface {
	InsertScript(ctx context.Context, s Script) (uuid.UUID, error)
	GetScript(ctx context.Context, id uuid.UUID) (Script, error)
	UpdateScriptFeedback(ctx context.Context, id uuid.UUID, value Feedback, at time.Time) (Script, error)
}

// TextGenerator is the AI capability. One synchronous call per invocation.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// WinRecorder receives positive outcomes. Implemented by hive.Aggregator.
type WinRecorder interface {
	RecordWin(ctx context.Context, content, learningType string, c hive.Context) (hive.Learning, bool, error)
}

// Publisher emits script events. Optional.
type Publisher interface {
	Publish(subject string, data any) error
}

type Manager struct {
	prospects ProspectReader
	scripts   Store
	llm       TextGenerator
	wins      WinRecorder
	events    Publisher
	metrics   *metrics.Metrics
	tenantID  string
	logger    *slog.Logger
}

// Deps groups the collaborators of a Manager. Events and Metrics may be nil.
type Deps struct {
	Prospects ProspectReader
	Scripts   Store
	LLM       TextGenerator
	Wins      WinRecorder
	Events    Publisher
	Metrics   *metrics.Metrics
}

func NewManager(d Deps, tenantID string, logger *slog.Logger) *Manager {
	return &Manager{
		prospects: d.Prospects,
		scripts:   d.Scripts,
		llm:       d.LLM,
		wins:      d.Wins,
		events:    d.Events,
		metrics:   d.Metrics,
		tenantID:  tenantID,
		logger:    logger,
	}
}

// Generate asks the model for a script aimed at the prospect and stores it pending feedback.
// A failed or empty generation returns *GenerationError and writes nothing.
func (m *Manager) Generate(ctx context.Context, prospectID uuid.UUID, t Type) (Script, error) {
	p, err := m.prospects.GetProspect(ctx, prospectID)
	if err != nil {
		return Script{}, fmt.Errorf("load prospect %s: %w", prospectID, err)
	}

	start := time.Now()
	text, err := m.llm.Generate(ctx, BuildPrompt(p, t), maxScriptTokens)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty generation")
	}
	m.observeGeneration(t, start, err)
	if err != nil {
		m.logger.Warn("script generation failed",
			"prospect_id", prospectID,
			"script_type", string(t),
			"error", err,
		)
		return Script{}, &GenerationError{ProspectID: prospectID, Err: err}
	}

	pid := p.ID
	s := Script{
		ProspectID: &pid,
		TenantID:   m.tenantID,
		Type:       t,
		Text:       strings.TrimSpace(text),
		State:      Pending(),
		CreatedAt:  time.Now().UTC(),
	}
	id, err := m.scripts.InsertScript(ctx, s)
	if err != nil {
		return Script{}, fmt.Errorf("insert script: %w", err)
	}
	s.ID = id

	m.logger.Info("script generated",
		"script_id", id,
		"prospect_id", prospectID,
		"script_type", string(t),
		"text_len", len(s.Text),
	)
	m.publish(hermes.SubjectScriptGenerated, map[string]any{
		"script_id":   id.String(),
		"prospect_id": prospectID.String(),
		"script_type": string(t),
		"tenant_id":   m.tenantID,
	})
	return s, nil
}

// Get returns a stored script.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (Script, error) {
	return m.scripts.GetScript(ctx, id)
}

// SubmitFeedback records the outcome of a script. Positive outcomes are then folded into the
// hive; that step is committed separately and its failure is logged, not returned.
// Resubmitting overwrites the previous value and timestamp.
func (m *Manager) SubmitFeedback(ctx context.Context, scriptID uuid.UUID, raw string) (Script, error) {
	value, err := ParseFeedback(raw)
	if err != nil {
		return Script{}, err
	}

	s, err := m.scripts.UpdateScriptFeedback(ctx, scriptID, value, time.Now().UTC())
	if err != nil {
		return Script{}, fmt.Errorf("update feedback for script %s: %w", scriptID, err)
	}
	if m.metrics != nil {
		m.metrics.FeedbackRecorded.WithLabelValues(string(value)).Inc()
	}

	m.logger.Info("feedback recorded",
		"script_id", scriptID,
		"feedback", string(value),
		"tenant_id", s.TenantID,
	)
	m.publish(hermes.SubjectScriptFeedback, map[string]any{
		"script_id": scriptID.String(),
		"feedback":  string(value),
		"tenant_id": s.TenantID,
	})

	if value.Positive() {
		// The feedback is already committed; a caller going away must not drop the win.
		m.recordWin(context.WithoutCancel(ctx), s, value)
	}
	return s, nil
}

func (m *Manager) recordWin(ctx context.Context, s Script, value Feedback) {
	origin := hive.Context{Feedback: string(value)}
	if s.ProspectID != nil {
		p, err := m.prospects.GetProspect(ctx, *s.ProspectID)
		switch {
		case err == nil:
			origin.Source = p.Source
			origin.Signal = p.Signal
		case errors.Is(err, prospect.ErrNotFound):
			// Prospect deleted since generation; the learning keeps the text alone.
		default:
			m.logger.Warn("failed to load prospect for learning context",
				"script_id", s.ID,
				"prospect_id", *s.ProspectID,
				"error", err,
			)
		}
	}

	if _, _, err := m.wins.RecordWin(ctx, s.Text, hive.TypeFor(string(s.Type)), origin); err != nil {
		m.logger.Error("learning aggregation failed",
			"script_id", s.ID,
			"feedback", string(value),
			"error", err,
		)
	}
}

// HandleFeedbackEvent is the NATS handler for hermes.SubjectFeedbackSubmitted.
func (m *Manager) HandleFeedbackEvent(subject string, data []byte) {
	ctx := context.Background()

	var evt hermes.FeedbackSubmitted
	if err := json.Unmarshal(data, &evt); err != nil {
		m.logger.Error("failed to parse feedback event", "subject", subject, "error", err)
		return
	}

	id, err := uuid.Parse(evt.ScriptID)
	if err != nil {
		m.logger.Error("invalid script id in feedback event", "script_id", evt.ScriptID, "error", err)
		return
	}

	if _, err := m.SubmitFeedback(ctx, id, evt.Feedback); err != nil {
		m.logger.Error("feedback event rejected",
			"script_id", evt.ScriptID,
			"feedback", evt.Feedback,
			"user_id", evt.UserID,
			"error", err,
		)
	}
}

func (m *Manager) observeGeneration(t Type, start time.Time, err error) {
	if m.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.metrics.ScriptsGenerated.WithLabelValues(string(t), outcome).Inc()
	m.metrics.GenerationLatency.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (m *Manager) publish(subject string, data any) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(subject, data); err != nil {
		m.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/hive/internal/hermes"
	"github.com/MikeSquared-Agency/hive/internal/metrics"
	"github.com/MikeSquared-Agency/hive/internal/prospect"
	"github.com/MikeSquared-Agency/hive/internal/script"
	"github.com/google/uuid"
)

// ProspectLister is the read side of the prospect store used by reports.
type ProspectLister interface {
	ListProspectsSince(ctx context.Context, since time.Time) ([]prospect.Prospect, error)
	CountProspects(ctx context.Context) (int, error)
	CountProspectsByStatus(ctx context.Context, status prospect.Status) (int, error)
}

// ScriptGenerator is implemented by script.Manager.
type ScriptGenerator interface {
	Generate(ctx context.Context, prospectID uuid.UUID, t script.Type) (script.Script, error)
}

// Deliverer sends finished report text to an external channel.
type Deliverer interface {
	Deliver(ctx context.Context, channelRef, text string) error
}

type Publisher interface {
	Publish(subject string, data any) error
}

type Options struct {
	Lookback       time.Duration
	QualifyScore   int
	MaxSuggestions int
	AITimeout      time.Duration
	Channel        string
}

func (o Options) withDefaults() Options {
	if o.Lookback <= 0 {
		o.Lookback = 24 * time.Hour
	}
	if o.QualifyScore <= 0 {
		o.QualifyScore = 70
	}
	if o.MaxSuggestions <= 0 {
		o.MaxSuggestions = 3
	}
	if o.AITimeout <= 0 {
		o.AITimeout = 30 * time.Second
	}
	return o
}

type Generator struct {
	prospects ProspectLister
	scripts   ScriptGenerator
	delivery  Deliverer
	events    Publisher
	metrics   *metrics.Metrics
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewGenerator wires a report generator. delivery, events and m may be nil.
func NewGenerator(prospects ProspectLister, scripts ScriptGenerator, delivery Deliverer, events Publisher, m *metrics.Metrics, opts Options, logger *slog.Logger) *Generator {
	return &Generator{
		prospects: prospects,
		scripts:   scripts,
		delivery:  delivery,
		events:    events,
		metrics:   m,
		opts:      opts.withDefaults(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Build assembles a report. Only the initial prospect fetch can fail it; generation and totals
// failures are logged and leave their section out.
func (g *Generator) Build(ctx context.Context) (*Report, error) {
	now := g.now()
	since := now.Add(-g.opts.Lookback)

	ps, err := g.prospects.ListProspectsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list prospects since %s: %w", since.Format(time.RFC3339), err)
	}

	r := &Report{
		GeneratedAt: now,
		Since:       since,
		Lookback:    g.opts.Lookback.String(),
		Prospects:   []Summary{},
		Suggestions: []Suggestion{},
	}
	if len(ps) == 0 {
		return r, nil
	}

	for _, p := range ps {
		r.Prospects = append(r.Prospects, Summary{
			ProspectID: p.ID,
			Name:       p.Name,
			Score:      p.Score,
			Source:     p.Source,
			Signal:     truncateRunes(p.Signal, maxSignalRunes),
		})
	}

	for _, p := range g.selectQualifying(ps) {
		s, err := g.generateOne(ctx, p)
		if err != nil {
			r.Skipped++
			if g.metrics != nil {
				g.metrics.ReportSkipped.Inc()
			}
			g.logger.Warn("skipping suggestion",
				"prospect_id", p.ID,
				"score", p.Score,
				"error", err,
			)
			continue
		}
		r.Suggestions = append(r.Suggestions, Suggestion{
			ProspectID: p.ID,
			Name:       p.Name,
			ScriptID:   s.ID,
			Text:       s.Text,
		})
	}

	totals, err := g.totals(ctx)
	if err != nil {
		g.logger.Warn("pipeline totals unavailable", "error", err)
	} else {
		r.Totals = totals
	}
	return r, nil
}

// Run builds and delivers one report. Delivery failures are logged, not returned.
func (g *Generator) Run(ctx context.Context, trigger string) (*Report, error) {
	r, err := g.Build(ctx)
	if err != nil {
		g.countRun(trigger, "error")
		g.logger.Error("report generation failed", "trigger", trigger, "error", err)
		return nil, err
	}
	g.countRun(trigger, "ok")

	delivered := g.deliver(ctx, r)

	g.logger.Info("report generated",
		"trigger", trigger,
		"prospects", len(r.Prospects),
		"suggestions", len(r.Suggestions),
		"skipped", r.Skipped,
		"delivered", delivered,
	)

	if g.events != nil {
		if err := g.events.Publish(hermes.SubjectReportGenerated, map[string]any{
			"trigger":     trigger,
			"prospects":   len(r.Prospects),
			"suggestions": len(r.Suggestions),
			"skipped":     r.Skipped,
			"delivered":   delivered,
		}); err != nil {
			g.logger.Warn("failed to publish report generated", "error", err)
		}
	}
	return r, nil
}

func (g *Generator) selectQualifying(ps []prospect.Prospect) []prospect.Prospect {
	var out []prospect.Prospect
	for _, p := range ps {
		if len(out) == g.opts.MaxSuggestions {
			break
		}
		if p.Score >= g.opts.QualifyScore {
			out = append(out, p)
		}
	}
	return out
}

// generateOne runs one generation under its own deadline so a slow call only costs that
// prospect its suggestion.
func (g *Generator) generateOne(ctx context.Context, p prospect.Prospect) (script.Script, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.AITimeout)
	defer cancel()
	return g.scripts.Generate(ctx, p.ID, script.TypeApproach)
}

func (g *Generator) totals(ctx context.Context) (*Totals, error) {
	all, err := g.prospects.CountProspects(ctx)
	if err != nil {
		return nil, fmt.Errorf("count prospects: %w", err)
	}
	qualified, err := g.prospects.CountProspectsByStatus(ctx, prospect.StatusQualified)
	if err != nil {
		return nil, fmt.Errorf("count qualified prospects: %w", err)
	}
	return &Totals{All: all, Qualified: qualified}, nil
}

func (g *Generator) deliver(ctx context.Context, r *Report) bool {
	if g.delivery == nil {
		return false
	}
	if err := g.delivery.Deliver(ctx, g.opts.Channel, r.Text()); err != nil {
		g.countDelivery("error")
		g.logger.Error("report delivery failed", "channel", g.opts.Channel, "error", err)
		return false
	}
	g.countDelivery("ok")
	return true
}

func (g *Generator) countRun(trigger, outcome string) {
	if g.metrics != nil {
		g.metrics.ReportRuns.WithLabelValues(trigger, outcome).Inc()
	}
}

func (g *Generator) countDelivery(outcome string) {
	if g.metrics != nil {
		g.metrics.Deliveries.WithLabelValues(outcome).Inc()
	}
}

package report_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/hive/internal/hermes"
	"github.com/MikeSquared-Agency/hive/internal/prospect"
	"github.com/MikeSquared-Agency/hive/internal/report"
	"github.com/MikeSquared-Agency/hive/internal/script"
	"github.com/MikeSquared-Agency/hive/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeScripts fails the calls whose 1-based index is in failOn.
type fakeScripts struct {
	mu     sync.Mutex
	calls  []uuid.UUID
	failOn map[int]error
	block  chan struct{}
}

func (f *fakeScripts) Generate(ctx context.Context, id uuid.UUID, t script.Type) (script.Script, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	n := len(f.calls)
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return script.Script{}, ctx.Err()
		}
	}
	if err, ok := f.failOn[n]; ok {
		return script.Script{}, &script.GenerationError{ProspectID: id, Err: err}
	}
	if t != script.TypeApproach {
		return script.Script{}, errors.New("unexpected script type")
	}
	return script.Script{ID: uuid.New(), Text: "approach for " + id.String()}, nil
}

type fakeDeliverer struct {
	channel string
	text    string
	err     error
	calls   int
}

func (d *fakeDeliverer) Deliver(_ context.Context, channelRef, text string) error {
	d.calls++
	d.channel = channelRef
	d.text = text
	return d.err
}

type recordingPublisher struct {
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, _ any) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

// brokenLister fails the fetch or the totals depending on which error is set.
type brokenLister struct {
	*store.Memory
	listErr  error
	countErr error
}

func (b *brokenLister) ListProspectsSince(ctx context.Context, since time.Time) ([]prospect.Prospect, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.Memory.ListProspectsSince(ctx, since)
}

func (b *brokenLister) CountProspects(ctx context.Context) (int, error) {
	if b.countErr != nil {
		return 0, b.countErr
	}
	return b.Memory.CountProspects(ctx)
}

func seed(t *testing.T, mem *store.Memory, ps ...prospect.Prospect) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, len(ps))
	for _, p := range ps {
		id, err := mem.InsertProspect(context.Background(), p)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestBuild_SecondGenerationFails(t *testing.T) {
	mem := store.NewMemory()
	ids := seed(t, mem,
		prospect.Prospect{Name: "First", Source: "LINE", Score: 95, Signal: "wants extra income"},
		prospect.Prospect{Name: "Second", Source: "IG", Score: 85, Signal: "asked about pricing"},
		prospect.Prospect{Name: "Third", Source: "FB", Score: 75, Signal: "liked three posts"},
		prospect.Prospect{Name: "Cold", Source: "FB", Score: 40, Status: prospect.StatusQualified},
	)
	scripts := &fakeScripts{failOn: map[int]error{2: errors.New("malformed response")}}
	gen := report.NewGenerator(mem, scripts, nil, nil, nil, report.Options{}, discardLogger())

	r, err := gen.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{ids[0], ids[1], ids[2]}, scripts.calls)
	require.Len(t, r.Suggestions, 2)
	assert.Equal(t, ids[0], r.Suggestions[0].ProspectID)
	assert.Equal(t, ids[2], r.Suggestions[1].ProspectID)
	assert.Equal(t, 1, r.Skipped)

	require.Len(t, r.Prospects, 4)
	require.NotNil(t, r.Totals)
	assert.Equal(t, 4, r.Totals.All)
	assert.Equal(t, 1, r.Totals.Qualified)

	text := r.Text()
	assert.Contains(t, text, "First")
	assert.Contains(t, text, "Suggested approaches")
	assert.Contains(t, text, "approach for "+ids[2].String())
	assert.NotContains(t, text, "approach for "+ids[1].String())
	assert.Contains(t, text, "4 prospects all-time, 1 qualified")
}

func TestBuild_CapAndThreshold(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem,
		prospect.Prospect{Name: "a", Score: 99},
		prospect.Prospect{Name: "b", Score: 90},
		prospect.Prospect{Name: "c", Score: 80},
		prospect.Prospect{Name: "d", Score: 71},
		prospect.Prospect{Name: "e", Score: 70},
		prospect.Prospect{Name: "f", Score: 69},
	)
	scripts := &fakeScripts{}
	gen := report.NewGenerator(mem, scripts, nil, nil, nil, report.Options{}, discardLogger())

	r, err := gen.Build(context.Background())
	require.NoError(t, err)
	assert.Len(t, scripts.calls, 3)
	assert.Len(t, r.Suggestions, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{r.Suggestions[0].Name, r.Suggestions[1].Name, r.Suggestions[2].Name})
}

func TestBuild_ThresholdIsInclusive(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem,
		prospect.Prospect{Name: "edge", Score: 70},
		prospect.Prospect{Name: "below", Score: 69},
	)
	scripts := &fakeScripts{}
	gen := report.NewGenerator(mem, scripts, nil, nil, nil, report.Options{}, discardLogger())

	r, err := gen.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Suggestions, 1)
	assert.Equal(t, "edge", r.Suggestions[0].Name)
}

func TestBuild_EmptyState(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, prospect.Prospect{Name: "old", Score: 99, CreatedAt: time.Now().Add(-72 * time.Hour)})
	scripts := &fakeScripts{}
	gen := report.NewGenerator(mem, scripts, nil, nil, nil, report.Options{}, discardLogger())

	r, err := gen.Build(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.Nil(t, r.Totals)
	assert.Empty(t, scripts.calls)
	assert.Contains(t, r.Text(), "No new prospects")
}

func TestBuild_FetchFailureFailsReport(t *testing.T) {
	lister := &brokenLister{Memory: store.NewMemory(), listErr: errors.New("connection refused")}
	gen := report.NewGenerator(lister, &fakeScripts{}, nil, nil, nil, report.Options{}, discardLogger())

	_, err := gen.Build(context.Background())
	assert.Error(t, err)
}

func TestBuild_TotalsFailureOmitsTotals(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, prospect.Prospect{Name: "x", Score: 50})
	lister := &brokenLister{Memory: mem, countErr: errors.New("timeout")}
	gen := report.NewGenerator(lister, &fakeScripts{}, nil, nil, nil, report.Options{}, discardLogger())

	r, err := gen.Build(context.Background())
	require.NoError(t, err)
	assert.Nil(t, r.Totals)
	assert.NotContains(t, r.Text(), "Pipeline:")
}

func TestBuild_SlowGenerationTimesOut(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem,
		prospect.Prospect{Name: "slow", Score: 90},
		prospect.Prospect{Name: "also slow", Score: 80},
	)
	scripts := &fakeScripts{block: make(chan struct{})}
	gen := report.NewGenerator(mem, scripts, nil, nil, nil, report.Options{AITimeout: 20 * time.Millisecond}, discardLogger())

	r, err := gen.Build(context.Background())
	require.NoError(t, err)
	assert.Len(t, scripts.calls, 2)
	assert.Empty(t, r.Suggestions)
	assert.Equal(t, 2, r.Skipped)
	assert.NotNil(t, r.Totals)
}

func TestBuild_SignalTruncated(t *testing.T) {
	mem := store.NewMemory()
	long := strings.Repeat("ก", 120)
	seed(t, mem, prospect.Prospect{Name: "thai", Score: 10, Signal: long})
	gen := report.NewGenerator(mem, &fakeScripts{}, nil, nil, nil, report.Options{}, discardLogger())

	r, err := gen.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Prospects, 1)
	assert.Equal(t, 80, len([]rune(r.Prospects[0].Signal)))
}

func TestRun_DeliversAndPublishes(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, prospect.Prospect{Name: "Ploy", Source: "LINE", Score: 88})
	d := &fakeDeliverer{}
	pub := &recordingPublisher{}
	gen := report.NewGenerator(mem, &fakeScripts{}, d, pub, nil, report.Options{Channel: "C42"}, discardLogger())

	r, err := gen.Run(context.Background(), report.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 1, d.calls)
	assert.Equal(t, "C42", d.channel)
	assert.Equal(t, r.Text(), d.text)
	assert.Equal(t, []string{hermes.SubjectReportGenerated}, pub.subjects)
}

func TestRun_DeliveryFailureIsNotReturned(t *testing.T) {
	mem := store.NewMemory()
	seed(t, mem, prospect.Prospect{Name: "Ploy", Score: 10})
	d := &fakeDeliverer{err: errors.New("slack down")}
	gen := report.NewGenerator(mem, &fakeScripts{}, d, nil, nil, report.Options{}, discardLogger())

	r, err := gen.Run(context.Background(), report.TriggerSchedule)
	require.NoError(t, err)
	assert.NotNil(t, r)
	assert.Equal(t, 1, d.calls)
}

func TestRun_FetchFailure(t *testing.T) {
	lister := &brokenLister{Memory: store.NewMemory(), listErr: errors.New("down")}
	d := &fakeDeliverer{}
	gen := report.NewGenerator(lister, &fakeScripts{}, d, nil, nil, report.Options{}, discardLogger())

	_, err := gen.Run(context.Background(), report.TriggerManual)
	assert.Error(t, err)
	assert.Zero(t, d.calls)
}

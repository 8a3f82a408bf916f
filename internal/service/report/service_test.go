package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-api/internal/email"
	"github.com/jwalitptl/health-api/internal/model"
	"github.com/jwalitptl/health-api/internal/report"
	"github.com/jwalitptl/health-api/internal/repository/filestore"
	"github.com/jwalitptl/health-api/internal/service/analysis"
	"github.com/jwalitptl/health-api/internal/service/snapshot"
	"github.com/jwalitptl/health-api/internal/testutil"
	"github.com/jwalitptl/health-api/pkg/analyzer"
	apperrors "github.com/jwalitptl/health-api/pkg/errors"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	last   interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
	p.last = payload
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []email.Report
}

func (m *recordingMailer) Enabled() bool { return true }

func (m *recordingMailer) SendReport(_ context.Context, r email.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, r)
	return nil
}

type fixture struct {
	svc       *Service
	fake      *analyzer.Fake
	store     *report.Store
	publisher *recordingPublisher
	mailer    *recordingMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dataDir := t.TempDir()
	testutil.WriteDataset(t, dataDir)

	files := filestore.New(filestore.Config{DataDir: dataDir, LabCategories: []string{testutil.LabCategory}}, nil, nil)
	fake := &analyzer.Fake{Text: "Line one\n<b>line two</b>", Model: "test-model"}
	store := report.NewStore(t.TempDir(), nil)
	f := &fixture{
		fake:      fake,
		store:     store,
		publisher: &recordingPublisher{},
		mailer:    &recordingMailer{},
	}
	a := analysis.NewService(snapshot.NewService(files, nil), fake, nil, nil, time.Second)
	f.svc = NewService(a, store, f.publisher, f.mailer, nil, nil)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC) }
	return f
}

func TestGenerateWritesReportAndNotifies(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Generate(context.Background(), analysis.Input{Query: "Summarize my labs"})
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, "1772620200000", got.ReportID)
	assert.Equal(t, 12, got.Metadata.DataPoints)
	assert.FileExists(t, got.Paths.HTML)
	assert.FileExists(t, got.Paths.JSON)

	html, err := os.ReadFile(got.Paths.HTML)
	require.NoError(t, err)
	assert.Contains(t, string(html), "&lt;b&gt;line two&lt;/b&gt;")
	assert.Contains(t, string(html), "1772620200000")

	raw, err := os.ReadFile(got.Paths.JSON)
	require.NoError(t, err)
	var sidecar model.ReportSidecar
	require.NoError(t, json.Unmarshal(raw, &sidecar))
	assert.Equal(t, "Summarize my labs", sidecar.Query)
	assert.Equal(t, "test-model", sidecar.Metadata.Analysis.Model)
	assert.Equal(t, 4, sidecar.Metrics.WeightRecords)

	require.Equal(t, []string{"report.generated"}, f.publisher.events)
	event := f.publisher.last.(GeneratedEvent)
	assert.Equal(t, got.ReportID, event.ReportID)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, got.Paths.HTML, f.mailer.sent[0].HTMLPath)

	entries, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(got.Paths.HTML), entries[0].Filename)
}

func TestGenerateFailedAnalysisWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.fake.Err = analyzer.ErrUpstream

	_, err := f.svc.Generate(context.Background(), analysis.Input{Query: "q"})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrExternalAPI, appErr.Code)

	f.svc.Wait()
	_, statErr := os.Stat(f.store.Dir())
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, f.publisher.events)
	assert.Empty(t, f.mailer.sent)
}

func TestGenerateInvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), analysis.Input{})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrInvalidInput, appErr.Code)
	assert.Zero(t, f.fake.Calls())
}

func TestOpen(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.Generate(context.Background(), analysis.Input{Query: "q"})
	require.NoError(t, err)
	f.svc.Wait()

	data, err := f.svc.Open(context.Background(), filepath.Base(got.Paths.HTML))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")

	_, err = f.svc.Open(context.Background(), "../etc/passwd")
	appErr, _ := apperrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrInvalidInput, appErr.Code)

	_, err = f.svc.Open(context.Background(), "health-report-2020-01-01-1.html")
	appErr, _ = apperrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "abc...", excerpt("abcdef", 3))
}

package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/nfcgate-console/internal/client/client"
	"github.com/dmitrijs2005/nfcgate-console/internal/client/models"
)

// ---- fake panel API ----

type fakePanelAPI struct {
	mu    sync.Mutex
	calls int

	download *client.Download
	stats    []*models.APDUStats
	gates    []chan struct{}
	rows     []models.TailRow
	health   *models.Health
	err      error

	gotRange  models.TimeRange
	gotFormat models.ExportFormat
	gotScope  models.Scope
	gotLimit  int
	gotTop    int
}

func (f *fakePanelAPI) record() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.calls - 1
}

func (f *fakePanelAPI) ExportLogs(_ context.Context, r models.TimeRange, format models.ExportFormat, scope models.Scope) (*client.Download, error) {
	f.record()
	f.gotRange, f.gotFormat, f.gotScope = r, format, scope
	return f.download, f.err
}

func (f *fakePanelAPI) APDUStats(_ context.Context, r models.TimeRange, top int, scope models.Scope) (*models.APDUStats, error) {
	i := f.record()
	f.mu.Lock()
	f.gotRange, f.gotTop, f.gotScope = r, top, scope
	var gate chan struct{}
	if i < len(f.gates) {
		gate = f.gates[i]
	}
	st := f.stats[i%len(f.stats)]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return st, f.err
}

func (f *fakePanelAPI) TailLogs(_ context.Context, limit int, scope models.Scope) ([]models.TailRow, error) {
	f.record()
	f.mu.Lock()
	f.gotLimit, f.gotScope = limit, scope
	f.mu.Unlock()
	return f.rows, f.err
}

func (f *fakePanelAPI) Health(context.Context) (*models.Health, error) {
	f.record()
	return f.health, f.err
}

func (f *fakePanelAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memSaver keeps saved exports in memory.
type memSaver struct {
	name string
	data string
	err  error
}

func (m *memSaver) Save(_ context.Context, name string, r io.Reader) (models.ExportFile, error) {
	if m.err != nil {
		return models.ExportFile{}, m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return models.ExportFile{}, err
	}
	m.name, m.data = name, string(b)
	return models.ExportFile{Name: name, Path: "/mem/" + name, Bytes: int64(len(b))}, nil
}

func utcFilter() *models.FilterState {
	return &models.FilterState{Start: "2024-01-01T00:00", End: "2024-01-01T01:00", Format: models.FormatJSONL}
}

func newPanels(api PanelAPI, filter *models.FilterState, saver FileSaver) *Panels {
	return NewPanels(api, filter, saver, PanelOptions{TailLimit: 200, StatsTop: 20, Location: time.UTC}, nil)
}

func TestPanels_InvalidRangeMakesNoCall(t *testing.T) {
	api := &fakePanelAPI{}
	filter := utcFilter()
	filter.Start, filter.End = "2024-01-02T00:00", "2024-01-01T00:00"
	p := newPanels(api, filter, &memSaver{})

	err := p.Export(context.Background())
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorIs(t, err, models.ErrInvalidRange)

	err = p.Stats(context.Background(), 0)
	require.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, api.callCount())
	assert.NotEmpty(t, p.ExportResult().Error)
	assert.Empty(t, p.ExportResult().Status)
	assert.NotEmpty(t, p.StatsResult().Error)
}

func TestPanels_UnparsableBoundMakesNoCall(t *testing.T) {
	api := &fakePanelAPI{}
	filter := utcFilter()
	filter.End = "yesterday"
	p := newPanels(api, filter, &memSaver{})

	require.ErrorIs(t, p.Export(context.Background()), ErrValidation)
	assert.Zero(t, api.callCount())
}

func TestPanels_ExportUsesDispositionName(t *testing.T) {
	api := &fakePanelAPI{download: &client.Download{Body: io.NopCloser(strings.NewReader("a\nb\n")), Filename: "server.jsonl"}}
	filter := utcFilter()
	filter.Tag = "server"
	saver := &memSaver{}
	p := newPanels(api, filter, saver)

	require.NoError(t, p.Export(context.Background()))
	assert.Equal(t, "server.jsonl", saver.name)
	assert.Equal(t, "a\nb\n", saver.data)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", api.gotRange.FromISO())
	assert.Equal(t, "2024-01-01T01:00:00.000Z", api.gotRange.ToISO())
	assert.Equal(t, models.Scope{Tag: "server"}, api.gotScope)

	res := p.ExportResult()
	assert.True(t, res.HasData)
	assert.Equal(t, int64(4), res.Data.Bytes)
	assert.Contains(t, res.Status, "server.jsonl")
}

func TestPanels_ExportFallbackName(t *testing.T) {
	api := &fakePanelAPI{download: &client.Download{Body: io.NopCloser(strings.NewReader(""))}}
	filter := utcFilter()
	filter.Format = models.FormatCSV
	saver := &memSaver{}
	p := newPanels(api, filter, saver)

	require.NoError(t, p.Export(context.Background()))
	assert.Equal(t, "logs_2024-01-01T00-00-00.000Z_2024-01-01T01-00-00.000Z.csv", saver.name)
	assert.NotContains(t, saver.name, ":")
	assert.Equal(t, models.FormatCSV, api.gotFormat)
}

func TestPanels_ExportSaveErrorIsShown(t *testing.T) {
	api := &fakePanelAPI{download: &client.Download{Body: io.NopCloser(strings.NewReader("x"))}}
	p := newPanels(api, utcFilter(), &memSaver{err: errors.New("disk full")})

	require.Error(t, p.Export(context.Background()))
	res := p.ExportResult()
	assert.Equal(t, "disk full", res.Error)
	assert.False(t, res.HasData)
}

func TestPanels_AppErrorClearsStatus(t *testing.T) {
	api := &fakePanelAPI{err: &client.AppError{Status: 500, Snippet: "boom"}}
	p := newPanels(api, utcFilter(), &memSaver{})

	require.Error(t, p.Tail(context.Background(), 0))
	res := p.TailResult()
	assert.Empty(t, res.Status)
	assert.Equal(t, "HTTP 500: boom", res.Error)
	assert.Equal(t, 200, api.gotLimit)
}

func TestPanels_TailIgnoresTimeRange(t *testing.T) {
	api := &fakePanelAPI{rows: []models.TailRow{{Tag: "apdu"}}}
	filter := utcFilter()
	filter.Start, filter.End = "bad", "worse"
	filter.Session = "3"
	p := newPanels(api, filter, &memSaver{})

	require.NoError(t, p.Tail(context.Background(), 50))
	assert.Equal(t, 50, api.gotLimit)
	assert.Equal(t, models.Scope{Session: "3"}, api.gotScope)
	assert.Len(t, p.TailResult().Data, 1)
}

func TestPanels_StatsDefaultsTopAndReplaces(t *testing.T) {
	first := &models.APDUStats{ParsedAPDU: 1}
	second := &models.APDUStats{ParsedAPDU: 2}
	api := &fakePanelAPI{stats: []*models.APDUStats{first, second}}
	p := newPanels(api, utcFilter(), &memSaver{})

	require.NoError(t, p.Stats(context.Background(), 0))
	assert.Equal(t, 20, api.gotTop)
	require.NoError(t, p.Stats(context.Background(), 5))
	assert.Equal(t, 5, api.gotTop)
	assert.Same(t, second, p.StatsResult().Data)
}

func TestPanels_StaleResponseIsDiscarded(t *testing.T) {
	slow := &models.APDUStats{ParsedAPDU: 1}
	fast := &models.APDUStats{ParsedAPDU: 2}
	gate := make(chan struct{})
	api := &fakePanelAPI{stats: []*models.APDUStats{slow, fast}, gates: []chan struct{}{gate}}
	p := newPanels(api, utcFilter(), &memSaver{})

	done := make(chan error)
	go func() { done <- p.Stats(context.Background(), 0) }()
	require.Eventually(t, func() bool { return api.callCount() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, p.Stats(context.Background(), 0))
	close(gate)
	require.NoError(t, <-done)

	assert.Same(t, fast, p.StatsResult().Data)
}

func TestPanels_RefreshRunsAllPanels(t *testing.T) {
	api := &fakePanelAPI{
		stats:  []*models.APDUStats{{}},
		rows:   []models.TailRow{},
		health: &models.Health{Status: "ok"},
	}
	p := newPanels(api, utcFilter(), &memSaver{})

	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, 3, api.callCount())
	assert.Equal(t, "Backend status: ok", p.HealthResult().Status)
	assert.True(t, p.StatsResult().HasData)
	assert.True(t, p.TailResult().HasData)
}

func TestPanels_TailUnauthorizedForcesLogout(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/auth/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"has_admins": true}`)
	})
	r.Get("/api/logs/tail", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": "unauthorized"}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	api, err := client.NewHTTPClient(srv.URL)
	require.NoError(t, err)

	store := NewCredentialStore(setupDB(t))
	require.NoError(t, store.Save(context.Background(), models.Credential{Token: "expired", DisplayName: "root"}))
	auth := NewAuthController(api, store, nil)
	api.SetSession(auth)
	waitDone(t, auth.Start(context.Background()))
	require.Equal(t, models.PhaseAuthenticated, auth.Phase())

	p := newPanels(api, utcFilter(), &memSaver{})
	err = p.Tail(context.Background(), 10)
	require.ErrorIs(t, err, client.ErrUnauthorized)

	assert.Equal(t, models.PhaseLogin, auth.Phase())
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	res := p.TailResult()
	assert.Empty(t, res.Error)
	assert.Empty(t, res.Status)
	assert.False(t, res.HasData)
}

func TestDirSaver_WritesWithoutOverwriting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	s := DirSaver{Dir: dir}

	f1, err := s.Save(context.Background(), "logs.jsonl", strings.NewReader("one"))
	require.NoError(t, err)
	f2, err := s.Save(context.Background(), "logs.jsonl", strings.NewReader("two"))
	require.NoError(t, err)

	assert.Equal(t, "logs.jsonl", f1.Name)
	assert.Equal(t, "logs (1).jsonl", f2.Name)
	assert.Equal(t, int64(3), f2.Bytes)

	b, err := os.ReadFile(f1.Path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(b))
}

func TestDirSaver_CancelledContextRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DirSaver{Dir: dir}.Save(ctx, "x.csv", strings.NewReader("data"))
	require.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/datallboy/gofetch/internal/app"
	"github.com/datallboy/gofetch/internal/domain"
	"github.com/datallboy/gofetch/internal/infra/config"
	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/datallboy/gofetch/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secretURL = "https://cdn.example.com/path/My%20Video.mp4?token=ABC123"

type fakeTransferer struct {
	err      error
	requests []domain.TransferRequest
	deadline bool
	write    bool
}

func (f *fakeTransferer) Name() string { return "fake" }

func (f *fakeTransferer) Transfer(ctx context.Context, req domain.TransferRequest) error {
	f.requests = append(f.requests, req)
	_, f.deadline = ctx.Deadline()
	if f.write && f.err == nil {
		return os.WriteFile(req.Dest, []byte("payload"), 0644)
	}
	return f.err
}

type fakeConfirmer struct {
	answer bool
	err    error
	asked  []string
}

func (f *fakeConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	f.asked = append(f.asked, prompt)
	return f.answer, f.err
}

type fakeHistory struct {
	records []*domain.TransferRecord
}

func (f *fakeHistory) RecordTransfer(ctx context.Context, rec *domain.TransferRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeHistory) RecentTransfers(ctx context.Context, limit int) ([]*domain.TransferRecord, error) {
	return f.records, nil
}

func (f *fakeHistory) CountByOutcome(ctx context.Context) (map[domain.Outcome]int, error) {
	return nil, nil
}

type fixture struct {
	dir     string
	logs    *bytes.Buffer
	agent   *fakeTransferer
	history *fakeHistory
	appCtx  *app.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	logs := &bytes.Buffer{}

	cfg := &config.Config{
		Download: config.DownloadConfig{
			Dir:        filepath.Join(root, "downloads"),
			OnExisting: config.OnExistingRename,
		},
		Queue: config.QueueConfig{File: filepath.Join(root, ".gofetch_queue")},
	}

	fx := &fixture{
		dir:     cfg.Download.Dir,
		logs:    logs,
		agent:   &fakeTransferer{write: true},
		history: &fakeHistory{},
	}

	fx.appCtx = app.NewContext(cfg, logger.NewWriter(logs, logger.LevelDebug))
	fx.appCtx.Transferer = fx.agent
	fx.appCtx.Store = fx.history
	return fx
}

func (fx *fixture) fetcher() *Fetcher {
	return NewFetcher(fx.appCtx)
}

func (fx *fixture) assertNoLeak(t *testing.T) {
	t.Helper()
	assert.NotContains(t, fx.logs.String(), "ABC123")
	assert.NotContains(t, fx.logs.String(), "token=")
	for _, r := range fx.history.records {
		assert.NotContains(t, r.Error, "ABC123")
		assert.NotContains(t, r.DestPath, "ABC123")
	}
}

var foreground = domain.FetchOptions{Mode: domain.Foreground, Queue: domain.QueueOff}

func TestFetch_Foreground(t *testing.T) {
	fx := newFixture(t)

	outcome, err := fx.fetcher().Fetch(context.Background(), secretURL, foreground)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, outcome)

	require.Len(t, fx.agent.requests, 1)
	req := fx.agent.requests[0]
	assert.Equal(t, secretURL, req.URL)
	assert.Equal(t, filepath.Join(fx.dir, "My_Video.mp4"), req.Dest)
	assert.Equal(t, domain.Foreground, req.Mode)

	require.Len(t, fx.history.records, 1)
	assert.Equal(t, domain.OutcomeCompleted, fx.history.records[0].Outcome)
	assert.Equal(t, "cdn.example.com", fx.history.records[0].Host)
	assert.Contains(t, fx.logs.String(), "Completed: ")
	fx.assertNoLeak(t)
}

func TestFetch_SecondDownloadGetsSuffix(t *testing.T) {
	fx := newFixture(t)
	f := fx.fetcher()

	_, err := f.Fetch(context.Background(), secretURL, foreground)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), secretURL, foreground)
	require.NoError(t, err)

	require.Len(t, fx.agent.requests, 2)
	assert.Equal(t, filepath.Join(fx.dir, "My_Video_1.mp4"), fx.agent.requests[1].Dest)
}

func TestFetch_BackgroundReportsCompletedOnLaunch(t *testing.T) {
	fx := newFixture(t)
	fx.agent.write = false

	outcome, err := fx.fetcher().Fetch(context.Background(), secretURL, domain.FetchOptions{Mode: domain.Background})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, outcome)
	assert.Equal(t, domain.Background, fx.agent.requests[0].Mode)
	assert.Contains(t, fx.logs.String(), "Started in background")
}

func TestFetch_InvalidURLHasNoSideEffects(t *testing.T) {
	for _, raw := range []string{"ftp://x", "not a url"} {
		t.Run(raw, func(t *testing.T) {
			fx := newFixture(t)

			for _, opts := range []domain.FetchOptions{foreground, {Mode: domain.Foreground, Queue: domain.QueueOn}} {
				outcome, err := fx.fetcher().Fetch(context.Background(), raw, opts)
				assert.Equal(t, domain.OutcomeFailed, outcome)
				assert.ErrorIs(t, err, domain.ErrInvalidURL)
			}

			assert.Empty(t, fx.agent.requests)
			assert.Empty(t, fx.history.records)
			assert.NotContains(t, fx.logs.String(), raw)

			_, err := os.Stat(fx.dir)
			assert.True(t, os.IsNotExist(err), "download dir must not be created")
			_, err = os.Stat(fx.appCtx.Config.Queue.File)
			assert.True(t, os.IsNotExist(err), "queue file must not be created")
		})
	}
}

func TestFetch_QueueMode(t *testing.T) {
	fx := newFixture(t)

	outcome, err := fx.fetcher().Fetch(context.Background(), secretURL, domain.FetchOptions{Queue: domain.QueueOn})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeQueued, outcome)
	assert.Empty(t, fx.agent.requests)

	entries, err := fx.appCtx.Queue.Entries()
	require.NoError(t, err)
	assert.Equal(t, []string{secretURL}, entries)

	require.Len(t, fx.history.records, 1)
	assert.Equal(t, domain.OutcomeQueued, fx.history.records[0].Outcome)
	fx.assertNoLeak(t)
}

func TestFetch_TransferFailure(t *testing.T) {
	fx := newFixture(t)
	fx.agent.err = errors.New("exit status 22")

	outcome, err := fx.fetcher().Fetch(context.Background(), secretURL, foreground)
	assert.Equal(t, domain.OutcomeFailed, outcome)
	assert.ErrorIs(t, err, domain.ErrTransfer)
	assert.Contains(t, fx.logs.String(), "Failed: My_Video.mp4")
	fx.assertNoLeak(t)
}

func TestFetch_LaunchFailureKeepsSentinel(t *testing.T) {
	fx := newFixture(t)
	fx.agent.err = domain.ErrLaunch

	outcome, err := fx.fetcher().Fetch(context.Background(), secretURL, domain.FetchOptions{Mode: domain.Background})
	assert.Equal(t, domain.OutcomeFailed, outcome)
	assert.ErrorIs(t, err, domain.ErrLaunch)
	assert.False(t, errors.Is(err, domain.ErrTransfer))
}

func TestFetch_NoTransferer(t *testing.T) {
	fx := newFixture(t)
	fx.appCtx.Transferer = nil

	_, err := fx.fetcher().Fetch(context.Background(), secretURL, foreground)
	assert.ErrorIs(t, err, domain.ErrLaunch)
}

func TestFetch_ForegroundTimeout(t *testing.T) {
	fx := newFixture(t)
	fx.appCtx.Config.Download.Timeout = time.Minute

	_, err := fx.fetcher().Fetch(context.Background(), secretURL, foreground)
	require.NoError(t, err)
	assert.True(t, fx.agent.deadline)

	fx.agent.deadline = false
	_, err = fx.fetcher().Fetch(context.Background(), secretURL, domain.FetchOptions{Mode: domain.Background})
	require.NoError(t, err)
	assert.False(t, fx.agent.deadline, "background launches are not bounded by the timeout")
}

func TestFetch_PromptModeSkipsWithoutConfirmer(t *testing.T) {
	fx := newFixture(t)
	fx.appCtx.Config.Download.OnExisting = config.OnExistingPrompt
	require.NoError(t, os.MkdirAll(fx.dir, 0755))
	existing := filepath.Join(fx.dir, "My_Video.mp4")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))

	outcome, err := fx.fetcher().Fetch(context.Background(), secretURL, foreground)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, outcome)
	assert.Empty(t, fx.agent.requests)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	assert.Contains(t, fx.logs.String(), "Skipped: "+existing)
}

func TestFetch_PromptModeOverwrite(t *testing.T) {
	fx := newFixture(t)
	fx.appCtx.Config.Download.OnExisting = config.OnExistingPrompt
	confirmer := &fakeConfirmer{answer: true}
	fx.appCtx.Confirmer = confirmer

	require.NoError(t, os.MkdirAll(fx.dir, 0755))
	existing := filepath.Join(fx.dir, "My_Video.mp4")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))

	outcome, err := fx.fetcher().Fetch(context.Background(), secretURL, foreground)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, outcome)
	require.Len(t, confirmer.asked, 1)
	assert.Equal(t, existing, fx.agent.requests[0].Dest)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestFetchAll_ContinuesAfterFailures(t *testing.T) {
	fx := newFixture(t)

	urls := []string{
		"https://a.example.com/one.mp4",
		"ftp://bad",
		"https://a.example.com/two.mp4",
	}

	sum := fx.fetcher().FetchAll(context.Background(), urls, foreground)
	assert.Equal(t, Summary{Completed: 2, Failed: 1}, sum)
	assert.Equal(t, 3, sum.Total())

	require.Len(t, fx.agent.requests, 2)
	assert.Equal(t, filepath.Join(fx.dir, "one.mp4"), fx.agent.requests[0].Dest)
	assert.Equal(t, filepath.Join(fx.dir, "two.mp4"), fx.agent.requests[1].Dest)
}

func TestFetchAll_StopsOnCancel(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum := fx.fetcher().FetchAll(ctx, []string{"https://a/1", "https://a/2"}, foreground)
	assert.Equal(t, 0, sum.Total())
	assert.Empty(t, fx.agent.requests)
}

func TestProcessQueueRoundTrip(t *testing.T) {
	fx := newFixture(t)
	f := fx.fetcher()

	_, err := f.Fetch(context.Background(), secretURL, domain.FetchOptions{Queue: domain.QueueOn})
	require.NoError(t, err)

	res, err := fx.appCtx.Queue.Process(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []string{secretURL}, res.Succeeded)

	_, err = os.Stat(fx.appCtx.Config.Queue.File)
	assert.True(t, os.IsNotExist(err))

	// processing drained queue never re-enqueues
	require.Len(t, fx.agent.requests, 1)
	assert.Equal(t, domain.Foreground, fx.agent.requests[0].Mode)

	_, err = fx.appCtx.Queue.Process(context.Background(), f)
	assert.ErrorIs(t, err, domain.ErrMissingQueueFile)
}

var _ queue.Fetcher = (*Fetcher)(nil)

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/datallboy/gofetch/internal/app"
	"github.com/datallboy/gofetch/internal/domain"
	"github.com/datallboy/gofetch/internal/infra/config"
	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/datallboy/gofetch/internal/naming"
)

// Enqueuer is the queue operation the fetcher needs in queue mode.
type Enqueuer interface {
	Enqueue(rawURL string) error
}

// Fetcher decides per URL whether to enqueue, skip or transfer, and reports
// the outcome. Log lines name the derived filename or path, never the URL.
type Fetcher struct {
	cfg        config.DownloadConfig
	log        *logger.Logger
	queue      Enqueuer
	transferer app.Transferer
	policy     *ExistingFilePolicy
	history    app.HistoryStore
}

func NewFetcher(appCtx *app.Context) *Fetcher {
	f := &Fetcher{
		cfg:        appCtx.Config.Download,
		log:        appCtx.Logger,
		transferer: appCtx.Transferer,
		policy:     NewExistingFilePolicy(appCtx.Confirmer, appCtx.Logger),
		history:    appCtx.Store,
	}
	// Avoid storing a typed nil in the interface
	if appCtx.Queue != nil {
		f.queue = appCtx.Queue
	}
	return f
}

// Fetch handles a single URL. The returned error is nil for Completed, Skipped
// and Queued and wraps a domain sentinel for Failed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts domain.FetchOptions) (domain.Outcome, error) {
	rawURL = strings.TrimSpace(rawURL)

	if err := domain.ValidateURL(rawURL); err != nil {
		f.log.Error("Rejected input: not an http(s) URL")
		return domain.OutcomeFailed, err
	}

	req := domain.DownloadRequest{
		SourceURL:       rawURL,
		DerivedFilename: naming.Sanitize(rawURL),
	}

	if opts.Queue == domain.QueueOn {
		return f.enqueue(ctx, req, opts)
	}

	dest, err := f.destination(req)
	if err != nil {
		f.log.Error("Failed: %s: %v", req.DerivedFilename, err)
		f.record(ctx, req, "", opts, domain.OutcomeFailed, err)
		return domain.OutcomeFailed, err
	}

	decision, err := f.policy.Decide(ctx, dest)
	if err != nil {
		f.log.Error("Failed: %s: %v", req.DerivedFilename, err)
		f.record(ctx, req, dest, opts, domain.OutcomeFailed, err)
		return domain.OutcomeFailed, err
	}
	if decision == Skip {
		f.log.Info("Skipped: %s already exists", dest)
		f.record(ctx, req, dest, opts, domain.OutcomeSkipped, nil)
		return domain.OutcomeSkipped, nil
	}

	if err := f.transfer(ctx, req, dest, opts.Mode); err != nil {
		f.log.Error("Failed: %s: %v", filepath.Base(dest), err)
		f.record(ctx, req, dest, opts, domain.OutcomeFailed, err)
		return domain.OutcomeFailed, err
	}

	// Background success only means the agent launched
	if opts.Mode == domain.Background {
		f.log.Info("Started in background: %s", dest)
	} else {
		f.log.Info("Completed: %s", dest)
	}
	f.record(ctx, req, dest, opts, domain.OutcomeCompleted, nil)

	return domain.OutcomeCompleted, nil
}

// Summary counts outcomes for a batch.
type Summary struct {
	Completed int
	Skipped   int
	Failed    int
	Queued    int
}

func (s Summary) Total() int {
	return s.Completed + s.Skipped + s.Failed + s.Queued
}

// FetchAll processes urls one at a time in order. A failure never stops the
// batch; only cancellation of ctx does.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, opts domain.FetchOptions) Summary {
	var sum Summary

	for _, u := range urls {
		if ctx.Err() != nil {
			f.log.Warn("Interrupted, %d URL(s) not attempted", len(urls)-sum.Total())
			break
		}

		outcome, _ := f.Fetch(ctx, u, opts)
		switch outcome {
		case domain.OutcomeCompleted:
			sum.Completed++
		case domain.OutcomeSkipped:
			sum.Skipped++
		case domain.OutcomeQueued:
			sum.Queued++
		default:
			sum.Failed++
		}
	}

	return sum
}

func (f *Fetcher) enqueue(ctx context.Context, req domain.DownloadRequest, opts domain.FetchOptions) (domain.Outcome, error) {
	if f.queue == nil {
		err := errors.New("queue mode enabled but no queue is configured")
		f.log.Error("Failed: %s: %v", req.DerivedFilename, err)
		return domain.OutcomeFailed, err
	}

	if err := f.queue.Enqueue(req.SourceURL); err != nil {
		f.log.Error("Failed to queue %s: %v", req.DerivedFilename, err)
		f.record(ctx, req, "", opts, domain.OutcomeFailed, err)
		return domain.OutcomeFailed, err
	}

	f.log.Info("Queued: %s", req.DerivedFilename)
	f.record(ctx, req, "", opts, domain.OutcomeQueued, nil)
	return domain.OutcomeQueued, nil
}

// destination resolves where req is written. In rename mode the name gets a
// numeric suffix when taken; in prompt mode the plain path is left to the policy.
func (f *Fetcher) destination(req domain.DownloadRequest) (string, error) {
	if err := os.MkdirAll(f.cfg.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	if f.cfg.OnExisting == config.OnExistingPrompt {
		return domain.DestinationPath{Directory: f.cfg.Dir, Filename: req.DerivedFilename}.Path(), nil
	}

	return naming.Resolve(f.cfg.Dir, req.DerivedFilename)
}

func (f *Fetcher) transfer(ctx context.Context, req domain.DownloadRequest, dest string, mode domain.TransferMode) error {
	if f.transferer == nil {
		return fmt.Errorf("%w: no transfer agent configured", domain.ErrLaunch)
	}

	if mode == domain.Foreground && f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	f.log.Debug("Transferring %s via %s (%s)", filepath.Base(dest), f.transferer.Name(), mode)

	err := f.transferer.Transfer(ctx, domain.TransferRequest{
		URL:  req.SourceURL,
		Dest: dest,
		Mode: mode,
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, domain.ErrLaunch) || errors.Is(err, domain.ErrTransfer) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrTransfer, err)
}

func (f *Fetcher) record(ctx context.Context, req domain.DownloadRequest, dest string, opts domain.FetchOptions, outcome domain.Outcome, err error) {
	if f.history == nil {
		return
	}

	rec := &domain.TransferRecord{
		Filename: req.DerivedFilename,
		DestPath: dest,
		Host:     domain.Host(req.SourceURL),
		Mode:     opts.Mode.String(),
		Outcome:  outcome,
	}
	if err != nil {
		rec.Error = err.Error()
	}

	// History must not fail a download; the context may already be cancelled
	if recErr := f.history.RecordTransfer(context.WithoutCancel(ctx), rec); recErr != nil {
		f.log.Warn("Could not record history for %s: %v", req.DerivedFilename, recErr)
	}
}

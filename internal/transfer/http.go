package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/datallboy/gofetch/internal/domain"
	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

const (
	userAgent = "gofetch/1.0"

	// URLEnv carries the URL to a detached child so it stays out of argv
	URLEnv = "GOFETCH_TRANSFER_URL"

	// TransferCommand is the hidden subcommand a detached child runs
	TransferCommand = "transfer"
)

// HTTPClient is the native transfer agent.
type HTTPClient struct {
	client     *http.Client
	rateLimit  int64
	limiter    *rate.Limiter
	log        *logger.Logger
	logDir     string
	progress   io.Writer // nil disables the progress bar
	executable string    // re-executed for background transfers
}

// NewHTTPClient builds the native agent. rateLimit is in bytes per second, 0 for unlimited.
func NewHTTPClient(rateLimit int64, logDir string, log *logger.Logger) *HTTPClient {
	h := &HTTPClient{
		client:    &http.Client{},
		rateLimit: rateLimit,
		log:       log,
		logDir:    logDir,
		progress:  os.Stderr,
	}

	if rateLimit > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(rateLimit), burstSize(rateLimit))
	}

	if exe, err := os.Executable(); err == nil {
		h.executable = exe
	}

	return h
}

func (h *HTTPClient) Name() string {
	return "http"
}

func (h *HTTPClient) Transfer(ctx context.Context, req domain.TransferRequest) error {
	if req.Mode == domain.Background {
		return h.launch(req)
	}
	return h.Download(ctx, req.URL, req.Dest, h.progress)
}

// launch re-executes the current binary's hidden transfer command, detached.
func (h *HTTPClient) launch(req domain.TransferRequest) error {
	if h.executable == "" {
		return fmt.Errorf("%w: cannot locate own executable", domain.ErrLaunch)
	}

	cmd := exec.Command(h.executable, TransferCommand,
		"--output", req.Dest,
		"--rate-limit", strconv.FormatInt(h.rateLimit, 10))
	cmd.Env = append(os.Environ(), URLEnv+"="+req.URL)

	logPath, err := startDetached(cmd, h.logDir)
	if err != nil {
		return err
	}

	h.log.Info("Background output: %s", logPath)
	return nil
}

// Download fetches rawURL into dest, resuming from dest's current size when the
// server honours Range. A progress bar is drawn on progress when it is not nil.
func (h *HTTPClient) Download(ctx context.Context, rawURL, dest string, progress io.Writer) error {
	var offset int64
	if info, err := os.Stat(dest); err == nil && info.Mode().IsRegular() {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: could not build request", domain.ErrTransfer)
	}
	req.Header.Set("User-Agent", userAgent)
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransfer, stripURL(err))
	}
	defer resp.Body.Close()

	// Nothing is created on disk until the server says yes
	flags := os.O_CREATE | os.O_WRONLY
	switch {
	case resp.StatusCode == http.StatusPartialContent && offset > 0:
		flags |= os.O_APPEND
	case resp.StatusCode == http.StatusOK:
		// Server ignored Range, start over
		offset = 0
		flags |= os.O_TRUNC
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && offset > 0:
		h.log.Debug("Already complete: %s", filepath.Base(dest))
		return nil
	default:
		return fmt.Errorf("%w: server returned %s", domain.ErrTransfer, resp.Status)
	}

	f, err := os.OpenFile(dest, flags, 0644)
	if err != nil {
		return fmt.Errorf("%w: could not open %s: %v", domain.ErrTransfer, filepath.Base(dest), err)
	}
	defer f.Close()

	total := resp.ContentLength
	if total >= 0 {
		total += offset
	}

	var body io.Reader = resp.Body
	if h.limiter != nil {
		body = newRateLimitedReader(ctx, body, h.limiter)
	}

	var w io.Writer = f
	if progress != nil {
		bar := newProgressBar(total, filepath.Base(dest), progress)
		if offset > 0 {
			_ = bar.Set64(offset)
		}
		defer bar.Close()
		w = io.MultiWriter(f, bar)
	}

	start := time.Now()
	n, err := io.Copy(w, body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransfer, stripURL(err))
	}

	if total >= 0 && offset+n < total {
		return fmt.Errorf("%w: connection closed after %s of %s", domain.ErrTransfer,
			humanize.Bytes(uint64(offset+n)), humanize.Bytes(uint64(total)))
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransfer, err)
	}

	h.log.Debug("Wrote %s to %s in %s", humanize.Bytes(uint64(n)), filepath.Base(dest), time.Since(start).Truncate(time.Millisecond))
	return nil
}

// stripURL drops the URL that net/http attaches to its errors.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

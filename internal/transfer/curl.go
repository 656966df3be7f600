package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/datallboy/gofetch/internal/domain"
	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/datallboy/gofetch/internal/platform"
)

// pipeCapacity is the most we write into a pipe before the reader exists
const pipeCapacity = 60 * 1024

// CLICurl delegates transfers to the system curl binary.
// The URL is passed through curl's --config on stdin so it never shows up in
// the process list.
type CLICurl struct {
	BinaryPath string
	LogDir     string
	RateLimit  int64 // bytes per second, 0 for unlimited
	log        *logger.Logger
}

func NewCLICurl(logDir string, rateLimit int64, log *logger.Logger) (*CLICurl, error) {
	path, err := platform.LookPath(platform.CurlBinary)
	if err != nil {
		return nil, fmt.Errorf("curl binary not found in PATH: %w", err)
	}
	return &CLICurl{BinaryPath: path, LogDir: logDir, RateLimit: rateLimit, log: log}, nil
}

func (c *CLICurl) Name() string {
	return "curl"
}

func (c *CLICurl) Transfer(ctx context.Context, req domain.TransferRequest) error {
	// --fail: non-2xx is an error
	// --location: follow redirects
	// --continue-at -: resume from the size of an existing output file
	// --config -: read the url from stdin
	args := []string{"--fail", "--location", "--continue-at", "-", "--output", req.Dest, "--config", "-"}
	if c.RateLimit > 0 {
		args = append(args, "--limit-rate", strconv.FormatInt(c.RateLimit, 10))
	}

	if req.Mode == domain.Background {
		return c.launch(req, append(args, "--silent", "--show-error"))
	}

	cmd := exec.CommandContext(ctx, c.BinaryPath, append(args, "--progress-bar")...)
	cmd.Stdin = strings.NewReader(curlConfig(req.URL))
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", domain.ErrTransfer, ctx.Err())
		}
		return fmt.Errorf("%w: curl exited with code %d", domain.ErrTransfer, exitErr.ExitCode())
	}
	return fmt.Errorf("%w: %v", domain.ErrLaunch, err)
}

func (c *CLICurl) launch(req domain.TransferRequest, args []string) error {
	conf := curlConfig(req.URL)
	if len(conf) > pipeCapacity {
		return fmt.Errorf("%w: url too long for a background transfer", domain.ErrLaunch)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLaunch, err)
	}
	defer r.Close()

	// Fits in the pipe buffer, so this cannot block before curl starts reading
	_, err = w.WriteString(conf)
	w.Close()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLaunch, err)
	}

	cmd := exec.Command(c.BinaryPath, args...)
	cmd.Stdin = r

	logPath, err := startDetached(cmd, c.LogDir)
	if err != nil {
		return err
	}

	c.log.Info("Background output: %s", logPath)
	return nil
}

// curlConfig renders a curl config file that sets only the url.
func curlConfig(rawURL string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(rawURL)
	return "url = \"" + escaped + "\"\n"
}

package transfer

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/datallboy/gofetch/internal/domain"
	"github.com/segmentio/ksuid"
)

// startDetached starts cmd in its own session with output going to a fresh
// log file in logDir, then lets it go. Returns the log file path.
func startDetached(cmd *exec.Cmd, logDir string) (string, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create log directory: %v", domain.ErrLaunch, err)
	}

	logPath := filepath.Join(logDir, ksuid.New().String()+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLaunch, err)
	}
	defer logFile.Close()

	cmd.Stdout = logFile
	cmd.Stderr = logFile
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLaunch, err)
	}

	// Detach it from the parent
	if err := cmd.Process.Release(); err != nil {
		return logPath, fmt.Errorf("%w: %v", domain.ErrLaunch, err)
	}

	return logPath, nil
}

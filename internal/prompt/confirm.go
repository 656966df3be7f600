package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/datallboy/gofetch/internal/app"
	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/datallboy/gofetch/internal/platform"
	"github.com/mattn/go-isatty"
)

// GumConfirmer asks through `gum confirm`. Exit status 0 is yes, 1 is no.
type GumConfirmer struct {
	BinaryPath string
}

func (g *GumConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	cmd := exec.CommandContext(ctx, g.BinaryPath, "confirm", prompt)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("gum confirm: %w", err)
}

// TTYConfirmer prints "<prompt> [y/N] " and reads one line. Anything other
// than y or yes, including EOF, is a no.
type TTYConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTTYConfirmer(in io.Reader, out io.Writer) *TTYConfirmer {
	return &TTYConfirmer{in: bufio.NewReader(in), out: out}
}

func (t *TTYConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(t.out, "%s [y/N] ", prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewConfirmer picks gum when it is installed and stdin is a terminal, then the
// controlling terminal. It returns nil when nobody can be asked.
func NewConfirmer(log *logger.Logger) app.Confirmer {
	if IsInteractive(os.Stdin) {
		if path, err := platform.LookPath(platform.GumBinary); err == nil {
			log.Debug("Using gum for confirmations")
			return &GumConfirmer{BinaryPath: path}
		}
	}

	// stdin may be a pipe of URLs, the terminal can still answer
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		log.Debug("No terminal available, existing files will be skipped")
		return nil
	}
	return NewTTYConfirmer(tty, tty)
}

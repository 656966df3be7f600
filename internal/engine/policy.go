package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/datallboy/gofetch/internal/app"
	"github.com/datallboy/gofetch/internal/infra/logger"
)

type Decision int

const (
	Proceed Decision = iota
	Skip
)

func (d Decision) String() string {
	if d == Skip {
		return "skip"
	}
	return "proceed"
}

// ExistingFilePolicy decides what to do when the destination already exists.
// With no Confirmer the answer is always Skip: nothing is overwritten unattended.
type ExistingFilePolicy struct {
	confirm app.Confirmer
	log     *logger.Logger
}

func NewExistingFilePolicy(c app.Confirmer, log *logger.Logger) *ExistingFilePolicy {
	return &ExistingFilePolicy{confirm: c, log: log}
}

// Decide returns Proceed when path is free. If the operator agrees to overwrite,
// the existing file is removed first so a resuming agent starts from zero.
func (p *ExistingFilePolicy) Decide(ctx context.Context, path string) (Decision, error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Proceed, nil
	}
	if err != nil {
		return Skip, fmt.Errorf("could not check %s: %w", filepath.Base(path), err)
	}

	if info.IsDir() {
		p.log.Warn("Destination is a directory: %s", path)
		return Skip, nil
	}

	if p.confirm == nil {
		return Skip, nil
	}

	prompt := fmt.Sprintf("%s already exists in %s. Overwrite?", filepath.Base(path), filepath.Dir(path))
	yes, err := p.confirm.Confirm(ctx, prompt)
	if err != nil {
		p.log.Warn("Confirmation failed, keeping existing file: %v", err)
		return Skip, nil
	}
	if !yes {
		return Skip, nil
	}

	if err := os.Remove(path); err != nil {
		return Skip, fmt.Errorf("failed to remove existing %s: %w", filepath.Base(path), err)
	}

	return Proceed, nil
}

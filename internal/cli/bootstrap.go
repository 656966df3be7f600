package cli

import (
	"context"
	"fmt"

	"github.com/datallboy/gofetch/internal/app"
	"github.com/datallboy/gofetch/internal/infra/config"
	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/datallboy/gofetch/internal/prompt"
	"github.com/datallboy/gofetch/internal/store"
	"github.com/datallboy/gofetch/internal/transfer"
)

type bootstrapOptions struct {
	configPath string
	withAgent  bool // transfer agent and confirmer, not needed to only queue or list
	needStore  bool // history store failure is fatal instead of a warning
}

// bootstrap loads config and wires the collaborators for one invocation.
// The returned cleanup closes everything that was opened.
func bootstrap(ctx context.Context, opts bootstrapOptions) (*app.Context, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config error: %w", err)
	}

	log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log: %w", err)
	}

	appCtx := app.NewContext(cfg, log)
	cleanup := func() { log.Close() }

	st, err := store.Open(ctx, cfg.Store)
	switch {
	case err != nil && opts.needStore:
		cleanup()
		return nil, nil, err
	case err != nil:
		log.Warn("History disabled: %v", err)
	case st != nil:
		appCtx.Store = st
		cleanup = func() {
			if err := st.Close(); err != nil {
				log.Warn("Failed to close history store: %v", err)
			}
			log.Close()
		}
	}

	if opts.withAgent {
		agent, err := transfer.New(cfg.Download, log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		appCtx.Transferer = agent
		appCtx.Confirmer = prompt.NewConfirmer(log)

		log.Debug("Transfer agent: %s", agent.Name())
	}

	return appCtx, cleanup, nil
}

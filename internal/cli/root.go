package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/datallboy/gofetch/internal/domain"
	"github.com/datallboy/gofetch/internal/engine"
	"github.com/datallboy/gofetch/internal/prompt"
	"github.com/datallboy/gofetch/internal/queue"
	"github.com/spf13/cobra"
)

var errNoURLs = errors.New("no URLs provided")

type rootOptions struct {
	configPath string
	foreground bool
	processor  bool
}

// Execute runs the command tree with Ctrl+C wired to cancellation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCommand().ExecuteContext(ctx)
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gofetch [URL...|-]",
		Short: "Download files by URL, now or through a queue",
		Long: `gofetch downloads each URL into the configured directory under a name
derived from the URL path. Query strings are never part of the name.

Pass "-" to read URLs from stdin, one per line. With queue.enabled set,
URLs are appended to the queue file instead and fetched later by
"gofetch --processor".`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.gofetch/config.yaml)")
	cmd.Flags().BoolVarP(&opts.foreground, "foreground", "f", false, "download synchronously with progress")
	cmd.Flags().BoolVar(&opts.processor, "processor", false, "process the queue file instead of taking new URLs")

	cmd.AddCommand(
		newHistoryCommand(&opts.configPath),
		newServeCommand(&opts.configPath),
		newTransferCommand(),
	)

	return cmd
}

func runRoot(cmd *cobra.Command, args []string, opts *rootOptions) error {
	if opts.processor && len(args) > 0 {
		return errors.New("--processor does not take URLs")
	}

	var urls []string
	if !opts.processor {
		var err error
		if urls, err = collectURLs(cmd, args); err != nil {
			return err
		}
	}

	// Past argument checks, errors from here on are not usage problems
	cmd.SilenceUsage = true
	ctx := cmd.Context()

	appCtx, cleanup, err := bootstrap(ctx, bootstrapOptions{configPath: opts.configPath, withAgent: true})
	if err != nil {
		return err
	}
	defer cleanup()

	log := appCtx.Logger
	fetcher := engine.NewFetcher(appCtx)

	if opts.processor {
		res, err := appCtx.Queue.Process(ctx, fetcher)
		if errors.Is(err, domain.ErrMissingQueueFile) {
			return fmt.Errorf("nothing to process at %s: %w", appCtx.Queue.Path(), err)
		}
		if res != nil {
			if res.Empty {
				log.Info("Queue is empty")
			} else {
				log.Info("Queue pass finished: %d done, %d left in queue", len(res.Succeeded), len(res.Remaining))
			}
		}
		return err
	}

	fetchOpts := domain.FetchOptions{Mode: domain.Background, Queue: domain.QueueOff}
	if opts.foreground {
		fetchOpts.Mode = domain.Foreground
	}
	if appCtx.Config.Queue.Enabled {
		fetchOpts.Queue = domain.QueueOn
	}

	sum := fetcher.FetchAll(ctx, urls, fetchOpts)
	if sum.Total() > 1 {
		log.Info("Done: %d completed, %d skipped, %d failed, %d queued", sum.Completed, sum.Skipped, sum.Failed, sum.Queued)
	}

	return ctx.Err()
}

// collectURLs returns the URLs to handle: the arguments, stdin lines for "-",
// or a single prompted URL when run bare on a terminal.
func collectURLs(cmd *cobra.Command, args []string) ([]string, error) {
	switch {
	case len(args) == 1 && args[0] == "-":
		urls, err := queue.ReadLines(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(urls) == 0 {
			return nil, errNoURLs
		}
		return urls, nil

	case len(args) > 0:
		return args, nil
	}

	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !prompt.IsInteractive(in) {
		return nil, errNoURLs
	}

	u, err := prompt.ReadURL(in, cmd.ErrOrStderr())
	if err != nil {
		return nil, errNoURLs
	}
	return []string{u}, nil
}

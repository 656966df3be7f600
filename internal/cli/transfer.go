package cli

import (
	"errors"
	"os"

	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/datallboy/gofetch/internal/transfer"
	"github.com/spf13/cobra"
)

// newTransferCommand is what a detached native background transfer runs.
// The URL comes from the environment so it stays out of the process list.
func newTransferCommand() *cobra.Command {
	var (
		output    string
		rateLimit int64
	)

	cmd := &cobra.Command{
		Use:    transfer.TransferCommand,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			rawURL := os.Getenv(transfer.URLEnv)
			if rawURL == "" {
				return errors.New(transfer.URLEnv + " is not set")
			}
			os.Unsetenv(transfer.URLEnv)

			// stdout is the background log file
			log := logger.NewWriter(cmd.OutOrStdout(), logger.LevelInfo)
			h := transfer.NewHTTPClient(rateLimit, "", log)

			if err := h.Download(cmd.Context(), rawURL, output, nil); err != nil {
				log.Error("Failed: %s: %v", output, err)
				return err
			}

			log.Info("Completed: %s", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "destination path")
	cmd.Flags().Int64Var(&rateLimit, "rate-limit", 0, "bytes per second, 0 for unlimited")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

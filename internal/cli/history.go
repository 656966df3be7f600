package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/datallboy/gofetch/internal/domain"
	"github.com/datallboy/gofetch/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCommand(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently handled downloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			appCtx, cleanup, err := bootstrap(cmd.Context(), bootstrapOptions{configPath: *configPath, needStore: true})
			if err != nil {
				return err
			}
			defer cleanup()

			if appCtx.Store == nil {
				return errors.New("history is disabled (store.driver is none)")
			}

			records, err := appCtx.Store.RecentTransfers(cmd.Context(), limit)
			if err != nil {
				return err
			}

			return printHistory(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultHistoryLimit, "number of entries to show")
	return cmd
}

func printHistory(out io.Writer, records []*domain.TransferRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No downloads recorded yet.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tOUTCOME\tMODE\tFILE\tHOST\tERROR")
	for _, r := range records {
		file := r.DestPath
		if file == "" {
			file = r.Filename
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.Time(r.CreatedAt), r.Outcome, r.Mode, file, r.Host, r.Error)
	}
	return w.Flush()
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rezmoss/prodlog/internal/ledger"
)

var (
	summaryYear int
	summaryTop  int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show year-to-date production against the annual target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		year := summaryYear
		if year == 0 {
			year = svc.Now().Year()
		}
		out := cmd.OutOrStdout()

		sum, readErr := svc.Summary(cmd.Context(), year, cfg.AnnualTarget)
		if readErr != nil {
			warn(cmd.ErrOrStderr(), "%v; showing an empty ledger", readErr)
		}

		okColor.Fprintf(out, "Production %d\n", sum.Year)
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "YTD production\t%s\n", humanize.Comma(int64(sum.Production)))
		fmt.Fprintf(w, "Annual target\t%s\n", humanize.Comma(int64(sum.Target)))
		fmt.Fprintf(w, "Progress\t%.1f%%\n", sum.Progress)
		fmt.Fprintf(w, "Jobs\t%s\n", humanize.Comma(int64(sum.Jobs)))
		fmt.Fprintf(w, "Trials\t%s\n", humanize.Comma(int64(sum.Trials)))
		fmt.Fprintf(w, "Downtime\t%s\n", ledger.HoursMinutes(sum.Downtime))
		fmt.Fprintf(w, "Days recorded\t%d\n", sum.Entries)
		if err := w.Flush(); err != nil {
			return err
		}

		if len(sum.Issues) == 0 {
			return nil
		}
		issues := sum.Issues
		if summaryTop > 0 && len(issues) > summaryTop {
			issues = issues[:summaryTop]
		}
		fmt.Fprintln(out)
		okColor.Fprintln(out, "Top issues")
		w = tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, ic := range issues {
			fmt.Fprintf(w, "%d\t%s\n", ic.Count, ic.Issue)
		}
		return w.Flush()
	},
}

func init() {
	summaryCmd.Flags().IntVar(&summaryYear, "year", 0, "calendar year (default current)")
	summaryCmd.Flags().IntVar(&summaryTop, "top", 5, "number of issues to list, 0 for all")
	rootCmd.AddCommand(summaryCmd)
}

package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rezmoss/prodlog/internal/ledger"
)

var listYear int

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the ledger entries for a year",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		year := listYear
		if year == 0 {
			year = svc.Now().Year()
		}
		snap := svc.Load(cmd.Context())
		if snap.Err != nil {
			warn(cmd.ErrOrStderr(), "%v; showing an empty ledger", snap.Err)
		}

		rows := ledger.RowsForYear(snap.Rows, year)
		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintf(out, "No entries for %d.\n", year)
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "DATE\tPRODUCTION\tJOBS\tTRIALS\tWEEK\tMONTH\tYTD\tCLEAN\tDOWNTIME\tISSUES")
		fmt.Fprintln(w, "----\t----------\t----\t------\t----\t-----\t---\t-----\t--------\t------")
		for _, r := range rows {
			d, _ := r.Date()
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				d.Format("2006-01-02 Mon"),
				humanize.Comma(int64(r.Int(ledger.ColDailyProduction))),
				r.Int(ledger.ColJobs),
				r.Int(ledger.ColTrials),
				humanize.Comma(int64(r.Int(ledger.ColWeekProduction))),
				humanize.Comma(int64(r.Int(ledger.ColMonthProduction))),
				humanize.Comma(int64(r.Int(ledger.ColYearProduction))),
				r[ledger.ColCleanTotal],
				r[ledger.ColDowntime],
				issueList(r),
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		dimColor.Fprintf(out, "%d entries\n", len(rows))
		return nil
	},
}

func issueList(r ledger.Row) string {
	var tags []string
	for _, tag := range r.Issues() {
		if tag != "" && tag != ledger.NoIssue {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, "; ")
}

func init() {
	listCmd.Flags().IntVar(&listYear, "year", 0, "calendar year (default current)")
	rootCmd.AddCommand(listCmd)
}

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var editOpts struct {
	date string
	sets []string
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change cells of the entry for one date",
	Long: `Sets columns on the row dated on the given day. The date columns cannot be
changed; delete and resubmit instead. Running totals on this and later rows
are snapshots and are not recomputed.`,
	Example: `  prodlog edit --date 2026-02-15 --set DailyProductionTotal=48000 \
    --set "ProductionIssues_2=UV lamp issues"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		changes, err := parseSets(editOpts.sets)
		if err != nil {
			return err
		}

		svc, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		date, err := parseDateFlag(editOpts.date, svc.Now())
		if err != nil {
			return err
		}
		row, err := svc.Edit(cmd.Context(), date, changes)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		okColor.Fprintf(out, "✔ Edited %s\n", date.Format("2006-01-02"))
		cols := make([]string, 0, len(changes))
		for col := range changes {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, col := range cols {
			fmt.Fprintf(w, "%s\t%s\n", col, row[col])
		}
		if err := w.Flush(); err != nil {
			return err
		}
		dimColor.Fprintln(out, "Running totals were not recomputed.")
		return nil
	},
}

// parseSets reads repeated Col=value pairs.
func parseSets(sets []string) (map[string]string, error) {
	if len(sets) == 0 {
		return nil, fmt.Errorf("nothing to change, give at least one --set Col=value")
	}
	changes := make(map[string]string, len(sets))
	for _, kv := range sets {
		col, v, ok := strings.Cut(kv, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("--set %q: want Col=value", kv)
		}
		changes[col] = strings.TrimSpace(v)
	}
	return changes, nil
}

func init() {
	flags := editCmd.Flags()
	flags.StringVar(&editOpts.date, "date", "", "date of the entry to edit")
	flags.StringArrayVar(&editOpts.sets, "set", nil, "Col=value to set; repeatable")
	_ = editCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(editCmd)
}

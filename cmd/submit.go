package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rezmoss/prodlog/internal/config"
	"github.com/rezmoss/prodlog/internal/ledger"
	"github.com/rezmoss/prodlog/internal/session"
	"github.com/rezmoss/prodlog/internal/timer"
)

var submitOpts struct {
	date       string
	jobs       int
	production int
	trials     int
	am         string
	pm         string
	issues     []string
	downtime   string
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Record one production day",
	Long: `Records a day without the interactive session. The year, month and week
totals are computed from the rows already in the ledger that precede the
date. A date that already has an entry is refused.

Issues may be given by name or by their number from "prodlog issues".`,
	Example: `  prodlog submit --date 2026-02-15 --jobs 3 --production 48000 \
    --issue "UV lamp issues" --issue 14 --downtime 1:05:00`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		form, downtime, err := submitForm(svc.Now())
		if err != nil {
			return err
		}

		sess := session.New()
		sess.Timer = timer.Stopped(downtime)

		_, row, err := svc.Submit(cmd.Context(), sess, form)
		if errors.Is(err, session.ErrDuplicateDate) {
			return fmt.Errorf("%w; delete it first with \"prodlog delete --date %s\"", err, form.Date.Format("2006-01-02"))
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		okColor.Fprintf(out, "✔ Recorded %s\n", row[ledger.ColDate])
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, col := range []string{
			ledger.ColDailyProduction, ledger.ColWeekProduction, ledger.ColMonthProduction,
			ledger.ColYearProduction, ledger.ColYtdJobs,
		} {
			fmt.Fprintf(w, "%s\t%s\n", col, humanize.Comma(int64(row.Int(col))))
		}
		fmt.Fprintf(w, "%s\t%s\n", ledger.ColCleanTotal, row[ledger.ColCleanTotal])
		fmt.Fprintf(w, "%s\t%s\n", ledger.ColDowntime, row[ledger.ColDowntime])
		return w.Flush()
	},
}

func submitForm(now time.Time) (session.Form, time.Duration, error) {
	var f session.Form
	d, err := parseDateFlag(submitOpts.date, now)
	if err != nil {
		return f, 0, err
	}
	f.Date = d
	f.Jobs = submitOpts.jobs
	f.Production = submitOpts.production
	f.Trials = submitOpts.trials

	f.AmMinutes = cfg.DefaultAmMinutes
	if submitOpts.am != "" {
		if f.AmMinutes, err = config.ParseMinutes(submitOpts.am); err != nil {
			return f, 0, fmt.Errorf("--am: %w", err)
		}
	}
	f.PmMinutes = cfg.DefaultPmMinutes
	if submitOpts.pm != "" {
		if f.PmMinutes, err = config.ParseMinutes(submitOpts.pm); err != nil {
			return f, 0, fmt.Errorf("--pm: %w", err)
		}
	}

	for _, s := range submitOpts.issues {
		name, err := ledger.ResolveIssue(s)
		if err != nil {
			return f, 0, err
		}
		f.Issues = append(f.Issues, name)
	}

	var downtime time.Duration
	if submitOpts.downtime != "" {
		var ok bool
		if downtime, ok = ledger.ParseDowntime(submitOpts.downtime); !ok {
			return f, 0, fmt.Errorf("--downtime %q: want H:MM:SS", submitOpts.downtime)
		}
	}
	return f, downtime, nil
}

func init() {
	flags := submitCmd.Flags()
	flags.StringVar(&submitOpts.date, "date", "", "production date (default today)")
	flags.IntVar(&submitOpts.jobs, "jobs", 0, "number of jobs")
	flags.IntVar(&submitOpts.production, "production", 0, "units produced")
	flags.IntVar(&submitOpts.trials, "trials", 0, "number of trials")
	flags.StringVar(&submitOpts.am, "am", "", "morning clean, minutes or H:MM (default from config)")
	flags.StringVar(&submitOpts.pm, "pm", "", "afternoon clean, minutes or H:MM (default from config)")
	flags.StringArrayVar(&submitOpts.issues, "issue", nil, "issue category name or number; repeatable, at most 10 are kept")
	flags.StringVar(&submitOpts.downtime, "downtime", "", "issue downtime as H:MM:SS")
	rootCmd.AddCommand(submitCmd)
}

package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezmoss/prodlog/internal/tui"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Time downtime and enter the day interactively",
	Long: `Opens the entry form with the issue downtime stopwatch. Start and stop
the stopwatch with ctrl+t while an issue is being resolved; its total is
saved as the day's downtime when the form is submitted.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationTUI: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		m := tui.NewEntry(cmd.Context(), svc, cfg.DefaultAmMinutes, cfg.DefaultPmMinutes)
		logger.Info("session started", zap.String("session", m.Session().ID))

		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("running session: %w", err)
		}
		if e, ok := final.(tui.Entry); ok {
			s := e.Session()
			logger.Info("session ended",
				zap.String("session", s.ID),
				zap.Int("submitted", s.FormVersion),
				zap.Bool("timer_running", s.Timer.Running()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

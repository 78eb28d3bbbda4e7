package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rezmoss/prodlog/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:         "dashboard",
	Short:       "Show the live production dashboard",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationTUI: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		refresh := time.Duration(cfg.RefreshSeconds) * time.Second
		m := tui.NewDashboard(cmd.Context(), svc, cfg.AnnualTarget, refresh)
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("running dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

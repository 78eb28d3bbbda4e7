package cmd

import (
	"github.com/spf13/cobra"
)

var deleteDate string

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the entry for one date",
	Long: `Removes every row dated on the given day. The running totals stored on
later rows are snapshots and are not recomputed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		date, err := parseDateFlag(deleteDate, svc.Now())
		if err != nil {
			return err
		}
		n, err := svc.Delete(cmd.Context(), date)
		if err != nil {
			return err
		}
		okColor.Fprintf(cmd.OutOrStdout(), "✔ Deleted %d row(s) dated %s\n", n, date.Format("2006-01-02"))
		return nil
	},
}

func init() {
	deleteCmd.Flags().StringVar(&deleteDate, "date", "", "date of the entry to delete")
	_ = deleteCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(deleteCmd)
}

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezmoss/prodlog/internal/ledger"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List the issue categories an entry can be tagged with",
	Long: `Lists the issue categories with their numbers. Either the name or the
number can be given to "prodlog submit --issue" and in the session form.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for i, name := range ledger.IssueCategories {
			fmt.Fprintf(w, "%3d\t%s\n", i, name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(issuesCmd)
}

package main

import (
	"context"

	"github.com/spf13/cobra"
)

// resumeCmd represents the resume command
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume an interrupted session from its checkpoint",
	Long: `Resume the session recorded in the checkpoint file, picking up
where the previous run stopped. Already-collected tweets are not
fetched or written again; new rows are appended to the existing
export file.`,
	Example: `  xscraper resume`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hooks, cleanup := newSessionHooks()
		defer cleanup()

		res, report, err := newOrchestrator(hooks).Resume(context.Background())
		if err != nil {
			return err
		}
		if report != nil {
			printBatchReport(report)
			return nil
		}
		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

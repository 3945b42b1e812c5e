package main

import (
	"context"

	"github.com/spf13/cobra"

	"xscraper/pkg/logger"
)

// linksCmd represents the links command
var linksCmd = &cobra.Command{
	Use:   "links <file>",
	Short: "Collect specific tweets from a file of status links",
	Long: `Collect the tweets named by a file of status links, one per line.
Both twitter.com and x.com links are accepted; blank lines, #-comments
and lines that are not status links are skipped. Deleted or protected
tweets are skipped without stopping the run.`,
	Example: `  xscraper links saved_tweets.txt

  xscraper links bookmarks.txt -f excel -o exports`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.LogSessionStart("links", args[0])

		hooks, cleanup := newSessionHooks()
		defer cleanup()

		res, err := newOrchestrator(hooks).RunLinks(context.Background(), args[0])
		if err != nil {
			return err
		}
		logger.LogSessionEnd("links", string(res.Reason), res.Accepted)
		printResult(res)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linksCmd)
}

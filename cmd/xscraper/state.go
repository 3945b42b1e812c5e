package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"xscraper/pkg/checkpoint"
)

// stateCmd represents the state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the saved session checkpoint",
	Long: `Show what the checkpoint file records about the interrupted
session: what was being collected, how far it got, and where the
export file lives. Use "xscraper resume" to continue it or
"xscraper state clear" to discard it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStateStore()
		state, err := store.Load()
		if err != nil {
			return err
		}
		if state == nil {
			fmt.Println("No saved session.")
			return nil
		}
		fmt.Println(checkpoint.Summary(state))
		if err := store.ValidateIntegrity(state); err != nil {
			fmt.Printf("\nWarning: %v\n", err)
		}
		return nil
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the saved session checkpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newStateStore().Clear(); err != nil {
			return err
		}
		fmt.Println("Checkpoint cleared.")
		return nil
	},
}

func newStateStore() *checkpoint.Store {
	return checkpoint.NewStore(filepath.Join(cfg.Output.Directory, cfg.Output.StateFile))
}

func init() {
	stateCmd.AddCommand(stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}

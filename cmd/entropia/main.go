package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "entropia",
		Short: "Monte Carlo experiment runner",
		Long: `entropia runs entity-based Monte Carlo experiments.

Experiments are defined as a population of entities evolving per discrete
step. The runner can execute a single simulation or a whole sweep of
independent trials, print probe values, and persist trial results.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newListCmd(),
		newRunCmd(),
		newTrialsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "entropia version %s\n", version)
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsyiek/mtg-card-generator/internal/version"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mtg-card-generator",
		Short: "Generate Magic: The Gathering cards from a chunk Markov model",
		Long: `Generate Magic: The Gathering cards from a chunk Markov model.

Card text from the catalog is split into fixed-size token chunks per card
type. New cards walk the chunk graph and take their cost, colours, rarity and
stats from the chunks they used.

Examples:
  mtg-card-generator generate -c Creature -n 5
  mtg-card-generator generate -c Instant -c Sorcery --seed 42 --json
  mtg-card-generator fetch --reset
  mtg-card-generator stats`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file path (default ~/.mtg-card-generator/config.toml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newFetchCmd(opts),
		newStatsCmd(opts),
		newChartCmd(opts),
		newConfigCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mtg-card-generator %s\n", version.GetVersion())
		},
	}
}

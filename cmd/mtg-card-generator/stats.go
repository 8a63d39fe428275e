package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsyiek/mtg-card-generator/internal/model"
)

func newStatsCmd(root *rootOptions) *cobra.Command {
	var (
		cardTypes []string
		chunkSize int
		jsonOut   bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show chunk model statistics per card type",
		Long: `Build the chunk model and show, per card type, the number of chunks,
terminal chunks, opening chunks, successor edges, observed line counts and
chunks that cannot reach a terminal chunk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setupApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.Close()

			def, err := a.cfg.CardCategories()
			if err != nil {
				return err
			}
			categories, err := parseCategories(cardTypes, def)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("chunk-size") {
				chunkSize = a.cfg.Model.ChunkSize
			}

			graphs, _, err := a.buildModel(ctx, categories, chunkSize, false)
			if err != nil {
				return err
			}

			var stats []model.GraphStats
			for _, c := range categories {
				if g, ok := graphs[c]; ok {
					stats = append(stats, g.Stats())
				}
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tCHUNKS\tTERMINAL\tOPENINGS\tEDGES\tLINES\tUNREACHABLE")
			for _, s := range stats {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%s\t%d\n",
					s.Category, s.Chunks, s.Terminal, s.Openings, s.Edges, formatInts(s.LineCounts), s.Unreachable)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if verbose {
				for _, c := range categories {
					g, ok := graphs[c]
					if !ok {
						continue
					}
					for _, key := range g.Unreachable() {
						fmt.Fprintf(out, "%s: unreachable %s\n", c, key)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&cardTypes, "card-type", "c", nil, "Card type to inspect; repeatable (default from config)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Tokens per chunk (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output statistics as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List chunks that cannot reach a terminal chunk")
	return cmd
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return formatList(parts)
}

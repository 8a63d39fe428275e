package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/charts"
	"github.com/jsyiek/mtg-card-generator/internal/generator"
)

func newChartCmd(root *rootOptions) *cobra.Command {
	var (
		cardTypes []string
		number    int
		output    string
		seed      uint64
		open      bool
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Chart model distributions as HTML",
		Long: `Build the chunk model, generate a sample of cards per card type and write
an HTML page comparing line counts and mana values of the corpus, the model and
the sample.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setupApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.Close()

			categories, err := parseCategories(cardTypes, []card.Category{card.CategoryCreature})
			if err != nil {
				return err
			}

			graphs, corpus, err := a.buildModel(ctx, categories, a.cfg.Model.ChunkSize, false)
			if err != nil {
				return err
			}

			var reports []charts.Report
			for _, c := range categories {
				pool, err := generator.NewPool(graphs[c], generator.PoolOptions{
					Seed:         seed,
					MaxWalkSteps: a.cfg.Model.MaxWalkSteps,
					Logger:       a.logger,
				})
				if err != nil {
					return fmt.Errorf("%s: %w", c, err)
				}
				sample, err := pool.Generate(ctx, number)
				if err != nil {
					return fmt.Errorf("generate %s: %w", c, err)
				}
				reports = append(reports, charts.Report{Graph: graphs[c], Corpus: corpus, Generated: sample})
			}

			err = charts.WriteFile(output, func(w io.Writer) error {
				return charts.RenderReports(w, reports, charts.DefaultChartConfig())
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)

			if open {
				return charts.OpenInBrowser(output)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&cardTypes, "card-type", "c", nil, "Card type to chart; repeatable (default Creature)")
	cmd.Flags().IntVarP(&number, "number", "n", 200, "Sample size per card type")
	cmd.Flags().StringVarP(&output, "output", "o", "model.html", "Output HTML file")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed for the sample")
	cmd.Flags().BoolVar(&open, "open", false, "Open the chart in a browser")
	return cmd
}

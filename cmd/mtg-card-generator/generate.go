package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/export"
	"github.com/jsyiek/mtg-card-generator/internal/generator"
	"github.com/jsyiek/mtg-card-generator/internal/metrics"
	"github.com/jsyiek/mtg-card-generator/internal/observability"
	"github.com/jsyiek/mtg-card-generator/internal/storage"
)

const separator = "----------------------------------------"

type generateOptions struct {
	cardTypes []string
	number    int
	chunkSize int
	reset     bool
	seed      uint64
	workers   int
	json      bool
	verbose   bool
	save      bool
	output    string
	format    string
	overwrite bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate cards",
		Long: `Generate cards of one or more card types.

Each card type has its own chunk model. --number cards are generated per type.
The same --seed, --workers and chunk size reproduce the same cards from the
same corpus.

Examples:
  mtg-card-generator generate
  mtg-card-generator generate -c Planeswalker -n 3 --chunk-size 4
  mtg-card-generator generate -c Land --seed 7 --json --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.cardTypes, "card-type", "c", nil,
		"Card type to generate (Creature, Enchantment, Instant, Sorcery, Planeswalker, Artifact, Land); repeatable (default Creature)")
	cmd.Flags().IntVarP(&opts.number, "number", "n", 1, "Number of cards per card type")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", 0, "Tokens per chunk (default from config)")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "Re-fetch the card catalog before generating")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed (default from config, 0 = time-based)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent generators (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output cards as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log walk length and timing statistics")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store generated cards in the history")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write cards to a file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output file format: csv or json (default from the file extension)")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Replace an existing output file")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	if opts.number < 1 {
		return fmt.Errorf("number must be positive: %d", opts.number)
	}
	var format export.Format
	if opts.output != "" {
		f, err := export.ParseFormat(opts.format, opts.output)
		if err != nil {
			return err
		}
		format = f
	}

	ctx := cmd.Context()
	a, err := setupApp(ctx, root)
	if err != nil {
		return err
	}
	defer a.Close()

	categories, err := parseCategories(opts.cardTypes, []card.Category{card.CategoryCreature})
	if err != nil {
		return err
	}

	chunkSize := a.cfg.Model.ChunkSize
	if cmd.Flags().Changed("chunk-size") {
		chunkSize = opts.chunkSize
	}
	seed := a.cfg.Model.Seed
	if cmd.Flags().Changed("seed") {
		seed = opts.seed
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	graphs, _, err := a.buildModel(ctx, categories, chunkSize, opts.reset)
	if err != nil {
		return err
	}

	var collector *metrics.Generation
	if opts.verbose {
		collector = metrics.NewGeneration()
	}

	var all []*card.Generated
	for _, category := range categories {
		pool, err := generator.NewPool(graphs[category], generator.PoolOptions{
			Workers:      opts.workers,
			Seed:         seed,
			MaxWalkSteps: a.cfg.Model.MaxWalkSteps,
			Metrics:      collector,
			Logger:       a.logger,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", category, err)
		}

		genCtx, span := observability.StartGenerateSpan(ctx, string(category), opts.number, opts.workers)
		cards, err := pool.Generate(genCtx, opts.number)
		observability.RecordError(span, err)
		span.End()
		if err != nil {
			return fmt.Errorf("generate %s: %w", category, err)
		}
		all = append(all, cards...)
	}

	a.logger.Debug("Generation finished", "seed", seed, "chunkSize", chunkSize, "cards", len(all))
	if collector != nil {
		s := collector.Summary()
		a.logger.Info("Walk statistics",
			"cards", s.Steps.Count,
			"meanChunks", s.Steps.Mean,
			"maxChunks", s.Steps.Max,
			"meanLines", s.Lines.Mean,
			"p50Ms", s.DurationMS.P50,
			"p95Ms", s.DurationMS.P95)
	}

	if opts.save {
		if err := storage.NewGeneratedRepository(a.db).Save(ctx, chunkSize, seed, all); err != nil {
			return err
		}
	}

	switch {
	case opts.output != "":
		err := export.NewExporter(export.Options{
			Format:     format,
			FilePath:   opts.output,
			PrettyJSON: true,
			Overwrite:  opts.overwrite,
		}).Export(all)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cards to %s\n", len(all), opts.output)
	case opts.json:
		return export.WriteCards(cmd.OutOrStdout(), export.FormatJSON, all, true)
	default:
		printCards(cmd.OutOrStdout(), all)
	}
	return nil
}

func printCards(w io.Writer, cards []*card.Generated) {
	for _, c := range cards {
		fmt.Fprint(w, c.String())
		fmt.Fprintln(w, separator)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// formatList joins values for table output, showing "-" for none.
func formatList(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, " ")
}

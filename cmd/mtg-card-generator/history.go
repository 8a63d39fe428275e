package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jsyiek/mtg-card-generator/internal/storage"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List cards saved with generate --save",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setupApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.Close()

			cards, err := storage.NewGeneratedRepository(a.db).Recent(ctx, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), cards)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tTYPE\tCOST\tCOLORS\tRARITY\tSEED\tCHUNK\tTEXT")
			for _, c := range cards {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					c.CreatedAt.Local().Format("2006-01-02 15:04"), c.TypeLine(), c.ManaCost,
					formatList(c.Colors), c.Rarity, c.Seed, c.ChunkSize, firstLine(c.Text))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of cards to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output cards as JSON")
	return cmd
}

func firstLine(text string) string {
	for i, r := range text {
		if r == '\n' {
			return text[:i] + " ..."
		}
	}
	return text
}

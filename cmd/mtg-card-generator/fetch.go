package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsyiek/mtg-card-generator/internal/card"
	"github.com/jsyiek/mtg-card-generator/internal/storage"
)

func newFetchCmd(root *rootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Refresh the local card cache from the catalog",
		Long: `Fetch every card matching the configured catalog query into the local
card cache. Without --reset, cards are updated in place.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setupApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.Close()

			loader, err := a.loader()
			if err != nil {
				return err
			}
			run, err := loader.Fetch(ctx, reset)
			if err != nil {
				return err
			}

			counts, err := storage.NewCardRepository(a.db).CountCards(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetched %d cards for %q in %s\n\n",
				run.CardCount, run.Query, run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tCARDS")
			for _, c := range card.Categories {
				fmt.Fprintf(w, "%s\t%d\n", c, counts[c])
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Clear the cache before fetching")
	return cmd
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var (
		topK   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Find the tickets most similar to a query",
		Long:  `Retrieve the most similar tickets without generating an answer.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.close()

			proc, err := a.openProcessor(ctx)
			if err != nil {
				return err
			}

			if topK <= 0 {
				topK = a.cfg.Retrieval.TopK
			}

			hits, err := proc.Search(ctx, strings.Join(args, " "), topK)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), hits)
			}
			printHits(cmd.OutOrStdout(), hits)
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of tickets to return (default: retrieval.top_k)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print hits as JSON")

	return cmd
}

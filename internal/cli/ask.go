package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var (
		topK        int
		showContext bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question from the most similar past tickets",
		Long: `Retrieve similar tickets, check that they are enough evidence, and
generate an answer grounded in them. When the generator is unavailable the
retrieved context is shown instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, appOptions{generator: true})
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

			res, err := proc.Answer(ctx, strings.Join(args, " "), topK)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			printAnswer(cmd.OutOrStdout(), res, showContext)
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of tickets to retrieve (default: retrieval.top_k)")
	cmd.Flags().BoolVar(&showContext, "show-context", false, "print the ticket context given to the generator")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")

	return cmd
}

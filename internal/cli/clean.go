package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticketrag/internal/tickets"
)

func newCleanCmd() *cobra.Command {
	var (
		input   string
		output  string
		rewrite bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalise ticket text and drop empty rows",
		Long: `Combine summary, description and last comment, strip tracker markup,
links and boilerplate, and write the cleaned CSV that the index is built from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if input == "" {
				input = cfg.Data.TicketsCSV
			}
			if output == "" {
				output = cfg.Data.CleanedCSV
			}

			records, err := tickets.ReadCSV(input)
			if err != nil {
				return err
			}

			cleaned, dropped := tickets.CleanTickets(records)
			if rewrite {
				cleaned = tickets.RewriteTickets(cleaned)
			}

			if err := tickets.WriteCSV(output, cleaned); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleaned %d tickets (%d empty rows dropped) -> %s\n",
				len(cleaned), dropped, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "raw ticket CSV (default: data.tickets_csv)")
	cmd.Flags().StringVar(&output, "output", "", "cleaned CSV to write (default: data.cleaned_csv)")
	cmd.Flags().BoolVar(&rewrite, "rewrite", false, "apply the lighter second normalisation pass")

	return cmd
}

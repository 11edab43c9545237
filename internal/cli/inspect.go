package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticketrag/internal/config"
	"github.com/Kavirubc/ticketrag/internal/tickets"
)

func newInspectCmd() *cobra.Command {
	var (
		rows   int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [csv]",
		Short: "Report the columns, size and missing values of a ticket export",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := config.LoadOrDefault(config.FindConfigPath(cfgFile))
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				path = cfg.Data.TicketsCSV
			}

			report, err := tickets.Inspect(path, rows)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, report)
			}

			headingStyle.Fprintf(out, "%s\n", path)
			fmt.Fprintf(out, "Rows: %d\n", report.Rows)
			fmt.Fprintf(out, "Columns (%d): %s\n", len(report.Columns), strings.Join(report.Columns, ", "))

			if len(report.Missing) > 0 {
				fmt.Fprintln(out, "\nMissing values:")
				cols := make([]string, 0, len(report.Missing))
				for c := range report.Missing {
					cols = append(cols, c)
				}
				sort.Strings(cols)
				for _, c := range cols {
					fmt.Fprintf(out, "  %-24s %d\n", c, report.Missing[c])
				}
			}

			if report.AvgDescriptionLength > 0 {
				fmt.Fprintf(out, "\nAverage description length: %.1f chars\n", report.AvgDescriptionLength)
			}
			if report.AvgResolutionLength > 0 {
				fmt.Fprintf(out, "Average resolution length: %.1f chars\n", report.AvgResolutionLength)
			}

			if len(report.Preview) > 0 {
				fmt.Fprintln(out, "\nPreview:")
				for _, row := range report.Preview {
					fmt.Fprintf(out, "  %s\n", strings.Join(row, " | "))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 5, "number of sample rows to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}

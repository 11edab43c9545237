package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kavirubc/ticketrag/internal/report"
)

func newInsightsCmd() *cobra.Command {
	var (
		topK       int
		reportPath string
		noSave     bool
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "insights [focus]",
		Short: "Summarise root causes and actions across related tickets",
		Long: `Retrieve the tickets related to a focus area and generate a structured
insight report. Each insight is appended to the report CSV; --export also writes
the retrieved tickets to a separate CSV.`,
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

			focus := strings.Join(args, " ")
			res, err := proc.Insight(ctx, focus, topK)
			if err != nil {
				return fmt.Errorf("insight failed: %w", err)
			}

			out := cmd.OutOrStdout()
			printAnswer(out, res, false)

			if reportPath == "" {
				reportPath = a.cfg.Data.ReportCSV
			}
			if !noSave && res.Answer != "" {
				if err := report.AppendInsight(reportPath, time.Now(), focus, res.Answer); err != nil {
					return err
				}
				fmt.Fprintf(out, "Insight saved to %s\n", reportPath)
			}

			if exportPath != "" {
				if err := report.ExportHits(exportPath, res.Hits); err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported %d tickets to %s\n", len(res.Hits), exportPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 10, "number of tickets to analyse")
	cmd.Flags().StringVar(&reportPath, "report", "", "insight log CSV (default: data.report_csv)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not append the insight to the report")
	cmd.Flags().StringVar(&exportPath, "export", "", "also write the retrieved tickets to this CSV")

	return cmd
}

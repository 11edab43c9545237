package cli

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/corpus"
	"github.com/Kavirubc/ticketrag/internal/embedding"
	"github.com/Kavirubc/ticketrag/internal/tickets"
	"github.com/Kavirubc/ticketrag/internal/vectordb"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

func newIndexCmd() *cobra.Command {
	var (
		input     string
		batchSize int
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed the cleaned tickets and build the search index",
		Long: `Embed every cleaned ticket and write the index for the configured backend.
The local backend writes a single bbolt file; the qdrant backend recreates the
collection. Both write the reference CSV that maps index rows back to tickets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, appOptions{build: true})
			if err != nil {
				return err
			}
			defer a.close()

			if input == "" {
				input = a.cfg.Data.CleanedCSV
			}
			if batchSize <= 0 {
				batchSize = a.cfg.Index.BatchSize
			}

			records, err := tickets.ReadCSV(input)
			if err != nil {
				return err
			}

			builder := corpus.NewBuilder(a.embedder, batchSize, a.logger)

			var bar *progressbar.ProgressBar
			if !quiet {
				builder.OnProgress = func(done, total int) {
					if bar == nil {
						bar = progressbar.NewOptions(total,
							progressbar.OptionSetWriter(cmd.ErrOrStderr()),
							progressbar.OptionEnableColorCodes(true),
							progressbar.OptionShowBytes(false),
							progressbar.OptionSetWidth(40),
							progressbar.OptionShowCount(),
							progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
							progressbar.OptionOnCompletion(func() {
								fmt.Fprintln(cmd.ErrOrStderr())
							}),
						)
					}
					_ = bar.Set(done)
				}
			}

			var (
				store *tickets.Store
				stats *models.IndexStats
			)

			switch a.cfg.Index.Backend {
			case "qdrant":
				store, stats, err = builder.BuildQdrant(ctx, a.qdrant, a.cfg.Index.Collection, records)
				if err != nil {
					return fmt.Errorf("indexing failed: %w", err)
				}
			default:
				var c *corpus.Corpus
				c, stats, err = builder.BuildLocal(ctx, records)
				if err != nil {
					return fmt.Errorf("indexing failed: %w", err)
				}
				flat, ok := c.Index.(*vectordb.FlatIndex)
				if !ok {
					return fmt.Errorf("unexpected index type %T", c.Index)
				}
				if err := corpus.Save(a.cfg.Index.Path, c.Store, flat, a.embedderName()); err != nil {
					return err
				}
				store = c.Store
			}

			if err := tickets.WriteCSV(a.cfg.Data.ReferenceCSV, store.All()); err != nil {
				return fmt.Errorf("failed to write reference tickets: %w", err)
			}

			a.logger.Info("index built",
				zap.String("backend", a.cfg.Index.Backend),
				zap.String("embedder", a.embedderName()),
				zap.Int("indexed", stats.Indexed),
				zap.Int("skipped", stats.Skipped))

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d/%d tickets (%d skipped, %d dims) in %dms\n",
				stats.Indexed, stats.TotalRows, stats.Skipped, stats.Dimensions, stats.DurationMs)
			fmt.Fprintf(cmd.OutOrStdout(), "Reference tickets: %s\n", a.cfg.Data.ReferenceCSV)

			if built := a.embedderName(); built != embedding.ModelName(&a.cfg.Embedding.Primary) {
				warnStyle.Fprintf(cmd.OutOrStdout(),
					"Index built with fallback model %s; set embedding.primary to it before querying\n", built)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "cleaned ticket CSV (default: data.cleaned_csv)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "tickets per embedding request (default: index.batch_size)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")

	return cmd
}

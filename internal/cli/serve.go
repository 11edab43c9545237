package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/corpus"
	"github.com/Kavirubc/ticketrag/internal/metrics"
	"github.com/Kavirubc/ticketrag/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		Long: `Serve search, answers, statistics and ticket browsing over HTTP.
If the index has not been built yet the API still starts and queries return 503
until POST /api/reload succeeds. A corrupt index, or one built for a different
embedder, stops startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, appOptions{generator: true})
			if err != nil {
				return err
			}
			defer a.close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			c, err := startupCorpus(ctx, a.loadCorpus)
			if err != nil {
				return err
			}
			holder := corpus.NewHolder(c)
			if c == nil {
				a.logger.Warn("starting without an index; POST /api/reload once it is built",
					zap.String("path", a.cfg.Index.Path))
			} else {
				metrics.CorpusTickets.Set(float64(c.Len()))
			}

			proc, cache, err := a.newProcessor(holder)
			if err != nil {
				return err
			}

			var onReload func()
			if cache != nil {
				onReload = cache.Purge
			}

			srv := server.New(server.Options{
				Config:        a.cfg,
				Holder:        holder,
				Processor:     proc,
				Loader:        a.loadCorpus,
				EmbedderDims:  a.embedder.Dimensions(),
				GeneratorName: a.generatorName(),
				OnReload:      onReload,
				Logger:        a.logger,
			})
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")

	return cmd
}

// startupCorpus loads the corpus for serve. A missing index is not an error
// (nil corpus); anything else, including a corrupt or mismatched index, is.
func startupCorpus(ctx context.Context, load server.Loader) (*corpus.Corpus, error) {
	c, err := load(ctx)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	}
	return nil, fmt.Errorf("refusing to serve: %w", err)
}

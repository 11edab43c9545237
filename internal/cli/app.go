package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/answer"
	"github.com/Kavirubc/ticketrag/internal/config"
	"github.com/Kavirubc/ticketrag/internal/corpus"
	"github.com/Kavirubc/ticketrag/internal/embedding"
	"github.com/Kavirubc/ticketrag/internal/llm"
	"github.com/Kavirubc/ticketrag/internal/logging"
	"github.com/Kavirubc/ticketrag/internal/pipeline"
	"github.com/Kavirubc/ticketrag/internal/retrieval"
	"github.com/Kavirubc/ticketrag/internal/retry"
	"github.com/Kavirubc/ticketrag/internal/vectordb"
)

// loadConfig finds, loads and validates the configuration. With no config
// file the defaults are used.
func loadConfig() (*config.Config, error) {
	cfgPath := config.FindConfigPath(cfgFile)
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// app holds the collaborators shared by the query commands
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	embedder  embedding.Provider
	qdrant    *vectordb.Client
	generator llm.Provider

	// fallback is set only for index builds; it names the model that served
	fallback *embedding.FallbackProvider
}

type appOptions struct {
	// generator creates the configured answer generator
	generator bool
	// build allows the fallback embedder. Queries always embed with the
	// primary model, the one the index was built with.
	build bool
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, generator: llm.Disabled{}}

	var base embedding.Provider
	if opts.build {
		a.fallback, err = embedding.NewFallbackProvider(ctx, &cfg.Embedding, logger)
		base = a.fallback
	} else {
		base, err = embedding.NewProvider(ctx, &cfg.Embedding.Primary)
	}
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}
	a.embedder = base
	if cfg.Embedding.Primary.Provider != "hash" {
		a.embedder = embedding.NewRateLimited(base, cfg.RateLimits.EmbeddingRPS)
	}

	if cfg.Index.Backend == "qdrant" {
		a.qdrant, err = vectordb.NewClient(&cfg.Qdrant, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create vector DB client: %w", err)
		}
	}

	if opts.generator {
		gen, err := llm.New(ctx, &cfg.LLM)
		if err != nil {
			// answers degrade to retrieved context rather than failing
			logger.Warn("answer generation disabled", zap.Error(err))
		} else {
			a.generator = gen
		}
	}

	return a, nil
}

func (a *app) close() {
	if a.generator != nil {
		_ = a.generator.Close()
	}
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.qdrant != nil {
		_ = a.qdrant.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// embedderName is the model behind a.embedder. For a build it is known only
// after the first batch, when the fallback may have taken over.
func (a *app) embedderName() string {
	if a.fallback != nil {
		return a.fallback.Name()
	}
	return embedding.ModelName(&a.cfg.Embedding.Primary)
}

func (a *app) generatorName() string {
	if _, off := a.generator.(llm.Disabled); off {
		return "none"
	}
	return a.cfg.LLM.Provider
}

// loadCorpus opens the configured index and checks it against the embedder
func (a *app) loadCorpus(ctx context.Context) (*corpus.Corpus, error) {
	c, err := corpus.Load(ctx, a.cfg, a.qdrant, a.logger)
	if err != nil {
		return nil, err
	}
	if err := c.CheckDimensions(a.embedder.Dimensions()); err != nil {
		return nil, err
	}
	if err := c.CheckEmbedder(a.embedderName()); err != nil {
		return nil, err
	}
	return c, nil
}

// newProcessor wires retriever, cache, assembler and generator over holder
func (a *app) newProcessor(holder *corpus.Holder) (*pipeline.Processor, *retrieval.CachedRetriever, error) {
	policy := retry.FromConfig(a.cfg.Retry)

	r := retrieval.New(holder, a.embedder, retrieval.Options{
		EmbedTimeout: a.cfg.EmbeddingTimeout(),
		Retry:        policy,
	}, a.logger)

	var searcher retrieval.Searcher = r
	var cached *retrieval.CachedRetriever
	if a.cfg.Cache.Size > 0 {
		c, err := retrieval.NewCached(r, a.cfg.Cache.Size)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create retrieval cache: %w", err)
		}
		searcher, cached = c, c
	}

	proc, err := pipeline.New(pipeline.Deps{
		Searcher:          searcher,
		Assembler:         answer.NewAssembler(answer.ThresholdsFromConfig(a.cfg.Context)),
		Generator:         a.generator,
		GeneratorName:     a.generatorName(),
		GenerationTimeout: a.cfg.GenerationTimeout(),
		Retry:             policy,
		MaxChars:          a.cfg.Context.MaxChars,
	}, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return proc, cached, nil
}

// openProcessor loads the corpus and returns a ready processor
func (a *app) openProcessor(ctx context.Context) (*pipeline.Processor, error) {
	c, err := a.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}
	proc, _, err := a.newProcessor(corpus.NewHolder(c))
	return proc, err
}

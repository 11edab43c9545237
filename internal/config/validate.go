package config

import (
	"fmt"
	"net/netip"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	embeddingProviders = map[string]bool{"gemini": true, "openai": true, "hash": true}
	llmProviders       = map[string]bool{"gemini": true, "openai": true, "none": true}
	logLevels          = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks the configuration for errors
func Validate(cfg *Config) []error {
	var errs []error

	switch cfg.Index.Backend {
	case "local":
		if cfg.Index.Path == "" {
			errs = append(errs, ValidationError{"index.path", "required for local backend"})
		}
	case "qdrant":
		if cfg.Qdrant.URL == "" {
			errs = append(errs, ValidationError{"qdrant.url", "required for qdrant backend"})
		}
		if cfg.Index.Collection == "" {
			errs = append(errs, ValidationError{"index.collection", "required for qdrant backend"})
		}
	default:
		errs = append(errs, ValidationError{"index.backend", "must be 'local' or 'qdrant'"})
	}

	if cfg.Index.BatchSize < 1 {
		errs = append(errs, ValidationError{"index.batch_size", "must be positive"})
	}

	errs = append(errs, validateProvider("embedding.primary", cfg.Embedding.Primary, true)...)
	if cfg.Embedding.Fallback.Provider != "" {
		errs = append(errs, validateProvider("embedding.fallback", cfg.Embedding.Fallback, false)...)
		if cfg.Embedding.Fallback.Dimensions != cfg.Embedding.Primary.Dimensions {
			errs = append(errs, ValidationError{"embedding.fallback.dimensions", "must match embedding.primary.dimensions"})
		}
	}

	if !llmProviders[cfg.LLM.Provider] {
		errs = append(errs, ValidationError{"llm.provider", "must be 'gemini', 'openai' or 'none'"})
	} else if cfg.LLM.Provider != "none" && cfg.LLM.APIKey == "" {
		errs = append(errs, ValidationError{"llm.api_key", "required unless provider is 'none'"})
	}
	if cfg.LLM.MaxNewTokens < 1 {
		errs = append(errs, ValidationError{"llm.max_new_tokens", "must be positive"})
	}

	if cfg.Retrieval.TopK < 1 {
		errs = append(errs, ValidationError{"retrieval.top_k", "must be positive"})
	}

	if cfg.Context.MinSimilarity < 0 || cfg.Context.MinSimilarity > 1 {
		errs = append(errs, ValidationError{"context.min_similarity", "must be between 0 and 1"})
	}
	if cfg.Context.MaxChars < 1 {
		errs = append(errs, ValidationError{"context.max_chars", "must be positive"})
	}
	if cfg.Context.MinContextChars < 0 {
		errs = append(errs, ValidationError{"context.min_context_chars", "must not be negative"})
	}
	if cfg.Context.MinContextChars > cfg.Context.MaxChars {
		errs = append(errs, ValidationError{"context.min_context_chars", "must not exceed context.max_chars"})
	}
	if cfg.Context.MinAlphaChars < 0 {
		errs = append(errs, ValidationError{"context.min_alpha_chars", "must not be negative"})
	}

	if cfg.Timeouts.EmbeddingSecs < 1 {
		errs = append(errs, ValidationError{"timeouts.embedding_secs", "must be positive"})
	}
	if cfg.Timeouts.GenerationSecs < 1 {
		errs = append(errs, ValidationError{"timeouts.generation_secs", "must be positive"})
	}
	if cfg.Retry.Attempts < 1 {
		errs = append(errs, ValidationError{"retry.attempts", "must be at least 1"})
	}

	for _, proxy := range cfg.Server.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, ValidationError{"server.trusted_proxies", fmt.Sprintf("%q is not an IP or CIDR", proxy)})
		}
	}

	if !logLevels[cfg.Logging.Level] {
		errs = append(errs, ValidationError{"logging.level", "must be one of debug, info, warn, error"})
	}

	for i, cat := range cfg.Categories {
		if cat.Name == "" {
			errs = append(errs, ValidationError{fmt.Sprintf("categories[%d].name", i), "required"})
		}
	}

	return errs
}

func validateProvider(prefix string, p ProviderConfig, required bool) []error {
	var errs []error

	if p.Provider == "" {
		if required {
			errs = append(errs, ValidationError{prefix + ".provider", "required"})
		}
		return errs
	}
	if !embeddingProviders[p.Provider] {
		errs = append(errs, ValidationError{prefix + ".provider", "must be 'gemini', 'openai' or 'hash'"})
		return errs
	}
	if p.Provider != "hash" && p.APIKey == "" {
		errs = append(errs, ValidationError{prefix + ".api_key", "required"})
	}
	if p.Dimensions < 1 {
		errs = append(errs, ValidationError{prefix + ".dimensions", "must be positive"})
	}

	return errs
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

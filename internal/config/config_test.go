package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TICKETRAG_TEST_VAR", "test-value")
	defer os.Unsetenv("TICKETRAG_TEST_VAR")

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "expands env var",
			input:  "${TICKETRAG_TEST_VAR}",
			expect: "test-value",
		},
		{
			name:   "keeps unset var",
			input:  "${TICKETRAG_UNSET_VAR}",
			expect: "${TICKETRAG_UNSET_VAR}",
		},
		{
			name:   "expands in string",
			input:  "https://${TICKETRAG_TEST_VAR}.example.com",
			expect: "https://test-value.example.com",
		},
		{
			name:   "no vars",
			input:  "plain string",
			expect: "plain string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expect {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expect)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")

	content := `
index:
  backend: "qdrant"
  collection: "apt_tickets"

qdrant:
  url: "http://localhost:6334"

embedding:
  primary:
    provider: "gemini"
    model: "gemini-embedding-001"
    api_key: "test-key"
    dimensions: 768

context:
  min_similarity: 0.5

categories:
  - name: "Printer"
    keywords: ["printer", "toner"]
`

	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Index.Backend != "qdrant" {
		t.Errorf("Index.Backend = %v, want qdrant", cfg.Index.Backend)
	}
	if cfg.Qdrant.URL != "http://localhost:6334" {
		t.Errorf("Qdrant.URL = %v, want http://localhost:6334", cfg.Qdrant.URL)
	}
	if cfg.Embedding.Primary.Provider != "gemini" {
		t.Errorf("Embedding.Primary.Provider = %v, want gemini", cfg.Embedding.Primary.Provider)
	}
	if cfg.Context.MinSimilarity != 0.5 {
		t.Errorf("Context.MinSimilarity = %v, want 0.5", cfg.Context.MinSimilarity)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Name != "Printer" {
		t.Errorf("Categories = %+v, want single Printer category", cfg.Categories)
	}
	// untouched sections still get defaults
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("Retrieval.TopK = %v, want 5", cfg.Retrieval.TopK)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Index.Backend != "local" {
		t.Errorf("Index.Backend = %v, want local", cfg.Index.Backend)
	}
	if cfg.Context.MinSimilarity != 0.35 {
		t.Errorf("MinSimilarity = %v, want 0.35", cfg.Context.MinSimilarity)
	}
	if cfg.Context.MinContextChars != 100 {
		t.Errorf("MinContextChars = %v, want 100", cfg.Context.MinContextChars)
	}
	if cfg.Context.MinAlphaChars != 10 {
		t.Errorf("MinAlphaChars = %v, want 10", cfg.Context.MinAlphaChars)
	}
	if cfg.Context.MaxChars != 1500 {
		t.Errorf("MaxChars = %v, want 1500", cfg.Context.MaxChars)
	}
	if cfg.LLM.Provider != "none" {
		t.Errorf("LLM.Provider = %v, want none", cfg.LLM.Provider)
	}
	if len(cfg.Categories) != 4 {
		t.Errorf("len(Categories) = %d, want 4", len(cfg.Categories))
	}
	if cfg.RateLimits.HTTPBurst != cfg.RateLimits.HTTPPerMinute {
		t.Errorf("HTTPBurst = %v, want %v", cfg.RateLimits.HTTPBurst, cfg.RateLimits.HTTPPerMinute)
	}
}

func TestApplyDefaults_SimilarityFollowsBackend(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want float64
	}{
		{"local", Config{}, DefaultMinSimilarityL2},
		{"qdrant", Config{Index: IndexConfig{Backend: "qdrant"}}, DefaultMinSimilarityCosine},
		{"explicit wins", Config{Index: IndexConfig{Backend: "qdrant"}, Context: ContextConfig{MinSimilarity: 0.5}}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			applyDefaults(&cfg)
			if cfg.Context.MinSimilarity != tt.want {
				t.Errorf("MinSimilarity = %v, want %v", cfg.Context.MinSimilarity, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Index.Backend = "sqlite" }, "index.backend"},
		{"qdrant without url", func(c *Config) { c.Index.Backend = "qdrant" }, "qdrant.url"},
		{"gemini without key", func(c *Config) { c.Embedding.Primary.Provider = "gemini" }, "embedding.primary.api_key"},
		{"llm without key", func(c *Config) { c.LLM.Provider = "openai" }, "llm.api_key"},
		{"similarity out of range", func(c *Config) { c.Context.MinSimilarity = 1.5 }, "context.min_similarity"},
		{"context floor above budget", func(c *Config) { c.Context.MinContextChars = 5000 }, "context.min_context_chars"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"} }, "server.trusted_proxies"},
		{
			"fallback dimension mismatch",
			func(c *Config) {
				c.Embedding.Fallback = ProviderConfig{Provider: "hash", Dimensions: 384}
			},
			"embedding.fallback.dimensions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			errs := Validate(cfg)

			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Errorf("Validate() = %v, want no errors", errs)
				}
				return
			}

			found := false
			for _, err := range errs {
				if ve, ok := err.(ValidationError); ok && ve.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() = %v, want error on %s", errs, tt.wantField)
			}
		})
	}
}

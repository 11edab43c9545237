package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full application configuration
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Index      IndexConfig      `yaml:"index"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	LLM        LLMConfig        `yaml:"llm"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Context    ContextConfig    `yaml:"context"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
	Retry      RetryConfig      `yaml:"retry"`
	RateLimits RateLimitsConfig `yaml:"rate_limits"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Cache      CacheConfig      `yaml:"cache"`
	Categories []CategoryConfig `yaml:"categories"`
}

// DataConfig contains the paths of the pipeline's files
type DataConfig struct {
	TicketsCSV   string `yaml:"tickets_csv"`
	CleanedCSV   string `yaml:"cleaned_csv"`
	ReferenceCSV string `yaml:"reference_csv"`
	ReportCSV    string `yaml:"report_csv"`
}

// IndexConfig selects where ticket vectors live
type IndexConfig struct {
	Backend    string `yaml:"backend"` // "local" or "qdrant"
	Path       string `yaml:"path"`    // local bbolt artifact
	Collection string `yaml:"collection"`
	BatchSize  int    `yaml:"batch_size"`
}

// QdrantConfig contains Qdrant connection settings
type QdrantConfig struct {
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
	UseGRPC bool   `yaml:"use_grpc"`
}

// EmbeddingConfig contains embedding provider settings
type EmbeddingConfig struct {
	Primary  ProviderConfig `yaml:"primary"`
	Fallback ProviderConfig `yaml:"fallback"`
}

// ProviderConfig contains settings for an embedding provider
type ProviderConfig struct {
	Provider   string `yaml:"provider"` // "gemini", "openai" or "hash"
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
}

// LLMConfig contains answer generator settings
type LLMConfig struct {
	Provider     string  `yaml:"provider"` // "gemini", "openai" or "none"
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"api_key"`
	MaxNewTokens int     `yaml:"max_new_tokens"`
	Temperature  float32 `yaml:"temperature"`
}

// RetrievalConfig contains search defaults
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// ContextConfig contains the evidence sufficiency thresholds and prompt budget
type ContextConfig struct {
	MaxChars        int     `yaml:"max_chars"`
	MinSimilarity   float64 `yaml:"min_similarity"`
	MinContextChars int     `yaml:"min_context_chars"`
	MinAlphaChars   int     `yaml:"min_alpha_chars"`
}

// TimeoutsConfig bounds calls to external providers
type TimeoutsConfig struct {
	EmbeddingSecs  int `yaml:"embedding_secs"`
	GenerationSecs int `yaml:"generation_secs"`
}

// RetryConfig contains the retry policy for external providers
type RetryConfig struct {
	Attempts         int `yaml:"attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms"`
}

// RateLimitsConfig contains rate limiting settings
type RateLimitsConfig struct {
	EmbeddingRPS  int `yaml:"embedding_requests_per_second"`
	HTTPPerMinute int `yaml:"http_requests_per_minute"`
	HTTPBurst     int `yaml:"http_burst"`
}

// ServerConfig contains dashboard API settings
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustedProxies are IPs or CIDRs whose X-Forwarded-For is believed
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// LoggingConfig contains log level and optional rotated file output
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// CacheConfig sizes the retrieval result cache (0 disables it)
type CacheConfig struct {
	Size int `yaml:"size"`
}

// CategoryConfig defines a dashboard category matched by keywords
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Icon     string   `yaml:"icon,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// EmbeddingTimeout returns the per-call embedding timeout
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Timeouts.EmbeddingSecs) * time.Second
}

// GenerationTimeout returns the per-call generation timeout
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Timeouts.GenerationSecs) * time.Second
}

// Load reads and parses config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadOrDefault loads the config at path, or returns defaults when path is empty
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := &Config{}
		expandConfigEnvVars(cfg)
		applyDefaults(cfg)
		return cfg, nil
	}
	return Load(path)
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	paths := []string{
		"ticketrag.yaml",
		"ticketrag.yml",
		".ticketrag.yaml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "ticketrag", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// Minimum best-hit similarity per index scale. The local index scores
// 1/(1+d) over squared L2 distance; qdrant scores (1+cos)/2, where 0.65
// means cos > 0.3.
const (
	DefaultMinSimilarityL2     = 0.35
	DefaultMinSimilarityCosine = 0.65
)

// DefaultMinSimilarity returns the sufficiency floor for an index backend
func DefaultMinSimilarity(backend string) float64 {
	if backend == "qdrant" {
		return DefaultMinSimilarityCosine
	}
	return DefaultMinSimilarityL2
}

// DefaultCategories are the dashboard categories used when none are configured
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{Name: "Camera", Icon: "📹", Keywords: []string{"camera", "ptz", "surveillance", "cctv"}},
		{Name: "Door/Access", Icon: "🚪", Keywords: []string{"door", "access", "lock", "entry", "ada"}},
		{Name: "Network", Icon: "🌐", Keywords: []string{"network", "connectivity", "internet", "wifi", "router"}},
		{Name: "Hardware", Icon: "🔧", Keywords: []string{"hardware", "replacement", "equipment", "device"}},
	}
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Data.TicketsCSV == "" {
		cfg.Data.TicketsCSV = "apt_tickets_complete_cleaned.csv"
	}
	if cfg.Data.CleanedCSV == "" {
		cfg.Data.CleanedCSV = "data/jira_cleaned_ready.csv"
	}
	if cfg.Data.ReferenceCSV == "" {
		cfg.Data.ReferenceCSV = "data/jira_reference.csv"
	}
	if cfg.Data.ReportCSV == "" {
		cfg.Data.ReportCSV = "data/generated_insights.csv"
	}

	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "local"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "data/tickets.db"
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = "tickets"
	}
	if cfg.Index.BatchSize == 0 {
		cfg.Index.BatchSize = 64
	}

	if cfg.Embedding.Primary.Provider == "" {
		cfg.Embedding.Primary.Provider = "hash"
	}
	if cfg.Embedding.Primary.Dimensions == 0 {
		cfg.Embedding.Primary.Dimensions = 768
	}
	if cfg.Embedding.Fallback.Dimensions == 0 {
		cfg.Embedding.Fallback.Dimensions = cfg.Embedding.Primary.Dimensions
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "none"
	}
	if cfg.LLM.MaxNewTokens == 0 {
		cfg.LLM.MaxNewTokens = 512
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}

	if cfg.Context.MaxChars == 0 {
		cfg.Context.MaxChars = 1500
	}
	if cfg.Context.MinSimilarity == 0 {
		cfg.Context.MinSimilarity = DefaultMinSimilarity(cfg.Index.Backend)
	}
	if cfg.Context.MinContextChars == 0 {
		cfg.Context.MinContextChars = 100
	}
	if cfg.Context.MinAlphaChars == 0 {
		cfg.Context.MinAlphaChars = 10
	}

	if cfg.Timeouts.EmbeddingSecs == 0 {
		cfg.Timeouts.EmbeddingSecs = 15
	}
	if cfg.Timeouts.GenerationSecs == 0 {
		cfg.Timeouts.GenerationSecs = 60
	}

	if cfg.Retry.Attempts == 0 {
		cfg.Retry.Attempts = 3
	}
	if cfg.Retry.InitialBackoffMs == 0 {
		cfg.Retry.InitialBackoffMs = 200
	}
	if cfg.Retry.MaxBackoffMs == 0 {
		cfg.Retry.MaxBackoffMs = 2000
	}

	if cfg.RateLimits.EmbeddingRPS == 0 {
		cfg.RateLimits.EmbeddingRPS = 5
	}
	if cfg.RateLimits.HTTPPerMinute == 0 {
		cfg.RateLimits.HTTPPerMinute = 60
	}
	if cfg.RateLimits.HTTPBurst == 0 {
		cfg.RateLimits.HTTPBurst = cfg.RateLimits.HTTPPerMinute
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 5
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 30
	}

	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 256
	}

	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
}

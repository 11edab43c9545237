package answer

import "github.com/Kavirubc/ticketrag/internal/config"

// Defaults for the sufficiency checks. They were tuned by hand against the
// incident export and are meant to be overridden from config.
const (
	DefaultMinSimilarity   = config.DefaultMinSimilarityL2
	DefaultMinContextChars = 100
	DefaultMinAlphaChars   = 10
	DefaultMaxChars        = 1500
)

// Thresholds decide whether retrieved evidence is good enough to answer from
type Thresholds struct {
	// MinSimilarity must be strictly exceeded by the best hit
	MinSimilarity float64
	// MinContextChars must be strictly exceeded by the packed context
	MinContextChars int
	// MinAlphaChars drops excerpts that are mostly ids, numbers or punctuation
	MinAlphaChars int
}

// DefaultThresholds returns the built-in thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSimilarity:   DefaultMinSimilarity,
		MinContextChars: DefaultMinContextChars,
		MinAlphaChars:   DefaultMinAlphaChars,
	}
}

// ThresholdsFromConfig reads the context section
func ThresholdsFromConfig(cfg config.ContextConfig) Thresholds {
	return Thresholds{
		MinSimilarity:   cfg.MinSimilarity,
		MinContextChars: cfg.MinContextChars,
		MinAlphaChars:   cfg.MinAlphaChars,
	}
}

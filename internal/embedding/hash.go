package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// HashProvider is a deterministic, offline embedder. Tokens are hashed into a
// fixed number of buckets (feature hashing) and the vector is L2 normalized, so
// texts that share vocabulary land close together.
type HashProvider struct {
	dimensions   int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewHashProvider creates a hashing embedder with the given dimensionality
func NewHashProvider(dimensions int) *HashProvider {
	if dimensions <= 0 {
		dimensions = 768
	}
	return &HashProvider{
		dimensions:   dimensions,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+`),
		stopwords:    defaultStopwords(),
	}
}

// Embed generates an embedding for a single text
func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.vector(text), nil
}

// EmbedBatch generates embeddings for multiple texts
func (p *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.vector(text)
	}
	return out, nil
}

// Dimensions returns the vector length
func (p *HashProvider) Dimensions() int {
	return p.dimensions
}

// Close releases resources
func (p *HashProvider) Close() error {
	return nil
}

func (p *HashProvider) vector(text string) []float32 {
	vec := make([]float64, p.dimensions)
	for _, tok := range p.tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(tok))
		sum := h.Sum64()
		idx := int(sum % uint64(p.dimensions))
		// sign bit spreads collisions around zero
		if sum&(1<<63) != 0 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, p.dimensions)
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

func (p *HashProvider) tokenize(text string) []string {
	raw := p.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := p.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "so", "into", "about", "out", "off", "can", "will", "just", "should", "now", "what", "how", "why", "do", "does", "did", "not",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

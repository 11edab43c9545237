package vectordb

import (
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/internal/config"
)

// Client wraps Qdrant operations
type Client struct {
	qdrant *qdrant.Client
	logger *zap.Logger
}

// NewClient creates a new Qdrant client
func NewClient(cfg *config.QdrantConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	host, port := parseHostPort(cfg.URL)

	// cloud.qdrant.io requires TLS
	useTLS := strings.HasPrefix(cfg.URL, "https://") ||
		strings.Contains(host, "qdrant.io") || strings.Contains(host, "qdrant.cloud")

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	return &Client{qdrant: client, logger: logger}, nil
}

// parseHostPort extracts host and port from URL string
func parseHostPort(url string) (string, int) {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimSuffix(url, "/")

	if idx := strings.LastIndex(url, ":"); idx != -1 {
		host := url[:idx]
		var port int
		_, _ = fmt.Sscanf(url[idx+1:], "%d", &port)
		if port == 0 {
			port = 6334
		}
		return host, port
	}

	return url, 6334
}

// Close closes the connection
func (c *Client) Close() error {
	if c.qdrant != nil {
		return c.qdrant.Close()
	}
	return nil
}

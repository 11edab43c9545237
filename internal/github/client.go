// Package github imports issues from a GitHub repository as tickets.
package github

import (
	"fmt"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
)

// Client wraps GitHub API operations
type Client struct {
	rest *api.RESTClient
}

// NewClient creates a client using the gh CLI's stored credentials or GH_TOKEN
func NewClient() (*Client, error) {
	rest, err := api.DefaultRESTClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}
	return &Client{rest: rest}, nil
}

// NewClientWithToken creates a client authenticated with an explicit token
func NewClientWithToken(token string) (*Client, error) {
	rest, err := api.NewRESTClient(api.ClientOptions{AuthToken: token})
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}
	return &Client{rest: rest}, nil
}

// Close releases resources
func (c *Client) Close() error {
	return nil
}

// ParseRepo splits "owner/repo" into owner and repo
func ParseRepo(fullRepo string) (string, string, error) {
	parts := strings.Split(fullRepo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", fullRepo)
	}
	return parts[0], parts[1], nil
}

// Issue represents a GitHub issue from the API
type Issue struct {
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	State       string     `json:"state"`
	HTMLURL     string     `json:"html_url"`
	User        User       `json:"user"`
	Assignees   []User     `json:"assignees"`
	Labels      []Label    `json:"labels"`
	Milestone   *Milestone `json:"milestone"`
	PullRequest *struct{}  `json:"pull_request"`
	Comments    int        `json:"comments"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// User represents a GitHub user
type User struct {
	Login string `json:"login"`
}

// Label represents a GitHub label
type Label struct {
	Name string `json:"name"`
}

// Milestone represents a GitHub milestone
type Milestone struct {
	Title string `json:"title"`
}

// Comment represents a GitHub comment
type Comment struct {
	ID        int       `json:"id"`
	Body      string    `json:"body"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

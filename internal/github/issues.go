package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ListOptions configures issue listing
type ListOptions struct {
	State   string // "open", "closed", "all"
	PerPage int
	Page    int
	Since   time.Time
}

// ListIssues fetches one page of issues, pull requests excluded
func (c *Client) ListIssues(ctx context.Context, org, repo string, opts ListOptions) ([]Issue, int, error) {
	if opts.PerPage == 0 {
		opts.PerPage = 100
	}
	if opts.State == "" {
		opts.State = "all"
	}
	if opts.Page == 0 {
		opts.Page = 1
	}

	params := url.Values{}
	params.Set("state", opts.State)
	params.Set("per_page", strconv.Itoa(opts.PerPage))
	params.Set("page", strconv.Itoa(opts.Page))
	params.Set("sort", "created")
	params.Set("direction", "asc")
	if !opts.Since.IsZero() {
		params.Set("since", opts.Since.Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("repos/%s/%s/issues?%s", org, repo, params.Encode())

	var page []Issue
	if err := c.rest.DoWithContext(ctx, "GET", endpoint, nil, &page); err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}

	issues := make([]Issue, 0, len(page))
	for _, ai := range page {
		// the issues endpoint also returns pull requests
		if ai.PullRequest != nil {
			continue
		}
		issues = append(issues, ai)
	}

	return issues, len(page), nil
}

// ListAllIssues fetches every issue using pagination. limit <= 0 means no limit.
func (c *Client) ListAllIssues(ctx context.Context, org, repo, state string, limit int) ([]Issue, error) {
	const perPage = 100
	var all []Issue

	for page := 1; ; page++ {
		issues, raw, err := c.ListIssues(ctx, org, repo, ListOptions{
			State:   state,
			PerPage: perPage,
			Page:    page,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, issues...)
		if limit > 0 && len(all) >= limit {
			return all[:limit], nil
		}
		if raw < perPage {
			break
		}
	}

	return all, nil
}

// ListComments fetches comments on an issue, oldest first
func (c *Client) ListComments(ctx context.Context, org, repo string, number int) ([]Comment, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/comments?per_page=100", org, repo, number)

	var comments []Comment
	if err := c.rest.DoWithContext(ctx, "GET", endpoint, nil, &comments); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

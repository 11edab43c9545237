package github

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

// IssueSource is the part of Client the importer needs
type IssueSource interface {
	ListAllIssues(ctx context.Context, org, repo, state string, limit int) ([]Issue, error)
	ListComments(ctx context.Context, org, repo string, number int) ([]Comment, error)
}

// ImportOptions controls which issues become tickets
type ImportOptions struct {
	State        string
	Limit        int
	WithComments bool
}

// Importer converts repository issues into ticket records
type Importer struct {
	source IssueSource
	logger *zap.Logger
}

// NewImporter creates an importer
func NewImporter(source IssueSource, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{source: source, logger: logger}
}

// Import fetches issues from owner/repo. A failed comment fetch is logged and
// leaves LastComment empty.
func (im *Importer) Import(ctx context.Context, owner, repo string, opts ImportOptions) ([]models.Ticket, error) {
	issues, err := im.source.ListAllIssues(ctx, owner, repo, opts.State, opts.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]models.Ticket, 0, len(issues))
	for i := range issues {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t := issues[i].ToTicket(repo)
		if opts.WithComments && issues[i].Comments > 0 {
			comments, err := im.source.ListComments(ctx, owner, repo, issues[i].Number)
			if err != nil {
				im.logger.Warn("failed to fetch comments",
					zap.Int("issue", issues[i].Number), zap.Error(err))
			} else if len(comments) > 0 {
				t.LastComment = strings.TrimSpace(comments[len(comments)-1].Body)
			}
		}
		t.Position = len(out)
		out = append(out, t)
	}

	im.logger.Info("imported issues",
		zap.String("repo", owner+"/"+repo),
		zap.Int("tickets", len(out)))
	return out, nil
}

// ToTicket maps an issue onto the ticket columns. Labels named
// "priority: <x>" or "priority/<x>" fill Priority.
func (i *Issue) ToTicket(repo string) models.Ticket {
	t := models.Ticket{
		TicketID:    strings.ToUpper(repo) + "-" + strconv.Itoa(i.Number),
		Summary:     strings.TrimSpace(i.Title),
		Description: strings.TrimSpace(i.Body),
		Status:      titleCase(i.State),
		Reporter:    i.User.Login,
		CreatedAt:   formatTime(i.CreatedAt),
		UpdatedAt:   formatTime(i.UpdatedAt),
	}
	if len(i.Assignees) > 0 {
		t.Assignee = i.Assignees[0].Login
	}
	if i.Milestone != nil {
		t.EpicLink = i.Milestone.Title
	}
	for _, l := range i.Labels {
		name := strings.ToLower(l.Name)
		for _, prefix := range []string{"priority:", "priority/"} {
			if strings.HasPrefix(name, prefix) {
				t.Priority = titleCase(strings.TrimSpace(l.Name[len(prefix):]))
			}
		}
	}
	return t
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}


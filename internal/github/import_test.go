package github

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	issues   []Issue
	comments map[int][]Comment
	failOn   int
}

func (f *fakeSource) ListAllIssues(_ context.Context, _, _, _ string, limit int) ([]Issue, error) {
	if limit > 0 && limit < len(f.issues) {
		return f.issues[:limit], nil
	}
	return f.issues, nil
}

func (f *fakeSource) ListComments(_ context.Context, _, _ string, number int) ([]Comment, error) {
	if number == f.failOn {
		return nil, errors.New("502 bad gateway")
	}
	return f.comments[number], nil
}

func TestParseRepo(t *testing.T) {
	owner, repo, err := ParseRepo("acme/store-ops")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "store-ops", repo)

	for _, bad := range []string{"acme", "acme/", "/ops", "a/b/c"} {
		_, _, err := ParseRepo(bad)
		assert.Error(t, err, bad)
	}
}

func TestIssue_ToTicket(t *testing.T) {
	created := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	issue := Issue{
		Number:    42,
		Title:     " Camera offline ",
		Body:      "PTZ camera at store 12 is offline\n",
		State:     "open",
		User:      User{Login: "store12"},
		Assignees: []User{{Login: "tech-a"}, {Login: "tech-b"}},
		Labels:    []Label{{Name: "bug"}, {Name: "Priority: high"}},
		Milestone: &Milestone{Title: "Q2 camera refresh"},
		CreatedAt: created,
	}

	tk := issue.ToTicket("store-ops")
	assert.Equal(t, "STORE-OPS-42", tk.TicketID)
	assert.Equal(t, "Camera offline", tk.Summary)
	assert.Equal(t, "PTZ camera at store 12 is offline", tk.Description)
	assert.Equal(t, "Open", tk.Status)
	assert.Equal(t, "High", tk.Priority)
	assert.Equal(t, "tech-a", tk.Assignee)
	assert.Equal(t, "store12", tk.Reporter)
	assert.Equal(t, "Q2 camera refresh", tk.EpicLink)
	assert.Equal(t, "2025-03-04T10:00:00Z", tk.CreatedAt)
	assert.Empty(t, tk.UpdatedAt)
}

func TestImporter_Import(t *testing.T) {
	src := &fakeSource{
		issues: []Issue{
			{Number: 1, Title: "Door jammed", State: "closed", Comments: 2},
			{Number: 2, Title: "Router down", State: "open", Comments: 1},
			{Number: 3, Title: "Camera offline", State: "open"},
		},
		comments: map[int][]Comment{
			1: {{Body: "Looking into it"}, {Body: " Replaced the strike plate "}},
		},
		failOn: 2,
	}

	got, err := NewImporter(src, nil).Import(context.Background(), "acme", "ops", ImportOptions{WithComments: true})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Replaced the strike plate", got[0].LastComment)
	assert.Empty(t, got[1].LastComment)
	assert.Equal(t, 2, got[2].Position)

	limited, err := NewImporter(src, nil).Import(context.Background(), "acme", "ops", ImportOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Empty(t, limited[0].LastComment)
}

package core

import (
	"context"
	"errors"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

// ErrGenerationTimeout is recorded when the generator does not answer in time
var ErrGenerationTimeout = errors.New("answer generation timed out")

// Context carries state through the pipeline steps.
type Context struct {
	// Inputs
	Ctx      context.Context
	Query    string
	TopK     int
	MaxChars int

	// Hits are the ranked tickets from the retriever
	Hits []models.Hit

	// Evidence is the assembled context, or the fallback block
	Evidence models.QueryContext

	// System and Prompt are what the generator receives
	System string
	Prompt string

	// Result accumulates the final output
	Result *models.Answer
}

// Step defines a single unit of work in the pipeline.
type Step interface {
	// Name returns the identifier used in logs and step lists
	Name() string
	// Run executes the step. Any error fails the query.
	Run(ctx *Context) error
}

// AddNotice appends a user-facing note to the result
func (c *Context) AddNotice(note string) {
	if note == "" {
		return
	}
	if c.Result.Notice == "" {
		c.Result.Notice = note
		return
	}
	c.Result.Notice += "; " + note
}

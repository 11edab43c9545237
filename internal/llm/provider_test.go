package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/ticketrag/internal/config"
)

func TestNew_None(t *testing.T) {
	p, err := New(context.Background(), &config.LLMConfig{Provider: "none"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, p.Close())
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), &config.LLMConfig{Provider: "llama"})
	assert.Error(t, err)

	_, err = New(context.Background(), &config.LLMConfig{Provider: "openai"})
	assert.Error(t, err, "openai without key")
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults("m")
	assert.Equal(t, "m", o.Model)
	assert.Equal(t, 512, o.MaxNewTokens)

	o = Options{Model: "x", MaxNewTokens: 64}.withDefaults("m")
	assert.Equal(t, "x", o.Model)
	assert.Equal(t, 64, o.MaxNewTokens)
}

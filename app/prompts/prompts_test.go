package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStrategy(t *testing.T) {
	rendered, err := Render(Strategy, map[string]any{
		"trust_level":       0.5,
		"curiosity_level":   0.7,
		"previous_strategy": "neutral",
		"turn_count":        3,
	})
	require.NoError(t, err)

	assert.Contains(t, rendered, "trust level: 0.5")
	assert.Contains(t, rendered, "turns so far: 3")
	assert.NotContains(t, rendered, "{trust_level}")
	assert.NotContains(t, rendered, "{turn_count}")
}

func TestRenderPersona(t *testing.T) {
	rendered, err := Render(Persona, map[string]any{"strategy": "delay_response"})
	require.NoError(t, err)

	assert.Contains(t, rendered, "delay_response")
	assert.NotContains(t, rendered, "{strategy}")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render(Name("bogus"), nil)
	assert.Error(t, err)
}

func TestTemplatesNotEmpty(t *testing.T) {
	for name := range templates {
		rendered, err := Render(name, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, rendered)
	}
}

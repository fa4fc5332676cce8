package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_WithContext(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	out, err := b.Build("What is osmosis?", "Osmosis is diffusion of water.", true)
	require.NoError(t, err)

	assert.Contains(t, out, "Context:\nOsmosis is diffusion of water.")
	assert.Contains(t, out, "Question: What is osmosis?")
	assert.NotContains(t, out, "no matching documents")
}

func TestBuild_WithoutContext(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	out, err := b.Build("What is osmosis?", "", false)
	require.NoError(t, err)

	assert.Contains(t, out, "no matching documents were found")
	assert.Contains(t, out, "Question: What is osmosis?")
	assert.NotContains(t, out, "Context:")
}

func TestBuild_EmptyContextStillUsesContextPrompt(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	out, err := b.Build("q", "", true)
	require.NoError(t, err)
	assert.Contains(t, out, "Context:")
}

func TestBuild_DoesNotEscapeText(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	out, err := b.Build("Is 2 < 3 & 5 > 4?", "a <b> tag", true)
	require.NoError(t, err)
	assert.Contains(t, out, "Is 2 < 3 & 5 > 4?")
	assert.Contains(t, out, "a <b> tag")
}

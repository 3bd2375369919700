package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasFlags_IsSet(t *testing.T) {
	assert.False(t, (&canvasFlags{}).isSet())
	assert.True(t, (&canvasFlags{persona: "writer"}).isSet())
	assert.True(t, (&canvasFlags{steps: "one\ntwo"}).isSet())
	assert.True(t, (&canvasFlags{tonality: "formal"}).isSet())
}

func TestCanvasFlags_ToCanvas(t *testing.T) {
	cf := &canvasFlags{
		persona:     "expert technical writer",
		audience:    "software developers",
		task:        "document the API",
		steps:       "list endpoints\n\ndescribe payloads\n",
		contextText: "v2 rewrite",
		references:  "RFC 9110\nstyle guide",
		tonality:    "professional",
	}

	c := cf.toCanvas()

	assert.Equal(t, "expert technical writer", c.Persona)
	assert.Equal(t, []string{"list endpoints", "describe payloads"}, c.Steps)
	assert.Equal(t, []string{"RFC 9110", "style guide"}, c.References)
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := rootCmd()

	for _, name := range []string{
		"config", "log-level", "model", "temperature", "max-tokens",
		"persona", "audience", "task", "steps", "context", "references",
		"format", "tone",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %q", name)
	}

	model := cmd.Flags().Lookup("model")
	require.NotNil(t, model)
	assert.Equal(t, "llama-3.3-70b-versatile", model.DefValue)

	temp := cmd.Flags().Lookup("temperature")
	require.NotNil(t, temp)
	assert.Equal(t, "0.5", temp.DefValue)

	tokens := cmd.Flags().Lookup("max-tokens")
	require.NotNil(t, tokens)
	assert.Equal(t, "1024", tokens.DefValue)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "groq", cfg.Model.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Model.Default)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatModelName(t *testing.T) {
	cases := map[string]string{
		"mistralai/mistral-7b-instruct:free": "Mistral 7b Instruct",
		"openai/gpt-4o":                      "Gpt 4o",
		"claude-3-haiku":                     "Claude 3 Haiku",
		"llama3":                             "Llama3",
		"org/sub/deep_model":                 "Deep Model",
	}
	for id, want := range cases {
		require.Equal(t, want, formatModelName(id), "id %q", id)
	}
}

func TestModelInfo_Label(t *testing.T) {
	require.Equal(t, "GPT-4o", ModelInfo{ID: "openai/gpt-4o", Name: "GPT-4o"}.Label())
	require.Equal(t, "Gpt 4o", ModelInfo{ID: "openai/gpt-4o"}.Label())
}

func TestPickModel(t *testing.T) {
	models := []ModelInfo{
		{ID: "a/one"},
		{ID: "b/two"},
		{ID: "c/three"},
	}

	// Persisted choice wins while still offered
	require.Equal(t, "b/two", pickModel(models, "b/two", "c/three"))

	// A persisted model the backend no longer offers falls through
	require.Equal(t, "c/three", pickModel(models, "gone/model", "c/three"))

	// No persisted or configured choice: first offered model
	require.Equal(t, "a/one", pickModel(models, "", ""))

	// Configured default that vanished falls back too
	require.Equal(t, "a/one", pickModel(models, "", "gone/model"))

	// Nothing offered at all
	require.Empty(t, pickModel(nil, "b/two", "c/three"))
}

package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/text2image/internal/types"
)

var stats = types.StatsSnapshot{
	Total: 4,
	TopPrompts: []types.PromptCount{
		{Prompt: "A cat", Count: 3},
		{Prompt: "A dog", Count: 1},
	},
	Recent: []types.RecentPrompt{{Prompt: "A cat", Timestamp: "2024-05-01T10:00:00"}},
}

func TestCompileEmpty(t *testing.T) {
	e, err := Compile("", "")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.False(t, e.IsShell())
}

func TestCompileErrorsNameTheFlag(t *testing.T) {
	_, err := Compile("top_prompts[", "")
	assert.ErrorContains(t, err, `invalid --filter "top_prompts["`)

	_, err = Compile("", "total[")
	assert.ErrorContains(t, err, `invalid --query "total["`)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		query    string
		want     string
		wantJSON bool
	}{
		{"scalar", "", "total", "4", true},
		{"string is unquoted", "", "top_prompts[0].prompt", "A cat", false},
		{"projection", "", "top_prompts[].prompt", "[\n  \"A cat\",\n  \"A dog\"\n]", true},
		{"filter then query", "top_prompts[?count > `1`]", "[].prompt", "[\n  \"A cat\"\n]", true},
		{"filter only", "recent[].timestamp", "", "[\n  \"2024-05-01T10:00:00\"\n]", true},
		{"missing field", "", "nope", "null", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Compile(tt.filter, tt.query)
			require.NoError(t, err)

			out, err := e.Run(context.Background(), stats)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Text)
			assert.Equal(t, tt.wantJSON, out.JSON)
		})
	}
}

func TestRunUsesJSONFieldNames(t *testing.T) {
	e, err := Compile("", "length(top_prompts)")
	require.NoError(t, err)

	out, err := e.Run(context.Background(), stats)
	require.NoError(t, err)
	assert.Equal(t, "2", out.Text)
}

func TestRunShellQuery(t *testing.T) {
	e, err := Compile("top_prompts[0]", "$(cat)")
	require.NoError(t, err)
	assert.True(t, e.IsShell())

	out, err := e.Run(context.Background(), stats)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"count\": 3,\n  \"prompt\": \"A cat\"\n}", out.Text)
	assert.False(t, out.JSON)
}

func TestRunShellQueryFailure(t *testing.T) {
	e, err := Compile("", "$(echo broken pipe >&2; exit 3)")
	require.NoError(t, err)

	_, err = e.Run(context.Background(), stats)
	assert.ErrorContains(t, err, "query command")
	assert.ErrorContains(t, err, "broken pipe")
}

func TestRunShellQueryCancelled(t *testing.T) {
	e, err := Compile("", "$(sleep 5)")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Run(ctx, stats)
	assert.Error(t, err)
}

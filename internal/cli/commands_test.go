package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/text2image/internal/app"
	"github.com/studiowebux/text2image/internal/config"
	"github.com/studiowebux/text2image/internal/history"
	"github.com/studiowebux/text2image/internal/mock"
	"github.com/studiowebux/text2image/internal/types"
)

type testEnv struct {
	*Env
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newEnv(t *testing.T, baseURL, format, query, journalPath string) *testEnv {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	settings := config.Defaults()
	settings.BaseURL = baseURL
	settings.DownloadDir = t.TempDir()

	s, err := app.New(app.Options{
		Settings:    settings,
		Notifier:    Notifier(out, errOut),
		JournalPath: journalPath,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	printer, err := NewPrinter(out, format, "", query)
	require.NoError(t, err)

	return &testEnv{
		Env:    &Env{Session: s, Printer: printer, In: strings.NewReader(""), ErrOut: errOut},
		out:    out,
		errOut: errOut,
	}
}

func newBackend(t *testing.T, cfg *mock.Config) (*mock.Server, string) {
	t.Helper()
	server, err := mock.NewServer(cfg, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return server, ts.URL
}

func TestGenerateText(t *testing.T) {
	_, url := newBackend(t, &mock.Config{})
	env := newEnv(t, url, "", "", "")

	require.NoError(t, Generate(context.Background(), env.Env, "A cat", types.OriginCLI, ""))

	lines := strings.Split(strings.TrimSpace(env.out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Prompt: A cat", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], url+"/image/"), lines[1])
}

func TestGenerateJSONAndSave(t *testing.T) {
	_, url := newBackend(t, &mock.Config{})
	env := newEnv(t, url, FormatJSON, "", "")
	dest := filepath.Join(t.TempDir(), "out.png")

	require.NoError(t, Generate(context.Background(), env.Env, "A dog", types.OriginCLI, dest))

	var out GenerateOutput
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &out))
	assert.Equal(t, "A dog", out.Prompt)
	assert.Equal(t, dest, out.Saved)
	assert.FileExists(t, dest)
}

func TestGenerateFailures(t *testing.T) {
	_, url := newBackend(t, &mock.Config{FailPattern: "fail"})
	env := newEnv(t, url, "", "", "")

	err := Generate(context.Background(), env.Env, "please fail", types.OriginCLI, "")
	assert.ErrorIs(t, err, ErrReported)
	assert.Equal(t, "Image generation failed:\nGeneration failed: simulated backend error\n", env.errOut.String())
	assert.Empty(t, env.out.String())

	env.errOut.Reset()
	err = Generate(context.Background(), env.Env, "   ", types.OriginCLI, "")
	assert.ErrorIs(t, err, ErrReported)
	assert.Equal(t, "Please enter a prompt!\n", env.errOut.String())
}

func TestGenerateTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	env := newEnv(t, url, "", "", "")
	err := Generate(context.Background(), env.Env, "A cat", types.OriginCLI, "")
	assert.ErrorIs(t, err, ErrReported)
	assert.True(t, strings.HasPrefix(env.errOut.String(), "Network error:\n"), env.errOut.String())
}

func TestHistoryListAndClear(t *testing.T) {
	server, url := newBackend(t, &mock.Config{})
	env := newEnv(t, url, "", "", "")
	ctx := context.Background()

	for _, p := range []string{"one", "two", "one"} {
		require.NoError(t, Generate(ctx, env.Env, p, types.OriginCLI, ""))
	}
	env.out.Reset()

	require.NoError(t, HistoryList(ctx, env.Env))
	assert.Equal(t, " 1. one\n 2. two\n", env.out.String())

	declined := history.ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
	require.NoError(t, HistoryClear(ctx, env.Env, declined))
	assert.Contains(t, env.errOut.String(), "Cancelled.")
	assert.Len(t, server.History(), 3)

	env.out.Reset()
	require.NoError(t, HistoryClear(ctx, env.Env, history.AlwaysConfirm))
	assert.Equal(t, "History cleared.\n", env.out.String())
	assert.Empty(t, server.History())
	assert.Equal(t, 0, env.Session.History.Len())
}

func TestHistoryClearNonInteractive(t *testing.T) {
	server, url := newBackend(t, &mock.Config{})
	env := newEnv(t, url, "", "", "")
	ctx := context.Background()
	require.NoError(t, Generate(ctx, env.Env, "keep me", types.OriginCLI, ""))

	err := HistoryClear(ctx, env.Env, Confirmer(false, strings.NewReader("y\n"), env.errOut))
	assert.ErrorIs(t, err, ErrNotInteractive)
	assert.Len(t, server.History(), 1)
}

func TestHistoryClearServerFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	env := newEnv(t, ts.URL, "", "", "")
	err := HistoryClear(context.Background(), env.Env, history.AlwaysConfirm)
	assert.ErrorIs(t, err, ErrReported)
	assert.Equal(t, "Failed to clear history.\n", env.errOut.String())
}

func TestStatsOutput(t *testing.T) {
	_, url := newBackend(t, &mock.Config{})
	ctx := context.Background()

	env := newEnv(t, url, "", "", "")
	for _, p := range []string{"a", "b", "a"} {
		require.NoError(t, Generate(ctx, env.Env, p, types.OriginCLI, ""))
	}

	env.out.Reset()
	require.NoError(t, Stats(ctx, env.Env))
	text := env.out.String()
	assert.Contains(t, text, "Total generations: 3\n")
	assert.Contains(t, text, "  a (2)\n  b (1)\n")
	assert.Contains(t, text, "Recent:\n  a — ")

	queried := newEnv(t, url, "", "top_prompts[0].prompt", "")
	require.NoError(t, Stats(ctx, queried.Env))
	assert.Equal(t, "a\n", queried.out.String())

	counted := newEnv(t, url, "", "top_prompts[?prompt == 'a'].count", "")
	require.NoError(t, Stats(ctx, counted.Env))
	assert.Equal(t, "[\n  2\n]\n", counted.out.String())

	yamlEnv := newEnv(t, url, FormatYAML, "", "")
	require.NoError(t, Stats(ctx, yamlEnv.Env))
	var snap types.StatsSnapshot
	require.NoError(t, yaml.Unmarshal(yamlEnv.out.Bytes(), &snap))
	assert.Equal(t, 3, snap.Total)
}

func TestStatusPartialFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/generate/history":
			_, _ = w.Write([]byte(`[{"prompt": "x", "timestamp": "t"}]`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error": "stats offline"}`))
		}
	}))
	defer ts.Close()

	env := newEnv(t, ts.URL, "", "", "")
	require.NoError(t, Status(context.Background(), env.Env))
	assert.Contains(t, env.out.String(), "   1. x\n")
	assert.Contains(t, env.out.String(), "Stats unavailable: stats offline\n")
}

func TestStatusBothFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	env := newEnv(t, ts.URL, FormatJSON, "", "")
	err := Status(context.Background(), env.Env)
	assert.Error(t, err)

	var out StatusOutput
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &out))
	assert.NotEmpty(t, out.HistoryError)
	assert.NotEmpty(t, out.StatsError)
}

func TestDownloads(t *testing.T) {
	_, url := newBackend(t, &mock.Config{})
	env := newEnv(t, url, FormatJSON, "", "")
	ctx := context.Background()

	require.NoError(t, Generate(ctx, env.Env, "A cat", types.OriginCLI, ""))
	var gen GenerateOutput
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &gen))

	require.NoError(t, Download(ctx, env.Env, gen.URL, ""))
	assert.FileExists(t, filepath.Join(env.Session.Settings.DownloadDir, "generated_image.png"))

	require.NoError(t, DownloadAll(ctx, env.Env, ""))
	assert.FileExists(t, filepath.Join(env.Session.Settings.DownloadDir, "generated_images.zip"))
	assert.Contains(t, env.errOut.String(), "Saved ")

	err := Download(ctx, env.Env, "/image/missing.png", filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorContains(t, err, "download failed")
}

func TestJournalCommands(t *testing.T) {
	_, url := newBackend(t, &mock.Config{FailPattern: "bad"})
	env := newEnv(t, url, "", "", filepath.Join(t.TempDir(), "journal.db"))
	ctx := context.Background()
	mgr := env.Session.Journal
	require.NotNil(t, mgr)

	require.NoError(t, Generate(ctx, env.Env, "good", types.OriginTemplate, ""))
	_ = Generate(ctx, env.Env, "bad", types.OriginCLI, "")

	env.out.Reset()
	require.NoError(t, JournalList(env.Env, mgr, 0))
	lines := strings.Split(strings.TrimSpace(env.out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "service")
	assert.Contains(t, lines[0], "(Generation failed: simulated backend error)")
	assert.Contains(t, lines[1], "succeeded")
	assert.Contains(t, lines[1], "template")

	require.NoError(t, JournalClear(ctx, env.Env, mgr, history.AlwaysConfirm))
	count, err := mgr.GetCount()
	require.NoError(t, err)
	assert.Zero(t, count)

	env.out.Reset()
	require.NoError(t, JournalList(env.Env, mgr, 5))
	assert.Equal(t, "Journal is empty.\n", env.out.String())
}

func TestReadPrompt(t *testing.T) {
	p, err := ReadPrompt([]string{"A", "red", "fox"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "A red fox", p)

	p, err = ReadPrompt(nil, strings.NewReader("  piped prompt\n"))
	require.NoError(t, err)
	assert.Equal(t, "piped prompt", p)

	p, err = ReadPrompt(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := &PromptConfirmer{In: strings.NewReader(tt.input), Out: &out, Interactive: true}
		got, err := c.Confirm(context.Background(), history.ClearQuestion)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Are you sure you want to clear history? [y/N]: ", out.String())
	}
}

func TestNewPrinter(t *testing.T) {
	_, err := NewPrinter(os.Stdout, "xml", "", "")
	assert.Error(t, err)

	_, err = NewPrinter(os.Stdout, "", "", "total[")
	assert.ErrorContains(t, err, "--query")

	_, err = NewPrinter(os.Stdout, "", "top[", "")
	assert.ErrorContains(t, err, "--filter")

	p, err := NewPrinter(&bytes.Buffer{}, "", "", "")
	require.NoError(t, err)
	assert.Nil(t, p.Expr)

	p, err = NewPrinter(&bytes.Buffer{}, "", "", "total")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, p.Format)
	assert.False(t, p.Color)

	p, err = NewPrinter(&bytes.Buffer{}, "", "", "$(cat)")
	require.NoError(t, err)
	assert.True(t, p.Expr.IsShell())
}

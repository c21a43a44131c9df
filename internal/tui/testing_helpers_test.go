package tui

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/text2image/internal/app"
	"github.com/studiowebux/text2image/internal/config"
	"github.com/studiowebux/text2image/internal/mock"
	"github.com/studiowebux/text2image/internal/notice"
)

// testEnv bundles a model wired to an in-process mock backend
type testEnv struct {
	m       *Model
	backend *mock.Server
	server  *httptest.Server
	notices *notice.Queue
	copied  []string
	opened  []string
}

// CreateTestModel creates a sized Model talking to a mock backend
func CreateTestModel(t *testing.T, mockConfig *mock.Config) *testEnv {
	t.Helper()

	if mockConfig == nil {
		mockConfig = &mock.Config{}
	}
	backend, err := mock.NewServer(mockConfig, nil)
	if err != nil {
		t.Fatalf("Failed to create mock backend: %v", err)
	}
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	settings := config.Defaults()
	settings.BaseURL = ts.URL
	settings.DownloadDir = t.TempDir()

	notices := notice.NewQueue()
	session, err := app.New(app.Options{Settings: settings, Notifier: notices})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })

	env := &testEnv{backend: backend, server: ts, notices: notices}
	env.m = New(context.Background(), Options{Session: session, Notices: notices})
	env.m.writeClipboard = func(s string) error {
		env.copied = append(env.copied, s)
		return nil
	}
	env.m.openURL = func(s string) error {
		env.opened = append(env.opened, s)
		return nil
	}
	env.m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return env
}

// press sends a key and runs the resulting commands to completion
func (e *testEnv) press(t *testing.T, key tea.KeyMsg) {
	t.Helper()
	_, cmd := e.m.Update(key)
	e.run(t, cmd)
}

// run executes cmd and feeds the model's own result messages back into Update.
// Timers and component ticks are dropped.
func (e *testEnv) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case generationDoneMsg, historyLoadedMsg, statsLoadedMsg, clearDoneMsg,
			imageSavedMsg, browserOpenedMsg, versionCheckMsg:
			_, next := e.m.Update(msg)
			e.run(t, next)
		}
	}
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(time.Second):
		return nil
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyCtrlC = tea.KeyMsg{Type: tea.KeyCtrlC}
	keyCtrlT = tea.KeyMsg{Type: tea.KeyCtrlT}
)

// AssertModelField checks a model property and reports a readable failure
func AssertModelField[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("Expected %s to be %v, got %v", name, want, got)
	}
}

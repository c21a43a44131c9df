package tui

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/text2image/internal/app"
	"github.com/studiowebux/text2image/internal/generate"
	"github.com/studiowebux/text2image/internal/keybinds"
	"github.com/studiowebux/text2image/internal/logging"
	"github.com/studiowebux/text2image/internal/notice"
	"github.com/studiowebux/text2image/internal/version"
)

// Options configures the TUI
type Options struct {
	Session *app.Session
	// Notices must be the notifier the session was built with
	Notices  *notice.Queue
	Keybinds *keybinds.Registry
	// Checker enables the startup release check when set
	Checker *version.Checker
}

// New creates a new TUI model
func New(ctx context.Context, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "Describe the image you want..."
	input.Prompt = "> "
	input.CharLimit = 1000
	input.Focus()

	search := textinput.New()
	search.Prompt = "/"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleWarning

	keys := opts.Keybinds
	if keys == nil {
		keys = keybinds.NewDefaultRegistry()
	}
	notices := opts.Notices
	if notices == nil {
		notices = notice.NewQueue()
	}
	logger := opts.Session.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	m := &Model{
		ctx:            ctx,
		session:        opts.Session,
		ctrl:           opts.Session.Controller,
		client:         opts.Session.Client,
		store:          opts.Session.History,
		notices:        notices,
		keys:           keys,
		logger:         logger,
		checker:        opts.Checker,
		mode:           ModeInput,
		input:          input,
		searchInput:    search,
		spinner:        sp,
		state:          opts.Session.Controller.State(),
		historyState:   NewHistoryState(),
		templates:      generate.Templates,
		writeClipboard: clipboard.WriteAll,
		openURL:        openBrowser,
	}
	m.syncHistory()
	return m
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// openBrowser opens the default browser with the given URL
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}

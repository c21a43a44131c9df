package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/studiowebux/text2image/internal/api"
	"github.com/studiowebux/text2image/internal/app"
	"github.com/studiowebux/text2image/internal/generate"
	"github.com/studiowebux/text2image/internal/history"
	"github.com/studiowebux/text2image/internal/keybinds"
	"github.com/studiowebux/text2image/internal/notice"
	"github.com/studiowebux/text2image/internal/types"
	"github.com/studiowebux/text2image/internal/version"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeInput Mode = iota
	ModeNormal
	ModeSearch
	ModeTemplates
	ModeConfirmClear
	ModeHelp
)

// Model represents the TUI state
type Model struct {
	ctx     context.Context
	session *app.Session
	ctrl    *generate.Controller
	client  *api.Client
	store   *history.Store
	notices *notice.Queue
	keys    *keybinds.Registry
	logger  *log.Logger
	checker *version.Checker

	mode Mode
	// returnMode is restored when a modal closes
	returnMode Mode

	input       textinput.Model
	searchInput textinput.Model
	spinner     spinner.Model

	// state mirrors the controller after the last Submit or Resolve
	state        generate.State
	historyState *HistoryState
	templates    []string
	templateIdx  int

	stats    *types.StatsSnapshot
	statsErr string

	clearing bool
	// refreshPending counts outstanding replies of a manual refresh
	refreshPending int
	refreshFailed  bool

	statusMsg string
	errorMsg  string

	updateAvailable bool
	latestVersion   string

	width  int
	height int

	// side effects, replaceable in tests
	writeClipboard func(string) error
	openURL        func(string) error
}

// Custom message types

type generationDoneMsg struct {
	ticket generate.Ticket
	result generate.Result
}

type historyLoadedMsg struct {
	records []types.HistoryRecord
	err     error
}

type statsLoadedMsg struct {
	stats *types.StatsSnapshot
	err   error
}

type clearDoneMsg struct {
	err error
}

type imageSavedMsg struct {
	path string
	size int64
	err  error
}

type browserOpenedMsg struct {
	url string
	err error
}

type versionCheckMsg struct {
	update *version.Update
	err    error
}

type clearStatusMsg struct{}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadHistory(), m.loadStats()}
	if m.checker != nil {
		cmds = append(cmds, m.checkVersion())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, m.mainWidth()-8)

	case spinner.TickMsg:
		if m.ctrl.Outstanding() > 0 {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	case generationDoneMsg:
		cmd = m.resolveGeneration(msg)

	case historyLoadedMsg:
		cmd = m.refreshDone(msg.err)
		if msg.err != nil {
			m.logger.Warn("history fetch failed", "err", msg.err)
			break
		}
		m.store.Hydrate(msg.records)
		m.syncHistory()

	case statsLoadedMsg:
		cmd = m.refreshDone(msg.err)
		if msg.err != nil {
			m.logger.Warn("stats fetch failed", "err", msg.err)
			m.statsErr = "Stats unavailable"
			break
		}
		m.stats = msg.stats
		m.statsErr = ""

	case clearDoneMsg:
		m.clearing = false
		if outcome, _ := m.store.CompleteClear(msg.err); outcome == history.ClearSucceeded {
			m.syncHistory()
		}

	case imageSavedMsg:
		if msg.err != nil {
			m.errorMsg = "Save failed: " + api.ServerMessage(msg.err)
			if api.IsTransport(msg.err) {
				m.errorMsg = "Save failed: " + generate.MsgNetworkError
			}
			break
		}
		cmd = m.setStatus("Image saved to " + msg.path)

	case browserOpenedMsg:
		if msg.err != nil {
			m.errorMsg = "Could not open browser: " + msg.err.Error()
			break
		}
		cmd = m.setStatus("Opened " + msg.url)

	case versionCheckMsg:
		if msg.err == nil && msg.update != nil && msg.update.Available {
			m.updateAvailable = true
			m.latestVersion = msg.update.Latest
		}

	case clearStatusMsg:
		m.statusMsg = ""

	default:
		// textinput.Blink and other component messages
		if m.mode == ModeSearch {
			m.searchInput, cmd = m.searchInput.Update(msg)
		} else {
			m.input, cmd = m.input.Update(msg)
		}
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if n, ok := m.notices.Peek(); ok {
		return m.renderNotice(n)
	}

	switch m.mode {
	case ModeTemplates:
		return m.renderTemplates()
	case ModeConfirmClear:
		return m.renderConfirmClear()
	case ModeHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// syncHistory refreshes the visible list from the store
func (m *Model) syncHistory() {
	m.historyState.SetEntries(m.store.Entries())
}

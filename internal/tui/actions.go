package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/text2image/internal/api"
	"github.com/studiowebux/text2image/internal/generate"
	"github.com/studiowebux/text2image/internal/types"
	"github.com/studiowebux/text2image/internal/version"
)

const statusTimeout = 4 * time.Second

// submit hands text to the controller and, if accepted, starts the request
func (m *Model) submit(text string, origin types.Origin) tea.Cmd {
	wasIdle := m.ctrl.Outstanding() == 0

	ticket, err := m.ctrl.Submit(text, origin)
	if err != nil {
		// the controller queued a validation notice
		return nil
	}

	m.state = m.ctrl.State()
	m.errorMsg = ""
	m.input.SetValue(ticket.Prompt)
	m.input.CursorEnd()

	ctx, ctrl := m.ctx, m.ctrl
	run := func() tea.Msg {
		return generationDoneMsg{ticket: ticket, result: ctrl.Execute(ctx, ticket)}
	}
	if wasIdle {
		return tea.Batch(m.spinner.Tick, run)
	}
	return run
}

// resolveGeneration applies a finished request
func (m *Model) resolveGeneration(msg generationDoneMsg) tea.Cmd {
	state, applied := m.ctrl.Resolve(msg.ticket, msg.result)
	m.state = state
	m.syncHistory()

	if applied && state.Phase == generate.PhaseSucceeded {
		m.input.SetValue(state.Prompt)
		m.input.CursorEnd()
	}
	return nil
}

func (m *Model) loadHistory() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		records, err := client.FetchHistory(ctx)
		return historyLoadedMsg{records: records, err: err}
	}
}

func (m *Model) loadStats() tea.Cmd {
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		stats, err := client.FetchStats(ctx)
		return statsLoadedMsg{stats: stats, err: err}
	}
}

// refresh refetches history and stats. The status line reports once both replies landed.
func (m *Model) refresh() tea.Cmd {
	m.refreshPending = 2
	m.refreshFailed = false
	m.statusMsg = "Refreshing..."
	m.errorMsg = ""
	return tea.Batch(m.loadHistory(), m.loadStats())
}

// refreshDone counts a refresh reply and reports when the last one arrives
func (m *Model) refreshDone(err error) tea.Cmd {
	if m.refreshPending == 0 {
		return nil
	}
	if err != nil {
		m.refreshFailed = true
	}
	m.refreshPending--
	if m.refreshPending > 0 {
		return nil
	}
	if m.refreshFailed {
		m.statusMsg = ""
		m.errorMsg = "Refresh failed, see log"
		return nil
	}
	return m.setStatus("Refreshed")
}

// startClear runs the server clear after the modal was confirmed
func (m *Model) startClear() tea.Cmd {
	m.clearing = true
	ctx, client := m.ctx, m.client
	return func() tea.Msg {
		return clearDoneMsg{err: client.ClearHistory(ctx)}
	}
}

// copyImageURL puts the absolute URL of the displayed image on the clipboard
func (m *Model) copyImageURL() tea.Cmd {
	if !m.state.HasImage() {
		m.errorMsg = "No image to copy"
		return nil
	}
	url, err := m.client.ResolveURL(m.state.ImageURL)
	if err != nil {
		m.errorMsg = err.Error()
		return nil
	}
	if err := m.writeClipboard(url); err != nil {
		m.errorMsg = "Failed to copy: " + err.Error()
		return nil
	}
	return m.setStatus("Image URL copied to clipboard")
}

// saveImage downloads the displayed image as generated_image.png
func (m *Model) saveImage() tea.Cmd {
	if !m.state.HasImage() {
		m.errorMsg = "No image to save"
		return nil
	}
	dest, err := m.session.Settings.DownloadPath(api.ImageFilename)
	if err != nil {
		m.errorMsg = err.Error()
		return nil
	}

	ctx, client, ref := m.ctx, m.client, m.state.ImageURL
	m.statusMsg = "Saving image..."
	return func() tea.Msg {
		n, err := client.DownloadImage(ctx, ref, dest)
		return imageSavedMsg{path: dest, size: n, err: err}
	}
}

// downloadAll hands the archive URL to the system browser
func (m *Model) downloadAll() tea.Cmd {
	url, open := m.client.DownloadAllURL(), m.openURL
	return func() tea.Msg {
		return browserOpenedMsg{url: url, err: open(url)}
	}
}

func (m *Model) checkVersion() tea.Cmd {
	ctx, checker := m.ctx, m.checker
	return func() tea.Msg {
		update, err := checker.Check(ctx, version.Current)
		return versionCheckMsg{update: update, err: err}
	}
}

// setStatus shows a transient status message
func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.errorMsg = ""
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

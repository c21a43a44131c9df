package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/text2image/internal/keybinds"
	"github.com/studiowebux/text2image/internal/types"
)

// handleKeyPress routes key presses based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keys.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	// a pending notice captures the keyboard until dismissed
	if m.notices.Len() > 0 {
		return m.handleNoticeKeys(msg)
	}

	switch m.mode {
	case ModeNormal:
		return m.handleNormalKeys(msg)
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeTemplates:
		return m.handleTemplateKeys(msg)
	case ModeConfirmClear:
		return m.handleConfirmClearKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	}
	return m.handleInputKeys(msg)
}

// handleInputKeys handles keys while the prompt field has focus. Unbound
// keys are typed into the field.
func (m *Model) handleInputKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keys.Match(keybinds.ContextInput, msg.String())
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}

	switch action {
	case keybinds.ActionTextSubmit:
		return m.submit(m.input.Value(), types.OriginInput)
	case keybinds.ActionSwitchFocus, keybinds.ActionTextCancel:
		m.focusHistory()
	case keybinds.ActionOpenTemplates:
		m.openTemplates()
	case keybinds.ActionTextClear:
		m.input.Reset()
	}
	return nil
}

// handleNormalKeys handles keys while the history list has focus
func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, partial := m.keys.MatchMultiKey(keybinds.ContextNormal, msg.String())
	if partial || !ok {
		return nil
	}

	switch action {
	case keybinds.ActionQuit:
		return tea.Quit
	case keybinds.ActionNavigateUp:
		m.historyState.Navigate(-1)
	case keybinds.ActionNavigateDown:
		m.historyState.Navigate(1)
	case keybinds.ActionGoToTop:
		m.historyState.Top()
	case keybinds.ActionGoToBottom:
		m.historyState.Bottom()
	case keybinds.ActionSwitchFocus, keybinds.ActionFocusInput:
		m.focusInput()
	case keybinds.ActionRegenerate:
		if prompt, ok := m.historyState.Selected(); ok {
			return m.submit(prompt, types.OriginHistory)
		}
	case keybinds.ActionOpenSearch:
		m.mode = ModeSearch
		m.searchInput.SetValue(m.historyState.Query())
		m.searchInput.CursorEnd()
		return m.searchInput.Focus()
	case keybinds.ActionClearSearch:
		m.historyState.SetQuery("")
	case keybinds.ActionOpenTemplates:
		m.openTemplates()
	case keybinds.ActionClearHistory:
		m.returnMode = m.mode
		m.mode = ModeConfirmClear
	case keybinds.ActionRefresh:
		return m.refresh()
	case keybinds.ActionCopyImageURL:
		return m.copyImageURL()
	case keybinds.ActionSaveImage:
		return m.saveImage()
	case keybinds.ActionDownloadAll:
		return m.downloadAll()
	case keybinds.ActionOpenHelp:
		m.returnMode = m.mode
		m.mode = ModeHelp
	}
	return nil
}

// handleSearchKeys filters the history list as the query is typed
func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keys.Match(keybinds.ContextSearch, msg.String())
	if ok {
		switch action {
		case keybinds.ActionTextSubmit:
			m.searchInput.Blur()
			m.mode = ModeNormal
			return nil
		case keybinds.ActionTextCancel:
			m.searchInput.Blur()
			m.searchInput.Reset()
			m.historyState.SetQuery("")
			m.mode = ModeNormal
			return nil
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() != m.historyState.Query() {
		m.historyState.SetQuery(m.searchInput.Value())
	}
	return cmd
}

func (m *Model) handleTemplateKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keys.Match(keybinds.ContextTemplates, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionNavigateUp:
		m.templateIdx = (m.templateIdx - 1 + len(m.templates)) % len(m.templates)
	case keybinds.ActionNavigateDown:
		m.templateIdx = (m.templateIdx + 1) % len(m.templates)
	case keybinds.ActionSelect:
		prompt := m.templates[m.templateIdx]
		m.focusInput()
		return m.submit(prompt, types.OriginTemplate)
	case keybinds.ActionCloseModal:
		m.closeModal()
	}
	return nil
}

// handleConfirmClearKeys handles the clear history confirmation
func (m *Model) handleConfirmClearKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keys.Match(keybinds.ContextConfirm, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionConfirm:
		m.closeModal()
		return m.startClear()
	case keybinds.ActionCancel:
		m.logger.Debug("history clear declined")
		m.closeModal()
	}
	return nil
}

func (m *Model) handleNoticeKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keys.Match(keybinds.ContextNotice, msg.String()); ok && action == keybinds.ActionDismiss {
		m.notices.Ack()
	}
	return nil
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keys.Match(keybinds.ContextHelp, msg.String()); ok && action == keybinds.ActionCloseModal {
		m.closeModal()
	}
	return nil
}

func (m *Model) focusInput() {
	m.mode = ModeInput
	m.input.Focus()
}

func (m *Model) focusHistory() {
	m.mode = ModeNormal
	m.input.Blur()
	m.keys.ClearMultiKeyState(keybinds.ContextNormal)
}

func (m *Model) openTemplates() {
	m.returnMode = m.mode
	m.mode = ModeTemplates
	m.input.Blur()
}

// closeModal returns to the mode the modal was opened from
func (m *Model) closeModal() {
	if m.returnMode == ModeInput {
		m.focusInput()
		return
	}
	m.mode = m.returnMode
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/text2image/internal/history"
	"github.com/studiowebux/text2image/internal/keybinds"
	"github.com/studiowebux/text2image/internal/notice"
)

// modalBox wraps content in a bordered box centered on the screen
func (m *Model) modalBox(border lipgloss.AdaptiveColor, width int, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(min(width, max(20, m.width-6))).
		Padding(1, 2).
		Render(content)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}

// renderNotice shows the oldest pending notice until it is dismissed
func (m *Model) renderNotice(n notice.Notice) string {
	border, titleStyle, title := colorGreen, styleSuccess, "Notice"
	if n.IsError() {
		border, titleStyle, title = colorRed, styleError, "Error"
	}

	footer := styleSubtle.Render("Press " +
		m.keys.GetBindingString(keybinds.ContextNotice, keybinds.ActionDismiss) + " to dismiss")
	if pending := m.notices.Len(); pending > 1 {
		footer += styleSubtle.Render(fmt.Sprintf(" (%d more)", pending-1))
	}

	return m.modalBox(border, 60, titleStyle.Render(title)+"\n\n"+n.Text()+"\n\n"+footer)
}

// renderConfirmClear asks before the server history is cleared
func (m *Model) renderConfirmClear() string {
	body := history.ClearQuestion
	if n := m.store.Len(); n > 0 {
		body += "\n" + styleSubtle.Render(fmt.Sprintf("%d entries will be removed.", n))
	}

	footer := styleSubtle.Render(fmt.Sprintf("%s confirm | %s cancel",
		m.keys.GetBindingString(keybinds.ContextConfirm, keybinds.ActionConfirm),
		m.keys.GetBindingString(keybinds.ContextConfirm, keybinds.ActionCancel)))

	return m.modalBox(colorYellow, 60, styleWarning.Render("Clear History")+"\n\n"+body+"\n\n"+footer)
}

func (m *Model) renderTemplates() string {
	width := min(70, max(20, m.width-6)) - 6

	var b strings.Builder
	b.WriteString(styleTitle.Render("Prompt Templates"))
	b.WriteString("\n\n")
	for i, t := range m.templates {
		line := truncate(t, width-2)
		if i == m.templateIdx {
			b.WriteString(styleSelected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleSubtle.Render(fmt.Sprintf("%s generate | %s close",
		m.keys.GetBindingString(keybinds.ContextTemplates, keybinds.ActionSelect),
		m.keys.GetBindingString(keybinds.ContextTemplates, keybinds.ActionCloseModal))))

	return m.modalBox(colorCyan, 70, b.String())
}

// helpSections lists the contexts shown in the help modal, in display order
var helpSections = []struct {
	title   string
	context keybinds.Context
}{
	{"Prompt", keybinds.ContextInput},
	{"History", keybinds.ContextNormal},
	{"Search", keybinds.ContextSearch},
	{"Templates", keybinds.ContextTemplates},
}

// renderHelp lists the active bindings, grouped by action
func (m *Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")

	for _, section := range helpSections {
		b.WriteString("\n")
		b.WriteString(styleWarning.Render(section.title))
		b.WriteString("\n")

		seen := make(map[keybinds.Action]bool)
		for _, binding := range m.keys.ListBindings(section.context) {
			if seen[binding.Action] {
				continue
			}
			seen[binding.Action] = true
			keys := m.keys.GetBindingString(section.context, binding.Action)
			b.WriteString(fmt.Sprintf("  %-14s %s\n", keys, strings.ReplaceAll(string(binding.Action), "_", " ")))
		}
	}

	b.WriteString("\n")
	b.WriteString(styleSubtle.Render(m.keys.GetBindingString(keybinds.ContextHelp, keybinds.ActionCloseModal) + " close"))

	return m.modalBox(colorCyan, 60, b.String())
}

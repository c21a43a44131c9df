package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/text2image/internal/keybinds"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#0000ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleTitleUnfocused = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorGray)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleLink = lipgloss.NewStyle().
			Underline(true).
			Foreground(colorBlue)
)

// Layout
const (
	// rows taken by the status bar plus pane borders
	mainViewHeightOffset = 3
	minSideWidth         = 30
	narrowWidth          = 80
)

func (m *Model) sideWidth() int {
	if m.width < narrowWidth {
		return m.width / 2
	}
	return max(minSideWidth, m.width*35/100)
}

// mainWidth is the inner width of the prompt pane
func (m *Model) mainWidth() int {
	return max(0, m.width-m.sideWidth()-4)
}

// renderMain renders the prompt pane, the history and stats column and the status bar
func (m *Model) renderMain() string {
	height := max(4, m.height-mainViewHeightOffset)
	sideInner := m.sideWidth() - 2

	mainBorder, sideBorder := colorBlue, colorGray
	if m.mode == ModeNormal || m.mode == ModeSearch {
		mainBorder, sideBorder = colorGray, colorBlue
	}

	mainPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mainBorder).
		Width(m.mainWidth()).
		Height(height).
		Padding(0, 1).
		Render(m.renderPrompt())

	historyHeight := max(2, height*60/100)
	historyPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(sideBorder).
		Width(sideInner).
		Height(historyHeight).
		Render(m.renderHistory(historyHeight - 1))

	statsPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Width(sideInner).
		Height(max(1, height-historyHeight-2)).
		Render(m.renderStats())

	side := lipgloss.JoinVertical(lipgloss.Left, historyPane, statsPane)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, mainPane, side),
		m.renderStatusBar(),
	)
}

// renderPrompt renders the input field, the status line and the image
func (m *Model) renderPrompt() string {
	titleStyle := styleTitle
	if m.mode != ModeInput {
		titleStyle = styleTitleUnfocused
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Text to Image"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.state.Loading():
		b.WriteString(m.spinner.View() + " " + styleWarning.Render(m.state.StatusText()))
	case m.state.HasImage():
		b.WriteString(styleSuccess.Render(m.state.StatusText()))
	case m.state.StatusText() != "":
		b.WriteString(styleError.Render(m.state.StatusText()))
	}

	if outstanding := m.ctrl.Outstanding(); outstanding > 1 {
		b.WriteString(styleSubtle.Render(fmt.Sprintf("  (%d requests in flight)", outstanding)))
	}

	if m.state.HasImage() {
		url := m.state.ImageURL
		if abs, err := m.client.ResolveURL(url); err == nil {
			url = abs
		}
		b.WriteString("\n\n")
		b.WriteString(styleSubtle.Render("Image: "))
		b.WriteString(styleLink.Render(url))
		b.WriteString("\n")
		b.WriteString(styleSubtle.Render(fmt.Sprintf("%s copy URL | %s save | %s download all",
			m.keys.GetBindingString(keybinds.ContextNormal, keybinds.ActionCopyImageURL),
			m.keys.GetBindingString(keybinds.ContextNormal, keybinds.ActionSaveImage),
			m.keys.GetBindingString(keybinds.ContextNormal, keybinds.ActionDownloadAll))))
	}

	return b.String()
}

// renderHistory renders the visible history entries with the selection and filter hits
func (m *Model) renderHistory(rows int) string {
	title := fmt.Sprintf("History (%d)", m.historyState.Total())
	if q := m.historyState.Query(); q != "" {
		title = fmt.Sprintf("History (%d/%d) /%s", m.historyState.Len(), m.historyState.Total(), q)
	}
	if m.clearing {
		title += " clearing..."
	}

	titleStyle := styleTitleUnfocused
	if m.mode == ModeNormal || m.mode == ModeSearch {
		titleStyle = styleTitle
	}

	lines := []string{titleStyle.Render(title)}
	if m.historyState.Len() == 0 {
		if m.historyState.Total() == 0 {
			lines = append(lines, styleSubtle.Render("No history yet"))
		} else {
			lines = append(lines, styleSubtle.Render("No matches"))
		}
		return strings.Join(lines, "\n")
	}

	width := m.sideWidth() - 4
	visible := m.historyState.Rows()

	// keep the selection in view
	start := 0
	if rows > 1 && m.historyState.Index() >= rows-1 {
		start = m.historyState.Index() - rows + 2
	}
	end := min(len(visible), start+max(1, rows-1))

	for i := start; i < end; i++ {
		row := visible[i]
		text := truncate(row.prompt, width)
		if i == m.historyState.Index() && m.mode != ModeInput {
			lines = append(lines, styleSelected.Render(" "+text+" "))
			continue
		}
		lines = append(lines, " "+highlight(text, row.matched)+" ")
	}
	return strings.Join(lines, "\n")
}

// renderStats renders the stats snapshot fetched at startup or on refresh
func (m *Model) renderStats() string {
	lines := []string{styleTitleUnfocused.Render("Stats")}

	switch {
	case m.statsErr != "":
		lines = append(lines, styleError.Render(m.statsErr))
	case m.stats == nil:
		lines = append(lines, styleSubtle.Render("Loading..."))
	default:
		width := m.sideWidth() - 4
		lines = append(lines, fmt.Sprintf("Total: %d", m.stats.Total))
		for i, p := range m.stats.TopPrompts {
			if i == 3 {
				break
			}
			lines = append(lines, truncate(fmt.Sprintf("%d× %s", p.Count, p.Prompt), width))
		}
	}
	return strings.Join(lines, "\n")
}

// renderStatusBar renders the mode, messages and key hints
func (m *Model) renderStatusBar() string {
	left := styleTitle.Render(modeLabel(m.mode))
	if m.updateAvailable {
		left += " " + styleWarning.Render("update "+m.latestVersion+" available")
	}

	right := ""
	switch {
	case m.mode == ModeSearch:
		right = m.searchInput.View()
	case m.errorMsg != "":
		right = styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		right = styleSuccess.Render(m.statusMsg)
	default:
		right = styleSubtle.Render(fmt.Sprintf("%s switch focus | %s help | %s quit",
			m.keys.GetBindingString(keybinds.ContextNormal, keybinds.ActionSwitchFocus),
			m.keys.GetBindingString(keybinds.ContextNormal, keybinds.ActionOpenHelp),
			m.keys.GetBindingString(keybinds.ContextNormal, keybinds.ActionQuit)))
	}

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

func modeLabel(mode Mode) string {
	switch mode {
	case ModeNormal:
		return "HISTORY"
	case ModeSearch:
		return "SEARCH"
	case ModeTemplates:
		return "TEMPLATES"
	case ModeConfirmClear:
		return "CONFIRM"
	case ModeHelp:
		return "HELP"
	}
	return "INPUT"
}

// truncate shortens s to width runes with a trailing ellipsis
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// highlight renders the byte offsets in matched with the warning style
func highlight(s string, matched []int) string {
	if len(matched) == 0 {
		return s
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(styleWarning.Render(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

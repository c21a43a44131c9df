/*
Package tui implements the interactive text2image terminal UI on bubbletea.

# Layout

	┌ Prompt ─────────────────────────┐┌ History ───────────┐
	│ > A cat wearing sunglasses      ││ A cat ...          │
	│ ⣾ Generating...                 ││ A robot ...        │
	│ Image: http://.../image/x.png   │├ Stats ─────────────┤
	└─────────────────────────────────┘│ Total: 12          │
	 status bar                         └────────────────────┘

# Modes

  - ModeInput: the prompt field has focus; enter submits
  - ModeNormal: the history list has focus; enter regenerates the selection
  - ModeSearch: fuzzy filter over the history list
  - ModeTemplates: template prompt picker
  - ModeConfirmClear: "Are you sure you want to clear history?"
  - ModeHelp: keybinding reference

Pending notices (generation failures, clear outcomes, validation) are drawn
as a modal over any mode and must be dismissed one at a time.

# Concurrency

Every state change happens in Update. Generation, history and stats
fetches, clear and downloads run as tea.Cmds and report back through
messages. Several generations may be in flight; the controller decides which
result is displayed.

Keybindings come from the keybinds package and can be overridden in
~/.text2image/keybinds.json.
*/
package tui

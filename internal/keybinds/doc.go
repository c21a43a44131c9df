/*
Package keybinds provides customizable keyboard binding management for the TUI.

Bindings are grouped by Context. Each screen state of the UI (prompt input,
history list, search, template picker, confirmation, notice, help) has its
own context, and every context falls back to ContextGlobal when a key is
not bound locally.

Users override defaults in ~/.text2image/keybinds.json:

	{
	  "version": "1.0",
	  // comments are allowed
	  "normal": {
	    "clear_history": "X",
	    "navigate_up": "up,k,ctrl+p"
	  }
	}

A configured action replaces every default key for that action in the
context. "gg" style sequences require the first key to be bound to
go_to_top_prepare; the Validator reports sequences that can never fire.
*/
package keybinds

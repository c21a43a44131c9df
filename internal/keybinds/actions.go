package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal    Context = "global"    // Available everywhere
	ContextInput     Context = "input"     // Prompt input focused
	ContextNormal    Context = "normal"    // History list focused
	ContextSearch    Context = "search"    // Fuzzy history filter
	ContextTemplates Context = "templates" // Template picker
	ContextConfirm   Context = "confirm"   // Confirmation dialogs
	ContextNotice    Context = "notice"    // Notice dialog
	ContextHelp      Context = "help"      // Help viewer
)

const (
	// Global actions
	ActionQuit      Action = "quit"
	ActionQuitForce Action = "quit_force"

	// Navigation
	ActionNavigateUp     Action = "navigate_up"
	ActionNavigateDown   Action = "navigate_down"
	ActionGoToTop        Action = "go_to_top"
	ActionGoToTopPrepare Action = "go_to_top_prepare" // First 'g' in 'gg' sequence
	ActionGoToBottom     Action = "go_to_bottom"
	ActionSwitchFocus    Action = "switch_focus"

	// Prompt input
	ActionTextSubmit Action = "text_submit"
	ActionTextCancel Action = "text_cancel"
	ActionTextClear  Action = "text_clear"

	// History list
	ActionRegenerate    Action = "regenerate"
	ActionFocusInput    Action = "focus_input"
	ActionOpenSearch    Action = "open_search"
	ActionClearSearch   Action = "clear_search"
	ActionOpenTemplates Action = "open_templates"
	ActionOpenHelp      Action = "open_help"
	ActionClearHistory  Action = "clear_history"
	ActionRefresh       Action = "refresh"

	// Image
	ActionCopyImageURL Action = "copy_image_url"
	ActionSaveImage    Action = "save_image"
	ActionDownloadAll  Action = "download_all"

	// Modals
	ActionSelect     Action = "select"
	ActionCloseModal Action = "close_modal"
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"
	ActionDismiss    Action = "dismiss"
)

// allContexts lists every context a config file may address
var allContexts = []Context{
	ContextGlobal,
	ContextInput,
	ContextNormal,
	ContextSearch,
	ContextTemplates,
	ContextConfirm,
	ContextNotice,
	ContextHelp,
}

// knownActions is the whitelist used by ValidateAction
var knownActions = map[Action]bool{
	ActionQuit: true, ActionQuitForce: true,
	ActionNavigateUp: true, ActionNavigateDown: true,
	ActionGoToTop: true, ActionGoToTopPrepare: true, ActionGoToBottom: true,
	ActionSwitchFocus: true,
	ActionTextSubmit:  true, ActionTextCancel: true, ActionTextClear: true,
	ActionRegenerate: true, ActionFocusInput: true,
	ActionOpenSearch: true, ActionClearSearch: true,
	ActionOpenTemplates: true, ActionOpenHelp: true,
	ActionClearHistory: true, ActionRefresh: true,
	ActionCopyImageURL: true, ActionSaveImage: true, ActionDownloadAll: true,
	ActionSelect: true, ActionCloseModal: true,
	ActionConfirm: true, ActionCancel: true, ActionDismiss: true,
}

// IsKnownAction reports whether a is one of the actions the UI handles
func IsKnownAction(a Action) bool {
	return knownActions[a]
}

package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerInputBindings(r)
	registerNormalModeBindings(r)
	registerSearchBindings(r)
	registerTemplateBindings(r)
	registerConfirmBindings(r)
	registerNoticeBindings(r)
	registerHelpBindings(r)

	return r
}

func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

// registerInputBindings covers the prompt field; printable keys fall through to the textinput
func registerInputBindings(r *Registry) {
	r.Register(ContextInput, "enter", ActionTextSubmit)
	r.Register(ContextInput, "tab", ActionSwitchFocus)
	r.Register(ContextInput, "esc", ActionTextCancel)
	r.Register(ContextInput, "ctrl+t", ActionOpenTemplates)
	r.Register(ContextInput, "ctrl+u", ActionTextClear)
}

func registerNormalModeBindings(r *Registry) {
	r.RegisterMultiple(ContextNormal, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextNormal, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextNormal, "g", ActionGoToTopPrepare)
	r.RegisterMultiple(ContextNormal, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(ContextNormal, []string{"G", "end"}, ActionGoToBottom)
	r.Register(ContextNormal, "tab", ActionSwitchFocus)
	r.Register(ContextNormal, "i", ActionFocusInput)
	r.Register(ContextNormal, "enter", ActionRegenerate)
	r.Register(ContextNormal, "/", ActionOpenSearch)
	r.Register(ContextNormal, "esc", ActionClearSearch)
	r.Register(ContextNormal, "t", ActionOpenTemplates)
	r.Register(ContextNormal, "C", ActionClearHistory)
	r.Register(ContextNormal, "r", ActionRefresh)
	r.Register(ContextNormal, "c", ActionCopyImageURL)
	r.Register(ContextNormal, "s", ActionSaveImage)
	r.Register(ContextNormal, "D", ActionDownloadAll)
	r.Register(ContextNormal, "?", ActionOpenHelp)
	r.Register(ContextNormal, "q", ActionQuit)
}

func registerSearchBindings(r *Registry) {
	r.Register(ContextSearch, "enter", ActionTextSubmit)
	r.Register(ContextSearch, "esc", ActionTextCancel)
}

func registerTemplateBindings(r *Registry) {
	r.RegisterMultiple(ContextTemplates, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextTemplates, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextTemplates, "enter", ActionSelect)
	r.RegisterMultiple(ContextTemplates, []string{"esc", "q"}, ActionCloseModal)
}

func registerConfirmBindings(r *Registry) {
	r.RegisterMultiple(ContextConfirm, []string{"y", "Y", "enter"}, ActionConfirm)
	r.RegisterMultiple(ContextConfirm, []string{"n", "N", "esc", "q"}, ActionCancel)
}

func registerNoticeBindings(r *Registry) {
	r.RegisterMultiple(ContextNotice, []string{"enter", "esc", "q"}, ActionDismiss)
}

func registerHelpBindings(r *Registry) {
	r.RegisterMultiple(ContextHelp, []string{"esc", "?", "q"}, ActionCloseModal)
}

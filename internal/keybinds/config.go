package keybinds

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// Config is the user's keybinds.json. Each section maps an action name
// to a comma-separated key list ("navigate_up": "up,k").
type Config struct {
	Version   string            `json:"version"`
	Global    map[string]string `json:"global,omitempty"`
	Input     map[string]string `json:"input,omitempty"`
	Normal    map[string]string `json:"normal,omitempty"`
	Search    map[string]string `json:"search,omitempty"`
	Templates map[string]string `json:"templates,omitempty"`
	Confirm   map[string]string `json:"confirm,omitempty"`
	Notice    map[string]string `json:"notice,omitempty"`
	Help      map[string]string `json:"help,omitempty"`
}

// sections maps each context to its config section
func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal:    c.Global,
		ContextInput:     c.Input,
		ContextNormal:    c.Normal,
		ContextSearch:    c.Search,
		ContextTemplates: c.Templates,
		ContextConfirm:   c.Confirm,
		ContextNotice:    c.Notice,
		ContextHelp:      c.Help,
	}
}

// LoadConfig loads keybinding configuration from a JSON file. Comments and
// trailing commas are accepted.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}
	return &config, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SplitKeys parses a comma-separated key list. A lone "," binds the comma key.
func SplitKeys(list string) []string {
	if list == "," {
		return []string{","}
	}
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ApplyConfig applies user configuration to a registry.
// A configured action replaces all default keys for that action in the context.
func ApplyConfig(registry *Registry, config *Config) error {
	var errs []error
	for context, section := range config.sections() {
		actions := make([]string, 0, len(section))
		for name := range section {
			actions = append(actions, name)
		}
		sort.Strings(actions)

		for _, name := range actions {
			action := Action(name)
			if err := ValidateAction(name); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", context, err))
				continue
			}
			keys := SplitKeys(section[name])
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					errs = append(errs, fmt.Errorf("%s.%s: %w", context, name, err))
				}
			}
			registry.Unbind(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}
	return errors.Join(errs...)
}

// LoadOrDefault loads user config if it exists, otherwise returns the default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if _, err := os.Stat(configPath); err != nil {
		return registry, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
	}
	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}
	return registry, nil
}

// ExportDefaults renders the default registry in config form
func ExportDefaults() *Config {
	r := NewDefaultRegistry()
	config := &Config{Version: "1.0"}

	export := func(ctx Context) map[string]string {
		grouped := make(map[string][]string)
		for _, b := range r.ListBindings(ctx) {
			grouped[string(b.Action)] = append(grouped[string(b.Action)], b.Key)
		}
		out := make(map[string]string, len(grouped))
		for action, keys := range grouped {
			out[action] = strings.Join(keys, ",")
		}
		return out
	}

	config.Global = export(ContextGlobal)
	config.Input = export(ContextInput)
	config.Normal = export(ContextNormal)
	config.Search = export(ContextSearch)
	config.Templates = export(ContextTemplates)
	config.Confirm = export(ContextConfirm)
	config.Notice = export(ContextNotice)
	config.Help = export(ContextHelp)
	return config
}

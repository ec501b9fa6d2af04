package main

import "strings"

// ModelInfo is one model the backend can route a chat to.
type ModelInfo struct {
	ID   string
	Name string
}

// Label returns what the model picker shows.
func (m ModelInfo) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return formatModelName(m.ID)
}

// formatModelName prettifies a raw model id for display: drops the vendor
// prefix and the ":free" routing suffix, and capitalizes the words.
// "mistralai/mistral-7b-instruct:free" becomes "Mistral 7b Instruct".
func formatModelName(id string) string {
	name := id
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	name = strings.TrimSuffix(name, ":free")

	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// pickModel returns the model to select at startup: the persisted choice
// when it is still available, otherwise the configured default, otherwise
// the first model the backend offers.
func pickModel(models []ModelInfo, persisted, configured string) string {
	available := func(id string) bool {
		for _, m := range models {
			if m.ID == id {
				return true
			}
		}
		return false
	}
	if persisted != "" && available(persisted) {
		return persisted
	}
	if configured != "" && available(configured) {
		return configured
	}
	if len(models) > 0 {
		return models[0].ID
	}
	return ""
}

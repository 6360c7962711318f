package config

import (
	"maps"
	"sync"

	"github.com/papercomputeco/stackchat/pkg/llm"
)

// ToolFormats maps model ids to the tool prompt format their requests use.
// It is safe for concurrent use.
type ToolFormats struct {
	mu       sync.RWMutex
	entries  map[string]llm.ToolPromptFormat
	fallback llm.ToolPromptFormat
}

// NewToolFormats returns a table holding a copy of entries. Models missing
// from the table use fallback.
func NewToolFormats(entries map[string]llm.ToolPromptFormat, fallback llm.ToolPromptFormat) *ToolFormats {
	f := &ToolFormats{}
	f.Replace(entries, fallback)
	return f
}

// FormatsFrom builds the table described by cfg.
func FormatsFrom(cfg Config) *ToolFormats {
	return NewToolFormats(cfg.ModelFormats(), cfg.Inference.DefaultToolPromptFormat)
}

// Lookup returns the tool prompt format for model.
func (f *ToolFormats) Lookup(model string) llm.ToolPromptFormat {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if format, ok := f.entries[model]; ok {
		return format
	}
	return f.fallback
}

// Replace swaps the whole table.
func (f *ToolFormats) Replace(entries map[string]llm.ToolPromptFormat, fallback llm.ToolPromptFormat) {
	if !fallback.Valid() {
		fallback = llm.ToolPromptPythonList
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = maps.Clone(entries)
	if f.entries == nil {
		f.entries = map[string]llm.ToolPromptFormat{}
	}
	f.fallback = fallback
}

// Len returns the number of models with an explicit entry.
func (f *ToolFormats) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

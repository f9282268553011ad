// Package scripts tracks the ordered, user-controlled list of automation
// scripts a batch run applies, and discovers script files on disk.
package scripts

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Script is one automation script file. Only enabled scripts participate in
// a run; position in the registry is the execution order.
type Script struct {
	Path    string
	Enabled bool
}

// Name returns the script's file name for status messages.
func (s Script) Name() string { return filepath.Base(s.Path) }

// Registry holds scripts in execution order. It is not safe for concurrent
// use; the orchestrator assumes exclusive access for the duration of a run.
type Registry struct {
	items []Script
}

// Add registers a script path, enabled, at the end of the order. The path is
// made absolute and duplicates by path are rejected.
func (r *Registry) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	for _, it := range r.items {
		if strings.EqualFold(it.Path, abs) {
			return fmt.Errorf("script already registered: %s", abs)
		}
	}
	r.items = append(r.items, Script{Path: abs, Enabled: true})
	return nil
}

// Len reports how many scripts are registered, enabled or not.
func (r *Registry) Len() int { return len(r.items) }

// Scripts returns a copy of the full list in order.
func (r *Registry) Scripts() []Script {
	out := make([]Script, len(r.items))
	copy(out, r.items)
	return out
}

// Enabled returns the enabled subset, preserving order. The orchestrator
// evaluates this once per document, so disabling a script takes effect for
// subsequent documents in the same run.
func (r *Registry) Enabled() []Script {
	var out []Script
	for _, it := range r.items {
		if it.Enabled {
			out = append(out, it)
		}
	}
	return out
}

// SetEnabled flips participation for the script registered under path.
func (r *Registry) SetEnabled(path string, enabled bool) bool {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	for i := range r.items {
		if strings.EqualFold(r.items[i].Path, path) {
			r.items[i].Enabled = enabled
			return true
		}
	}
	return false
}

// MoveUp swaps the script at index i with its predecessor.
func (r *Registry) MoveUp(i int) bool {
	if i <= 0 || i >= len(r.items) {
		return false
	}
	r.items[i-1], r.items[i] = r.items[i], r.items[i-1]
	return true
}

// MoveDown swaps the script at index i with its successor.
func (r *Registry) MoveDown(i int) bool {
	if i < 0 || i >= len(r.items)-1 {
		return false
	}
	r.items[i+1], r.items[i] = r.items[i], r.items[i+1]
	return true
}

// RemoveDisabled drops every script whose enabled flag is off.
func (r *Registry) RemoveDisabled() {
	kept := r.items[:0]
	for _, it := range r.items {
		if it.Enabled {
			kept = append(kept, it)
		}
	}
	r.items = kept
}

// Discover walks dir recursively and returns every .lsp file found, in walk
// order. A missing dir is created and yields an empty result.
func Discover(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create script directory: %w", err)
		}
		return nil, nil
	}

	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".lsp") {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan script directory: %w", err)
	}
	return found, nil
}

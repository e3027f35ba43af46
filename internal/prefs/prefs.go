// Package prefs persists UI preferences that survive across sessions,
// independent of any collection load cycle.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/odelheim/lineup/internal/logging"
)

// prefsFile is the on-disk shape.
type prefsFile struct {
	CollapsedGroups []string `json:"collapsed_groups"`
}

// Prefs holds durable UI preferences. Implements engine.CollapseStore.
// Writes happen synchronously on every change; store failures degrade to
// in-memory state, never a hard failure.
type Prefs struct {
	path      string
	collapsed map[string]bool
}

// DefaultPath returns the preferences file path under the app dir.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lineup", "prefs.json")
}

// Load reads preferences from path. Absence or corruption yields empty
// preferences.
func Load(path string) *Prefs {
	p := &Prefs{path: path, collapsed: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("prefs unreadable, starting empty", "err", err)
		}
		return p
	}

	var f prefsFile
	if err := json.Unmarshal(data, &f); err != nil {
		logging.Warn("prefs corrupt, starting empty", "err", err)
		return p
	}

	for _, title := range f.CollapsedGroups {
		p.collapsed[title] = true
	}
	return p
}

// Collapsed reports whether a group title is collapsed.
func (p *Prefs) Collapsed(title string) bool {
	return p.collapsed[title]
}

// SetCollapsed updates a group's collapse state and writes immediately.
func (p *Prefs) SetCollapsed(title string, collapsed bool) {
	if collapsed {
		p.collapsed[title] = true
	} else {
		delete(p.collapsed, title)
	}
	if err := p.save(); err != nil {
		logging.Warn("prefs save failed", "err", err)
	}
}

func (p *Prefs) save() error {
	titles := make([]string, 0, len(p.collapsed))
	for t := range p.collapsed {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	data, err := json.MarshalIndent(prefsFile{CollapsedGroups: titles}, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0644)
}

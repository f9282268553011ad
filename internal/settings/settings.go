// Package settings persists the single configuration record the runner
// needs: where the engine executable lives. Read at startup, written on
// explicit save.
package settings

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFile is the settings file name used when none is configured.
const DefaultFile = "settings.json"

// engineExecutable is the file name probed for under install roots.
const engineExecutable = "acad.exe"

// DefaultInstallRoots are the install locations probed when no engine path
// has been configured yet.
var DefaultInstallRoots = []string{
	`C:\Program Files\Autodesk`,
	`C:\Program Files (x86)\Autodesk`,
}

// Settings is the persisted configuration record.
type Settings struct {
	EnginePath string `json:"autocad_location"`
}

// Load reads the settings file at path. When the file does not exist it is
// created with defaults, matching first-run behavior.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s := Settings{}
		if err := Save(path, s); err != nil {
			return Settings{}, err
		}
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings record as indented JSON.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// FindEngine walks the given install roots (DefaultInstallRoots when none
// are passed) looking for the engine executable. Returns the first hit or
// an empty string.
func FindEngine(roots ...string) string {
	if len(roots) == 0 {
		roots = DefaultInstallRoots
	}
	for _, root := range roots {
		var found string
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, keep walking siblings
			}
			if !d.IsDir() && strings.EqualFold(d.Name(), engineExecutable) {
				found = path
				return filepath.SkipAll
			}
			return nil
		})
		if found != "" {
			return found
		}
	}
	return ""
}

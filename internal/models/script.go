package models

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed scripts/clean_kitchen.yaml
var defaultScript []byte

// DefaultScript returns the built-in CLEAN_KITCHEN script.
func DefaultScript() (*Script, error) {
	return ParseScript(defaultScript)
}

// ParseScript decodes and validates a YAML (or plain JSON) script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScript reads a script file. Files ending in .json or .jsonc may
// carry comments and trailing commas.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ListScripts returns the script files found directly under dir.
func ListScripts(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json", ".jsonc":
			scripts = append(scripts, filepath.Join(dir, entry.Name()))
		}
	}
	return scripts, nil
}

// Validate checks the structural rules every script must satisfy and
// reports all violations at once.
func (s *Script) Validate() error {
	if len(s.Scenes) == 0 {
		return errors.New("script has no scenes")
	}

	var errs []error
	seen := make(map[string]int, len(s.Scenes))
	for i := range s.Scenes {
		scene := &s.Scenes[i]
		if scene.ID == "" {
			errs = append(errs, fmt.Errorf("scene #%d: missing id", i))
			continue
		}
		if prev, ok := seen[scene.ID]; ok {
			errs = append(errs, fmt.Errorf("scene #%d: duplicate id %q (first used by #%d)", i, scene.ID, prev))
		}
		seen[scene.ID] = i

		switch b := scene.Battle.(type) {
		case nil:
			if scene.Kind == KindBattle {
				errs = append(errs, fmt.Errorf("scene %q: battle has no payload", scene.ID))
			}
		case *QuizBattle:
			if len(b.Options) == 0 {
				errs = append(errs, fmt.Errorf("scene %q: quiz has no options", scene.ID))
			}
			ids := make(map[string]bool, len(b.Options))
			for _, o := range b.Options {
				if o.ID == "" {
					errs = append(errs, fmt.Errorf("scene %q: option without id", scene.ID))
				} else if ids[o.ID] {
					errs = append(errs, fmt.Errorf("scene %q: duplicate option id %q", scene.ID, o.ID))
				}
				ids[o.ID] = true
			}
		case *DebugBattle:
			lines := len(scene.CodeLines())
			if b.BugLine < 0 || b.BugLine >= lines {
				errs = append(errs, fmt.Errorf("scene %q: bug_line %d outside code context (%d lines)", scene.ID, b.BugLine, lines))
			}
		case *TerminalBattle:
			if len(b.ValidCommands) == 0 {
				errs = append(errs, fmt.Errorf("scene %q: terminal battle has no valid commands", scene.ID))
			}
		}
	}
	return errors.Join(errs...)
}

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inkworks/atelier/internal/agent"
	"github.com/inkworks/atelier/internal/runtime"
)

// File is an external catalog document: extra roles, tasks, and teams layered
// on top of the built-in defaults.
type File struct {
	Roles map[string]agent.Config `yaml:"roles"`
	Tasks []agent.Task            `yaml:"tasks"`
	Teams []runtime.Team          `yaml:"teams"`
}

// Load parses and validates one catalog file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return &f, nil
}

// LoadDir loads every .yaml/.yml file in a directory, in name order, and
// merges them into one catalog. Later files override earlier roles with the
// same name.
func LoadDir(dir string) (*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	merged := &File{Roles: make(map[string]agent.Config)}
	for _, name := range names {
		f, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		for role, cfg := range f.Roles {
			merged.Roles[role] = cfg
		}
		merged.Tasks = append(merged.Tasks, f.Tasks...)
		merged.Teams = append(merged.Teams, f.Teams...)
	}
	return merged, nil
}

// validate checks internal consistency: roles must name themselves, tasks
// need an id and prompt, and team role references must resolve against this
// file or the built-in defaults.
func (f *File) validate() error {
	defaults := DefaultConfigs()
	known := func(role string) bool {
		if _, ok := f.Roles[role]; ok {
			return true
		}
		_, ok := defaults[role]
		return ok
	}

	for name, cfg := range f.Roles {
		if cfg.Role == "" {
			// Allow the map key to stand in for the role field.
			cfg.Role = name
			f.Roles[name] = cfg
		} else if cfg.Role != name {
			return fmt.Errorf("role %q declares mismatched role field %q", name, cfg.Role)
		}
	}

	for i, task := range f.Tasks {
		if task.ID == "" {
			return fmt.Errorf("task %d has no id", i)
		}
		if task.Prompt == "" {
			return fmt.Errorf("task %s has no prompt", task.ID)
		}
		if task.Role != "" && !known(task.Role) {
			return fmt.Errorf("task %s references unknown role %q", task.ID, task.Role)
		}
	}

	for _, team := range f.Teams {
		if team.Name == "" {
			return fmt.Errorf("team with no name")
		}
		for _, role := range team.Roles {
			if !known(role) {
				return fmt.Errorf("team %s references unknown role %q", team.Name, role)
			}
		}
	}
	return nil
}

// MergedConfigs returns the built-in role catalog with this file's roles
// layered on top.
func (f *File) MergedConfigs() map[string]agent.Config {
	configs := DefaultConfigs()
	for role, cfg := range f.Roles {
		configs[role] = cfg
	}
	return configs
}

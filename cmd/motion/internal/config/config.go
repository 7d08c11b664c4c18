package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// Config represents the optional motion.yaml configuration.
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Engine  EngineConfig  `yaml:"engine"`
}

// ProjectConfig contains host project metadata.
type ProjectConfig struct {
	Name string `yaml:"name,omitempty"`
}

// EngineConfig pins the native engine used by the project.
type EngineConfig struct {
	Version   string   `yaml:"version,omitempty"`
	Platforms []string `yaml:"platforms,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root        string
	ModulePath  string
	ProjectName string
	// EngineVersion is the pinned engine release, or empty when the project
	// tracks the CLI's own version.
	EngineVersion string
	// Platforms lists the engine platforms the project targets.
	Platforms []string
}

// ValidPlatforms are the engine platforms a project may target.
var ValidPlatforms = []string{"android", "ios"}

// LoadOptional reads motion.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, "motion.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read motion.yaml: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse motion.yaml: %w", err)
	}

	return &cfg, nil
}

// Resolve loads motion.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(cfg.Project.Name)
	if name == "" {
		name = defaultProjectName(modulePath, dir)
	}

	platforms := cfg.Engine.Platforms
	if len(platforms) == 0 {
		platforms = ValidPlatforms
	}
	if err := validatePlatforms(platforms); err != nil {
		return nil, err
	}

	return &Resolved{
		Root:          dir,
		ModulePath:    modulePath,
		ProjectName:   name,
		EngineVersion: strings.TrimSpace(cfg.Engine.Version),
		Platforms:     platforms,
	}, nil
}

// FindProjectRoot walks up from the current directory to find go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	return path, nil
}

// defaultProjectName derives a display name from the module path, ignoring
// a trailing major-version suffix like /v2.
func defaultProjectName(modulePath, dir string) string {
	base := filepath.Base(dir)
	modName, _, ok := module.SplitPathVersion(modulePath)
	if ok {
		parts := strings.Split(modName, "/")
		if len(parts) > 0 {
			base = parts[len(parts)-1]
		}
	}
	if base == "" {
		return "motion_app"
	}
	return base
}

func validatePlatforms(platforms []string) error {
	for _, p := range platforms {
		valid := false
		for _, v := range ValidPlatforms {
			if p == v {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("engine.platforms contains unknown platform %q (valid: %s)",
				p, strings.Join(ValidPlatforms, ", "))
		}
	}
	return nil
}

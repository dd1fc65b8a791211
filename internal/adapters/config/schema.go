package config

import "gopkg.in/yaml.v3"

// Kilnfile represents the structure of the kiln.yaml configuration file.
type Kilnfile struct {
	Version    string              `yaml:"version"`
	Default    string              `yaml:"default"`
	Output     string              `yaml:"output"`
	Categories []string            `yaml:"categories"`
	Modes      map[string]*ModeDTO `yaml:"modes"`
	// Targets is kept as a node so that declaration order survives decoding.
	Targets yaml.Node `yaml:"targets"`
	Watch   *WatchDTO `yaml:"watch"`
	Run     *RunDTO   `yaml:"run"`
}

// ModeDTO represents a build mode override.
type ModeDTO struct {
	Flags       map[string][]string `yaml:"flags"`
	Subpath     string              `yaml:"subpath"`
	Environment map[string]string   `yaml:"environment"`
}

// TargetDTO represents a target definition in the configuration.
type TargetDTO struct {
	Input       []string          `yaml:"input"`
	Cmd         []string          `yaml:"cmd"`
	Output      []string          `yaml:"output"`
	Flags       string            `yaml:"flags"`
	DependsOn   []string          `yaml:"dependsOn"`
	Environment map[string]string `yaml:"environment"`
	WorkingDir  string            `yaml:"workingDir"`
}

// WatchDTO represents the watch section.
type WatchDTO struct {
	Root     string   `yaml:"root"`
	Ignore   []string `yaml:"ignore"`
	Debounce string   `yaml:"debounce"`
}

// RunDTO represents the run step started after a successful watch build.
type RunDTO struct {
	Cmd         []string          `yaml:"cmd"`
	Args        []string          `yaml:"args"`
	WorkingDir  string            `yaml:"workingDir"`
	Environment map[string]string `yaml:"environment"`
	EnvFile     string            `yaml:"envFile"`
	Port        int               `yaml:"port"`
	Health      string            `yaml:"health"`
}

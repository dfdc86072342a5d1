// Package config provides taskfile parsing and validation for chore.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the default name for the chore taskfile
const ConfigFileName = "chore.yaml"

// DefaultFileNames are probed in order when no --config flag is given
var DefaultFileNames = []string{"chore.yaml", ".chore.yaml", "chore.toml"}

// Config represents the chore.yaml structure
type Config struct {
	Env                 map[string]string `yaml:"env,omitempty"      toml:"env,omitempty"`
	Version             string            `yaml:"version,omitempty"  toml:"version,omitempty"`
	MinimumChoreVersion string            `yaml:"minimum_chore_version,omitempty" toml:"minimum_chore_version,omitempty"`
	Tasks               []Task            `yaml:"tasks"              toml:"tasks"`
	Matchers            []Matcher         `yaml:"matchers,omitempty" toml:"matchers,omitempty"`
}

// Task represents a named command sequence
type Task struct {
	Env         map[string]string `yaml:"env,omitempty"         toml:"env,omitempty"`
	Name        string            `yaml:"name"                  toml:"name"`
	Description string            `yaml:"description,omitempty" toml:"description,omitempty"`
	Dir         string            `yaml:"dir,omitempty"         toml:"dir,omitempty"`
	Deps        []string          `yaml:"deps,omitempty"        toml:"deps,omitempty"`
	Args        []Arg             `yaml:"args,omitempty"        toml:"args,omitempty"`
	Steps       []Step            `yaml:"steps"                 toml:"steps"`
	Watch       []string          `yaml:"watch,omitempty"       toml:"watch,omitempty"`
	Tools       []string          `yaml:"tools,omitempty"       toml:"tools,omitempty"`
}

// Arg declares a task argument. An argument with no default is required.
type Arg struct {
	Default     *string `yaml:"default,omitempty"     toml:"default,omitempty"`
	Name        string  `yaml:"name"                  toml:"name"`
	Description string  `yaml:"description,omitempty" toml:"description,omitempty"`
}

// Required reports whether the caller must supply a value for this argument
func (a Arg) Required() bool {
	return a.Default == nil
}

// Step is a single command template inside a task
type Step struct {
	Env          map[string]string `yaml:"env,omitempty"           toml:"env,omitempty"`
	Run          string            `yaml:"run"                     toml:"run"`
	Dir          string            `yaml:"dir,omitempty"           toml:"dir,omitempty"`
	Matcher      string            `yaml:"matcher,omitempty"       toml:"matcher,omitempty"`
	IgnoreErrors bool              `yaml:"ignore_errors,omitempty" toml:"ignore_errors,omitempty"`
}

// Matcher turns step output lines into structured diagnostics.
// Pattern is a regexp2 expression with named groups: file, line, col,
// message, severity.
type Matcher struct {
	Name    string `yaml:"name"    toml:"name"`
	Pattern string `yaml:"pattern" toml:"pattern"`
}

// LoadConfig loads a chore taskfile from the given path. An empty path
// probes DefaultFileNames in the current directory.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		found, err := findDefaultConfig()
		if err != nil {
			return nil, err
		}
		configPath = found
	}

	if !filepath.IsAbs(configPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		configPath = filepath.Join(cwd, configPath)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- user-supplied taskfile path
	if err != nil {
		return nil, fmt.Errorf("failed to read taskfile %s: %w", configPath, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("taskfile %s is empty", configPath)
	}

	var config Config
	switch filepath.Ext(configPath) {
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse taskfile %s: %w", configPath, err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse taskfile %s: %w", configPath, err)
		}
	}

	return &config, nil
}

func findDefaultConfig() (string, error) {
	for _, name := range DefaultFileNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no taskfile found (looked for %s)", strings.Join(DefaultFileNames, ", "))
}

// Task returns the task with the given name
func (c *Config) Task(name string) (*Task, bool) {
	for i := range c.Tasks {
		if c.Tasks[i].Name == name {
			return &c.Tasks[i], true
		}
	}
	return nil, false
}

// TaskNames returns the task names in declaration order
func (c *Config) TaskNames() []string {
	names := make([]string, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		names = append(names, t.Name)
	}
	return names
}

// MatcherByName returns the matcher with the given name
func (c *Config) MatcherByName(name string) (*Matcher, bool) {
	for i := range c.Matchers {
		if c.Matchers[i].Name == name {
			return &c.Matchers[i], true
		}
	}
	return nil, false
}

// Arg returns the declared argument with the given name
func (t *Task) Arg(name string) (*Arg, bool) {
	for i := range t.Args {
		if t.Args[i].Name == name {
			return &t.Args[i], true
		}
	}
	return nil, false
}

// Validate performs structural validation of the taskfile. Template and
// graph validation happen in pkg/task when a plan is built.
func (c *Config) Validate() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("taskfile declares no tasks")
	}

	seen := make(map[string]bool, len(c.Tasks))
	for _, t := range c.Tasks {
		if t.Name == "" {
			return fmt.Errorf("task with empty name")
		}
		if strings.ContainsAny(t.Name, " \t") {
			return fmt.Errorf("task name %q contains whitespace", t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate task name: %q", t.Name)
		}
		seen[t.Name] = true

		if err := t.validate(c); err != nil {
			return fmt.Errorf("task %q: %w", t.Name, err)
		}
	}

	for _, t := range c.Tasks {
		for _, dep := range t.Deps {
			if dep == t.Name {
				return fmt.Errorf("task %q depends on itself", t.Name)
			}
			if !seen[dep] {
				return fmt.Errorf("task %q depends on unknown task %q", t.Name, dep)
			}
		}
	}

	matcherSeen := make(map[string]bool, len(c.Matchers))
	for _, m := range c.Matchers {
		if m.Name == "" {
			return fmt.Errorf("matcher with empty name")
		}
		if matcherSeen[m.Name] {
			return fmt.Errorf("duplicate matcher name: %q", m.Name)
		}
		matcherSeen[m.Name] = true
		if m.Pattern == "" {
			return fmt.Errorf("matcher %q has no pattern", m.Name)
		}
	}

	return nil
}

func (t *Task) validate(c *Config) error {
	if len(t.Steps) == 0 {
		return fmt.Errorf("no steps")
	}

	argSeen := make(map[string]bool, len(t.Args))
	for _, a := range t.Args {
		if a.Name == "" {
			return fmt.Errorf("argument with empty name")
		}
		if argSeen[a.Name] {
			return fmt.Errorf("duplicate argument name: %q", a.Name)
		}
		argSeen[a.Name] = true
	}

	for i, s := range t.Steps {
		if strings.TrimSpace(s.Run) == "" {
			return fmt.Errorf("step %d has an empty run command", i+1)
		}
		if s.Matcher != "" {
			if _, ok := c.MatcherByName(s.Matcher); !ok {
				return fmt.Errorf("step %d references unknown matcher %q", i+1, s.Matcher)
			}
		}
	}

	return nil
}

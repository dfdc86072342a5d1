package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.Tasks, "Default config should declare tasks")

	expectedTasks := []string{"test", "format", "lint", "coverage", "install-deps", "update-deps", "release"}
	assert.Equal(t, expectedTasks, cfg.TaskNames())

	// test has an optional filter argument
	testTask, ok := cfg.Task("test")
	require.True(t, ok)
	filter, ok := testTask.Arg("filter")
	require.True(t, ok)
	assert.False(t, filter.Required())

	// format's auto-fix step is allowed to fail
	formatTask, ok := cfg.Task("format")
	require.True(t, ok)
	require.Len(t, formatTask.Steps, 2)
	assert.False(t, formatTask.Steps[0].IgnoreErrors)
	assert.True(t, formatTask.Steps[1].IgnoreErrors)

	// release requires a version and runs the checks first
	releaseTask, ok := cfg.Task("release")
	require.True(t, ok)
	version, ok := releaseTask.Arg("version")
	require.True(t, ok)
	assert.True(t, version.Required())
	assert.Equal(t, []string{"lint", "test"}, releaseTask.Deps)

	// the mypy matcher referenced by lint must exist
	_, ok = cfg.MatcherByName("mypy")
	assert.True(t, ok)

	err := cfg.Validate()
	assert.NoError(t, err, "Default config should be valid")
}

func TestLoadConfigYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "chore.yaml")

	content := `version: "1"
env:
  CI: "false"
tasks:
  - name: test
    description: Run the tests
    args:
      - name: filter
        default: ""
    steps:
      - run: pytest {{.Args.filter}}
  - name: lint
    steps:
      - run: ruff check .
      - run: mypy .
        matcher: mypy
matchers:
  - name: mypy
    pattern: '^(?<file>[^:]+):(?<line>\d+): (?<severity>error): (?<message>.*)$'
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "false", cfg.Env["CI"])
	assert.Equal(t, []string{"test", "lint"}, cfg.TaskNames())

	testTask, ok := cfg.Task("test")
	require.True(t, ok)
	assert.Equal(t, "Run the tests", testTask.Description)
	require.Len(t, testTask.Args, 1)
	assert.False(t, testTask.Args[0].Required())

	lintTask, ok := cfg.Task("lint")
	require.True(t, ok)
	require.Len(t, lintTask.Steps, 2)
	assert.Equal(t, "mypy", lintTask.Steps[1].Matcher)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "chore.toml")

	content := `version = "1"

[[tasks]]
name = "build"
description = "Build the project"

[[tasks.steps]]
run = "go build ./..."

[[tasks]]
name = "test"
deps = ["build"]

[[tasks.steps]]
run = "go test ./..."
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"build", "test"}, cfg.TaskNames())
	testTask, ok := cfg.Task("test")
	require.True(t, ok)
	assert.Equal(t, []string{"build"}, testTask.Deps)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigProbesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := "tasks:\n  - name: test\n    steps:\n      - run: pytest\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".chore.yaml"), []byte(content), 0o600))

	t.Chdir(tmpDir)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, cfg.TaskNames())
}

func TestLoadConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(tmpDir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(tmpDir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("tasks: [\n"), 0o600))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("no default taskfile", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := LoadConfig("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no taskfile found")
	})
}

func TestConfigValidation(t *testing.T) {
	step := Step{Run: "true"}

	tests := []struct {
		config  *Config
		name    string
		errText string
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Tasks: []Task{
					{Name: "a", Steps: []Step{step}},
					{Name: "b", Deps: []string{"a"}, Steps: []Step{step}},
				},
			},
			wantErr: false,
		},
		{
			name:    "no tasks",
			config:  &Config{},
			wantErr: true,
			errText: "no tasks",
		},
		{
			name: "empty task name",
			config: &Config{
				Tasks: []Task{{Name: "", Steps: []Step{step}}},
			},
			wantErr: true,
			errText: "empty name",
		},
		{
			name: "task name with whitespace",
			config: &Config{
				Tasks: []Task{{Name: "my task", Steps: []Step{step}}},
			},
			wantErr: true,
			errText: "whitespace",
		},
		{
			name: "duplicate task name",
			config: &Config{
				Tasks: []Task{
					{Name: "a", Steps: []Step{step}},
					{Name: "a", Steps: []Step{step}},
				},
			},
			wantErr: true,
			errText: "duplicate task name",
		},
		{
			name: "task without steps",
			config: &Config{
				Tasks: []Task{{Name: "a"}},
			},
			wantErr: true,
			errText: "no steps",
		},
		{
			name: "step with empty run",
			config: &Config{
				Tasks: []Task{{Name: "a", Steps: []Step{{Run: "   "}}}},
			},
			wantErr: true,
			errText: "empty run",
		},
		{
			name: "self dependency",
			config: &Config{
				Tasks: []Task{{Name: "a", Deps: []string{"a"}, Steps: []Step{step}}},
			},
			wantErr: true,
			errText: "depends on itself",
		},
		{
			name: "unknown dependency",
			config: &Config{
				Tasks: []Task{{Name: "a", Deps: []string{"missing"}, Steps: []Step{step}}},
			},
			wantErr: true,
			errText: "unknown task",
		},
		{
			name: "duplicate argument",
			config: &Config{
				Tasks: []Task{{
					Name:  "a",
					Args:  []Arg{{Name: "x"}, {Name: "x"}},
					Steps: []Step{step},
				}},
			},
			wantErr: true,
			errText: "duplicate argument",
		},
		{
			name: "unknown matcher reference",
			config: &Config{
				Tasks: []Task{{Name: "a", Steps: []Step{{Run: "mypy .", Matcher: "mypy"}}}},
			},
			wantErr: true,
			errText: "unknown matcher",
		},
		{
			name: "matcher without pattern",
			config: &Config{
				Tasks:    []Task{{Name: "a", Steps: []Step{step}}},
				Matchers: []Matcher{{Name: "m"}},
			},
			wantErr: true,
			errText: "no pattern",
		},
		{
			name: "duplicate matcher",
			config: &Config{
				Tasks: []Task{{Name: "a", Steps: []Step{step}}},
				Matchers: []Matcher{
					{Name: "m", Pattern: "x"},
					{Name: "m", Pattern: "y"},
				},
			},
			wantErr: true,
			errText: "duplicate matcher",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAccessors(t *testing.T) {
	cfg := &Config{
		Tasks: []Task{
			{Name: "a", Steps: []Step{{Run: "true"}}},
			{Name: "b", Steps: []Step{{Run: "true"}}},
		},
		Matchers: []Matcher{{Name: "m", Pattern: "x"}},
	}

	task, ok := cfg.Task("b")
	require.True(t, ok)
	assert.Equal(t, "b", task.Name)

	_, ok = cfg.Task("missing")
	assert.False(t, ok)

	m, ok := cfg.MatcherByName("m")
	require.True(t, ok)
	assert.Equal(t, "x", m.Pattern)

	_, ok = cfg.MatcherByName("missing")
	assert.False(t, ok)
}

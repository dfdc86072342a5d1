package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/chore/pkg/config"
)

func strptr(s string) *string { return &s }

func TestParseTaskArgs(t *testing.T) {
	task := &config.Task{
		Name: "test",
		Args: []config.Arg{
			{Name: "filter", Default: strptr("")},
			{Name: "marker", Default: strptr("")},
		},
	}

	tests := []struct {
		want    map[string]string
		name    string
		errText string
		words   []string
		wantErr bool
	}{
		{
			name:  "no words",
			words: nil,
			want:  map[string]string{},
		},
		{
			name:  "named binding",
			words: []string{"filter=-k smoke"},
			want:  map[string]string{"filter": "-k smoke"},
		},
		{
			name:  "positional fills declared order",
			words: []string{"-vv", "slow"},
			want:  map[string]string{"filter": "-vv", "marker": "slow"},
		},
		{
			name:  "named and positional mix",
			words: []string{"marker=slow", "-vv"},
			want:  map[string]string{"marker": "slow", "filter": "-vv"},
		},
		{
			name:  "undeclared name falls through as positional",
			words: []string{"bogus=1"},
			want:  map[string]string{"filter": "bogus=1"},
		},
		{
			name:    "duplicate named binding",
			words:   []string{"filter=a", "filter=b"},
			wantErr: true,
			errText: "given twice",
		},
		{
			name:    "too many positionals",
			words:   []string{"a", "b", "c"},
			wantErr: true,
			errText: "unexpected argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTaskArgs(task, tt.words)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTaskArgsNoDeclaredArgs(t *testing.T) {
	task := &config.Task{Name: "format"}

	got, err := parseTaskArgs(task, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = parseTaskArgs(task, []string{"surprise"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected argument")
}

func TestTaskfileRoot(t *testing.T) {
	t.Run("explicit config path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "chore.yaml")

		root, err := taskfileRoot(path)
		require.NoError(t, err)
		assert.Equal(t, dir, root)
	})

	t.Run("defaults to working directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)

		root, err := taskfileRoot("")
		require.NoError(t, err)
		// TempDir may sit behind a symlink (macOS /var -> /private/var)
		wd, _ := os.Getwd()
		assert.Equal(t, wd, root)
	})
}

func TestLoadTaskfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chore.yaml")
	content := "tasks:\n  - name: test\n    steps:\n      - run: pytest\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, root, err := loadTaskfile(path)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
	assert.Equal(t, []string{"test"}, cfg.TaskNames())
}

func TestLoadTaskfileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chore.yaml")
	content := "tasks:\n  - name: test\n    deps: [missing]\n    steps:\n      - run: pytest\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, _, err := loadTaskfile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task")
}

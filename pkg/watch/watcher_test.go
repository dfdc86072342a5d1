package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsMatchingChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping filesystem watch test in short mode")
	}

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o750))

	c := newCollector()
	w, err := New(Options{
		Root:     root,
		Globs:    []string{"**/*.py"},
		Debounce: 50 * time.Millisecond,
	}, c.onFlush)
	require.NoError(t, err)
	defer func() {
		_ = w.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Run(ctx)
	}()

	// Let the watcher settle before generating events
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "app.py"), []byte("x = 1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored\n"), 0o600))

	batches := c.wait(t)
	require.NotEmpty(t, batches)
	assert.Contains(t, batches[0], filepath.Join("src", "app.py"))
	for _, batch := range batches {
		assert.NotContains(t, batch, "notes.txt")
	}
}

func TestWatcherMatches(t *testing.T) {
	w := &Watcher{opts: Options{Globs: []string{"**/*.py", "pyproject.toml"}}}

	tests := []struct {
		name string
		rel  string
		want bool
	}{
		{name: "glob match in subdir", rel: filepath.Join("src", "app.py"), want: true},
		{name: "exact file match", rel: "pyproject.toml", want: true},
		{name: "non-matching extension", rel: "README.md", want: false},
		{name: "ignored directory", rel: filepath.Join(".venv", "lib", "x.py"), want: false},
		{name: "pycache ignored", rel: filepath.Join("src", "__pycache__", "app.py"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.matches(tt.rel))
		})
	}
}

func TestWatcherMatchesEverythingWithoutGlobs(t *testing.T) {
	w := &Watcher{opts: Options{}}
	assert.True(t, w.matches("anything.txt"))
	assert.False(t, w.matches(filepath.Join(".git", "HEAD")))
}

package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/chore/pkg/history"
)

func seedHistory(t *testing.T, root string) {
	t.Helper()

	store, err := history.Open(stateDir(root))
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()

	now := time.Now()
	require.NoError(t, store.Record("test", map[string]string{"filter": "-k smoke"}, 0, 2*time.Second, now))
	require.NoError(t, store.Record("lint", nil, 1, time.Second, now.Add(time.Second)))
}

func TestHistoryCommandEmpty(t *testing.T) {
	setupProject(t, basicTaskfile)

	cmd := &HistoryCommand{}
	output := captureStdout(t, func() {
		assert.Equal(t, ExitSuccess, cmd.Run(nil))
	})
	assert.Contains(t, output, "No recorded runs")
}

func TestHistoryCommandListsRuns(t *testing.T) {
	root := setupProject(t, basicTaskfile)
	seedHistory(t, root)

	cmd := &HistoryCommand{}
	output := captureStdout(t, func() {
		assert.Equal(t, ExitSuccess, cmd.Run(nil))
	})

	assert.Contains(t, output, "test")
	assert.Contains(t, output, "lint")
	assert.Contains(t, output, "exit 1")
	assert.Contains(t, output, "(filter=-k smoke)")
}

func TestHistoryCommandFiltersByTask(t *testing.T) {
	root := setupProject(t, basicTaskfile)
	seedHistory(t, root)

	cmd := &HistoryCommand{}
	output := captureStdout(t, func() {
		assert.Equal(t, ExitSuccess, cmd.Run([]string{"--task", "lint"}))
	})

	assert.Contains(t, output, "lint")
	assert.NotContains(t, output, "filter=-k smoke")
}

package release

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/chore/pkg/gitrepo"
)

// initProject creates a git repository with a committed VERSION manifest and
// chdirs into it
func initProject(t *testing.T, version string) string {
	t.Helper()

	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "VERSION"), []byte(version+"\n"), 0o600))

	repo, err := gitrepo.New(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Add("VERSION"))
	_, err = repo.Commit("initial commit")
	require.NoError(t, err)

	t.Chdir(dir)
	return dir
}

func TestStepErrorMessage(t *testing.T) {
	err := &StepError{
		Step:      StepPush,
		Completed: []string{StepBump, StepStage, StepCommit},
		Err:       errors.New("remote not found"),
	}

	msg := err.Error()
	assert.Contains(t, msg, `step "push" failed`)
	assert.Contains(t, msg, "bump, stage, commit")
	assert.Contains(t, msg, "not rolled back")

	bare := &StepError{Step: StepBump, Err: errors.New("boom")}
	assert.NotContains(t, bare.Error(), "rolled back")
}

func TestReleaserFailsWithoutRemoteKeepingCompletedSteps(t *testing.T) {
	dir := initProject(t, "1.0.0")

	releaser, err := NewReleaser(&strings.Builder{})
	require.NoError(t, err)

	summary, err := releaser.Run(context.Background(), Options{Version: "patch"})
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepPush, stepErr.Step)
	assert.Equal(t, []string{StepBump, StepStage, StepCommit}, stepErr.Completed)

	// No rollback: the bump and commit stay applied
	require.NotNil(t, summary)
	assert.Equal(t, "1.0.1", summary.Version)
	assert.Equal(t, "v1.0.1", summary.Tag)

	data, readErr := os.ReadFile(filepath.Join(dir, "VERSION"))
	require.NoError(t, readErr)
	assert.Equal(t, "1.0.1\n", string(data))

	repo, repoErr := gitrepo.New(dir)
	require.NoError(t, repoErr)
	clean, cleanErr := repo.IsClean()
	require.NoError(t, cleanErr)
	assert.True(t, clean, "the bump commit was created before the failure")
}

func TestReleaserRefusesExistingTag(t *testing.T) {
	dir := initProject(t, "1.0.0")

	repo, err := gitrepo.New(dir)
	require.NoError(t, err)
	require.NoError(t, repo.CreateTag("v1.0.1", "already there"))

	releaser, err := NewReleaser(&strings.Builder{})
	require.NoError(t, err)

	_, err = releaser.Run(context.Background(), Options{Version: "patch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestReleaserRefusesDirtyWorktree(t *testing.T) {
	dir := initProject(t, "1.0.0")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("wip\n"), 0o600))

	releaser, err := NewReleaser(&strings.Builder{})
	require.NoError(t, err)

	_, err = releaser.Run(context.Background(), Options{Version: "patch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uncommitted changes")
}

func TestReleaserRejectsBadVersionBeforeTouchingAnything(t *testing.T) {
	dir := initProject(t, "1.0.0")

	releaser, err := NewReleaser(&strings.Builder{})
	require.NoError(t, err)

	_, err = releaser.Run(context.Background(), Options{Version: "0.9.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not greater than")

	data, readErr := os.ReadFile(filepath.Join(dir, "VERSION"))
	require.NoError(t, readErr)
	assert.Equal(t, "1.0.0\n", string(data), "manifest untouched on validation failure")
}

func TestReleaserCustomTagPrefix(t *testing.T) {
	initProject(t, "2.0.0")

	releaser, err := NewReleaser(&strings.Builder{})
	require.NoError(t, err)

	summary, err := releaser.Run(context.Background(), Options{Version: "minor", TagPrefix: "release-"})
	require.Error(t, err, "push still fails without a remote")
	assert.Equal(t, "release-2.1.0", summary.Tag)
}

func TestNewReleaserOutsideRepository(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := NewReleaser(&strings.Builder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in a git repository")
}

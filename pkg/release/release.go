package release

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/blairham/chore/pkg/gitrepo"
)

// Options control a release run
type Options struct {
	// Version is an explicit semantic version or a bump keyword
	Version string
	// Manifest overrides manifest auto-detection with an explicit path
	Manifest string
	// Remote is the git remote pushed to
	Remote string
	// TagPrefix is prepended to the version to form the tag name
	TagPrefix string
	// AllowDirty skips the clean-worktree precondition
	AllowDirty bool
}

// Step names, in execution order
const (
	StepBump    = "bump"
	StepStage   = "stage"
	StepCommit  = "commit"
	StepPush    = "push"
	StepTag     = "tag"
	StepPushTag = "push-tag"
)

// Summary reports what a release run did
type Summary struct {
	Version   string
	Tag       string
	Manifest  string
	Completed []string
}

// StepError is returned when the sequence fails partway. There is no
// rollback: completed steps stay applied, and the error says which.
type StepError struct {
	Err       error
	Step      string
	Completed []string
}

func (e *StepError) Error() string {
	if len(e.Completed) == 0 {
		return fmt.Sprintf("release step %q failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("release step %q failed after %s: %v (completed steps are not rolled back)",
		e.Step, strings.Join(e.Completed, ", "), e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Releaser runs the release sequence against one repository
type Releaser struct {
	repo *gitrepo.Repository
	out  io.Writer
}

// NewReleaser creates a releaser for the repository containing the working directory
func NewReleaser(out io.Writer) (*Releaser, error) {
	repo, err := gitrepo.New("")
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}
	return &Releaser{repo: repo, out: out}, nil
}

// Run executes the release: resolve the version, bump the manifest, stage,
// commit, push the branch, create the tag, push the tag. Six sequential
// steps, no rollback on failure.
func (r *Releaser) Run(ctx context.Context, opts Options) (*Summary, error) {
	manifest, err := r.openManifest(opts)
	if err != nil {
		return nil, err
	}

	current, err := manifest.Version()
	if err != nil {
		return nil, err
	}

	version, err := ResolveVersion(current, opts.Version)
	if err != nil {
		return nil, err
	}

	tagPrefix := opts.TagPrefix
	if tagPrefix == "" {
		tagPrefix = "v"
	}
	tag := tagPrefix + version

	remote := opts.Remote
	if remote == "" {
		remote = "origin"
	}

	if err := r.checkPreconditions(opts, tag); err != nil {
		return nil, err
	}

	summary := &Summary{Version: version, Tag: tag, Manifest: manifest.Path()}
	fail := func(step string, err error) (*Summary, error) {
		return summary, &StepError{Step: step, Completed: summary.Completed, Err: err}
	}
	done := func(step, format string, args ...any) {
		summary.Completed = append(summary.Completed, step)
		fmt.Fprintf(r.out, format+"\n", args...)
	}

	if err := manifest.SetVersion(version); err != nil {
		return fail(StepBump, err)
	}
	done(StepBump, "Bumped %s: %s -> %s", manifest.Kind(), current, version)

	relPath, err := filepath.Rel(r.repo.Root, manifest.Path())
	if err != nil {
		relPath = manifest.Path()
	}
	if err := r.repo.Add(relPath); err != nil {
		return fail(StepStage, err)
	}
	done(StepStage, "Staged %s", relPath)

	commitMsg := fmt.Sprintf("release: %s", tag)
	hash, err := r.repo.Commit(commitMsg)
	if err != nil {
		return fail(StepCommit, err)
	}
	done(StepCommit, "Committed %s (%s)", commitMsg, hash[:min(len(hash), 8)])

	if err := r.repo.PushBranch(ctx, remote); err != nil {
		return fail(StepPush, err)
	}
	done(StepPush, "Pushed branch to %s", remote)

	if err := r.repo.CreateTag(tag, commitMsg); err != nil {
		return fail(StepTag, err)
	}
	done(StepTag, "Tagged %s", tag)

	if err := r.repo.PushTag(ctx, remote, tag); err != nil {
		return fail(StepPushTag, err)
	}
	done(StepPushTag, "Pushed tag %s to %s", tag, remote)

	return summary, nil
}

func (r *Releaser) openManifest(opts Options) (Manifest, error) {
	if opts.Manifest != "" {
		return OpenManifest(opts.Manifest)
	}
	return DetectManifest(r.repo.Root)
}

func (r *Releaser) checkPreconditions(opts Options, tag string) error {
	if r.repo.TagExists(tag) {
		return fmt.Errorf("tag %s already exists", tag)
	}

	if !opts.AllowDirty {
		clean, err := r.repo.IsClean()
		if err != nil {
			return err
		}
		if !clean {
			return fmt.Errorf("worktree has uncommitted changes (use --allow-dirty to release anyway)")
		}
	}

	return nil
}

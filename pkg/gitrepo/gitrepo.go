// Package gitrepo provides the Git operations behind `chore release`.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository represents a git repository
type Repository struct {
	repo *git.Repository
	Root string
}

// New opens the repository containing path (or the working directory)
func New(path string) (*Repository, error) {
	root, err := FindRoot(path)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &Repository{
		Root: root,
		repo: repo,
	}, nil
}

// FindRoot finds the root of the git repository
func FindRoot(path string) (string, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		gitDir := filepath.Join(path, ".git")
		if info, err := os.Stat(gitDir); err == nil {
			if info.IsDir() {
				return path, nil
			}
			// Git worktrees have .git as a file pointing at the real dir
			if content, err := os.ReadFile(gitDir); err == nil { // #nosec G304 -- git metadata
				if strings.HasPrefix(strings.TrimSpace(string(content)), "gitdir: ") {
					return path, nil
				}
			}
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", fmt.Errorf("not in a git repository")
		}
		path = parent
	}
}

// IsInRepository reports whether the working directory is inside a git repository
func IsInRepository() bool {
	_, err := FindRoot("")
	return err == nil
}

// IsClean reports whether the worktree has no uncommitted changes
func (r *Repository) IsClean() (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}

	return status.IsClean(), nil
}

// CurrentBranch returns the name of the currently checked out branch
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached")
	}
	return head.Name().Short(), nil
}

// TagExists reports whether the given tag name already exists
func (r *Repository) TagExists(name string) bool {
	_, err := r.repo.Tag(name)
	return err == nil
}

// Add stages the given paths, relative to the repository root
func (r *Repository) Add(paths ...string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, path := range paths {
		if _, err := worktree.Add(path); err != nil {
			return fmt.Errorf("failed to stage %s: %w", path, err)
		}
	}
	return nil
}

// Commit creates a commit with the staged changes and returns its hash
func (r *Repository) Commit(message string) (string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: r.signature(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}

// CreateTag creates an annotated tag on HEAD
func (r *Repository) CreateTag(name, message string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}

	_, err = r.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger:  r.signature(),
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", name, err)
	}
	return nil
}

// PushBranch pushes the current branch to the given remote
func (r *Repository) PushBranch(ctx context.Context, remote string) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{RemoteName: remote})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push to %s: %w", remote, err)
	}
	return nil
}

// PushTag pushes a single tag to the given remote
func (r *Repository) PushTag(ctx context.Context, remote, tag string) error {
	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag))
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push tag %s to %s: %w", tag, remote, err)
	}
	return nil
}

// signature builds the commit/tag signature from git config, falling back
// to a fixed identity when no user is configured
func (r *Repository) signature() *object.Signature {
	name, email := "chore", "chore@localhost"

	if cfg, err := r.repo.ConfigScoped(gitconfig.SystemScope); err == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}

	return &object.Signature{
		Name:  name,
		Email: email,
		When:  time.Now(),
	}
}

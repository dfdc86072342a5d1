package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/blairham/chore/pkg/release"
)

// ReleaseCommand handles the release command functionality
type ReleaseCommand struct{}

// ReleaseOptions holds command-line options for the release command
type ReleaseOptions struct {
	Manifest   string `long:"manifest"    description:"Path to the version manifest (auto-detected by default)"`
	Remote     string `long:"remote"      description:"Git remote to push to"          default:"origin"`
	TagPrefix  string `long:"tag-prefix"  description:"Prefix for the release tag"     default:"v"`
	AllowDirty bool   `long:"allow-dirty" description:"Release even with uncommitted changes"`
	Help       bool   `long:"help"        description:"Show this help message"         short:"h"`
}

// Help returns the help text for the release command
func (c *ReleaseCommand) Help() string {
	var opts ReleaseOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] VERSION"

	formatter := &HelpFormatter{
		Command:     "release",
		Description: "Bump the project version, commit, tag, and push.",
		Examples: []Example{
			{Command: "chore release 1.4.0", Description: "Release an explicit version"},
			{Command: "chore release patch", Description: "Bump the patch version"},
			{Command: "chore release minor --remote upstream", Description: "Push to a different remote"},
		},
		Notes: []string{
			"The sequence is: bump the manifest, stage it, commit, push the",
			"branch, create the annotated tag, push the tag. Steps run in",
			"order with no rollback; a failure partway leaves the completed",
			"steps applied and says which they were.",
			"",
			"Recognized manifests: package.json, pyproject.toml, Cargo.toml,",
			"VERSION.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the release command
func (c *ReleaseCommand) Synopsis() string {
	return "Bump version, commit, tag, and push"
}

// ReleaseCommandFactory creates a new release command instance
func ReleaseCommandFactory() (cli.Command, error) {
	return &ReleaseCommand{}, nil
}

// Run executes the release command
func (c *ReleaseCommand) Run(args []string) int {
	var opts ReleaseOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] VERSION"

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return ExitSuccess
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return ExitUsage
	}

	if len(remaining) != 1 {
		fmt.Println("Error: release takes exactly one VERSION argument (or patch/minor/major)")
		return ExitUsage
	}

	releaser, err := release.NewReleaser(os.Stdout)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := releaser.Run(ctx, release.Options{
		Version:    remaining[0],
		Manifest:   opts.Manifest,
		Remote:     opts.Remote,
		TagPrefix:  opts.TagPrefix,
		AllowDirty: opts.AllowDirty,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitFailure
	}

	fmt.Printf("\nReleased %s\n", summary.Tag)
	return ExitSuccess
}

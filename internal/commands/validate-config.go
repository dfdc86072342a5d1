package commands

import (
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/blairham/chore/pkg/config"
	"github.com/blairham/chore/pkg/matcher"
	"github.com/blairham/chore/pkg/task"
)

// ValidateConfigCommand handles the validate-config command functionality
type ValidateConfigCommand struct{}

// ValidateConfigOptions holds command-line options for the validate-config command
type ValidateConfigOptions struct {
	Verbose bool `long:"verbose" description:"Verbose output"            short:"v"`
	Help    bool `long:"help"    description:"Show this help message"    short:"h"`
}

// Help returns the help text for the validate-config command
func (c *ValidateConfigCommand) Help() string {
	var opts ValidateConfigOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [FILE ...]"

	formatter := &HelpFormatter{
		Command:     "validate-config",
		Description: "Validate chore taskfiles.",
		Examples: []Example{
			{Command: "chore validate-config", Description: "Validate the default taskfile"},
			{Command: "chore validate-config ci/chore.yaml", Description: "Validate a specific file"},
		},
		Notes: []string{
			"Checks structure, dependency references and cycles, command",
			"templates, and matcher patterns.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the validate-config command
func (c *ValidateConfigCommand) Synopsis() string {
	return "Validate chore taskfiles"
}

// ValidateConfigCommandFactory creates a new validate-config command instance
func ValidateConfigCommandFactory() (cli.Command, error) {
	return &ValidateConfigCommand{}, nil
}

// Run executes the validate-config command
func (c *ValidateConfigCommand) Run(args []string) int {
	var opts ValidateConfigOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [FILE ...]"

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return ExitSuccess
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return ExitUsage
	}

	files := remaining
	if len(files) == 0 {
		files = []string{""}
	}

	exitCode := ExitSuccess
	for _, file := range files {
		if err := validateTaskfile(file); err != nil {
			label := file
			if label == "" {
				label = "taskfile"
			}
			fmt.Printf("%s: %v\n", label, err)
			exitCode = ExitFailure
			continue
		}
		if opts.Verbose {
			label := file
			if label == "" {
				label = "taskfile"
			}
			fmt.Printf("%s: ok\n", label)
		}
	}
	return exitCode
}

// validateTaskfile runs the full validation stack: structure, graph,
// templates, matcher patterns
func validateTaskfile(path string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	if _, err := task.NewGraph(cfg); err != nil {
		return err
	}

	if err := task.ValidateTemplates(cfg); err != nil {
		return err
	}

	for _, m := range cfg.Matchers {
		if _, err := matcher.Compile(m.Name, m.Pattern); err != nil {
			return err
		}
	}

	return nil
}

package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"
	"gopkg.in/yaml.v3"

	"github.com/blairham/chore/pkg/config"
)

// SampleConfigCommand handles the sample-config command functionality
type SampleConfigCommand struct{}

// SampleConfigOptions holds command-line options for the sample-config command
type SampleConfigOptions struct {
	Stdout bool `long:"stdout" description:"Print the sample taskfile instead of writing it"`
	Force  bool `long:"force"  description:"Overwrite an existing taskfile" short:"f"`
	Help   bool `long:"help"   description:"Show this help message"         short:"h"`
}

// Help returns the help text for the sample-config command
func (c *SampleConfigCommand) Help() string {
	var opts SampleConfigOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "sample-config",
		Description: "Generate a sample chore.yaml taskfile.",
		Examples: []Example{
			{Command: "chore sample-config", Description: "Write chore.yaml"},
			{Command: "chore sample-config --force", Description: "Overwrite an existing chore.yaml"},
			{Command: "chore sample-config --stdout", Description: "Print to stdout"},
		},
		Notes: []string{
			"The sample covers test, format, lint, coverage, install-deps,",
			"update-deps, and release for a uv-managed Python project.",
			"Edit the commands to fit your tooling.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the sample-config command
func (c *SampleConfigCommand) Synopsis() string {
	return "Generate a sample taskfile"
}

// SampleConfigCommandFactory creates a new sample-config command instance
func SampleConfigCommandFactory() (cli.Command, error) {
	return &SampleConfigCommand{}, nil
}

// Run executes the sample-config command
func (c *SampleConfigCommand) Run(args []string) int {
	var opts SampleConfigOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return ExitSuccess
		}
		fmt.Printf("Error parsing flags: %v\n", err)
		return ExitUsage
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		fmt.Printf("Error: failed to marshal configuration: %v\n", err)
		return ExitFailure
	}

	if opts.Stdout {
		fmt.Print(string(data))
		return ExitSuccess
	}

	configPath := config.ConfigFileName

	configExists := false
	if _, statErr := os.Stat(configPath); statErr == nil {
		configExists = true
		if !opts.Force {
			fmt.Printf("Error: %s already exists. Use --force to overwrite.\n", configPath)
			return ExitFailure
		}
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		fmt.Printf("Error: failed to write taskfile: %v\n", err)
		return ExitFailure
	}

	if configExists {
		fmt.Printf("Sample taskfile written to %s (overwrote existing file)\n", configPath)
	} else {
		fmt.Printf("Sample taskfile written to %s\n", configPath)
	}
	fmt.Println("Edit the file to fit your project, then run 'chore list'")
	return ExitSuccess
}

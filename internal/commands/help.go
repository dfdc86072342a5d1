package commands

import (
	"fmt"

	"github.com/mitchellh/cli"
)

// HelpCommand handles the help command functionality
type HelpCommand struct {
	UI cli.Ui
}

// Help returns the help text for the help command
func (c *HelpCommand) Help() string {
	return `
Show help for a specific command.

Usage: chore help [COMMAND]

If COMMAND is specified, shows detailed help for that command.
If no command is specified, shows general help.

Available commands:
  doctor              Check project health
  graph               Show task dependency order
  history             Show recorded task runs
  list                List available tasks
  release             Bump version, commit, tag, and push
  run                 Run a task and its dependencies
  sample-config       Generate a sample taskfile
  validate-config     Validate chore taskfiles

Any other word is treated as a task name: 'chore test' runs 'chore run test'.
`
}

// Synopsis returns a short description of the help command
func (c *HelpCommand) Synopsis() string {
	return "Show help for a specific command"
}

// Run executes the help command
func (c *HelpCommand) Run(args []string) int {
	if len(args) == 0 {
		fmt.Print(c.Help())
		return ExitSuccess
	}

	factory, ok := Factories[args[0]]
	if !ok {
		fmt.Printf("Unknown command: %s\n", args[0])
		fmt.Print(c.Help())
		return ExitUsage
	}

	command, err := factory()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	fmt.Print(command.Help())
	return ExitSuccess
}

// HelpCommandFactory creates a new help command instance
func HelpCommandFactory() (cli.Command, error) {
	return &HelpCommand{}, nil
}

// Factories maps command names to their factories. cmd/chore uses it for
// dispatch and for deciding when a bare word is a task name.
var Factories = map[string]cli.CommandFactory{
	"doctor":          DoctorCommandFactory,
	"graph":           GraphCommandFactory,
	"help":            HelpCommandFactory,
	"history":         HistoryCommandFactory,
	"list":            ListCommandFactory,
	"release":         ReleaseCommandFactory,
	"run":             RunCommandFactory,
	"sample-config":   SampleConfigCommandFactory,
	"validate-config": ValidateConfigCommandFactory,
}

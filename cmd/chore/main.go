// Package main provides the chore command-line tool, a declarative task
// runner for project chores: tests, formatting, linting, dependency syncs,
// and releases.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/blairham/chore/internal/commands"
)

// Version information set by GoReleaser
var (
	version = "dev"
	commit  = "none"    //nolint:unused // Set by GoReleaser
	date    = "unknown" //nolint:unused // Set by GoReleaser
	builtBy = "unknown" //nolint:unused // Set by GoReleaser
)

func main() {
	c := cli.NewCLI("chore", version)
	c.Args = rewriteShorthand(os.Args[1:])
	c.HelpFunc = customHelpFunc
	c.Commands = commands.Factories

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitStatus)
}

// rewriteShorthand makes `chore TASK` behave as `chore run TASK`: a first
// word that is neither a built-in command nor a flag names a task
func rewriteShorthand(args []string) []string {
	if len(args) == 0 {
		return args
	}

	first := args[0]
	if strings.HasPrefix(first, "-") {
		return args
	}
	if _, ok := commands.Factories[first]; ok {
		return args
	}

	return append([]string{"run"}, args...)
}

// customHelpFunc renders the top-level help text
func customHelpFunc(cmdFactories map[string]cli.CommandFactory) string {
	var commandNames []string
	for name := range cmdFactories {
		if name != "help" {
			commandNames = append(commandNames, name)
		}
	}
	sort.Strings(commandNames)

	usageLine := "usage: chore [-h] [--version]\n"
	usageLine += "             {"
	usageLine += strings.Join(commandNames, ",")
	usageLine += "}\n             ...\n"

	helpText := usageLine + `
A task runner for project chores, driven by a chore.yaml taskfile.

positional arguments:
  {` + strings.Join(commandNames, ",") + `}
    doctor              Check taskfile, tools, and project state
    graph               Show the dependency order of tasks
    history             Show recorded task runs
    list                List the tasks declared in the taskfile
    release             Bump the version, commit, tag, and push
    run                 Run a task and its dependencies
    sample-config       Produce a sample chore.yaml file
    validate-config     Validate chore taskfiles

Any other first word is treated as a task name:
    chore test          same as: chore run test

optional arguments:
  -h, --help            show this help message and exit
  --version             show program's version number and exit
`

	return helpText
}

package commands

import (
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/blairham/chore/pkg/history"
)

// HistoryCommand handles the history command functionality
type HistoryCommand struct{}

// HistoryOptions holds command-line options for the history command
type HistoryOptions struct {
	Config string `long:"config" description:"Path to taskfile"          short:"c"`
	Task   string `long:"task"   description:"Only show runs of this task" short:"t"`
	Limit  int    `long:"limit"  description:"Number of runs to show"    short:"n" default:"20"`
	Help   bool   `long:"help"   description:"Show this help message"    short:"h"`
}

// Help returns the help text for the history command
func (c *HistoryCommand) Help() string {
	var opts HistoryOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "history",
		Description: "Show recent task runs recorded for this project.",
		Examples: []Example{
			{Command: "chore history", Description: "Show the last 20 runs"},
			{Command: "chore history --task test -n 5", Description: "Show the last 5 test runs"},
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the history command
func (c *HistoryCommand) Synopsis() string {
	return "Show recorded task runs"
}

// HistoryCommandFactory creates a new history command instance
func HistoryCommandFactory() (cli.Command, error) {
	return &HistoryCommand{}, nil
}

// Run executes the history command
func (c *HistoryCommand) Run(args []string) int {
	var opts HistoryOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return ExitSuccess
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return ExitUsage
	}

	root, err := taskfileRoot(opts.Config)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	store, err := history.Open(stateDir(root))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitFailure
	}
	defer func() {
		_ = store.Close()
	}()

	runs, err := store.List(opts.Task, opts.Limit)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitFailure
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return ExitSuccess
	}

	for _, run := range runs {
		status := "ok"
		if run.ExitCode != 0 {
			status = fmt.Sprintf("exit %d", run.ExitCode)
		}
		line := fmt.Sprintf("%s  %-20s %-8s %v",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Task, status, run.Duration.Round(1e6))
		if run.Args != "" {
			line += "  (" + run.Args + ")"
		}
		fmt.Println(line)
	}
	return ExitSuccess
}

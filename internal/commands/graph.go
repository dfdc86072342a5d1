package commands

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/blairham/chore/pkg/task"
)

// GraphCommand handles the graph command functionality
type GraphCommand struct{}

// GraphOptions holds command-line options for the graph command
type GraphOptions struct {
	Config string `long:"config" description:"Path to taskfile"       short:"c"`
	Help   bool   `long:"help"   description:"Show this help message" short:"h"`
}

var graphArrowStyle = lipgloss.NewStyle().Faint(true)

// Help returns the help text for the graph command
func (c *GraphCommand) Help() string {
	var opts GraphOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [TASK]"

	formatter := &HelpFormatter{
		Command:     "graph",
		Description: "Print the dependency order of a task, or of every task.",
		Examples: []Example{
			{Command: "chore graph release", Description: "Show what runs before release"},
			{Command: "chore graph", Description: "Show the order for each task"},
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the graph command
func (c *GraphCommand) Synopsis() string {
	return "Show task dependency order"
}

// GraphCommandFactory creates a new graph command instance
func GraphCommandFactory() (cli.Command, error) {
	return &GraphCommand{}, nil
}

// Run executes the graph command
func (c *GraphCommand) Run(args []string) int {
	var opts GraphOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] [TASK]"

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return ExitSuccess
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return ExitUsage
	}

	cfg, _, err := loadTaskfile(opts.Config)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	graph, err := task.NewGraph(cfg)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	targets := cfg.TaskNames()
	if len(remaining) > 0 {
		targets = remaining
	}

	arrow := graphArrowStyle.Render(" -> ")
	for _, target := range targets {
		plan, planErr := graph.Plan(target)
		if planErr != nil {
			fmt.Printf("Error: %v\n", planErr)
			return ExitUsage
		}

		line := ""
		for i, name := range plan {
			if i > 0 {
				line += arrow
			}
			line += name
		}
		fmt.Println(line)
	}
	return ExitSuccess
}

package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/blairham/chore/pkg/config"
)

// ListCommand handles the list command functionality
type ListCommand struct{}

// ListOptions holds command-line options for the list command
type ListOptions struct {
	Config  string `long:"config"  description:"Path to taskfile"       short:"c"`
	Plain   bool   `long:"plain"   description:"One task name per line, no styling"`
	Verbose bool   `long:"verbose" description:"Show arguments and dependencies" short:"v"`
	Help    bool   `long:"help"    description:"Show this help message" short:"h"`
}

var (
	listNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	listDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	listMetaStyle = lipgloss.NewStyle().Faint(true)
)

// Help returns the help text for the list command
func (c *ListCommand) Help() string {
	var opts ListOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "list",
		Description: "List the tasks declared in the taskfile.",
		Examples: []Example{
			{Command: "chore list", Description: "Show tasks and descriptions"},
			{Command: "chore list --verbose", Description: "Include arguments and dependencies"},
			{Command: "chore list --plain", Description: "Names only, for shell completion"},
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the list command
func (c *ListCommand) Synopsis() string {
	return "List available tasks"
}

// ListCommandFactory creates a new list command instance
func ListCommandFactory() (cli.Command, error) {
	return &ListCommand{}, nil
}

// Run executes the list command
func (c *ListCommand) Run(args []string) int {
	var opts ListOptions
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

	cfg, _, err := loadTaskfile(opts.Config)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	if opts.Plain {
		for _, name := range cfg.TaskNames() {
			fmt.Println(name)
		}
		return ExitSuccess
	}

	nameWidth := 0
	for _, t := range cfg.Tasks {
		if len(t.Name) > nameWidth {
			nameWidth = len(t.Name)
		}
	}

	for _, t := range cfg.Tasks {
		padding := strings.Repeat(" ", nameWidth-len(t.Name)+2)
		fmt.Printf("%s%s%s\n", listNameStyle.Render(t.Name), padding, listDescStyle.Render(t.Description))

		if opts.Verbose {
			if meta := taskMeta(&t); meta != "" {
				fmt.Printf("%s%s\n", strings.Repeat(" ", nameWidth+2), listMetaStyle.Render(meta))
			}
		}
	}
	return ExitSuccess
}

func taskMeta(t *config.Task) string {
	var parts []string

	if len(t.Args) > 0 {
		var argNames []string
		for _, a := range t.Args {
			if a.Required() {
				argNames = append(argNames, a.Name)
			} else {
				argNames = append(argNames, a.Name+"?")
			}
		}
		parts = append(parts, "args: "+strings.Join(argNames, ", "))
	}
	if len(t.Deps) > 0 {
		parts = append(parts, "deps: "+strings.Join(t.Deps, ", "))
	}
	return strings.Join(parts, "   ")
}

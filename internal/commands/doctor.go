package commands

import (
	"errors"
	"fmt"
	"os/exec"
	"sort"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/blairham/chore/pkg/gitrepo"
	"github.com/blairham/chore/pkg/history"
)

// DoctorCommand handles the doctor command functionality
type DoctorCommand struct{}

// DoctorOptions holds command-line options for the doctor command
type DoctorOptions struct {
	Config  string `short:"c" long:"config"  description:"Path to taskfile"`
	Verbose bool   `short:"v" long:"verbose" description:"Verbose output"`
	Help    bool   `short:"h" long:"help"    description:"Show this help message"`
}

// Help returns the help text for the doctor command
func (c *DoctorCommand) Help() string {
	var opts DoctorOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "doctor",
		Description: "Check that the project is ready to run tasks.",
		Examples: []Example{
			{Command: "chore doctor", Description: "Check taskfile, tools, and state"},
			{Command: "chore doctor --verbose", Description: "Show every check performed"},
		},
		Notes: []string{
			"Checks the taskfile validates, every tool named in a task's",
			"`tools` list is on PATH, the project is a git repository (needed",
			"by `chore release`), and the run-history store is healthy.",
			"",
			"Exit codes:",
			"  0: No problems found",
			"  1: Problems found",
			"  2: Error running doctor command",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the doctor command
func (c *DoctorCommand) Synopsis() string {
	return "Check project health"
}

// DoctorCommandFactory creates a new doctor command instance
func DoctorCommandFactory() (cli.Command, error) {
	return &DoctorCommand{}, nil
}

// Run executes the doctor command
func (c *DoctorCommand) Run(args []string) int {
	var opts DoctorOptions
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

	fmt.Printf("Running chore health check...\n\n")

	var problems, warnings []string

	root, taskfileProblems := c.checkTaskfile(opts)
	problems = append(problems, taskfileProblems...)

	if root != "" {
		problems = append(problems, c.checkTools(opts)...)
		warnings = append(warnings, c.checkGit(opts)...)
		problems = append(problems, c.checkHistory(root, opts)...)
	}

	return c.printResults(problems, warnings)
}

func (c *DoctorCommand) checkTaskfile(opts DoctorOptions) (string, []string) {
	if opts.Verbose {
		fmt.Println("Checking taskfile...")
	}

	if err := validateTaskfile(opts.Config); err != nil {
		return "", []string{fmt.Sprintf("taskfile: %v", err)}
	}

	root, err := taskfileRoot(opts.Config)
	if err != nil {
		return "", []string{fmt.Sprintf("taskfile: %v", err)}
	}
	return root, nil
}

func (c *DoctorCommand) checkTools(opts DoctorOptions) []string {
	cfg, _, err := loadTaskfile(opts.Config)
	if err != nil {
		return nil // already reported by checkTaskfile
	}

	needed := make(map[string][]string)
	for _, t := range cfg.Tasks {
		for _, tool := range t.Tools {
			needed[tool] = append(needed[tool], t.Name)
		}
	}

	tools := make([]string, 0, len(needed))
	for tool := range needed {
		tools = append(tools, tool)
	}
	sort.Strings(tools)

	var problems []string
	for _, tool := range tools {
		if opts.Verbose {
			fmt.Printf("Checking tool %s...\n", tool)
		}
		if _, err := exec.LookPath(tool); err != nil {
			problems = append(problems,
				fmt.Sprintf("tool %q not found on PATH (needed by: %v)", tool, needed[tool]))
		}
	}
	return problems
}

func (c *DoctorCommand) checkGit(opts DoctorOptions) []string {
	if opts.Verbose {
		fmt.Println("Checking git repository...")
	}
	if !gitrepo.IsInRepository() {
		return []string{"not in a git repository; `chore release` will not work here"}
	}
	return nil
}

func (c *DoctorCommand) checkHistory(root string, opts DoctorOptions) []string {
	if opts.Verbose {
		fmt.Println("Checking run-history store...")
	}

	store, err := history.Open(stateDir(root))
	if err != nil {
		return []string{fmt.Sprintf("run-history store: %v", err)}
	}
	defer func() {
		_ = store.Close()
	}()

	if err := store.Ping(); err != nil {
		return []string{fmt.Sprintf("run-history store: %v", err)}
	}
	return nil
}

func (c *DoctorCommand) printResults(problems, warnings []string) int {
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}

	if len(problems) == 0 {
		fmt.Println("No problems found.")
		return ExitSuccess
	}

	fmt.Printf("\nFound %d problem(s):\n", len(problems))
	for _, p := range problems {
		fmt.Printf("  - %s\n", p)
	}
	return ExitFailure
}

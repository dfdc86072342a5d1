package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/blairham/chore/pkg/config"
	"github.com/blairham/chore/pkg/history"
	"github.com/blairham/chore/pkg/task"
	"github.com/blairham/chore/pkg/task/execution"
	"github.com/blairham/chore/pkg/task/formatting"
	"github.com/blairham/chore/pkg/watch"
)

// RunCommand handles the run command functionality
type RunCommand struct{}

// RunOptions holds command-line options for the run command
type RunOptions struct {
	Config  string        `long:"config"  description:"Path to taskfile"                               short:"c"`
	Color   string        `long:"color"   description:"Whether to use color in output"                           default:"auto" choice:"auto" choice:"always" choice:"never"`
	Timeout time.Duration `long:"timeout" description:"Per-step timeout (e.g. 30s, 5m); 0 disables it"           default:"0"`
	Jobs    int           `long:"jobs"    description:"Number of dependency tasks to run in parallel"  short:"j" default:"1"`
	NoDeps  bool          `long:"no-deps" description:"Run the task without its dependencies"`
	DryRun  bool          `long:"dry-run" description:"Print the plan without executing anything"`
	Watch   bool          `long:"watch"   description:"Rerun the task when its watched files change"   short:"w"`
	Verbose bool          `long:"verbose" description:"Verbose output"                                 short:"v"`
	Help    bool          `long:"help"    description:"Show this help message"                         short:"h"`
}

// Help returns the help text for the run command
func (c *RunCommand) Help() string {
	var opts RunOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] TASK [ARG=VALUE ...]"

	formatter := &HelpFormatter{
		Command:     "run",
		Description: "Run a task from the taskfile, after its dependencies.",
		Examples: []Example{
			{Command: "chore run test", Description: "Run the test task"},
			{Command: "chore run test filter=-k_parser", Description: "Pass an argument by name"},
			{Command: "chore run release 1.4.0", Description: "Fill arguments positionally"},
			{Command: "chore run lint --watch", Description: "Rerun on file changes"},
			{Command: "chore run test --dry-run", Description: "Show the plan without executing"},
		},
		Notes: []string{
			"Steps run sequentially; a failing step aborts the task unless the",
			"step sets ignore_errors. With --jobs N, independent dependencies",
			"run in parallel. `chore TASK` is shorthand for `chore run TASK`.",
		},
	}

	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the run command
func (c *RunCommand) Synopsis() string {
	return "Run a task and its dependencies"
}

// RunCommandFactory creates a new run command instance
func RunCommandFactory() (cli.Command, error) {
	return &RunCommand{}, nil
}

// Run executes the run command
func (c *RunCommand) Run(args []string) int {
	var opts RunOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS] TASK [ARG=VALUE ...]"

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return ExitSuccess
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return ExitUsage
	}

	if len(remaining) == 0 {
		fmt.Println("Error: no task given (try `chore list`)")
		return ExitUsage
	}

	cfg, root, err := loadTaskfile(opts.Config)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	taskName := remaining[0]
	t, ok := cfg.Task(taskName)
	if !ok {
		fmt.Printf("Error: unknown task %q (try `chore list`)\n", taskName)
		return ExitUsage
	}

	argValues, err := parseTaskArgs(t, remaining[1:])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	execCtx := &execution.Context{
		Config:    cfg,
		TaskName:  taskName,
		ArgValues: argValues,
		RootDir:   root,
		Timeout:   opts.Timeout,
		Jobs:      opts.Jobs,
		SkipDeps:  opts.NoDeps,
		Verbose:   opts.Verbose,
		ColorMode: opts.Color,
	}

	runner, err := execution.NewRunner(execCtx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	if opts.DryRun {
		return c.printPlan(runner, cfg, argValues, taskName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openHistory(root, opts.Verbose)
	if store != nil {
		defer func() {
			_ = store.Close()
		}()
	}

	exitCode := c.runOnce(ctx, runner, execCtx, store)
	if !opts.Watch {
		return exitCode
	}

	return c.watchLoop(ctx, runner, execCtx, t, store)
}

// runOnce executes the plan a single time and prints results
func (c *RunCommand) runOnce(
	ctx context.Context,
	runner *execution.Runner,
	execCtx *execution.Context,
	store *history.Store,
) int {
	start := time.Now()
	results, err := runner.Run(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	formatter := formatting.NewFormatter(execCtx.ColorMode, execCtx.Verbose)
	formatter.PrintResults(results)
	formatter.Summary(results)

	exitCode := exitCodeFor(results)
	recordRun(store, execCtx, exitCode, time.Since(start), start)
	return exitCode
}

// watchLoop reruns the task on debounced file changes until interrupted
func (c *RunCommand) watchLoop(
	ctx context.Context,
	runner *execution.Runner,
	execCtx *execution.Context,
	t *config.Task,
	store *history.Store,
) int {
	rerun := make(chan []string, 1)
	watcher, err := watch.New(watch.Options{
		Root:  execCtx.RootDir,
		Globs: t.Watch,
	}, func(paths []string) {
		select {
		case rerun <- paths:
		default: // a rerun is already queued
		}
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}
	defer func() {
		_ = watcher.Close()
	}()

	go func() {
		if watchErr := watcher.Run(ctx); watchErr != nil && !errors.Is(watchErr, context.Canceled) {
			fmt.Printf("Warning: %v\n", watchErr)
		}
	}()

	fmt.Printf("\nWatching for changes (press Ctrl-C to stop)...\n")
	for {
		select {
		case <-ctx.Done():
			return ExitSuccess
		case paths := <-rerun:
			fmt.Printf("\nChanged: %s\n", summarizePaths(paths))
			c.runOnce(ctx, runner, execCtx, store)
			fmt.Printf("\nWatching for changes (press Ctrl-C to stop)...\n")
		}
	}
}

func (c *RunCommand) printPlan(
	runner *execution.Runner,
	cfg *config.Config,
	argValues map[string]string,
	taskName string,
) int {
	plan, err := runner.Plan()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return ExitUsage
	}

	for _, name := range plan {
		t, _ := cfg.Task(name)

		var values map[string]string
		if name == taskName {
			values = argValues
		}
		resolved, err := task.ResolveArgs(t, values)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return ExitUsage
		}

		fmt.Printf("%s:\n", name)
		data := task.TemplateData{Name: name, Args: resolved, Env: task.MergeEnv(cfg.Env, t.Env)}
		for _, step := range t.Steps {
			command, renderErr := task.RenderStep(step.Run, data)
			if renderErr != nil {
				fmt.Printf("Error: %v\n", renderErr)
				return ExitUsage
			}
			suffix := ""
			if step.IgnoreErrors {
				suffix = "  (ignore_errors)"
			}
			fmt.Printf("  $ %s%s\n", command, suffix)
		}
	}
	return ExitSuccess
}

func exitCodeFor(results []execution.Result) int {
	for _, r := range results {
		if !r.Success && !r.Skipped {
			return ExitFailure
		}
		if r.Skipped {
			return ExitFailure
		}
	}
	return ExitSuccess
}

// openHistory opens the run-history store; failures are reported only in
// verbose mode because history must never block a run
func openHistory(root string, verbose bool) *history.Store {
	store, err := history.Open(stateDir(root))
	if err != nil {
		if verbose {
			fmt.Printf("Warning: run history unavailable: %v\n", err)
		}
		return nil
	}
	return store
}

func recordRun(store *history.Store, execCtx *execution.Context, exitCode int, duration time.Duration, start time.Time) {
	if store == nil {
		return
	}
	if err := store.Record(execCtx.TaskName, execCtx.ArgValues, exitCode, duration, start); err != nil && execCtx.Verbose {
		fmt.Printf("Warning: failed to record run: %v\n", err)
	}
}

func stateDir(root string) string {
	return filepath.Join(root, execution.StateDirName)
}

func summarizePaths(paths []string) string {
	const maxShown = 3
	if len(paths) <= maxShown {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(paths[:maxShown], ", "), len(paths)-maxShown)
}

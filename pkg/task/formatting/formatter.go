// Package formatting handles result formatting and output display
package formatting

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/blairham/chore/pkg/task/execution"
)

// Color definitions for task output
var (
	PassedColor  = color.New(color.BgGreen, color.FgBlack)
	FailedColor  = color.New(color.BgRed, color.FgWhite)
	SkippedColor = color.New(color.BgCyan, color.FgBlack)

	DetailColor = color.New(color.Faint, color.FgWhite)
)

const (
	lineWidth   = 79
	statusWidth = 7 // "Skipped" is the widest status
)

// Formatter prints task execution results
type Formatter struct {
	colorMode string
	verbose   bool
}

// NewFormatter creates a new result formatter
func NewFormatter(colorMode string, verbose bool) *Formatter {
	return &Formatter{
		colorMode: colorMode,
		verbose:   verbose,
	}
}

// PrintResults prints one dotted status line per task, failure output, and
// any matcher diagnostics
func (f *Formatter) PrintResults(results []execution.Result) {
	color.NoColor = !f.shouldEnableColor()

	for _, result := range results {
		dots := strings.Repeat(".", max(lineWidth-len(result.TaskName)-statusWidth, 1))

		switch {
		case result.Skipped:
			f.printSkipped(result, dots)
		case result.Success:
			f.printPassed(result, dots)
		default:
			f.printFailed(result, dots)
		}
	}
}

// Summary prints the final pass/fail/skip counts
func (f *Formatter) Summary(results []execution.Result) {
	var passed, failed, skipped int
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Success:
			passed++
		default:
			failed++
		}
	}

	if failed == 0 && skipped == 0 {
		return
	}
	fmt.Printf("\n%d passed, %d failed, %d skipped\n", passed, failed, skipped)
}

func (f *Formatter) printPassed(result execution.Result, dots string) {
	fmt.Printf("%s%s%s\n", result.TaskName, dots, PassedColor.Sprint("Passed "))

	if suppressed := result.Suppressed(); suppressed > 0 {
		fmt.Println(DetailColor.Sprintf("- %d step failure(s) suppressed by ignore_errors", suppressed))
	}

	if f.verbose {
		f.printStepDetails(result)
	}
}

func (f *Formatter) printFailed(result execution.Result, dots string) {
	fmt.Printf("%s%s%s\n", result.TaskName, dots, FailedColor.Sprint("Failed "))
	f.printStepDetails(result)
}

func (f *Formatter) printSkipped(result execution.Result, dots string) {
	fmt.Printf("%s%s%s\n", result.TaskName, dots, SkippedColor.Sprint("Skipped"))
	if result.SkipReason != "" {
		fmt.Println(DetailColor.Sprintf("- %s", result.SkipReason))
	}
}

func (f *Formatter) printStepDetails(result execution.Result) {
	for _, step := range result.Steps {
		if step.Success && !f.verbose {
			continue
		}

		fmt.Println(DetailColor.Sprintf("- %s (exit %d, %v)", step.Command, step.ExitCode, step.Duration.Round(1e6)))
		if step.Error != "" {
			fmt.Printf("  %s\n", step.Error)
		}
		if output := strings.TrimSpace(step.Output); output != "" && (!step.Success || f.verbose) {
			for _, line := range strings.Split(output, "\n") {
				fmt.Printf("  %s\n", line)
			}
		}
	}

	if diags := result.Diagnostics(); len(diags) > 0 {
		fmt.Println()
		for _, d := range diags {
			fmt.Printf("  %s\n", d)
		}
	}
}

func (f *Formatter) shouldEnableColor() bool {
	switch f.colorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		return isatty.IsTerminal(os.Stdout.Fd())
	}
}

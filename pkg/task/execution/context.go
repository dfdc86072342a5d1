// Package execution handles the core task execution logic
package execution

import (
	"log"
	"os"
	"time"

	"github.com/blairham/chore/pkg/config"
	"github.com/blairham/chore/pkg/matcher"
)

// isTimingDebugEnabled checks if timing debug is enabled by reading environment variable
func isTimingDebugEnabled() bool {
	return os.Getenv("CHORE_TIMING_DEBUG") != ""
}

// LogTiming logs the duration of a phase if timing debug is enabled
func LogTiming(phase string, start time.Time) {
	if isTimingDebugEnabled() {
		log.Printf("[TIMING] %s took %v", phase, time.Since(start))
	}
}

// Context holds everything a run needs
type Context struct {
	Config    *config.Config
	Env       map[string]string
	ArgValues map[string]string
	TaskName  string
	RootDir   string
	ColorMode string
	Timeout   time.Duration
	Jobs      int
	SkipDeps  bool
	Verbose   bool
}

// StepResult is the outcome of one step inside a task
type StepResult struct {
	Command     string
	Output      string
	Error       string
	Diagnostics []matcher.Diagnostic
	Duration    time.Duration
	ExitCode    int
	Success     bool
	Suppressed  bool
	Timeout     bool
}

// Result is the outcome of one task
type Result struct {
	TaskName   string
	SkipReason string
	Steps      []StepResult
	Duration   time.Duration
	Success    bool
	Skipped    bool
}

// Suppressed counts steps whose failure was masked by ignore_errors
func (r Result) Suppressed() int {
	n := 0
	for _, s := range r.Steps {
		if s.Suppressed {
			n++
		}
	}
	return n
}

// Diagnostics returns all matcher findings across the task's steps
func (r Result) Diagnostics() []matcher.Diagnostic {
	var diags []matcher.Diagnostic
	for _, s := range r.Steps {
		diags = append(diags, s.Diagnostics...)
	}
	return diags
}

package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blairham/chore/pkg/config"
	"github.com/blairham/chore/pkg/matcher"
	"github.com/blairham/chore/pkg/task"
)

// Executor runs the steps of a single task
type Executor struct {
	ctx *Context
}

// NewExecutor creates a new task executor
func NewExecutor(ctx *Context) *Executor {
	return &Executor{ctx: ctx}
}

// RunTask executes a task's steps sequentially. A failing step aborts the
// task unless the step sets ignore_errors, in which case the failure is
// recorded as suppressed and execution continues.
func (e *Executor) RunTask(ctx context.Context, t *config.Task, args map[string]string) Result {
	start := time.Now()
	defer LogTiming("task "+t.Name, start)

	result := Result{TaskName: t.Name, Success: true}

	data := task.TemplateData{
		Name: t.Name,
		Args: args,
		Env:  task.MergeEnv(e.ctx.Config.Env, t.Env, e.ctx.Env),
	}

	for i, step := range t.Steps {
		stepResult := e.runStep(ctx, t, step, data)
		result.Steps = append(result.Steps, stepResult)

		if !stepResult.Success && !stepResult.Suppressed {
			result.Success = false
			break
		}

		if ctx.Err() != nil {
			result.Success = false
			if i < len(t.Steps)-1 {
				result.SkipReason = "interrupted"
			}
			break
		}
	}

	result.Duration = time.Since(start)
	return result
}

func (e *Executor) runStep(ctx context.Context, t *config.Task, step config.Step, data task.TemplateData) StepResult {
	start := time.Now()

	command, err := task.RenderStep(step.Run, data)
	if err != nil {
		return StepResult{
			Command:  step.Run,
			Error:    err.Error(),
			ExitCode: 1,
			Duration: time.Since(start),
		}
	}

	result := StepResult{Command: command}

	runCtx := ctx
	if e.ctx.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.ctx.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, "sh", "-c", command) // #nosec G204 -- taskfile commands are the product
	cmd.Dir = e.stepDir(t, step)
	cmd.Env = e.processEnv(task.MergeEnv(e.ctx.Config.Env, t.Env, step.Env, e.ctx.Env))

	output, execErr := cmd.CombinedOutput()
	result.Output = string(output)
	result.Duration = time.Since(start)

	if execErr != nil {
		e.classifyError(&result, runCtx, execErr)
		if step.IgnoreErrors {
			result.Suppressed = true
		}
	} else {
		result.Success = true
		result.ExitCode = 0
	}

	if step.Matcher != "" {
		result.Diagnostics = e.scanOutput(step.Matcher, result.Output)
	}

	return result
}

func (e *Executor) classifyError(result *StepResult, runCtx context.Context, execErr error) {
	var exitError *exec.ExitError
	if errors.As(execErr, &exitError) {
		result.ExitCode = exitError.ExitCode()
	} else {
		result.ExitCode = 1
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		result.Timeout = true
		result.Error = fmt.Sprintf("step timed out after %v", e.ctx.Timeout)
	case isExecutableNotFoundError(execErr):
		result.Error = fmt.Sprintf("executable not found: %s", execErr.Error())
	case errors.As(execErr, &exitError):
		// Tools that produce meaningful output carry the real information;
		// don't bury it under a generic message
		if strings.TrimSpace(result.Output) == "" {
			result.Error = fmt.Sprintf("command failed with exit code %d", exitError.ExitCode())
		}
	default:
		result.Error = fmt.Sprintf("execution error: %s", execErr.Error())
	}
}

func isExecutableNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return os.IsNotExist(err) || errors.Is(err, exec.ErrNotFound)
}

func (e *Executor) scanOutput(matcherName, output string) []matcher.Diagnostic {
	mc, ok := e.ctx.Config.MatcherByName(matcherName)
	if !ok {
		return nil
	}
	m, err := matcher.Compile(mc.Name, mc.Pattern)
	if err != nil {
		return nil
	}
	return m.Scan(output)
}

func (e *Executor) stepDir(t *config.Task, step config.Step) string {
	dir := e.ctx.RootDir
	if t.Dir != "" {
		dir = resolveDir(e.ctx.RootDir, t.Dir)
	}
	if step.Dir != "" {
		dir = resolveDir(e.ctx.RootDir, step.Dir)
	}
	return dir
}

func resolveDir(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// processEnv builds the subprocess environment: the parent environment with
// the taskfile overlay applied on top, in sorted key order for determinism
func (e *Executor) processEnv(overlay map[string]string) []string {
	env := os.Environ()
	if len(overlay) == 0 {
		return env
	}

	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		env = append(env, k+"="+overlay[k])
	}
	return env
}

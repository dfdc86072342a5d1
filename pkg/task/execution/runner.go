package execution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blairham/chore/pkg/lock"
	"github.com/blairham/chore/pkg/task"
)

// StateDirName is the per-project directory holding the run lock and history
const StateDirName = ".chore"

// Runner resolves a task's dependency plan and executes it
type Runner struct {
	ctx   *Context
	graph *task.Graph
}

// NewRunner builds a runner for the context's requested task. Graph and
// argument problems are reported here, before anything executes.
func NewRunner(ctx *Context) (*Runner, error) {
	graph, err := task.NewGraph(ctx.Config)
	if err != nil {
		return nil, err
	}

	r := &Runner{ctx: ctx, graph: graph}
	if _, err := r.resolveAllArgs(); err != nil {
		return nil, err
	}
	return r, nil
}

// Plan returns the execution order: transitive dependencies first, the
// requested task last
func (r *Runner) Plan() ([]string, error) {
	if r.ctx.SkipDeps {
		if _, ok := r.ctx.Config.Task(r.ctx.TaskName); !ok {
			return nil, fmt.Errorf("unknown task: %q", r.ctx.TaskName)
		}
		return []string{r.ctx.TaskName}, nil
	}
	return r.graph.Plan(r.ctx.TaskName)
}

// resolveAllArgs resolves arguments for every planned task. The requested
// task receives caller-supplied values; dependencies must be runnable from
// their declared defaults alone.
func (r *Runner) resolveAllArgs() (map[string]map[string]string, error) {
	plan, err := r.Plan()
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]map[string]string, len(plan))
	for _, name := range plan {
		t, _ := r.ctx.Config.Task(name)

		var values map[string]string
		if name == r.ctx.TaskName {
			values = r.ctx.ArgValues
		}

		args, err := task.ResolveArgs(t, values)
		if err != nil {
			if name != r.ctx.TaskName {
				return nil, fmt.Errorf("dependency %q of %q: %w", name, r.ctx.TaskName, err)
			}
			return nil, err
		}
		resolved[name] = args
	}
	return resolved, nil
}

// Run executes the plan. Dependencies whose own dependencies failed are
// skipped, never run. With Jobs > 1, independent dependencies run
// concurrently; a task's steps always run sequentially.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	start := time.Now()
	defer LogTiming("run "+r.ctx.TaskName, start)

	plan, err := r.Plan()
	if err != nil {
		return nil, err
	}
	argsByTask, err := r.resolveAllArgs()
	if err != nil {
		return nil, err
	}

	runLock, err := r.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = runLock.Unlock()
	}()

	results := make(map[string]Result, len(plan))
	for _, wave := range r.waves(plan) {
		r.runWave(ctx, wave, argsByTask, results)
	}

	ordered := make([]Result, 0, len(plan))
	for _, name := range plan {
		ordered = append(ordered, results[name])
	}
	return ordered, nil
}

// waves groups the plan into batches whose members only depend on earlier
// batches, so each batch can run concurrently
func (r *Runner) waves(plan []string) [][]string {
	placed := make(map[string]bool, len(plan))
	var waves [][]string

	remaining := append([]string(nil), plan...)
	for len(remaining) > 0 {
		wave := r.graph.Ready(remaining, placed)
		if len(wave) == 0 {
			// Cannot happen on a validated graph; bail out defensively
			wave = remaining[:1]
		}

		inWave := make(map[string]bool, len(wave))
		for _, name := range wave {
			inWave[name] = true
			placed[name] = true
		}

		next := remaining[:0]
		for _, name := range remaining {
			if !inWave[name] {
				next = append(next, name)
			}
		}
		remaining = next
		waves = append(waves, wave)
	}
	return waves
}

func (r *Runner) runWave(
	ctx context.Context,
	wave []string,
	argsByTask map[string]map[string]string,
	results map[string]Result,
) {
	jobs := r.ctx.Jobs
	if jobs < 1 {
		jobs = 1
	}

	// Skip decisions only look at results from earlier waves, so settle them
	// for the whole wave before any worker starts writing into results.
	runnable := make([]string, 0, len(wave))
	for _, name := range wave {
		if reason, skip := r.shouldSkip(name, results); skip {
			results[name] = Result{TaskName: name, Skipped: true, SkipReason: reason}
			continue
		}
		runnable = append(runnable, name)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, jobs)

	for _, name := range runnable {
		wg.Add(1)
		sem <- struct{}{}
		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }()

			t, _ := r.ctx.Config.Task(name)
			result := NewExecutor(r.ctx).RunTask(ctx, t, argsByTask[name])

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name)
	}
	wg.Wait()
}

func (r *Runner) shouldSkip(name string, results map[string]Result) (string, bool) {
	for _, dep := range r.graph.Deps(name) {
		res, ok := results[dep]
		if !ok {
			continue
		}
		if res.Skipped {
			return fmt.Sprintf("dependency %q was skipped", dep), true
		}
		if !res.Success {
			return fmt.Sprintf("dependency %q failed", dep), true
		}
	}
	return "", false
}

// acquireLock takes the per-project run lock so two invocations cannot
// interleave subprocess output and version-control state
func (r *Runner) acquireLock(ctx context.Context) (*lock.FileLock, error) {
	stateDir := filepath.Join(r.ctx.RootDir, StateDirName)
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	runLock := lock.New(stateDir)
	if err := runLock.Lock(ctx); err != nil {
		return nil, fmt.Errorf("another chore run is in progress: %w", err)
	}
	return runLock, nil
}

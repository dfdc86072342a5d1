package task

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blairham/chore/pkg/config"
)

// Graph is a validated view of the taskfile's dependency relationships.
// Construction rejects unknown references, self-loops, and cycles, so a
// Graph is safe to plan against without further checks.
type Graph struct {
	cfg  *config.Config
	deps map[string][]string
}

// NewGraph builds and validates the dependency graph for a taskfile
func NewGraph(cfg *config.Config) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps := make(map[string][]string, len(cfg.Tasks))
	for _, t := range cfg.Tasks {
		deps[t.Name] = append([]string(nil), t.Deps...)
	}

	g := &Graph{cfg: cfg, deps: deps}
	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// Deps returns the direct dependencies of a task
func (g *Graph) Deps(name string) []string {
	return append([]string(nil), g.deps[name]...)
}

const (
	unvisited = iota
	visiting
	visited
)

func (g *Graph) checkAcyclic() error {
	state := make(map[string]int, len(g.deps))

	names := make([]string, 0, len(g.deps))
	for name := range g.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	var path []string
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			// Trim the path down to where the cycle starts
			start := 0
			for i, n := range path {
				if n == name {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), name)
			return fmt.Errorf("dependency cycle: %s", strings.Join(cycle, " -> "))
		}

		state[name] = visiting
		path = append(path, name)
		for _, dep := range g.deps[name] {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[name] = visited
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Plan returns the execution order for a task: its transitive dependencies
// in topological order, the task itself last. The order is deterministic:
// dependencies run in their declared order, each before its dependents.
func (g *Graph) Plan(target string) ([]string, error) {
	if _, ok := g.cfg.Task(target); !ok {
		return nil, fmt.Errorf("unknown task: %q", target)
	}

	var order []string
	done := make(map[string]bool)

	var visit func(name string)
	visit = func(name string) {
		if done[name] {
			return
		}
		done[name] = true
		for _, dep := range g.deps[name] {
			visit(dep)
		}
		order = append(order, name)
	}
	visit(target)

	return order, nil
}

// Ready reports which of the given pending tasks have all dependencies
// completed. Used by the parallel scheduler.
func (g *Graph) Ready(pending []string, completed map[string]bool) []string {
	var ready []string
	for _, name := range pending {
		ok := true
		for _, dep := range g.deps[name] {
			if !completed[dep] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, name)
		}
	}
	return ready
}

// Package task builds executable plans from taskfile definitions.
package task

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/blairham/chore/pkg/config"
)

// TemplateData is the data available to step command templates
type TemplateData struct {
	Args map[string]string
	Env  map[string]string
	Name string
}

// RenderStep renders a step's run template. Referencing an undeclared
// argument or env variable is an error, not an empty substitution.
func RenderStep(run string, data TemplateData) (string, error) {
	tmpl, err := template.New("step").
		Funcs(sprig.FuncMap()).
		Option("missingkey=error").
		Parse(run)
	if err != nil {
		return "", fmt.Errorf("invalid command template %q: %w", run, err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render command template %q: %w", run, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// ResolveArgs merges caller-supplied values with declared defaults. Every
// required argument must be supplied; values for undeclared arguments are
// rejected.
func ResolveArgs(t *config.Task, values map[string]string) (map[string]string, error) {
	for name := range values {
		if _, ok := t.Arg(name); !ok {
			return nil, fmt.Errorf("task %q has no argument %q", t.Name, name)
		}
	}

	resolved := make(map[string]string, len(t.Args))
	for _, a := range t.Args {
		if v, ok := values[a.Name]; ok {
			resolved[a.Name] = v
			continue
		}
		if a.Required() {
			return nil, fmt.Errorf("task %q requires argument %q", t.Name, a.Name)
		}
		resolved[a.Name] = *a.Default
	}

	return resolved, nil
}

// MergeEnv overlays maps left to right, later maps winning
func MergeEnv(maps ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

// ValidateTemplates renders every step of every task against its declared
// arguments so that template errors surface at validation time rather than
// mid-run.
func ValidateTemplates(cfg *config.Config) error {
	for i := range cfg.Tasks {
		t := &cfg.Tasks[i]

		args := make(map[string]string, len(t.Args))
		for _, a := range t.Args {
			if a.Default != nil {
				args[a.Name] = *a.Default
			} else {
				args[a.Name] = a.Name
			}
		}

		data := TemplateData{
			Name: t.Name,
			Args: args,
			Env:  MergeEnv(cfg.Env, t.Env),
		}
		for j, s := range t.Steps {
			if _, err := RenderStep(s.Run, data); err != nil {
				return fmt.Errorf("task %q step %d: %w", t.Name, j+1, err)
			}
		}
	}
	return nil
}

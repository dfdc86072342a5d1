package config

func strptr(s string) *string { return &s }

// DefaultConfig returns the sample taskfile written by `chore sample-config`.
// It covers the common surface of a Python project managed with uv: test,
// format, lint, coverage, dependency sync, and release.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Tasks: []Task{
			{
				Name:        "test",
				Description: "Run the test suite",
				Tools:       []string{"uv"},
				Args: []Arg{
					{Name: "filter", Default: strptr(""), Description: "Extra pytest arguments, e.g. a test path or -k expression"},
				},
				Steps: []Step{
					{Run: "uv run pytest -vvv --showlocals {{.Args.filter}}"},
				},
			},
			{
				Name:        "format",
				Description: "Format source and auto-fix lint findings",
				Tools:       []string{"uv"},
				Steps: []Step{
					{Run: "uv run ruff format ."},
					// Fix what can be fixed; remaining findings are lint's job
					{Run: "uv run ruff check --fix .", IgnoreErrors: true},
				},
			},
			{
				Name:        "lint",
				Description: "Check formatting, lint rules, and types",
				Tools:       []string{"uv"},
				Steps: []Step{
					{Run: "uv run ruff format --check ."},
					{Run: "uv run ruff check ."},
					{Run: "uv run mypy .", Matcher: "mypy"},
				},
			},
			{
				Name:        "coverage",
				Description: "Regenerate and open the HTML coverage report",
				Tools:       []string{"uv"},
				Steps: []Step{
					{Run: "rm -rf htmlcov .coverage"},
					{Run: "uv run pytest --cov --cov-report=html"},
					{Run: "open htmlcov/index.html"},
				},
			},
			{
				Name:        "install-deps",
				Description: "Install locked dependencies",
				Tools:       []string{"uv"},
				Steps: []Step{
					{Run: "uv sync"},
				},
			},
			{
				Name:        "update-deps",
				Description: "Upgrade the lockfile, then install",
				Tools:       []string{"uv"},
				Steps: []Step{
					{Run: "uv lock --upgrade"},
					{Run: "uv sync"},
				},
			},
			{
				Name:        "release",
				Description: "Bump the version, commit, tag, and push",
				Args: []Arg{
					{Name: "version", Description: "New version or bump keyword (patch, minor, major)"},
				},
				Deps: []string{"lint", "test"},
				Steps: []Step{
					{Run: "chore release {{.Args.version}}"},
				},
			},
		},
		Matchers: []Matcher{
			{Name: "mypy", Pattern: `^(?<file>[^:\s]+):(?<line>\d+):(?:(?<col>\d+):)?\s*(?<severity>error|warning|note):\s*(?<message>.*)$`},
		},
	}
}

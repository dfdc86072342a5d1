// Package matcher extracts structured diagnostics from step output.
//
// A matcher is a regular expression applied to each output line, with named
// groups file, line, col, severity, and message. Patterns use regexp2
// syntax, so lookarounds in tool-provided patterns work.
package matcher

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Diagnostic is one finding extracted from a step's output
type Diagnostic struct {
	File     string
	Severity string
	Message  string
	Line     int
	Col      int
}

func (d Diagnostic) String() string {
	loc := d.File
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
		if d.Col > 0 {
			loc = fmt.Sprintf("%s:%d", loc, d.Col)
		}
	}
	if d.Severity != "" {
		return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", loc, d.Message)
}

// Matcher is a compiled output pattern
type Matcher struct {
	re   *regexp2.Regexp
	name string
}

// Compile compiles a matcher pattern
func Compile(name, pattern string) (*Matcher, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("matcher %q: invalid pattern: %w", name, err)
	}
	re.MatchTimeout = time.Second

	return &Matcher{name: name, re: re}, nil
}

// Name returns the matcher's configured name
func (m *Matcher) Name() string { return m.name }

// Scan applies the pattern to each line of output and collects diagnostics
func (m *Matcher) Scan(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		match, err := m.re.FindStringMatch(line)
		if err != nil || match == nil {
			continue
		}

		d := Diagnostic{
			File:     groupValue(match, "file"),
			Severity: groupValue(match, "severity"),
			Message:  groupValue(match, "message"),
			Line:     groupInt(match, "line"),
			Col:      groupInt(match, "col"),
		}
		if d.Message == "" {
			d.Message = line
		}
		diags = append(diags, d)
	}
	return diags
}

func groupValue(match *regexp2.Match, name string) string {
	g := match.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.Capture.String()
}

func groupInt(match *regexp2.Match, name string) int {
	v := groupValue(match, name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

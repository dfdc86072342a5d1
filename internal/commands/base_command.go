package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/blairham/chore/pkg/config"
)

// BaseCommand provides common functionality for all commands
type BaseCommand struct {
	Name        string
	Description string
	Examples    []Example
	Notes       []string
}

// CommonOptions defines options shared across multiple commands
type CommonOptions struct {
	Color   string `long:"color"   description:"Whether to use color in output" choice:"auto" choice:"always" choice:"never" default:"auto"`
	Config  string `long:"config"  description:"Path to taskfile"               short:"c"`
	Help    bool   `long:"help"    description:"Show this help message"         short:"h"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"          short:"v"`
}

// ParseArgsWithHelp parses arguments and handles help display
func (bc *BaseCommand) ParseArgsWithHelp(opts any, args []string) ([]string, error) {
	parser := flags.NewParser(opts, flags.Default)

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil // Help was shown, exit gracefully
		}
		return nil, fmt.Errorf("error parsing arguments: %w", err)
	}

	return remaining, nil
}

// GenerateHelp creates standardized help output
func (bc *BaseCommand) GenerateHelp(parser *flags.Parser) string {
	formatter := &HelpFormatter{
		Command:     bc.Name,
		Description: bc.Description,
		Examples:    bc.Examples,
		Notes:       bc.Notes,
	}
	return formatter.FormatHelp(parser)
}

// loadTaskfile loads and structurally validates the taskfile named by the
// --config flag (or the default probe order)
func loadTaskfile(configPath string) (*config.Config, string, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	root, err := taskfileRoot(configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

// taskfileRoot returns the project root: the directory holding the taskfile
func taskfileRoot(configPath string) (string, error) {
	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		return cwd, nil
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve taskfile path: %w", err)
	}
	return filepath.Dir(abs), nil
}

// parseTaskArgs maps the words after the task name onto its declared
// arguments. NAME=VALUE pairs bind by name; bare words fill the remaining
// declared arguments in order.
func parseTaskArgs(t *config.Task, words []string) (map[string]string, error) {
	values := make(map[string]string)

	var positional []string
	for _, word := range words {
		if name, value, ok := strings.Cut(word, "="); ok && name != "" {
			if _, declared := t.Arg(name); declared {
				if _, dup := values[name]; dup {
					return nil, fmt.Errorf("argument %q given twice", name)
				}
				values[name] = value
				continue
			}
		}
		positional = append(positional, word)
	}

	for _, arg := range t.Args {
		if len(positional) == 0 {
			break
		}
		if _, ok := values[arg.Name]; ok {
			continue
		}
		values[arg.Name] = positional[0]
		positional = positional[1:]
	}

	if len(positional) > 0 {
		return nil, fmt.Errorf("task %q: unexpected argument %q", t.Name, positional[0])
	}

	return values, nil
}

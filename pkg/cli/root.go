// Package cli implements the apilint command surface.
package cli

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Exit codes for the lint command surface.
const (
	// ExitClean means no findings at or above the failure severity.
	ExitClean = 0
	// ExitFindings means findings were present.
	ExitFindings = 1
	// ExitConfig means the input or configuration was malformed; no
	// useful partial result exists.
	ExitConfig = 2
	// ExitIncomplete means the run was cancelled before completion.
	ExitIncomplete = 3
)

// ExitError carries the process exit code for a command failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func exitErrorf(code int, format string, args ...interface{}) *ExitError {
	return &ExitError{Code: code, Err: fmt.Errorf(format, args...)}
}

// Command represents a CLI command.
type Command struct {
	Name        string
	Description string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// NewRootCommand creates the root command.
func NewRootCommand() *Command {
	root := &Command{
		Name:        "apilint",
		Description: "apilint - API design-rule compliance checker for protobuf surfaces",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("apilint", flag.ExitOnError),
	}

	root.Subcommands["lint"] = newLintCommand()
	root.Subcommands["rules"] = newRulesCommand()
	root.Subcommands["watch"] = newWatchCommand()

	return root
}

// Execute runs the command.
func (c *Command) Execute() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return c.usage()
	}

	if args[0] == "-h" || args[0] == "--help" {
		return c.usage()
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage.
func (c *Command) usage() error {
	fmt.Printf("Usage: %s <command> [args]\n\n", c.Name)
	fmt.Printf("Commands:\n")
	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	if v == "" {
		return fmt.Errorf("empty value")
	}
	*s = append(*s, v)
	return nil
}

// Command stachec compiles a directory of .mustache templates into a
// single C translation unit exposing them through a chosen host-language
// binding.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/stache-compiler/stache/pkg/diag"
	"github.com/stache-compiler/stache/pkg/discovery"
	"github.com/stache-compiler/stache/pkg/emitc"
	"github.com/stache-compiler/stache/pkg/validator"
)

var allowedEmitTargets = []string{"", "ruby"}

// usageError marks a flag-validation failure, which exits 2 rather than
// the 1 a compilation failure exits with.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// compileError marks a successful parse of the CLI's intent that failed
// during compilation; its diagnostics have already been printed.
type compileError struct{}

func (*compileError) Error() string { return "compilation failed" }

func main() {
	var dir, output, emit string
	var strict bool

	root := &cobra.Command{
		Use:           "stachec",
		Short:         "Compile Mustache templates into a C translation unit",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(dir, output, emit, strict)
		},
	}
	root.Flags().StringVarP(&dir, "dir", "d", "", "template root directory (required)")
	root.Flags().StringVarP(&output, "output", "o", "", "output C file path (required)")
	root.Flags().StringVar(&emit, "emit", "", "binding glue to append: ruby (others reserved)")
	root.Flags().BoolVar(&strict, "strict", false, "fail on unresolved partials instead of warning")

	if err := root.Execute(); err != nil {
		switch err.(type) {
		case *usageError:
			fmt.Fprintln(os.Stderr, "stachec:", err)
			os.Exit(2)
		case *compileError:
			os.Exit(1)
		default:
			fmt.Fprintln(os.Stderr, "stachec:", err)
			os.Exit(1)
		}
	}
}

func run(dir, output, emit string, strict bool) error {
	if err := validator.All(
		validator.NotEmpty(dir, "--dir"),
		validator.NotEmpty(output, "--output"),
		validator.MatchesAllowed(emit, allowedEmitTargets, "--emit"),
	); err != nil {
		return &usageError{msg: err.Error()}
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return &usageError{msg: fmt.Sprintf("--dir %q is not a directory", dir)}
	}

	templates, err := discovery.Discover(dir)
	if err != nil {
		return &usageError{msg: fmt.Sprintf("discovering templates: %v", err)}
	}
	if len(templates) == 0 {
		slog.Warn("no .mustache templates found", "dir", dir)
	}
	if err := validator.Each(templates); err != nil {
		return &usageError{msg: fmt.Sprintf("discovered template: %v", err)}
	}

	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	if err := validator.NoDuplicates(names, "template name"); err != nil {
		return &usageError{msg: err.Error()}
	}
	if err := validator.MapDict(discovery.ByName(templates), func(name string, tpl *discovery.Template) error {
		if tpl.Name != name {
			return fmt.Errorf("template indexed as %q has Name %q", name, tpl.Name)
		}
		return nil
	}, "template index"); err != nil {
		return &usageError{msg: err.Error()}
	}

	if err := discovery.LoadAll(templates); err != nil {
		return &usageError{msg: fmt.Sprintf("reading templates: %v", err)}
	}

	slog.Info("compiling templates", "count", len(templates), "dir", dir, "emit", emit, "strict", strict)

	result := emitc.CompileAll(emitc.FromTemplates(templates), emit, strict)
	for _, d := range result.Bag.All() {
		if d.Kind == diag.Warning {
			slog.Warn(d.Formatted())
		} else {
			fmt.Fprintln(os.Stderr, d.Formatted())
		}
	}
	if result.Bag.HasErrors() {
		return &compileError{}
	}

	if err := emitc.WriteAtomic(output, result.Output); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	slog.Info("wrote output", "path", output)
	return nil
}

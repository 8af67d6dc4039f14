// Package runtime provides the top-level Mini-Lisp runtime orchestrator.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/thomasrohde/minilisp/pkg/diagnostics"
	"github.com/thomasrohde/minilisp/pkg/evaluator"
	"github.com/thomasrohde/minilisp/pkg/formatter"
	"github.com/thomasrohde/minilisp/pkg/parser"
	"github.com/thomasrohde/minilisp/pkg/validator"
)

// Runtime wires the parser and evaluator together for program execution.
type Runtime struct {
	stdout   io.Writer
	maxDepth int
	trace    func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdout sets the writer that receives print output.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithMaxDepth sets the forcing depth bound.
func WithMaxDepth(depth int) Option {
	return func(rt *Runtime) {
		rt.maxDepth = depth
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
func New(opts ...Option) *Runtime {
	rt := &Runtime{}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses and executes a Mini-Lisp program. Parse failures come back as
// a *DiagnosticError; evaluation failures as a *evaluator.RuntimeError.
func (rt *Runtime) Run(ctx context.Context, source, filename string) error {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return &DiagnosticError{Diagnostics: diags}
	}

	return evaluator.Execute(ctx, program, rt.execOptions())
}

// Check parses and statically validates a Mini-Lisp program without
// executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(program)
}

// Format parses a Mini-Lisp program and renders it in canonical form.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

// NewInterp creates a persistent interpreter with the runtime's
// configuration, for callers that feed programs incrementally (the REPL).
func (rt *Runtime) NewInterp() *evaluator.Interp {
	return evaluator.New(rt.execOptions())
}

func (rt *Runtime) execOptions() evaluator.ExecOptions {
	return evaluator.ExecOptions{
		Stdout:   rt.stdout,
		MaxDepth: rt.maxDepth,
		Trace:    rt.trace,
	}
}

// ExitCode maps a Run or Format error to the process exit status the CLI
// reports: 0 for success, 2 for lex/parse diagnostics, 5 for recursion
// depth exhaustion, 4 for every other runtime failure.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var diagErr *DiagnosticError
	if errors.As(err, &diagErr) {
		return 2
	}
	var rtErr *evaluator.RuntimeError
	if errors.As(err, &rtErr) && rtErr.Code == diagnostics.ERecursion {
		return 5
	}
	return 4
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

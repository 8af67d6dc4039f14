// Command mlisp is the Mini-Lisp interpreter CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/minilisp/pkg/diagnostics"
	"github.com/thomasrohde/minilisp/pkg/evaluator"
	"github.com/thomasrohde/minilisp/pkg/formatter"
	"github.com/thomasrohde/minilisp/pkg/parser"
	"github.com/thomasrohde/minilisp/pkg/runtime"
)

const historyFile = ".mlisp_history"

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mlisp <command> [options]")
		fmt.Fprintln(os.Stderr, "commands: run, check, fmt, repl")
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}
}

func cmdRun(args []string) int {
	var file string
	pretty := false
	traceEnabled := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		case "--trace":
			traceEnabled = true
		default:
			if !strings.HasPrefix(args[i], "-") || args[i] == "-" {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: mlisp run <file|-> [--pretty] [--trace]")
		return 1
	}

	source, filename, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	var opts []runtime.Option
	if traceEnabled {
		opts = append(opts, runtime.WithTrace(func(event evaluator.TraceEvent) {
			b, _ := json.Marshal(event)
			fmt.Fprintln(os.Stderr, string(b))
		}))
	}
	rt := runtime.New(opts...)

	if err := rt.Run(context.Background(), source, filename); err != nil {
		return reportError(err, pretty)
	}
	return 0
}

func cmdCheck(args []string) int {
	var file string
	pretty := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pretty":
			pretty = true
		default:
			if !strings.HasPrefix(args[i], "-") || args[i] == "-" {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: mlisp check <file|-> [--pretty]")
		return 1
	}

	source, filename, exitCode := readSource(file, pretty)
	if exitCode != 0 {
		return exitCode
	}

	rt := runtime.New()
	diags := rt.Check(source, filename)
	if len(diags) > 0 {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return 2
	}

	if pretty {
		fmt.Println("No errors found.")
	} else {
		fmt.Println("[]")
	}
	return 0
}

func cmdFmt(args []string) int {
	var file string
	write := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--write", "-w":
			write = true
		default:
			if !strings.HasPrefix(args[i], "-") || args[i] == "-" {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "usage: mlisp fmt <file|-> [--write]")
		return 1
	}

	source, filename, exitCode := readSource(file, true)
	if exitCode != 0 {
		return exitCode
	}

	rt := runtime.New()
	formatted, err := rt.Format(source, filename)
	if err != nil {
		return reportError(err, true)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(os.Stderr, "warning: comments are discarded by the formatter")
	}

	if write && file != "-" {
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing %s: %s\n", file, err)
			return 1
		}
		return 0
	}
	fmt.Print(formatted)
	return 0
}

func cmdRepl(_ []string) int {
	fmt.Println("Mini-Lisp REPL. Ctrl-D or :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			f.Close()
		}
	}()

	interp := evaluator.New(evaluator.ExecOptions{})
	ctx := context.Background()

	for {
		input, ok := readForm(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		if strings.TrimSpace(input) == ":quit" {
			return 0
		}
		ln.AppendHistory(strings.TrimSpace(input))

		program, diags := parser.Parse(input, "<repl>")
		if len(diags) > 0 {
			fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diags, true))
			continue
		}
		if err := interp.Run(ctx, program); err != nil {
			reportError(err, true)
		}
	}
}

// readForm reads lines until the parentheses balance, so multi-line
// definitions work at the prompt. Returns false on EOF or Ctrl-C.
func readForm(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := "mlisp> "
		if b.Len() > 0 {
			prompt = "  ...> "
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			return "", false
		}
		b.WriteString(line)
		b.WriteString("\n")

		if parenBalance(b.String()) <= 0 {
			return b.String(), true
		}
	}
}

// parenBalance counts open minus close parens, ignoring comments.
func parenBalance(source string) int {
	balance := 0
	inComment := false
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case ';':
			inComment = true
		case '\n':
			inComment = false
		case '(':
			if !inComment {
				balance++
			}
		case ')':
			if !inComment {
				balance--
			}
		}
	}
	return balance
}

func readSource(file string, pretty bool) (string, string, int) {
	if file == "-" {
		// Read from stdin, matching the original interpreter's default
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading stdin: %s\n", err)
			return "", "", 1
		}
		return string(data), "<stdin>", 0
	}

	source, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), nil, "")
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return "", "", 1
	}
	return string(source), file, 0
}

func reportError(err error, pretty bool) int {
	if diagErr, ok := err.(*runtime.DiagnosticError); ok {
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, pretty))
	} else if rtErr, ok := err.(*evaluator.RuntimeError); ok {
		diag := diagnostics.MakeDiag(rtErr.Code, rtErr.Message, rtErr.Span, "")
		fmt.Fprintln(os.Stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	return runtime.ExitCode(err)
}

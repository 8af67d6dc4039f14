package evaluator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/thomasrohde/minilisp/pkg/ast"
	"github.com/thomasrohde/minilisp/pkg/diagnostics"
)

// DefaultMaxDepth bounds the forcing depth before a recursion error is
// raised. Deep source-level recursion shows up as nested forcing, so this
// also bounds call depth.
const DefaultMaxDepth = 10000

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart  TraceEventType = "run_start"
	TraceRunEnd    TraceEventType = "run_end"
	TraceStmtStart TraceEventType = "stmt_start"
	TraceStmtEnd   TraceEventType = "stmt_end"
	TraceCallStart TraceEventType = "call_start"
	TraceCallEnd   TraceEventType = "call_end"
	TraceDefine    TraceEventType = "define"
	TracePrint     TraceEventType = "print"
)

// TraceEvent represents a single trace event emitted during evaluation.
type TraceEvent struct {
	Event TraceEventType `json:"event"`
	Span  *ast.Span      `json:"span,omitempty"`
}

// ExecOptions configures program execution.
type ExecOptions struct {
	// Stdout receives print-num / print-bool output. Defaults to os.Stdout.
	Stdout io.Writer
	// MaxDepth bounds forcing depth. Zero means DefaultMaxDepth.
	MaxDepth int
	// Trace, when set, receives evaluation trace events.
	Trace func(event TraceEvent)
}

// RuntimeError represents a classified runtime failure. The engine never
// recovers from one; it propagates to the top-level driver, which reports
// a single message and halts the rest of the program.
type RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Interp is the Mini-Lisp interpreter. It owns the global environment for
// one program run; evaluation is single-threaded and synchronous.
type Interp struct {
	ctx      context.Context
	globals  *Env
	out      io.Writer
	maxDepth int
	depth    int
	trace    func(event TraceEvent)
}

// New creates an interpreter with a fresh global environment.
func New(opts ExecOptions) *Interp {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Interp{
		ctx:      context.Background(),
		globals:  NewEnv(),
		out:      out,
		maxDepth: maxDepth,
		trace:    opts.Trace,
	}
}

// Execute runs a Mini-Lisp program against a fresh interpreter.
func Execute(ctx context.Context, program *ast.Program, opts ExecOptions) error {
	return New(opts).Run(ctx, program)
}

// Globals exposes the global environment, mainly for tests and the REPL.
func (in *Interp) Globals() *Env {
	return in.globals
}

func (in *Interp) emit(event TraceEventType, span *ast.Span) {
	if in.trace != nil {
		in.trace(TraceEvent{Event: event, Span: span})
	}
}

// enter guards one level of forcing: depth bound and context cancellation.
// Exceeding the bound is reported as a recursion error before any state is
// mutated, so the global environment stays consistent.
func (in *Interp) enter(span *ast.Span) error {
	if err := in.ctx.Err(); err != nil {
		return &RuntimeError{
			Code:    diagnostics.ERuntime,
			Message: fmt.Sprintf("evaluation canceled: %s", err),
			Span:    span,
		}
	}
	in.depth++
	if in.depth > in.maxDepth {
		in.depth--
		return &RuntimeError{
			Code:    diagnostics.ERecursion,
			Message: "maximum recursion depth exceeded",
			Span:    span,
		}
	}
	return nil
}

func (in *Interp) leave() {
	in.depth--
}

// Run walks the program bottom-up, building one thunk chain per statement,
// then forces each chain in source order. Definitions accumulate in the
// interpreter's global environment, so successive Run calls share state
// (the REPL relies on this).
func (in *Interp) Run(ctx context.Context, program *ast.Program) error {
	in.ctx = ctx

	span := program.Span
	in.emit(TraceRunStart, &span)
	defer in.emit(TraceRunEnd, &span)

	for _, stmt := range program.Statements {
		stmtSpan := stmt.NodeSpan()
		in.emit(TraceStmtStart, &stmtSpan)

		operand, err := in.buildStmt(stmt)
		if err != nil {
			return err
		}
		if err := in.evaluate(operand, &stmtSpan); err != nil {
			return err
		}

		in.emit(TraceStmtEnd, &stmtSpan)
	}
	return nil
}

// evaluate forces a top-level operand: thunks are forced with their own
// (initially empty) attached environment, symbols resolve against the
// global environment, literals pass through.
func (in *Interp) evaluate(operand Operand, span *ast.Span) error {
	switch o := operand.(type) {
	case *Thunk:
		_, err := in.force(o)
		return err
	case Symbol:
		_, err := in.lookup(o.Name, nil, span)
		return err
	}
	return nil
}

func (in *Interp) buildStmt(stmt ast.Stmt) (Operand, error) {
	switch s := stmt.(type) {
	case *ast.DefineStmt:
		return in.buildDefine(s)
	case *ast.ExprStmt:
		return in.build(s.Expr)
	}
	return nil, &RuntimeError{
		Code:    diagnostics.ERuntime,
		Message: fmt.Sprintf("unsupported statement type: %T", stmt),
	}
}

func (in *Interp) buildDefine(s *ast.DefineStmt) (*Thunk, error) {
	value, err := in.build(s.Value)
	if err != nil {
		return nil, err
	}
	return defineThunk(s.Span, s.Name, value), nil
}

// build constructs the operand for an expression node: literals map to
// values, identifiers stay unresolved symbols, and every non-leaf
// production becomes a thunk capturing its already-built children. Nothing
// is evaluated here; errors at build time are structural only.
func (in *Interp) build(expr ast.Expr) (Operand, error) {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return NewNumber(e.Value), nil

	case *ast.BoolLit:
		return NewBoolean(e.Value), nil

	case *ast.Ident:
		return Symbol{Name: e.Name}, nil

	case *ast.OpExpr:
		operands := make([]Operand, len(e.Operands))
		for i, child := range e.Operands {
			operand, err := in.build(child)
			if err != nil {
				return nil, err
			}
			operands[i] = operand
		}
		return opThunk(e.Span, e.Op, operands)

	case *ast.FunExpr:
		defines := make([]*Thunk, len(e.Defines))
		for i, def := range e.Defines {
			thunk, err := in.buildDefine(def)
			if err != nil {
				return nil, err
			}
			defines[i] = thunk
		}
		body, err := in.build(e.Body)
		if err != nil {
			return nil, err
		}
		return funThunk(e.Span, e.Params, defines, body), nil

	case *ast.CallExpr:
		var callee Operand
		if ident, ok := e.Callee.(*ast.Ident); ok {
			// Named calls keep the callee as an unresolved symbol so
			// the function is looked up at force time, which is what
			// makes recursion through the global table work.
			callee = Symbol{Name: ident.Name}
		} else {
			built, err := in.build(e.Callee)
			if err != nil {
				return nil, err
			}
			callee = built
		}
		args := make([]Operand, len(e.Args))
		for i, arg := range e.Args {
			operand, err := in.build(arg)
			if err != nil {
				return nil, err
			}
			args[i] = operand
		}
		return callThunk(e.Span, callee, args), nil

	case *ast.IfExpr:
		test, err := in.build(e.Test)
		if err != nil {
			return nil, err
		}
		then, err := in.build(e.Then)
		if err != nil {
			return nil, err
		}
		els, err := in.build(e.Else)
		if err != nil {
			return nil, err
		}
		return ifThunk(e.Span, test, then, els), nil

	case *ast.PrintExpr:
		arg, err := in.build(e.Arg)
		if err != nil {
			return nil, err
		}
		return printThunk(e.Span, e.Bool, arg), nil
	}

	return nil, &RuntimeError{
		Code:    diagnostics.ERuntime,
		Message: fmt.Sprintf("unsupported expression type: %T", expr),
	}
}

package evaluator

import (
	"fmt"

	"github.com/thomasrohde/minilisp/pkg/ast"
	"github.com/thomasrohde/minilisp/pkg/diagnostics"
)

// NativeOp is the native computation applied once a thunk's operands are
// resolved and type-checked. It receives the forcing interpreter and the
// thunk itself so that call and conditional ops can reach the attached
// environment.
type NativeOp func(in *Interp, self *Thunk, args []Value) (Value, error)

// Thunk is a deferred, zero-argument computation: the captured operands,
// the expected kind per operand position, the native op, and a mutable
// attached environment swapped around calls. Thunks are built once per
// tree node and may be forced many times; forcing is never memoized, so
// each force re-resolves, re-checks, and re-executes side effects.
type Thunk struct {
	operands []Operand
	kinds    []Kind
	op       NativeOp
	span     ast.Span

	// env is the attached environment, empty at construction. Callers
	// attach a merged environment before forcing a body and restore the
	// previous one on exit.
	env *Env

	// binder is set on bindable body thunks produced by fun expressions.
	binder *binder

	// scope is the define target. Nil means the global environment; a
	// call rebinds it to the merged environment for local defines.
	scope *Env
}

func (*Thunk) operand() {}

// binder carries a fun expression's parameter list and local defines,
// applied to the body thunk's attached environment at call time.
type binder struct {
	params  []string
	defines []*Thunk
}

// newThunk wraps operands, expected kinds, and a native op into a thunk.
// A kind list shorter than the operand list defaults the remaining
// positions to KindAny.
func newThunk(span ast.Span, operands []Operand, kinds []Kind, op NativeOp) *Thunk {
	return &Thunk{
		operands: operands,
		kinds:    kinds,
		op:       op,
		span:     span,
		env:      NewEnv(),
	}
}

// Span returns the source span of the tree node this thunk was built from.
func (t *Thunk) Span() ast.Span {
	return t.span
}

func (t *Thunk) kindAt(i int) Kind {
	if i < len(t.kinds) {
		return t.kinds[i]
	}
	return KindAny
}

// identity wraps a bare operand (literal or symbol) in a one-operand
// pass-through thunk so every body or branch is force-compatible.
func identity(span ast.Span, operand Operand) *Thunk {
	return newThunk(span, []Operand{operand}, []Kind{KindAny},
		func(_ *Interp, _ *Thunk, args []Value) (Value, error) {
			return args[0], nil
		})
}

// sameKinds builds a kind list repeating k for n operand positions.
func sameKinds(k Kind, n int) []Kind {
	kinds := make([]Kind, n)
	for i := range kinds {
		kinds[i] = k
	}
	return kinds
}

// force resolves every operand left-to-right, type-checks each against its
// declared kind, and applies the native op. Nested thunks are forced under
// this thunk's attached environment with save/restore.
func (in *Interp) force(t *Thunk) (Value, error) {
	if err := in.enter(&t.span); err != nil {
		return nil, err
	}
	defer in.leave()

	args := make([]Value, len(t.operands))
	for i, operand := range t.operands {
		val, err := in.resolveOperand(t, operand, t.kindAt(i))
		if err != nil {
			return nil, err
		}
		args[i] = val
	}
	return t.op(in, t, args)
}

// resolveOperand forces a single operand under the parent thunk's attached
// environment and asserts its kind.
func (in *Interp) resolveOperand(parent *Thunk, operand Operand, kind Kind) (Value, error) {
	var val Value
	switch o := operand.(type) {
	case *Thunk:
		saved := o.env
		o.env = parent.env
		forced, err := in.force(o)
		o.env = saved
		if err != nil {
			return nil, err
		}
		val = forced

	case Symbol:
		resolved, err := in.lookup(o.Name, parent.env, &parent.span)
		if err != nil {
			return nil, err
		}
		val = resolved

	case Value:
		val = o

	default:
		return nil, &RuntimeError{
			Code:    diagnostics.ERuntime,
			Message: fmt.Sprintf("unsupported operand type: %T", operand),
			Span:    &parent.span,
		}
	}

	if kind != KindAny && (val == nil || KindOf(val) != kind) {
		return nil, &RuntimeError{
			Code:    diagnostics.EType,
			Message: fmt.Sprintf("expected '%s' but got '%s'", kind, kindName(val)),
			Span:    &parent.span,
		}
	}
	return val, nil
}

// lookup resolves a symbol: the call-local attached environment first, the
// global environment second.
func (in *Interp) lookup(name string, local *Env, span *ast.Span) (Value, error) {
	if local != nil {
		if val, ok := local.Get(name); ok {
			return val, nil
		}
	}
	if val, ok := in.globals.Get(name); ok {
		return val, nil
	}
	return nil, &RuntimeError{
		Code:    diagnostics.EName,
		Message: fmt.Sprintf("symbol '%s' is not defined", name),
		Span:    span,
	}
}

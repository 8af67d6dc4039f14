package evaluator

import (
	"fmt"

	"github.com/thomasrohde/minilisp/pkg/ast"
	"github.com/thomasrohde/minilisp/pkg/diagnostics"
)

// defineThunk writes its forced value into the thunk's target scope: the
// global environment at the top level, a call's merged environment when the
// define sits at the start of a fun body. Redefinition is an error whether
// or not the first value was ever forced.
func defineThunk(span ast.Span, name string, value Operand) *Thunk {
	return newThunk(span, []Operand{value}, []Kind{KindAny},
		func(in *Interp, self *Thunk, args []Value) (Value, error) {
			scope := self.scope
			if scope == nil {
				scope = in.globals
			}
			if !scope.Define(name, args[0]) {
				return nil, &RuntimeError{
					Code:    diagnostics.EDefined,
					Message: fmt.Sprintf("symbol '%s' is already defined", name),
					Span:    &self.span,
				}
			}
			in.emit(TraceDefine, &self.span)
			return args[0], nil
		})
}

// funThunk produces the closure for a fun expression. Forcing it with no
// bound parameters yields a Closure over the bindable body thunk: the body
// itself when it is already a thunk, otherwise an identity wrapper so every
// body is force-compatible. The binder carries the parameter names and the
// body's local defines for bindParams to apply at call time.
func funThunk(span ast.Span, params []string, defines []*Thunk, body Operand) *Thunk {
	return newThunk(span, nil, nil,
		func(_ *Interp, _ *Thunk, _ []Value) (Value, error) {
			bodyThunk, ok := body.(*Thunk)
			if !ok {
				bodyThunk = identity(span, body)
			}
			bodyThunk.binder = &binder{params: params, defines: defines}
			return Closure{Thunk: bodyThunk}, nil
		})
}

// callThunk invokes a closure. Its single declared operand is the callee
// (kind closure); the argument thunks are captured and forced only after
// the arity check passes. Forcing: resolve the callee to a bindable body,
// check arity, force the arguments left-to-right under the call's attached
// environment, attach the merged environment, bind, run local defines,
// force the body, and restore the previous attachment on every exit path.
// A closure result keeps the merged environment so nested calls still see
// it.
func callThunk(span ast.Span, callee Operand, args []Operand) *Thunk {
	return newThunk(span, []Operand{callee}, []Kind{KindClosure},
		func(in *Interp, self *Thunk, resolved []Value) (Value, error) {
			body := resolved[0].(Closure).Thunk
			if body.binder == nil {
				return nil, &RuntimeError{
					Code:    diagnostics.ERuntime,
					Message: "closure is not callable",
					Span:    &self.span,
				}
			}
			if len(args) != len(body.binder.params) {
				return nil, &RuntimeError{
					Code:    diagnostics.EArity,
					Message: fmt.Sprintf("required %d arguments but got %d arguments", len(body.binder.params), len(args)),
					Span:    &self.span,
				}
			}

			params := make([]Value, len(args))
			for i, arg := range args {
				val, err := in.resolveOperand(self, arg, KindAny)
				if err != nil {
					return nil, err
				}
				params[i] = val
			}

			merged := Merge(self.env, body.env)
			saved := body.env
			body.env = merged
			defer func() { body.env = saved }()

			in.emit(TraceCallStart, &self.span)
			defer in.emit(TraceCallEnd, &self.span)

			if err := in.bindParams(body, merged, params); err != nil {
				return nil, err
			}

			val, err := in.force(body)
			if err != nil {
				return nil, err
			}
			if c, ok := val.(Closure); ok {
				c.Thunk.env = merged
			}
			return val, nil
		})
}

// bindParams writes parameter bindings into the merged environment, then
// executes the body's local defines against that same environment. Params
// shadow merged entries silently; local defines are single-assignment and
// raise E_DEFINED on collision, including with a parameter name.
func (in *Interp) bindParams(body *Thunk, merged *Env, params []Value) error {
	for i, name := range body.binder.params {
		merged.Set(name, params[i])
	}
	for _, define := range body.binder.defines {
		define.scope = merged
		define.env = merged
		if _, err := in.force(define); err != nil {
			return err
		}
	}
	return nil
}

// ifThunk selects a branch lazily. Only the test carries a declared kind;
// the chosen branch is forced under the current attached environment and
// the other branch is never forced or type-checked.
func ifThunk(span ast.Span, test, then, els Operand) *Thunk {
	return newThunk(span, []Operand{test}, []Kind{KindBoolean},
		func(in *Interp, self *Thunk, args []Value) (Value, error) {
			branch := els
			if args[0].(Boolean).Value {
				branch = then
			}
			branchThunk, ok := branch.(*Thunk)
			if !ok {
				branchThunk = identity(self.span, branch)
			}
			saved := branchThunk.env
			branchThunk.env = self.env
			defer func() { branchThunk.env = saved }()
			return in.force(branchThunk)
		})
}

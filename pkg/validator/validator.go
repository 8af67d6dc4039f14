// Package validator implements static checks for Mini-Lisp programs.
//
// The engine binds names dynamically: a call executes under the caller's
// attached environment merged with the callee's captured one, so a symbol
// with no lexically visible binding can still resolve at run time. The
// checks here are limited to conditions that hold regardless of the
// dynamic environment.
package validator

import (
	"fmt"

	"github.com/thomasrohde/minilisp/pkg/ast"
	"github.com/thomasrohde/minilisp/pkg/diagnostics"
)

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	if s.bindings[name] {
		return true
	}
	if s.parent != nil {
		return s.parent.has(name)
	}
	return false
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

func (s *scope) hasLocal(name string) bool {
	return s.bindings[name]
}

type validator struct {
	diags []diagnostics.Diagnostic

	// globals maps top-level define names to their arity when the defined
	// value is a fun literal, or to -1 otherwise.
	globals map[string]int

	// everBound holds every name that any binder in the program can
	// introduce: top-level defines, parameters, and local defines. A
	// reference outside this set can never resolve.
	everBound map[string]bool

	// shadowed holds names introduced by parameters or local defines
	// anywhere. The merge rule lets such bindings leak into any call, so
	// global arity checks are skipped for them.
	shadowed map[string]bool
}

// Validate performs static analysis on a Mini-Lisp program and returns
// diagnostics for conditions guaranteed to fail at run time.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	v := &validator{
		globals:   make(map[string]int),
		everBound: make(map[string]bool),
		shadowed:  make(map[string]bool),
	}

	v.collect(program)

	for _, stmt := range program.Statements {
		v.validateStmt(stmt, newScope(nil))
	}

	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span) {
	s := span
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &s, ""))
}

// collect gathers every binder in the program before the checking walk.
func (v *validator) collect(program *ast.Program) {
	for _, stmt := range program.Statements {
		if def, ok := stmt.(*ast.DefineStmt); ok {
			if _, dup := v.globals[def.Name]; dup {
				v.addDiag(diagnostics.EDefined,
					fmt.Sprintf("symbol '%s' is already defined", def.Name), def.Span)
			} else {
				arity := -1
				if fn, isFun := def.Value.(*ast.FunExpr); isFun {
					arity = len(fn.Params)
				}
				v.globals[def.Name] = arity
			}
			v.everBound[def.Name] = true
		}
	}

	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.DefineStmt:
			v.collectExpr(s.Value)
		case *ast.ExprStmt:
			v.collectExpr(s.Expr)
		}
	}
}

func (v *validator) collectExpr(e ast.Expr) {
	switch expr := e.(type) {
	case *ast.FunExpr:
		for _, param := range expr.Params {
			v.everBound[param] = true
			v.shadowed[param] = true
		}
		for _, def := range expr.Defines {
			v.everBound[def.Name] = true
			v.shadowed[def.Name] = true
			v.collectExpr(def.Value)
		}
		v.collectExpr(expr.Body)
	case *ast.OpExpr:
		for _, o := range expr.Operands {
			v.collectExpr(o)
		}
	case *ast.CallExpr:
		v.collectExpr(expr.Callee)
		for _, a := range expr.Args {
			v.collectExpr(a)
		}
	case *ast.IfExpr:
		v.collectExpr(expr.Test)
		v.collectExpr(expr.Then)
		v.collectExpr(expr.Else)
	case *ast.PrintExpr:
		v.collectExpr(expr.Arg)
	}
}

func (v *validator) validateStmt(stmt ast.Stmt, sc *scope) {
	switch s := stmt.(type) {
	case *ast.DefineStmt:
		v.validateExpr(s.Value, sc)
	case *ast.ExprStmt:
		v.validateExpr(s.Expr, sc)
	}
}

func (v *validator) validateExpr(e ast.Expr, sc *scope) {
	switch expr := e.(type) {
	case *ast.NumberLit, *ast.BoolLit:
		// literals are always valid

	case *ast.Ident:
		if !sc.has(expr.Name) && !v.everBound[expr.Name] {
			v.addDiag(diagnostics.EName,
				fmt.Sprintf("symbol '%s' is never defined", expr.Name), expr.Span)
		}

	case *ast.OpExpr:
		for _, o := range expr.Operands {
			v.validateExpr(o, sc)
		}

	case *ast.FunExpr:
		child := newScope(sc)
		for _, param := range expr.Params {
			if child.hasLocal(param) {
				v.addDiag(diagnostics.EDefined,
					fmt.Sprintf("symbol '%s' is already defined", param), expr.Span)
			}
			child.add(param)
		}
		for _, def := range expr.Defines {
			if child.hasLocal(def.Name) {
				v.addDiag(diagnostics.EDefined,
					fmt.Sprintf("symbol '%s' is already defined", def.Name), def.Span)
			}
			v.validateExpr(def.Value, child)
			child.add(def.Name)
		}
		v.validateExpr(expr.Body, child)

	case *ast.CallExpr:
		if callee, ok := expr.Callee.(*ast.Ident); ok {
			v.validateNamedCall(callee, len(expr.Args), expr.Span, sc)
		} else {
			v.validateExpr(expr.Callee, sc)
		}
		for _, a := range expr.Args {
			v.validateExpr(a, sc)
		}

	case *ast.IfExpr:
		v.validateExpr(expr.Test, sc)
		v.validateExpr(expr.Then, sc)
		v.validateExpr(expr.Else, sc)

	case *ast.PrintExpr:
		v.validateExpr(expr.Arg, sc)
	}
}

// validateNamedCall checks a call through a name. The arity check only
// applies when the name is a top-level fun and no binder anywhere could
// shadow it through the call-environment merge.
func (v *validator) validateNamedCall(callee *ast.Ident, argc int, span ast.Span, sc *scope) {
	v.validateExpr(callee, sc)

	if v.shadowed[callee.Name] || sc.has(callee.Name) {
		return
	}
	arity, ok := v.globals[callee.Name]
	if !ok || arity < 0 {
		return
	}
	if argc != arity {
		v.addDiag(diagnostics.EArity,
			fmt.Sprintf("required %d arguments but got %d arguments", arity, argc), span)
	}
}

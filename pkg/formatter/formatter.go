// Package formatter implements the Mini-Lisp source code formatter.
package formatter

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/minilisp/pkg/ast"
)

const indent = "  "

// Forms whose inline rendering fits within this width stay on one line.
const inlineWidth = 72

// Format pretty-prints a Mini-Lisp AST back to canonical source code.
func Format(program *ast.Program) string {
	lines := make([]string, len(program.Statements))
	for i, s := range program.Statements {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments reports whether a source string contains ';' comments.
// Comments are not carried through the AST, so formatting discards them.
func HasComments(source string) bool {
	return strings.Contains(source, ";")
}

func formatStmt(s ast.Stmt, depth int) string {
	switch stmt := s.(type) {
	case *ast.DefineStmt:
		return formatDefine(stmt, depth)
	case *ast.ExprStmt:
		return formatExpr(stmt.Expr, depth)
	}
	return ""
}

func formatDefine(def *ast.DefineStmt, depth int) string {
	return formatForm(depth, "define "+def.Name, formatExpr(def.Value, depth+1))
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.NumberLit:
		return strconv.FormatInt(expr.Value, 10)

	case *ast.BoolLit:
		if expr.Value {
			return "#t"
		}
		return "#f"

	case *ast.Ident:
		return expr.Name

	case *ast.OpExpr:
		operands := make([]string, len(expr.Operands))
		for i, o := range expr.Operands {
			operands[i] = formatExpr(o, depth+1)
		}
		return formatForm(depth, string(expr.Op), operands...)

	case *ast.FunExpr:
		parts := []string{"(" + strings.Join(expr.Params, " ") + ")"}
		for _, def := range expr.Defines {
			parts = append(parts, formatDefine(def, depth+1))
		}
		parts = append(parts, formatExpr(expr.Body, depth+1))
		return formatForm(depth, "fun", parts...)

	case *ast.CallExpr:
		head := formatExpr(expr.Callee, depth)
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = formatExpr(a, depth+1)
		}
		return formatForm(depth, head, args...)

	case *ast.IfExpr:
		return formatForm(depth, "if",
			formatExpr(expr.Test, depth+1),
			formatExpr(expr.Then, depth+1),
			formatExpr(expr.Else, depth+1))

	case *ast.PrintExpr:
		head := "print-num"
		if expr.Bool {
			head = "print-bool"
		}
		return formatForm(depth, head, formatExpr(expr.Arg, depth+1))
	}
	return ""
}

// formatForm renders a parenthesized form: inline when it fits, otherwise
// the head on the first line and each part indented on its own line.
func formatForm(depth int, head string, parts ...string) string {
	inline := "(" + head
	if len(parts) > 0 {
		inline += " " + strings.Join(parts, " ")
	}
	inline += ")"
	if !strings.Contains(inline, "\n") && len(indentOf(depth))+len(inline) <= inlineWidth {
		return inline
	}

	inner := indentOf(depth + 1)
	lines := make([]string, len(parts))
	for i, p := range parts {
		lines[i] = inner + p
	}
	return "(" + head + "\n" + strings.Join(lines, "\n") + ")"
}

func indentOf(depth int) string {
	return strings.Repeat(indent, depth)
}

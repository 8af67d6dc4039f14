// Package parser implements the Mini-Lisp parser.
package parser

import (
	"fmt"
	"strconv"

	"github.com/thomasrohde/minilisp/pkg/ast"
	"github.com/thomasrohde/minilisp/pkg/diagnostics"
	"github.com/thomasrohde/minilisp/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into an AST.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}

	p := &parser{tokens: tokens, pos: 0}
	prog := p.parseProgram(filename)
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(fmt.Sprintf("expected %s, got '%s'", tokenName(typ), tok.Value), &tok.Span)
		return tok, false
	}
	return p.advance(), true
}

func (p *parser) addError(msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, span, ""))
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokLParen:
		return "'('"
	case lexer.TokRParen:
		return "')'"
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokNumber:
		return "number"
	case lexer.TokBool:
		return "boolean"
	case lexer.TokEOF:
		return "end of file"
	default:
		return fmt.Sprintf("token(%d)", t)
	}
}

// --- Program ---

func (p *parser) parseProgram(filename string) *ast.Program {
	startSpan := p.current().Span

	var stmts []ast.Stmt
	for p.peek() != lexer.TokEOF {
		stmt := p.parseStmt()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}

	if len(stmts) == 0 {
		p.addError("empty program", &startSpan)
		return nil
	}

	endSpan := p.current().Span
	return &ast.Program{
		Span:       p.spanFromTo(startSpan, endSpan),
		Statements: stmts,
	}
}

// --- Statements ---

func (p *parser) parseStmt() ast.Stmt {
	// (define id exp) at the top level is a define statement.
	if p.peek() == lexer.TokLParen && p.peekAt(1) == lexer.TokDefine {
		return p.parseDefine()
	}
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	return &ast.ExprStmt{Span: expr.NodeSpan(), Expr: expr}
}

func (p *parser) parseDefine() *ast.DefineStmt {
	open, ok := p.expect(lexer.TokLParen)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokDefine); !ok {
		return nil
	}
	name, ok := p.expect(lexer.TokIdent)
	if !ok {
		return nil
	}
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	closeTok, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}
	return &ast.DefineStmt{
		Span:  p.spanFromTo(open.Span, closeTok.Span),
		Name:  name.Value,
		Value: value,
	}
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Expr {
	tok := p.current()

	switch tok.Type {
	case lexer.TokNumber:
		p.advance()
		value, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("invalid number literal '%s'", tok.Value), &tok.Span)
			return nil
		}
		return &ast.NumberLit{Span: tok.Span, Value: value}

	case lexer.TokBool:
		p.advance()
		return &ast.BoolLit{Span: tok.Span, Value: tok.Value == "#t"}

	case lexer.TokIdent:
		p.advance()
		return &ast.Ident{Span: tok.Span, Name: tok.Value}

	case lexer.TokLParen:
		return p.parseForm()
	}

	p.addError(fmt.Sprintf("unexpected '%s' in expression", tok.Value), &tok.Span)
	return nil
}

// operatorArities maps operator token types to their grammar arity.
// min == -1 means "exactly max"; max == -1 means unbounded.
var operators = map[lexer.TokenType]struct {
	op  ast.Op
	min int
	max int
}{
	lexer.TokPlus:  {ast.OpPlus, 1, -1},
	lexer.TokMinus: {ast.OpMinus, 2, 2},
	lexer.TokStar:  {ast.OpMultiply, 1, -1},
	lexer.TokSlash: {ast.OpDivide, 2, 2},
	lexer.TokMod:   {ast.OpModulus, 2, 2},
	lexer.TokGt:    {ast.OpGreater, 2, 2},
	lexer.TokLt:    {ast.OpSmaller, 2, 2},
	lexer.TokEq:    {ast.OpEqual, 2, 2},
	lexer.TokAnd:   {ast.OpAnd, 1, -1},
	lexer.TokOr:    {ast.OpOr, 1, -1},
	lexer.TokNot:   {ast.OpNot, 1, 1},
}

// parseForm parses any parenthesized form.
func (p *parser) parseForm() ast.Expr {
	open, ok := p.expect(lexer.TokLParen)
	if !ok {
		return nil
	}

	head := p.current()

	if opInfo, isOp := operators[head.Type]; isOp {
		p.advance()
		return p.parseOpTail(open, head, opInfo.op, opInfo.min, opInfo.max)
	}

	switch head.Type {
	case lexer.TokFun:
		p.advance()
		return p.parseFunTail(open)

	case lexer.TokIf:
		p.advance()
		return p.parseIfTail(open)

	case lexer.TokPrintNum, lexer.TokPrintBool:
		p.advance()
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		closeTok, ok := p.expect(lexer.TokRParen)
		if !ok {
			return nil
		}
		return &ast.PrintExpr{
			Span: p.spanFromTo(open.Span, closeTok.Span),
			Bool: head.Type == lexer.TokPrintBool,
			Arg:  arg,
		}

	case lexer.TokIdent:
		// Named function call.
		p.advance()
		callee := &ast.Ident{Span: head.Span, Name: head.Value}
		return p.parseCallTail(open, callee)

	case lexer.TokLParen:
		// Anonymous function call: the callee must be a fun expression.
		callee := p.parseExpr()
		if callee == nil {
			return nil
		}
		if _, isFun := callee.(*ast.FunExpr); !isFun {
			span := callee.NodeSpan()
			p.addError("expected a fun expression in call position", &span)
			return nil
		}
		return p.parseCallTail(open, callee)

	case lexer.TokDefine:
		p.addError("'define' is only allowed at the top level or at the start of a fun body", &head.Span)
		return nil
	}

	p.addError(fmt.Sprintf("unexpected '%s' after '('", head.Value), &head.Span)
	return nil
}

func (p *parser) parseOpTail(open, head lexer.Token, op ast.Op, min, max int) ast.Expr {
	var operands []ast.Expr
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		operand := p.parseExpr()
		if operand == nil {
			return nil
		}
		operands = append(operands, operand)
	}
	closeTok, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}

	span := p.spanFromTo(open.Span, closeTok.Span)
	if len(operands) < min {
		p.addError(fmt.Sprintf("operator '%s' requires at least %d operand(s), got %d", op, min, len(operands)), &span)
		return nil
	}
	if max >= 0 && len(operands) > max {
		p.addError(fmt.Sprintf("operator '%s' takes exactly %d operand(s), got %d", op, max, len(operands)), &span)
		return nil
	}

	return &ast.OpExpr{Span: span, Op: op, Operands: operands}
}

func (p *parser) parseFunTail(open lexer.Token) ast.Expr {
	if _, ok := p.expect(lexer.TokLParen); !ok {
		return nil
	}
	var params []string
	for p.peek() == lexer.TokIdent {
		params = append(params, p.advance().Value)
	}
	if _, ok := p.expect(lexer.TokRParen); !ok {
		return nil
	}

	// Fun body: zero or more local defines followed by one expression.
	var defines []*ast.DefineStmt
	for p.peek() == lexer.TokLParen && p.peekAt(1) == lexer.TokDefine {
		def := p.parseDefine()
		if def == nil {
			return nil
		}
		defines = append(defines, def)
	}

	body := p.parseExpr()
	if body == nil {
		return nil
	}
	closeTok, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}

	return &ast.FunExpr{
		Span:    p.spanFromTo(open.Span, closeTok.Span),
		Params:  params,
		Defines: defines,
		Body:    body,
	}
}

func (p *parser) parseIfTail(open lexer.Token) ast.Expr {
	test := p.parseExpr()
	if test == nil {
		return nil
	}
	then := p.parseExpr()
	if then == nil {
		return nil
	}
	els := p.parseExpr()
	if els == nil {
		return nil
	}
	closeTok, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}
	return &ast.IfExpr{
		Span: p.spanFromTo(open.Span, closeTok.Span),
		Test: test,
		Then: then,
		Else: els,
	}
}

func (p *parser) parseCallTail(open lexer.Token, callee ast.Expr) ast.Expr {
	var args []ast.Expr
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}
	closeTok, ok := p.expect(lexer.TokRParen)
	if !ok {
		return nil
	}
	return &ast.CallExpr{
		Span:   p.spanFromTo(open.Span, closeTok.Span),
		Callee: callee,
		Args:   args,
	}
}

package lexer_test

import (
	"errors"
	"testing"

	"github.com/thomasrohde/minilisp/pkg/lexer"
)

func tokenTypes(t *testing.T, source string) []lexer.TokenType {
	t.Helper()
	tokens, err := lexer.Tokenize(source, "test.lisp")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	types := make([]lexer.TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func expectTypes(t *testing.T, got, want []lexer.TokenType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: type %d, want %d", i, got[i], want[i])
		}
	}
}

func TestTokenize_SimpleForm(t *testing.T) {
	got := tokenTypes(t, `(print-num (+ 1 2))`)
	expectTypes(t, got, []lexer.TokenType{
		lexer.TokLParen, lexer.TokPrintNum,
		lexer.TokLParen, lexer.TokPlus, lexer.TokNumber, lexer.TokNumber, lexer.TokRParen,
		lexer.TokRParen, lexer.TokEOF,
	})
}

func TestTokenize_Keywords(t *testing.T) {
	got := tokenTypes(t, `define fun if mod and or not print-num print-bool`)
	expectTypes(t, got, []lexer.TokenType{
		lexer.TokDefine, lexer.TokFun, lexer.TokIf, lexer.TokMod,
		lexer.TokAnd, lexer.TokOr, lexer.TokNot,
		lexer.TokPrintNum, lexer.TokPrintBool, lexer.TokEOF,
	})
}

func TestTokenize_NegativeNumber(t *testing.T) {
	tokens, err := lexer.Tokenize(`(- -7 2)`, "test.lisp")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	// '-' followed by a digit is a literal; bare '-' is the operator.
	if tokens[1].Type != lexer.TokMinus {
		t.Errorf("token 1: type %d, want TokMinus", tokens[1].Type)
	}
	if tokens[2].Type != lexer.TokNumber || tokens[2].Value != "-7" {
		t.Errorf("token 2 = (%d, %q), want number -7", tokens[2].Type, tokens[2].Value)
	}
}

func TestTokenize_Booleans(t *testing.T) {
	tokens, err := lexer.Tokenize(`#t #f`, "test.lisp")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if tokens[0].Type != lexer.TokBool || tokens[0].Value != "#t" {
		t.Errorf("token 0 = (%d, %q), want bool #t", tokens[0].Type, tokens[0].Value)
	}
	if tokens[1].Type != lexer.TokBool || tokens[1].Value != "#f" {
		t.Errorf("token 1 = (%d, %q), want bool #f", tokens[1].Type, tokens[1].Value)
	}
}

func TestTokenize_IdentWithDashAndQuestion(t *testing.T) {
	tokens, err := lexer.Tokenize(`make-adder even?`, "test.lisp")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if tokens[0].Type != lexer.TokIdent || tokens[0].Value != "make-adder" {
		t.Errorf("token 0 = (%d, %q), want ident make-adder", tokens[0].Type, tokens[0].Value)
	}
	if tokens[1].Type != lexer.TokIdent || tokens[1].Value != "even?" {
		t.Errorf("token 1 = (%d, %q), want ident even?", tokens[1].Type, tokens[1].Value)
	}
}

func TestTokenize_CommentsSkipped(t *testing.T) {
	got := tokenTypes(t, "; a comment\n(+ 1 2) ; trailing\n")
	expectTypes(t, got, []lexer.TokenType{
		lexer.TokLParen, lexer.TokPlus, lexer.TokNumber, lexer.TokNumber, lexer.TokRParen,
		lexer.TokEOF,
	})
}

func TestTokenize_Positions(t *testing.T) {
	tokens, err := lexer.Tokenize("(define x\n  5)", "pos.lisp")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	five := tokens[3]
	if five.Span.StartLine != 2 || five.Span.StartCol != 3 {
		t.Errorf("literal 5 at %d:%d, want 2:3", five.Span.StartLine, five.Span.StartCol)
	}
	if five.Span.File != "pos.lisp" {
		t.Errorf("span file = %q, want pos.lisp", five.Span.File)
	}
}

func TestTokenize_UnexpectedCharacter(t *testing.T) {
	_, err := lexer.Tokenize(`(+ 1 "two")`, "test.lisp")
	if err == nil {
		t.Fatal("expected lex error for string literal, got nil")
	}
	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexError, got %T", err)
	}
}

func TestTokenize_BadBoolean(t *testing.T) {
	_, err := lexer.Tokenize(`#x`, "test.lisp")
	if err == nil {
		t.Fatal("expected lex error for '#x', got nil")
	}
}

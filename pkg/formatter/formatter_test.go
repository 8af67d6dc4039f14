package formatter_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thomasrohde/minilisp/pkg/formatter"
	"github.com/thomasrohde/minilisp/pkg/parser"
)

func format(t *testing.T, source string) string {
	t.Helper()
	prog, diags := parser.Parse(source, "test.lisp")
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	return formatter.Format(prog)
}

func TestFormat_NormalizesWhitespace(t *testing.T) {
	got := format(t, "(print-num   (+ 1\n  2))")
	if diff := cmp.Diff("(print-num (+ 1 2))\n", got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_Literals(t *testing.T) {
	got := format(t, "42 -7 #t #f x")
	if diff := cmp.Diff("42\n-7\n#t\n#f\nx\n", got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_Fun(t *testing.T) {
	got := format(t, "(define f (fun (x y) (+ x y)))")
	if diff := cmp.Diff("(define f (fun (x y) (+ x y)))\n", got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_LongFormBreaks(t *testing.T) {
	src := `(define long-name (fun (alpha beta gamma delta) (+ alpha beta gamma delta alpha beta gamma delta)))`
	got := format(t, src)
	want := `(define long-name
  (fun
    (alpha beta gamma delta)
    (+ alpha beta gamma delta alpha beta gamma delta)))
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_Stable(t *testing.T) {
	// Formatting already-formatted source is a fixed point.
	src := `(define fact
  (fun (n) (if (< n 2) 1 (* n (fact (- n 1))))))
(print-num (fact 5))`
	once := format(t, src)
	twice := format(t, once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("formatting is not stable (-once +twice):\n%s", diff)
	}
}

func TestHasComments(t *testing.T) {
	if !formatter.HasComments("(+ 1 2) ; sum") {
		t.Error("comment not detected")
	}
	if formatter.HasComments("(+ 1 2)") {
		t.Error("false comment detection")
	}
}

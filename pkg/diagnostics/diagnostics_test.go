package diagnostics_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/thomasrohde/minilisp/pkg/ast"
	"github.com/thomasrohde/minilisp/pkg/diagnostics"
)

func TestFormatDiagnostic_Pretty(t *testing.T) {
	d := diagnostics.MakeDiag(
		diagnostics.EName,
		"symbol 'x' is not defined",
		&ast.Span{File: "main.lisp", StartLine: 3, StartCol: 12, EndLine: 3, EndCol: 13},
		"",
	)
	got := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(got, "error[E_NAME]: symbol 'x' is not defined") {
		t.Errorf("missing header in %q", got)
	}
	if !strings.Contains(got, "--> main.lisp:3:12") {
		t.Errorf("missing location in %q", got)
	}
}

func TestFormatDiagnostic_PrettyNoSpan(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.ERuntime, "division by zero", nil, "")
	got := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(got, "<unknown>") {
		t.Errorf("spanless diagnostic should point at <unknown>, got %q", got)
	}
}

func TestFormatDiagnostic_Hint(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EParse, "unexpected ')'", nil, "check for a missing operand")
	got := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(got, "hint: check for a missing operand") {
		t.Errorf("missing hint in %q", got)
	}
}

func TestFormatDiagnostic_JSON(t *testing.T) {
	d := diagnostics.MakeDiag(diagnostics.EType, "expected 'number' but got 'boolean'", nil, "")
	got := diagnostics.FormatDiagnostic(d, false)

	var decoded diagnostics.Diagnostic
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, got)
	}
	if decoded.Code != diagnostics.EType || decoded.Message != d.Message {
		t.Errorf("decoded = %+v, want %+v", decoded, d)
	}
}

func TestFormatDiagnostics_JSONArray(t *testing.T) {
	diags := []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EParse, "first", nil, ""),
		diagnostics.MakeDiag(diagnostics.EParse, "second", nil, ""),
	}
	got := diagnostics.FormatDiagnostics(diags, false)

	var decoded []diagnostics.Diagnostic
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("output is not a valid JSON array: %v\n%s", err, got)
	}
	if len(decoded) != 2 {
		t.Errorf("decoded %d diagnostics, want 2", len(decoded))
	}
}

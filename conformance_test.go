package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thomasrohde/minilisp/internal/testutil"
	"github.com/thomasrohde/minilisp/pkg/evaluator"
	"github.com/thomasrohde/minilisp/pkg/runtime"
)

func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("failed to list scenarios: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, dir := range dirs {
		dir := dir
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}

			source, filename, err := testutil.ReadProgramFile(dir, scenario.Cmd)
			if err != nil {
				t.Fatalf("failed to read program file: %v", err)
			}

			switch scenario.Cmd[0] {
			case "run":
				runRunScenario(t, source, filename, scenario)
			case "check":
				runCheckScenario(t, source, filename, scenario)
			case "fmt":
				runFmtScenario(t, source, filename, scenario)
			default:
				t.Skipf("unsupported command: %s", scenario.Cmd[0])
			}
		})
	}
}

func runRunScenario(t *testing.T, source, filename string, scenario *testutil.Scenario) {
	t.Helper()

	var stdout bytes.Buffer
	rt := runtime.New(runtime.WithStdout(&stdout))

	err := rt.Run(context.Background(), source, filename)

	if scenario.Expect.ExitCode == 0 {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	} else {
		if err == nil {
			t.Fatalf("expected failure with exit code %d, got success", scenario.Expect.ExitCode)
		}
		checkErrorExpectations(t, err, scenario)
	}
	if got := runtime.ExitCode(err); got != scenario.Expect.ExitCode {
		t.Errorf("exit code = %d, want %d", got, scenario.Expect.ExitCode)
	}

	if diff := cmp.Diff(scenario.Expect.StdoutText, stdout.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func runCheckScenario(t *testing.T, source, filename string, scenario *testutil.Scenario) {
	t.Helper()

	rt := runtime.New()
	diags := rt.Check(source, filename)

	if scenario.Expect.ExitCode == 0 {
		if len(diags) > 0 {
			t.Fatalf("unexpected diagnostics: %v", diags)
		}
		return
	}

	if len(diags) == 0 {
		t.Fatalf("expected diagnostics, got none")
	}
	// The check command reports diagnostics with exit status 2.
	if got := runtime.ExitCode(&runtime.DiagnosticError{Diagnostics: diags}); got != scenario.Expect.ExitCode {
		t.Errorf("exit code = %d, want %d", got, scenario.Expect.ExitCode)
	}
	if scenario.Expect.ErrorCode != "" && diags[0].Code != scenario.Expect.ErrorCode {
		t.Errorf("diagnostic code = %q, want %q", diags[0].Code, scenario.Expect.ErrorCode)
	}
	if scenario.Expect.StderrContains != "" {
		found := false
		for _, d := range diags {
			if strings.Contains(d.Message, scenario.Expect.StderrContains) {
				found = true
			}
		}
		if !found {
			t.Errorf("no diagnostic message contains %q: %v", scenario.Expect.StderrContains, diags)
		}
	}
}

func runFmtScenario(t *testing.T, source, filename string, scenario *testutil.Scenario) {
	t.Helper()

	rt := runtime.New()
	formatted, err := rt.Format(source, filename)

	if scenario.Expect.ExitCode == 0 {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	} else {
		if err == nil {
			t.Fatalf("expected failure with exit code %d, got success", scenario.Expect.ExitCode)
		}
		checkErrorExpectations(t, err, scenario)
		if got := runtime.ExitCode(err); got != scenario.Expect.ExitCode {
			t.Errorf("exit code = %d, want %d", got, scenario.Expect.ExitCode)
		}
		return
	}

	if diff := cmp.Diff(scenario.Expect.StdoutText, formatted); diff != "" {
		t.Errorf("formatted output mismatch (-want +got):\n%s", diff)
	}
}

func checkErrorExpectations(t *testing.T, err error, scenario *testutil.Scenario) {
	t.Helper()

	if diagErr, ok := err.(*runtime.DiagnosticError); ok {
		if scenario.Expect.ErrorCode != "" && diagErr.Diagnostics[0].Code != scenario.Expect.ErrorCode {
			t.Errorf("diagnostic code = %q, want %q", diagErr.Diagnostics[0].Code, scenario.Expect.ErrorCode)
		}
		if scenario.Expect.StderrContains != "" && !strings.Contains(diagErr.Error(), scenario.Expect.StderrContains) {
			t.Errorf("error %q does not contain %q", diagErr.Error(), scenario.Expect.StderrContains)
		}
		return
	}

	rtErr, ok := err.(*evaluator.RuntimeError)
	if !ok {
		t.Fatalf("expected *evaluator.RuntimeError, got %T: %v", err, err)
	}
	if scenario.Expect.ErrorCode != "" && rtErr.Code != scenario.Expect.ErrorCode {
		t.Errorf("error code = %q, want %q (message: %s)", rtErr.Code, scenario.Expect.ErrorCode, rtErr.Message)
	}
	if scenario.Expect.StderrContains != "" && !strings.Contains(rtErr.Message, scenario.Expect.StderrContains) {
		t.Errorf("error message %q does not contain %q", rtErr.Message, scenario.Expect.StderrContains)
	}
}

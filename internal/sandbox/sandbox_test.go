package sandbox

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coanalystai/coanalyst/config"
)

// writeStub creates an executable script used in place of a real Python
// interpreter so the tests do not depend on one being installed.
func writeStub(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "stub.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func testConfig(t *testing.T, interpreter string) config.SandboxConfig {
	t.Helper()
	base := t.TempDir()
	return config.SandboxConfig{
		PythonExecutable: interpreter,
		CodeTimeout:      5 * time.Second,
		DataDir:          filepath.Join(base, "data"),
		OutputDir:        filepath.Join(base, "outputs"),
		ExecutionDir:     filepath.Join(base, "execution"),
		LedgerFile:       filepath.Join(base, "outputs", "execution_history.json"),
	}
}

func TestExecuteSuccess(t *testing.T) {
	stub := writeStub(t, t.TempDir(), `echo "=== execution start ==="
echo "R2 score: 0.85"
echo "data size: (1000, 5)"
echo "=== execution complete ==="`)
	cfg := testConfig(t, stub)
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := r.Execute(context.Background(), Request{
		MethodID:   "linear_regression",
		MethodName: "Linear Regression",
		Code:       "print('hello')",
	})

	if !rec.Success {
		t.Fatalf("expected success, got error %+v", rec.Error)
	}
	if rec.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", rec.ExitCode)
	}
	if !strings.HasPrefix(rec.ExecutionID, "exec_") {
		t.Fatalf("unexpected execution id %q", rec.ExecutionID)
	}
	if len(rec.Summary.KeyMetrics) != 1 {
		t.Fatalf("key metrics = %v, want one R2 line", rec.Summary.KeyMetrics)
	}
	if rec.Summary.DataInfo["size"] == "" {
		t.Fatalf("data size not extracted from stdout")
	}
}

func TestExecuteFailureClassified(t *testing.T) {
	cfg := testConfig(t, "")
	// Stub writes a partial result before failing, as a real analysis
	// script would.
	stub := writeStub(t, t.TempDir(), `echo "data size: (1000, 5)"
echo "col,val" > `+filepath.Join(cfg.OutputDir, "partial.csv")+`
echo "KeyError: 'sales'" >&2
exit 1`)
	cfg.PythonExecutable = stub
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := r.Execute(context.Background(), Request{MethodID: "m", MethodName: "m"})

	if rec.Success {
		t.Fatalf("expected failure")
	}
	if rec.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", rec.ExitCode)
	}
	if rec.Error == nil || rec.Error.Type != "missing_column" {
		t.Fatalf("error = %+v, want missing_column", rec.Error)
	}
	if len(rec.Artifacts) != 1 || rec.Artifacts[0].Name != "partial.csv" {
		t.Fatalf("artifacts = %v, want the partial.csv the run produced", rec.Artifacts)
	}
	if rec.Summary.DataInfo["size"] == "" {
		t.Fatalf("stdout digest lost on failure")
	}
}

func TestExecuteTimeout(t *testing.T) {
	stub := writeStub(t, t.TempDir(), "sleep 10")
	cfg := testConfig(t, stub)
	cfg.CodeTimeout = 100 * time.Millisecond
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := r.Execute(context.Background(), Request{MethodID: "m", MethodName: "m"})

	if rec.Success {
		t.Fatalf("expected timeout failure")
	}
	if !rec.TimedOut {
		t.Fatalf("TimedOut not set")
	}
	if rec.Error == nil || rec.Error.Type != "timeout" {
		t.Fatalf("error = %+v, want timeout", rec.Error)
	}
}

func TestExecuteCleansUpCodeFile(t *testing.T) {
	stub := writeStub(t, t.TempDir(), "exit 0")
	cfg := testConfig(t, stub)
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := r.Execute(context.Background(), Request{MethodID: "m", MethodName: "m"})

	execDir := filepath.Join(cfg.ExecutionDir, rec.ExecutionID)
	if _, err := os.Stat(execDir); !os.IsNotExist(err) {
		t.Fatalf("execution dir %s not cleaned up", execDir)
	}
}

func TestExecuteCollectsArtifacts(t *testing.T) {
	cfg := testConfig(t, "")
	// Stub writes a result file into the output directory.
	stub := writeStub(t, t.TempDir(), `echo "col,val" > `+filepath.Join(cfg.OutputDir, "result.csv"))
	cfg.PythonExecutable = stub
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := r.Execute(context.Background(), Request{MethodID: "m", MethodName: "m"})

	if !rec.Success {
		t.Fatalf("expected success, got %+v", rec.Error)
	}
	if len(rec.Artifacts) != 1 {
		t.Fatalf("artifacts = %v, want one", rec.Artifacts)
	}
	if rec.Artifacts[0].Name != "result.csv" || rec.Artifacts[0].Type != "data" {
		t.Fatalf("artifact = %+v, want result.csv/data", rec.Artifacts[0])
	}
}

func TestLedgerIsFullValidJSON(t *testing.T) {
	stub := writeStub(t, t.TempDir(), "exit 0")
	cfg := testConfig(t, stub)
	r, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 3; i++ {
		r.Execute(context.Background(), Request{MethodID: "m", MethodName: "m"})
	}

	data, err := os.ReadFile(cfg.LedgerFile)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	var entries []LedgerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("ledger is not valid JSON: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ledger has %d entries, want 3", len(entries))
	}
	if len(r.History()) != 3 {
		t.Fatalf("in-memory history has %d entries, want 3", len(r.History()))
	}
}

func TestExecutionIDsAreUnique(t *testing.T) {
	r := &Runner{}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := r.nextExecutionID()
		if seen[id] {
			t.Fatalf("duplicate execution id %s", id)
		}
		seen[id] = true
	}
}

func TestExtractSummary(t *testing.T) {
	stdout := `=== execution start ===
data size: (1000, 5)
RMSE: 12.4
silhouette score: 0.61
warning: column dropped
plain output line
=== execution complete ===`

	summary := extractSummary(stdout)

	if len(summary.KeyMetrics) != 2 {
		t.Fatalf("key metrics = %v, want RMSE and silhouette lines", summary.KeyMetrics)
	}
	if summary.DataInfo["size"] != "data size: (1000, 5)" {
		t.Fatalf("data info = %v", summary.DataInfo)
	}
	if len(summary.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", summary.Warnings)
	}
}

// Package sandbox runs synthesized Python snippets in a child process under
// a hard wall-clock timeout, digests their output, enumerates generated
// artifacts and keeps a JSON ledger of every execution.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coanalystai/coanalyst/config"
)

// Request is a single snippet to execute.
type Request struct {
	MethodID   string
	MethodName string
	Code       string
	// Timeout overrides the configured ceiling when positive. The policy
	// gate still caps it.
	Timeout time.Duration
}

// OutputSummary is the digest extracted from captured stdout.
type OutputSummary struct {
	KeyMetrics []string          `json:"key_metrics"`
	DataInfo   map[string]string `json:"data_info"`
	Warnings   []string          `json:"warnings"`
}

// Record is the full result of one execution.
type Record struct {
	ExecutionID   string         `json:"execution_id"`
	MethodID      string         `json:"method_id"`
	MethodName    string         `json:"method_name"`
	Success       bool           `json:"success"`
	TimedOut      bool           `json:"timed_out"`
	ExitCode      int            `json:"exit_code"`
	ExecutionTime float64        `json:"execution_time"`
	Stdout        string         `json:"stdout"`
	Stderr        string         `json:"stderr,omitempty"`
	Summary       OutputSummary  `json:"output_summary"`
	Artifacts     []ArtifactInfo `json:"generated_files"`
	Error         *ErrorInfo     `json:"error_info,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
}

// Runner executes requests sequentially. Ledger writes and execution id
// generation are serialized internally, so a Runner is safe for concurrent
// callers.
type Runner struct {
	logger   *log.Logger
	cfg      config.SandboxConfig
	enforcer *Enforcer

	mu      sync.Mutex
	history []LedgerEntry
	lastID  time.Time
}

// New creates a Runner. When a policy file is configured it is loaded and
// enforced before every launch.
func New(cfg config.SandboxConfig) (*Runner, error) {
	r := &Runner{
		logger: log.New(log.Writer(), "[SANDBOX] ", log.LstdFlags),
		cfg:    cfg,
	}
	if cfg.PolicyFile != "" {
		policy, err := LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("sandbox policy: %w", err)
		}
		r.enforcer = NewEnforcer(policy)
		r.logger.Printf("policy loaded: provider=%s timeout=%s network_enabled=%t",
			policy.Provider, policy.Timeout, policy.Network.Enabled)
	}
	return r, nil
}

// Execute runs one snippet and always returns a Record; failures are
// reported in the record, never as a Go error.
func (r *Runner) Execute(ctx context.Context, req Request) Record {
	r.logger.Printf("execution start: %s", req.MethodName)

	executionID := r.nextExecutionID()
	started := time.Now()

	rec := Record{
		ExecutionID: executionID,
		MethodID:    req.MethodID,
		MethodName:  req.MethodName,
		StartedAt:   started,
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.cfg.CodeTimeout
	}
	spec := LaunchSpec{Timeout: timeout}
	if err := r.enforcer.Validate(&spec); err != nil {
		rec.FinishedAt = time.Now()
		rec.Error = &ErrorInfo{
			Type:        "policy_violation",
			Message:     err.Error(),
			Suggestions: []string{"adjust the request to fit the sandbox policy"},
		}
		r.finish(&rec)
		return rec
	}
	timeout = spec.Timeout

	codeFile, err := r.materialize(req.Code, executionID)
	if err != nil {
		rec.FinishedAt = time.Now()
		rec.Error = &ErrorInfo{Type: "unknown", Message: err.Error()}
		r.finish(&rec)
		return rec
	}
	defer r.cleanup(codeFile)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.cfg.PythonExecutable, codeFile)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "PYTHONPATH="+mustGetwd())

	runErr := cmd.Run()
	rec.FinishedAt = time.Now()
	rec.ExecutionTime = rec.FinishedAt.Sub(started).Seconds()
	rec.Stdout = stdout.String()
	rec.Stderr = stderr.String()

	timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)
	if !timedOut {
		// A failed run still gets its stdout digest and whatever files it
		// managed to write before exiting.
		rec.Summary = extractSummary(rec.Stdout)
		rec.Artifacts = collectArtifacts(r.cfg.OutputDir)
	}

	switch {
	case timedOut:
		rec.TimedOut = true
		rec.ExitCode = -1
		rec.Error = timeoutError(timeout.String())
		r.logger.Printf("execution timed out after %s: %s", timeout, executionID)
	case runErr != nil:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			rec.ExitCode = exitErr.ExitCode()
			rec.Error = classifyError(rec.Stderr)
		} else {
			rec.ExitCode = -1
			rec.Error = &ErrorInfo{Type: "unknown", Message: runErr.Error()}
		}
		r.logger.Printf("execution failed (%s): %s", rec.Error.Type, executionID)
	default:
		rec.Success = true
		r.logger.Printf("execution succeeded in %.2fs: %s", rec.ExecutionTime, executionID)
	}

	r.finish(&rec)
	return rec
}

func (r *Runner) finish(rec *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordLedger(LedgerEntry{
		ExecutionID:   rec.ExecutionID,
		MethodID:      rec.MethodID,
		MethodName:    rec.MethodName,
		Success:       rec.Success,
		ExecutionTime: rec.ExecutionTime,
		Timestamp:     time.Now(),
	})
}

// nextExecutionID yields exec_YYYYMMDD_HHMMSS_microseconds ids that are
// strictly increasing even for back-to-back calls.
func (r *Runner) nextExecutionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if !now.After(r.lastID) {
		now = r.lastID.Add(time.Microsecond)
	}
	r.lastID = now
	return fmt.Sprintf("exec_%s_%06d", now.Format("20060102_150405"), now.Nanosecond()/1000)
}

// materialize writes the wrapped snippet to
// <execution_dir>/<id>/<id>.py and ensures the data and output
// directories exist.
func (r *Runner) materialize(code, executionID string) (string, error) {
	for _, dir := range []string{r.cfg.OutputDir, r.cfg.DataDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	execDir := filepath.Join(r.cfg.ExecutionDir, executionID)
	if err := os.MkdirAll(execDir, 0o755); err != nil {
		return "", fmt.Errorf("create execution dir: %w", err)
	}
	codeFile := filepath.Join(execDir, executionID+".py")
	if err := os.WriteFile(codeFile, []byte(r.wrap(code)), 0o644); err != nil {
		return "", fmt.Errorf("write code file: %w", err)
	}
	r.logger.Printf("code file created: %s", codeFile)
	return codeFile, nil
}

// wrap adds the standard preamble (warning suppression, path variables,
// directory creation) and the completion marker.
func (r *Runner) wrap(code string) string {
	var b strings.Builder
	b.WriteString("import sys\n")
	b.WriteString("import os\n")
	b.WriteString("import warnings\n\n")
	b.WriteString("warnings.filterwarnings('ignore')\n\n")
	b.WriteString("sys.path.append(os.getcwd())\n")
	fmt.Fprintf(&b, "output_path = %s\n", pyString(r.cfg.OutputDir))
	fmt.Fprintf(&b, "data_path = %s\n\n", pyString(r.cfg.DataDir))
	b.WriteString("os.makedirs(output_path, exist_ok=True)\n")
	b.WriteString("os.makedirs(data_path, exist_ok=True)\n\n")
	b.WriteString("print('=== execution start ===')\n\n")
	b.WriteString(code)
	b.WriteString("\n\nprint('=== execution complete ===')\n")
	return b.String()
}

// cleanup removes the materialized code file and its directory when empty.
func (r *Runner) cleanup(codeFile string) {
	if err := os.Remove(codeFile); err != nil && !os.IsNotExist(err) {
		r.logger.Printf("temp file cleanup failed: %v", err)
		return
	}
	dir := filepath.Dir(codeFile)
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) == 0 {
		if err := os.Remove(dir); err != nil {
			r.logger.Printf("temp dir cleanup failed: %v", err)
		}
	}
}

var summaryMetricMarkers = []string{"r²", "r2", "rmse", "silhouette", "p-value"}

// extractSummary scans stdout for metric lines, data size statements and
// warnings.
func extractSummary(stdout string) OutputSummary {
	summary := OutputSummary{DataInfo: map[string]string{}}
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case containsAny(lower, summaryMetricMarkers):
			summary.KeyMetrics = append(summary.KeyMetrics, line)
		case strings.Contains(lower, "data size") || strings.Contains(lower, "shape"):
			summary.DataInfo["size"] = line
		case strings.Contains(lower, "warning"):
			summary.Warnings = append(summary.Warnings, line)
		}
	}
	return summary
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func pyString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

package sandbox

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// LedgerEntry is the compact per-execution line kept in the history file.
type LedgerEntry struct {
	ExecutionID   string    `json:"execution_id"`
	MethodID      string    `json:"method_id"`
	MethodName    string    `json:"method_name"`
	Success       bool      `json:"success"`
	ExecutionTime float64   `json:"execution_time"`
	Timestamp     time.Time `json:"timestamp"`
}

// recordLedger appends an entry to the in-memory history and rewrites the
// ledger file with the full history. The full overwrite is deliberate: the
// file is always a complete, valid JSON document. Callers hold r.mu.
func (r *Runner) recordLedger(entry LedgerEntry) {
	r.history = append(r.history, entry)
	if r.cfg.LedgerFile == "" {
		return
	}
	data, err := json.MarshalIndent(r.history, "", "  ")
	if err != nil {
		r.logger.Printf("ledger marshal failed: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.cfg.LedgerFile), 0o755); err != nil {
		r.logger.Printf("ledger dir create failed: %v", err)
		return
	}
	if err := os.WriteFile(r.cfg.LedgerFile, data, 0o644); err != nil {
		r.logger.Printf("ledger write failed: %v", err)
	}
}

// History returns a copy of the execution history.
func (r *Runner) History() []LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LedgerEntry, len(r.history))
	copy(out, r.history)
	return out
}

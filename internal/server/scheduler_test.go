package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coanalystai/coanalyst/config"
	"github.com/coanalystai/coanalyst/internal/analyst/core"
	"github.com/coanalystai/coanalyst/internal/session"
)

func TestSweepRemovesExpiredSessionsAndStaleDirs(t *testing.T) {
	execDir := t.TempDir()
	cfg := &config.Config{}
	cfg.Session.TTL = 50 * time.Millisecond
	cfg.Session.SweepCron = "0 * * * *"
	cfg.Sandbox.ExecutionDir = execDir

	store := session.NewStore(cfg.Session.TTL)
	if err := store.Put(&core.Session{ID: "expired"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	stale := filepath.Join(execDir, "exec_old")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	fresh := filepath.Join(execDir, "exec_fresh")
	if err := os.MkdirAll(fresh, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if err := store.Put(&core.Session{ID: "live"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	NewScheduler(cfg, store).Sweep()

	if _, ok := store.Get("expired"); ok {
		t.Fatalf("expired session survived the sweep")
	}
	if _, ok := store.Get("live"); !ok {
		t.Fatalf("live session removed by the sweep")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale execution dir not pruned")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh execution dir pruned: %v", err)
	}
}

func TestInvalidCronFallsBack(t *testing.T) {
	cfg := &config.Config{}
	cfg.Session.SweepCron = "not a cron"
	s := NewScheduler(cfg, session.NewStore(time.Hour))
	if s.expr == nil {
		t.Fatalf("no fallback cron expression")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	cfg := &config.Config{}
	cfg.Session.SweepCron = "0 * * * *"
	s := NewScheduler(cfg, session.NewStore(time.Hour))
	s.Start()
	s.Stop()
}

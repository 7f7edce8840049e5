package server

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/coanalystai/coanalyst/config"
	"github.com/coanalystai/coanalyst/internal/session"
)

const sweepLockKey = "coanalyst:sweep:lock"

// Scheduler runs the periodic sweep: expired sessions are dropped and stale
// execution directories removed. With Redis configured, a SetNX lock keeps
// multiple instances from sweeping at once; without it the sweep runs
// locally.
type Scheduler struct {
	logger *log.Logger
	cfg    *config.Config
	store  *session.Store
	rdb    *redis.Client
	expr   *cronexpr.Expression

	stop chan struct{}
	done chan struct{}
}

func NewScheduler(cfg *config.Config, store *session.Store) *Scheduler {
	s := &Scheduler{
		logger: log.New(log.Writer(), "[SCHEDULER] ", log.LstdFlags),
		cfg:    cfg,
		store:  store,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	expr, err := cronexpr.Parse(cfg.Session.SweepCron)
	if err != nil {
		s.logger.Printf("invalid sweep cron %q, falling back to hourly: %v", cfg.Session.SweepCron, err)
		expr = cronexpr.MustParse("0 * * * *")
	}
	s.expr = expr

	if cfg.Storage.Redis.Enabled() {
		s.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Host + ":" + cfg.Storage.Redis.Port,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
	}
	return s
}

// Start launches the sweep loop.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop terminates the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
}

func (s *Scheduler) run() {
	defer close(s.done)
	next := s.expr.Next(time.Now())
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			if now.Before(next) {
				continue
			}
			s.Sweep()
			next = s.expr.Next(now)
		}
	}
}

// Sweep performs one sweep pass. Exported so the CLI and tests can trigger
// it directly.
func (s *Scheduler) Sweep() {
	if !s.acquireLock() {
		s.logger.Printf("sweep lock held elsewhere, skipping")
		return
	}
	removed := s.store.Sweep()
	pruned := s.pruneExecutionDirs()
	s.logger.Printf("sweep done: %d sessions removed, %d stale execution dirs pruned", removed, pruned)
}

// acquireLock takes the distributed sweep lock. Without Redis there is
// nothing to coordinate and the lock is always granted.
func (s *Scheduler) acquireLock() bool {
	if s.rdb == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ok, err := s.rdb.SetNX(ctx, sweepLockKey, time.Now().Format(time.RFC3339), time.Minute).Result()
	if err != nil {
		s.logger.Printf("sweep lock error, proceeding locally: %v", err)
		return true
	}
	return ok
}

// pruneExecutionDirs removes leftover per-execution directories older than
// the session TTL. Normal execution cleans up after itself; this catches
// directories orphaned by crashes.
func (s *Scheduler) pruneExecutionDirs() int {
	ttl := s.cfg.Session.TTL
	if ttl <= 0 {
		return 0
	}
	entries, err := os.ReadDir(s.cfg.Sandbox.ExecutionDir)
	if err != nil {
		return 0
	}
	cutoff := time.Now().Add(-ttl)
	pruned := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.cfg.Sandbox.ExecutionDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.logger.Printf("prune %s failed: %v", path, err)
			continue
		}
		pruned++
	}
	return pruned
}

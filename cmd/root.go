// Package cmd implements the coanalyst CLI.
package cmd

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/coanalystai/coanalyst/config"
	"github.com/coanalystai/coanalyst/internal/analyst/core"
	"github.com/coanalystai/coanalyst/internal/analyst/telemetry"
	"github.com/coanalystai/coanalyst/internal/catalog"
	"github.com/coanalystai/coanalyst/internal/knowledge"
	"github.com/coanalystai/coanalyst/internal/sandbox"
	"github.com/coanalystai/coanalyst/internal/session"
	"github.com/coanalystai/coanalyst/internal/synthesis"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "coanalyst",
	Short: "Turn analysis requests into executed Python data-analysis pipelines",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(serveCmd, analyzeCmd, sampleDataCmd)
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// pipeline holds everything a command needs to process requests.
type pipeline struct {
	cfg          *config.Config
	store        *session.Store
	metrics      *telemetry.Telemetry
	orchestrator *core.Orchestrator
}

// buildPipeline wires the full stack from configuration.
func buildPipeline() (*pipeline, error) {
	cfg := config.LoadConfig(configPath)

	runner, err := sandbox.New(cfg.Sandbox)
	if err != nil {
		return nil, err
	}
	know, err := knowledge.Load(cfg.Knowledge.Dir)
	if err != nil {
		return nil, err
	}

	var metrics *telemetry.Telemetry
	if cfg.Telemetry.Enabled {
		metrics = telemetry.New(prometheus.DefaultRegisterer)
	}

	store := session.NewStore(cfg.Session.TTL)
	gen := synthesis.NewGenerator(cfg.Sandbox.DataDir, cfg.Sandbox.OutputDir)
	orch := core.NewOrchestrator(know, catalog.New(), gen, runner, store, metrics)

	return &pipeline{
		cfg:          cfg,
		store:        store,
		metrics:      metrics,
		orchestrator: orch,
	}, nil
}

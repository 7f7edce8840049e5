package cmd

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/coanalystai/coanalyst/config"
)

var sampleDataRows int

func init() {
	sampleDataCmd.Flags().IntVar(&sampleDataRows, "rows", 1000, "number of rows to generate")
}

var sampleDataCmd = &cobra.Command{
	Use:   "sample-data",
	Short: "Generate a demo dataset under the configured data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig(configPath)
		path := filepath.Join(cfg.Sandbox.DataDir, "sample_data.csv")
		if err := writeSampleData(path, sampleDataRows); err != nil {
			return err
		}
		fmt.Printf("wrote %d rows to %s\n", sampleDataRows, path)
		return nil
	},
}

// writeSampleData produces a daily series with normally distributed sales,
// Poisson customer counts and two categorical columns.
func writeSampleData(path string, rows int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sample data: %w", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(42))
	groups := []string{"A", "B"}
	regions := []string{"east", "west", "central"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "sales", "customers", "group", "region"}); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		record := []string{
			start.AddDate(0, 0, i).Format("2006-01-02"),
			strconv.FormatFloat(1000+rng.NormFloat64()*200, 'f', 2, 64),
			strconv.Itoa(poisson(rng, 50)),
			groups[rng.Intn(len(groups))],
			regions[rng.Intn(len(regions))],
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// poisson samples by Knuth's method; fine for small lambda.
func poisson(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

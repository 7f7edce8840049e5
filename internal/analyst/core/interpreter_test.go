package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/coanalystai/coanalyst/internal/catalog"
	"github.com/coanalystai/coanalyst/internal/knowledge"
	"github.com/coanalystai/coanalyst/internal/sandbox"
)

func writeArtifact(t *testing.T, dir, name, body string) sandbox.ArtifactInfo {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return sandbox.ArtifactInfo{Path: path, Name: name, Type: "data"}
}

func successResult(methodID string, artifacts ...sandbox.ArtifactInfo) StepResult {
	return StepResult{
		Method: catalog.Descriptor{ID: methodID, Name: methodID},
		Execution: sandbox.Record{
			Success:   true,
			Artifacts: artifacts,
		},
		Status: "completed",
	}
}

func TestInterpretRegression(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "regression_result.json",
		`{"r2_score": 0.82, "rmse": 10.5, "coefficients": [2.4, -0.3], "feature_names": ["price", "discount"]}`)

	interp := NewInterpreter().Interpret(
		[]StepResult{successResult("linear_regression", artifact)}, knowledge.Set{})

	if len(interp.Individual) != 1 {
		t.Fatalf("individual = %d, want 1", len(interp.Individual))
	}
	findings := interp.Individual[0].Findings
	if len(findings) != 3 {
		t.Fatalf("findings = %v, want fit plus two coefficients", findings)
	}
	if !strings.Contains(findings[0], "good fit") {
		t.Fatalf("r2 0.82 read as %q, want a good fit", findings[0])
	}
	if !strings.Contains(findings[1], "strong positive") {
		t.Fatalf("coefficient 2.4 read as %q", findings[1])
	}
	if !strings.Contains(findings[2], "negative") {
		t.Fatalf("coefficient -0.3 read as %q", findings[2])
	}
	if len(interp.KeyInsights) == 0 {
		t.Fatalf("regression findings missing from key insights")
	}
}

func TestInterpretClustering(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "clustering_result.json",
		`{"silhouette_score": 0.55, "n_clusters": 2, "cluster_counts": [60, 40]}`)

	interp := NewInterpreter().Interpret(
		[]StepResult{successResult("kmeans_clustering", artifact)}, knowledge.Set{})

	findings := interp.Individual[0].Findings
	if len(findings) != 3 {
		t.Fatalf("findings = %v", findings)
	}
	if !strings.Contains(findings[0], "well separated") {
		t.Fatalf("silhouette 0.55 read as %q", findings[0])
	}
	if !strings.Contains(findings[1], "60.0%") {
		t.Fatalf("cluster share read as %q", findings[1])
	}
}

func TestInterpretTTest(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "t_test_result.json",
		`{"t_statistic": 2.8, "p_value": 0.004, "group1_mean": 110.0, "group2_mean": 100.0}`)

	interp := NewInterpreter().Interpret(
		[]StepResult{successResult("t_test_independent", artifact)}, knowledge.Set{})

	findings := interp.Individual[0].Findings
	if len(findings) != 2 {
		t.Fatalf("findings = %v", findings)
	}
	if !strings.Contains(findings[0], "statistically significant") {
		t.Fatalf("p 0.004 read as %q", findings[0])
	}
	if !strings.Contains(findings[1], "10.00") {
		t.Fatalf("mean difference read as %q", findings[1])
	}
}

func TestInterpretCorrelationMatrix(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "correlation_matrix.csv",
		",sales,price,noise\nsales,1.0,0.85,0.1\nprice,0.85,1.0,0.2\nnoise,0.1,0.2,1.0\n")

	interp := NewInterpreter().Interpret(
		[]StepResult{successResult("correlation_analysis", artifact)}, knowledge.Set{})

	si := interp.Individual[0]
	if len(si.Findings) != 1 || !strings.Contains(si.Findings[0], "sales-price") {
		t.Fatalf("strong correlations = %v", si.Findings)
	}
	if !strings.Contains(si.Findings[0], "very strong positive") {
		t.Fatalf("0.85 read as %q", si.Findings[0])
	}
	if len(si.Insights) != 2 {
		t.Fatalf("weak correlations = %v, want sales-noise and price-noise", si.Insights)
	}
}

func TestInterpretFailureAndQuality(t *testing.T) {
	failed := StepResult{
		Method: catalog.Descriptor{ID: "data_load", Name: "Load data"},
		Execution: sandbox.Record{
			Success: false,
			Error: &sandbox.ErrorInfo{
				Type:        "missing_file",
				Message:     "FileNotFoundError",
				Suggestions: []string{"check the data file path"},
			},
		},
		Status: "failed",
	}

	interp := NewInterpreter().Interpret([]StepResult{failed, failed}, knowledge.Set{})

	if interp.Individual[0].ErrorType != "missing_file" {
		t.Fatalf("error type = %q", interp.Individual[0].ErrorType)
	}
	if interp.DataQuality.Overall != "needs improvement" {
		t.Fatalf("quality = %q with every step failing", interp.DataQuality.Overall)
	}
	foundFailureRec := false
	for _, rec := range interp.Recommendations {
		if strings.Contains(rec, "failed steps") {
			foundFailureRec = true
		}
	}
	if !foundFailureRec {
		t.Fatalf("recommendations = %v, want failed-step advice", interp.Recommendations)
	}
}

func TestQualityCautionBand(t *testing.T) {
	ok := successResult("data_load")
	failed := StepResult{
		Method:    catalog.Descriptor{ID: "x", Name: "x"},
		Execution: sandbox.Record{Success: false},
	}
	interp := NewInterpreter().Interpret([]StepResult{ok, ok, failed}, knowledge.Set{})
	if interp.DataQuality.Overall != "caution" {
		t.Fatalf("quality = %q with a third failing", interp.DataQuality.Overall)
	}
}

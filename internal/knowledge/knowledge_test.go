package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

func seedBase(t *testing.T) *Base {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"analysis_methods.json": `[
  {"id": "desc_stats_summary", "name": "Descriptive statistics", "description": "Summary statistics", "tags": ["descriptive statistics", "exploration"], "interpretation_guideline_id": "desc_stats_interpretation"},
  {"id": "linear_regression", "name": "Linear regression", "description": "Fit a linear model", "tags": ["regression", "machine learning"], "interpretation_guideline_id": "regression_interpretation"},
  {"id": "kmeans_clustering", "name": "K-means clustering", "description": "Cluster observations", "tags": ["clustering", "machine learning"], "interpretation_guideline_id": "clustering_interpretation"}
]`,
		"data_processing.json": `[
  {"id": "convert_to_datetime", "name": "Convert to datetime", "description": "Parse date column"},
  {"id": "aggregate_by_month", "name": "Aggregate by month", "description": "Monthly grouping"},
  {"id": "handle_missing_median", "name": "Fill missing with median", "description": "Median imputation"},
  {"id": "standardize_features", "name": "Standardize features", "description": "Zero mean unit variance"},
  {"id": "remove_outliers_iqr", "name": "Remove outliers", "description": "IQR rule"}
]`,
		"interpretation_guidelines.json": `[
  {"id": "desc_stats_interpretation", "name": "Reading statistics", "description": "Compare mean and median"},
  {"id": "regression_interpretation", "name": "Reading fits", "description": "R2 thresholds"},
  {"id": "clustering_interpretation", "name": "Reading clusters", "description": "Silhouette thresholds"}
]`,
		"analysis_examples.json": `[
  {"id": "customer_segmentation", "name": "Customer segmentation", "description": "Cluster customers"},
  {"id": "data_exploration", "name": "First look", "description": "Explore a dataset"}
]`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	b, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return b
}

func TestSearchByIntent(t *testing.T) {
	b := seedBase(t)

	set := b.Search(Query{Primary: "clustering"})

	found := map[string]bool{}
	for _, m := range set.Methods {
		found[m.ID] = true
	}
	if !found["kmeans_clustering"] {
		t.Fatalf("clustering search did not return kmeans_clustering: %v", set.Methods)
	}
	wantProcessing := map[string]bool{
		"handle_missing_median": true,
		"standardize_features":  true,
		"remove_outliers_iqr":   true,
	}
	if len(set.Processing) != len(wantProcessing) {
		t.Fatalf("processing = %v, want median/standardize/outliers", set.Processing)
	}
	for _, p := range set.Processing {
		if !wantProcessing[p.ID] {
			t.Fatalf("unexpected processing record %s", p.ID)
		}
	}
	if len(set.Guidelines) == 0 {
		t.Fatalf("no guidelines returned for matched methods")
	}
	if len(set.Examples) != 1 || set.Examples[0].ID != "customer_segmentation" {
		t.Fatalf("examples = %v, want customer_segmentation", set.Examples)
	}
	if set.Summary.PrimaryIntent != "clustering" || set.Summary.MethodsFound != len(set.Methods) {
		t.Fatalf("summary inconsistent: %+v", set.Summary)
	}
}

func TestSearchIncludesSecondaryIntents(t *testing.T) {
	b := seedBase(t)

	set := b.Search(Query{Primary: "data_exploration", Secondary: []string{"regression_analysis"}})

	found := map[string]bool{}
	for _, m := range set.Methods {
		found[m.ID] = true
	}
	if !found["desc_stats_summary"] || !found["linear_regression"] {
		t.Fatalf("secondary intent not honored, got %v", set.Methods)
	}
}

func TestSearchDateColumnsAddDatetimeProcessing(t *testing.T) {
	b := seedBase(t)

	set := b.Search(Query{Primary: "data_exploration", HasDateColumns: true})

	found := map[string]bool{}
	for _, p := range set.Processing {
		found[p.ID] = true
	}
	if !found["convert_to_datetime"] || !found["aggregate_by_month"] {
		t.Fatalf("date processing missing: %v", set.Processing)
	}
}

func TestLoadMissingDirectoryDegrades(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Load on missing dir: %v", err)
	}
	set := b.Search(Query{Primary: "clustering"})
	if len(set.Methods) != 0 || len(set.Processing) != 0 {
		t.Fatalf("expected empty sets, got %+v", set.Summary)
	}
}

func TestFullText(t *testing.T) {
	b := seedBase(t)

	hits := b.FullText("cluster", 5)
	if len(hits) == 0 {
		t.Fatalf("full-text search returned nothing")
	}
	for _, rec := range hits {
		if rec.ID == "" {
			t.Fatalf("hit with empty id: %+v", rec)
		}
	}
}

func TestMethodByID(t *testing.T) {
	b := seedBase(t)

	rec, ok := b.MethodByID("linear_regression")
	if !ok || rec.Name != "Linear regression" {
		t.Fatalf("MethodByID = %+v, %t", rec, ok)
	}
	if _, ok := b.MethodByID("nope"); ok {
		t.Fatalf("unknown id reported found")
	}
}

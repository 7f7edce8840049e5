package core

import (
	"testing"

	"github.com/coanalystai/coanalyst/internal/knowledge"
)

func buildPlan(t *testing.T, input string) ([]Step, ParsedRequest) {
	t.Helper()
	req := NewIntentParser().Parse(input)
	plan := NewPlanner().BuildPlan(req, knowledge.Set{})
	if len(plan) == 0 {
		t.Fatalf("empty plan for %q", input)
	}
	return plan, req
}

func TestPlanIsOrderedAndSequential(t *testing.T) {
	plan, _ := buildPlan(t, "explore this dataset")
	for i, step := range plan {
		if step.ExecutionOrder != i+1 {
			t.Fatalf("step %d has execution order %d", i, step.ExecutionOrder)
		}
		if step.ParallelGroup != nil {
			t.Fatalf("step %s has a parallel group", step.ID)
		}
	}
}

func TestExplorationPlanShape(t *testing.T) {
	plan, _ := buildPlan(t, "tell me about this data")
	want := []string{"data_load_info", "desc_stats_summary", "data_quality_check", "distribution_visualization"}
	if len(plan) != len(want) {
		t.Fatalf("plan has %d steps, want %d", len(plan), len(want))
	}
	for i, step := range plan {
		if step.MethodID != want[i] {
			t.Fatalf("step %d method = %s, want %s", i, step.MethodID, want[i])
		}
	}
}

func TestClusteringPlanShape(t *testing.T) {
	plan, _ := buildPlan(t, "segment customers into clusters")
	if len(plan) != 6 {
		t.Fatalf("clustering plan has %d steps, want 6", len(plan))
	}
	kmeans := plan[4]
	if kmeans.MethodID != "kmeans_clustering" {
		t.Fatalf("step 5 method = %s", kmeans.MethodID)
	}
	if kmeans.Parameters["n_clusters"] != 4 {
		t.Fatalf("n_clusters = %v, want 4", kmeans.Parameters["n_clusters"])
	}
}

func TestTrendPlanBindsEntities(t *testing.T) {
	plan, _ := buildPlan(t, "show the revenue trend over time by date")
	var agg *Step
	for i := range plan {
		if plan[i].MethodID == "aggregate_by_month" {
			agg = &plan[i]
		}
	}
	if agg == nil {
		t.Fatalf("no aggregation step in trend plan")
	}
	if agg.Parameters["date_column"] != "date" {
		t.Fatalf("date_column = %v", agg.Parameters["date_column"])
	}
	if agg.Parameters["value_column"] != "revenue" {
		t.Fatalf("value_column = %v", agg.Parameters["value_column"])
	}
}

func TestDescriptiveStatsGroupByStep(t *testing.T) {
	plan, req := buildPlan(t, "compute the mean and standard deviation per region")
	if req.Entities.GroupBy != "region" {
		t.Fatalf("groupby entity = %q", req.Entities.GroupBy)
	}
	last := plan[len(plan)-1]
	if last.MethodID != "desc_stats_groupby" {
		t.Fatalf("last step = %s, want desc_stats_groupby", last.MethodID)
	}
	if last.Parameters["groupby"] != "region" {
		t.Fatalf("groupby parameter = %v", last.Parameters["groupby"])
	}
}

func TestDanglingDependencyDropped(t *testing.T) {
	p := NewPlanner()
	plan := []Step{
		{ID: "1", MethodID: "data_load"},
		{ID: "2", MethodID: "desc_stats_summary", Dependencies: []string{"1", "99"}},
	}
	plan = p.validateDependencies(plan)
	if len(plan[1].Dependencies) != 1 || plan[1].Dependencies[0] != "1" {
		t.Fatalf("dependencies = %v, want [1]", plan[1].Dependencies)
	}
}

func TestDuplicateMethodsRemoved(t *testing.T) {
	p := NewPlanner()
	plan := []Step{
		{ID: "1", MethodID: "data_load"},
		{ID: "2", MethodID: "data_load"},
		{ID: "3", MethodID: "desc_stats_summary"},
	}
	plan = p.removeDuplicates(plan)
	if len(plan) != 2 {
		t.Fatalf("plan has %d steps after dedupe, want 2", len(plan))
	}
	if plan[0].ID != "1" {
		t.Fatalf("dedupe kept %s, want the earliest step", plan[0].ID)
	}
}

package core

import (
	"strings"
	"testing"

	"github.com/coanalystai/coanalyst/internal/catalog"
	"github.com/coanalystai/coanalyst/internal/sandbox"
)

func TestRespondSummaryAndStatus(t *testing.T) {
	req := ParsedRequest{AnalysisType: "correlation_analysis", Priority: "normal"}
	results := []StepResult{
		{
			Method:    catalog.Descriptor{ID: "data_load", Name: "Load data"},
			Execution: sandbox.Record{Success: true, ExecutionTime: 1.5},
		},
		{
			Method: catalog.Descriptor{ID: "correlation_analysis", Name: "Correlation analysis"},
			Execution: sandbox.Record{
				Success:       false,
				ExecutionTime: 0.5,
				Error:         &sandbox.ErrorInfo{Type: "value_error", Message: "ValueError"},
			},
		},
	}
	interp := Interpretation{
		Individual: []StepInterpretation{
			{MethodID: "data_load", Summary: "Loaded the data."},
			{MethodID: "correlation_analysis", Summary: "Correlation analysis failed.", ErrorType: "value_error"},
		},
	}

	resp := NewResponder().Respond(req, results, interp)

	if resp.Greeting != "Correlation analysis is complete." {
		t.Fatalf("greeting = %q", resp.Greeting)
	}
	if resp.Summary.Status != "partial" {
		t.Fatalf("status = %q, want partial", resp.Summary.Status)
	}
	if resp.Summary.SuccessfulSteps != 1 || resp.Summary.FailedSteps != 1 {
		t.Fatalf("summary = %+v", resp.Summary)
	}
	if resp.Summary.TotalTime != 2.0 {
		t.Fatalf("total time = %v", resp.Summary.TotalTime)
	}
	if resp.Summary.SuccessRate != 50 {
		t.Fatalf("success rate = %v", resp.Summary.SuccessRate)
	}
	if len(resp.Details) != 2 || resp.Details[1].ErrorMessage == "" {
		t.Fatalf("details = %+v", resp.Details)
	}
	if !strings.Contains(resp.Text, "Correlation analysis is complete.") {
		t.Fatalf("formatted text missing greeting:\n%s", resp.Text)
	}
}

func TestRespondKeyFindingsFallBackToSummaries(t *testing.T) {
	interp := Interpretation{
		Individual: []StepInterpretation{
			{Summary: "a"}, {Summary: "b"}, {Summary: "c"}, {Summary: "d"},
		},
	}
	resp := NewResponder().Respond(ParsedRequest{AnalysisType: "data_exploration"}, nil, interp)
	if len(resp.KeyFindings) != 3 {
		t.Fatalf("key findings = %v, want top 3 summaries", resp.KeyFindings)
	}
}

func TestRespondVisualizations(t *testing.T) {
	results := []StepResult{
		{
			Method: catalog.Descriptor{ID: "correlation_analysis", Name: "Correlation analysis"},
			Execution: sandbox.Record{
				Success: true,
				Artifacts: []sandbox.ArtifactInfo{
					{Name: "correlation_heatmap.png", Path: "/out/correlation_heatmap.png", Type: "image"},
					{Name: "correlation_matrix.csv", Path: "/out/correlation_matrix.csv", Type: "data"},
				},
			},
		},
	}
	resp := NewResponder().Respond(ParsedRequest{AnalysisType: "correlation_analysis"}, results, Interpretation{})
	if len(resp.Visualizations) != 1 {
		t.Fatalf("visualizations = %v, want the png only", resp.Visualizations)
	}
	if resp.Visualizations[0].Title != "Correlation heatmap" {
		t.Fatalf("title = %q", resp.Visualizations[0].Title)
	}
	if resp.Technical.FilesGenerated != 2 {
		t.Fatalf("files generated = %d, want 2", resp.Technical.FilesGenerated)
	}
}

func TestRespondToneByPriority(t *testing.T) {
	if resp := NewResponder().Respond(ParsedRequest{AnalysisType: "clustering", Priority: "detailed"}, nil, Interpretation{}); resp.Note == "" {
		t.Fatalf("detailed priority produced no note")
	}
	if resp := NewResponder().Respond(ParsedRequest{AnalysisType: "clustering", Priority: "high"}, nil, Interpretation{}); resp.Note == "" {
		t.Fatalf("high priority produced no note")
	}
	if resp := NewResponder().Respond(ParsedRequest{AnalysisType: "clustering", Priority: "normal"}, nil, Interpretation{}); resp.Note != "" {
		t.Fatalf("normal priority produced note %q", resp.Note)
	}
}

func TestNextStepsCapped(t *testing.T) {
	results := []StepResult{{Execution: sandbox.Record{Success: true}}}
	steps := nextSteps("data_exploration", results)
	if len(steps) == 0 || len(steps) > 5 {
		t.Fatalf("next steps = %v", steps)
	}
}

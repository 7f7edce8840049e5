package core

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/coanalystai/coanalyst/internal/knowledge"
	"github.com/coanalystai/coanalyst/internal/sandbox"
)

// StepInterpretation is the human-readable reading of one step result.
type StepInterpretation struct {
	MethodID    string   `json:"method_id"`
	MethodName  string   `json:"method_name"`
	Summary     string   `json:"summary"`
	Findings    []string `json:"findings,omitempty"`
	Insights    []string `json:"insights,omitempty"`
	Confidence  string   `json:"confidence"`
	ErrorType   string   `json:"error_type,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// DataQuality is the run-level quality verdict derived from the error rate.
type DataQuality struct {
	Overall     string   `json:"overall_quality"`
	Issues      []string `json:"issues,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Interpretation aggregates the per-step readings.
type Interpretation struct {
	Individual      []StepInterpretation `json:"individual_interpretations"`
	OverallSummary  string               `json:"overall_summary"`
	MainFindings    []string             `json:"main_findings,omitempty"`
	KeyInsights     []string             `json:"key_insights,omitempty"`
	Recommendations []string             `json:"recommendations,omitempty"`
	DataQuality     DataQuality          `json:"data_quality_assessment"`
}

// Interpreter reads execution records and their artifacts and produces
// plain-language findings per analysis method.
type Interpreter struct {
	logger *log.Logger
}

func NewInterpreter() *Interpreter {
	return &Interpreter{logger: log.New(log.Writer(), "[INTERPRET] ", log.LstdFlags)}
}

// Interpret walks the step results and builds the aggregate reading.
func (ip *Interpreter) Interpret(results []StepResult, know knowledge.Set) Interpretation {
	ip.logger.Printf("interpreting %d step results", len(results))

	var individual []StepInterpretation
	for _, res := range results {
		if res.Execution.Success {
			individual = append(individual, ip.interpretSuccess(res))
		} else {
			individual = append(individual, interpretError(res))
		}
	}

	successes := 0
	for _, si := range individual {
		if si.ErrorType == "" {
			successes++
		}
	}

	out := Interpretation{
		Individual:      individual,
		OverallSummary:  fmt.Sprintf("%d of %d analysis steps completed successfully.", successes, len(individual)),
		Recommendations: recommendations(successes, len(individual)-successes),
		DataQuality:     assessDataQuality(results),
	}
	for _, si := range individual {
		out.MainFindings = append(out.MainFindings, si.Findings...)
	}
	out.KeyInsights = keyInsights(individual)
	return out
}

func (ip *Interpreter) interpretSuccess(res StepResult) StepInterpretation {
	si := StepInterpretation{
		MethodID:   res.Method.ID,
		MethodName: res.Method.Name,
		Confidence: confidence(res.Execution),
	}
	switch res.Method.ID {
	case "desc_stats_summary":
		si.Summary = "Computed basic statistics for the data."
		si.Findings = res.Execution.Summary.KeyMetrics
	case "correlation_analysis":
		si.Summary = "Analyzed the relationships between variables."
		strong, weak := ip.readCorrelations(res.Execution.Artifacts)
		si.Findings = strong
		si.Insights = weak
	case "t_test_independent":
		si.Summary = "Tested the difference in means between two groups."
		si.Findings = ip.readTTest(res.Execution.Artifacts)
	case "linear_regression":
		si.Summary = "Fitted a linear regression model."
		si.Findings = ip.readRegression(res.Execution.Artifacts)
	case "kmeans_clustering":
		si.Summary = "Partitioned the observations with k-means clustering."
		si.Findings = ip.readClustering(res.Execution.Artifacts)
	default:
		si.Summary = fmt.Sprintf("%s completed in %.2fs with %d generated files.",
			res.Method.Name, res.Execution.ExecutionTime, len(res.Execution.Artifacts))
	}
	return si
}

func interpretError(res StepResult) StepInterpretation {
	si := StepInterpretation{
		MethodID:   res.Method.ID,
		MethodName: res.Method.Name,
		Summary:    fmt.Sprintf("%s failed.", res.Method.Name),
		Confidence: "low",
		ErrorType:  "unknown",
	}
	if res.Execution.Error != nil {
		si.ErrorType = res.Execution.Error.Type
		si.Suggestions = append(si.Suggestions, res.Execution.Error.Suggestions...)
	}
	si.Suggestions = append(si.Suggestions, "check the data and run the step again")
	return si
}

// readCorrelations parses correlation_matrix.csv and reports strong
// (|r| >= 0.7) and weak (|r| <= 0.3) pairs from the upper triangle.
func (ip *Interpreter) readCorrelations(artifacts []sandbox.ArtifactInfo) (strong, weak []string) {
	path := findArtifact(artifacts, "correlation_matrix.csv")
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		ip.logger.Printf("correlation matrix read failed: %v", err)
		return nil, nil
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil || len(rows) < 2 {
		ip.logger.Printf("correlation matrix parse failed: %v", err)
		return nil, nil
	}

	names := rows[0][1:]
	for i := 1; i < len(rows); i++ {
		for j := i + 1; j < len(rows[i]); j++ {
			if j-1 >= len(names) || i-1 >= len(names) {
				continue
			}
			r, err := strconv.ParseFloat(rows[i][j], 64)
			if err != nil {
				continue
			}
			pair := fmt.Sprintf("%s-%s", names[i-1], names[j-1])
			switch {
			case math.Abs(r) >= 0.7:
				direction := "positive"
				if r < 0 {
					direction = "negative"
				}
				strong = append(strong, fmt.Sprintf("%s show a %s %s correlation (%.3f).",
					pair, correlationStrength(math.Abs(r)), direction, r))
			case math.Abs(r) <= 0.3:
				weak = append(weak, fmt.Sprintf("%s are only weakly correlated (%.3f).", pair, r))
			}
		}
	}
	return strong, weak
}

func (ip *Interpreter) readTTest(artifacts []sandbox.ArtifactInfo) []string {
	var data struct {
		TStatistic float64 `json:"t_statistic"`
		PValue     float64 `json:"p_value"`
		Group1Mean float64 `json:"group1_mean"`
		Group2Mean float64 `json:"group2_mean"`
	}
	if !ip.readJSONArtifact(artifacts, "t_test_result.json", &data) {
		return nil
	}
	var findings []string
	if data.PValue < 0.05 {
		findings = append(findings, fmt.Sprintf(
			"The p-value (%.4f) is below 0.05: the difference between group means is statistically significant.", data.PValue))
	} else {
		findings = append(findings, fmt.Sprintf(
			"The p-value (%.4f) is 0.05 or above: no statistically significant difference between group means.", data.PValue))
	}
	findings = append(findings, fmt.Sprintf(
		"The difference between group means is %.2f.", math.Abs(data.Group1Mean-data.Group2Mean)))
	return findings
}

func (ip *Interpreter) readRegression(artifacts []sandbox.ArtifactInfo) []string {
	var data struct {
		R2           float64   `json:"r2_score"`
		RMSE         float64   `json:"rmse"`
		Coefficients []float64 `json:"coefficients"`
		FeatureNames []string  `json:"feature_names"`
	}
	if !ip.readJSONArtifact(artifacts, "regression_result.json", &data) {
		return nil
	}
	findings := []string{
		fmt.Sprintf("R2 is %.3f, indicating %s; the model explains %.1f%% of the target variance.",
			data.R2, r2Verdict(data.R2), data.R2*100),
	}
	for i, name := range data.FeatureNames {
		if i >= len(data.Coefficients) {
			break
		}
		coef := data.Coefficients[i]
		direction := "positive"
		if coef < 0 {
			direction = "negative"
		}
		magnitude := "weak"
		if math.Abs(coef) > 1 {
			magnitude = "strong"
		}
		findings = append(findings, fmt.Sprintf(
			"%s has a %s %s effect on the target (coefficient %.3f).", name, magnitude, direction, coef))
	}
	return findings
}

func (ip *Interpreter) readClustering(artifacts []sandbox.ArtifactInfo) []string {
	var data struct {
		Silhouette    float64 `json:"silhouette_score"`
		NClusters     int     `json:"n_clusters"`
		ClusterCounts []int   `json:"cluster_counts"`
	}
	if !ip.readJSONArtifact(artifacts, "clustering_result.json", &data) {
		return nil
	}
	findings := []string{
		fmt.Sprintf("The silhouette score is %.3f, indicating %s.", data.Silhouette, silhouetteVerdict(data.Silhouette)),
	}
	total := 0
	for _, c := range data.ClusterCounts {
		total += c
	}
	for i, c := range data.ClusterCounts {
		pct := 0.0
		if total > 0 {
			pct = float64(c) / float64(total) * 100
		}
		findings = append(findings, fmt.Sprintf("Cluster %d: %d observations (%.1f%%).", i, c, pct))
	}
	return findings
}

func (ip *Interpreter) readJSONArtifact(artifacts []sandbox.ArtifactInfo, name string, v interface{}) bool {
	path := findArtifact(artifacts, name)
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		ip.logger.Printf("artifact %s read failed: %v", name, err)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		ip.logger.Printf("artifact %s parse failed: %v", name, err)
		return false
	}
	return true
}

func findArtifact(artifacts []sandbox.ArtifactInfo, name string) string {
	for _, a := range artifacts {
		if a.Name == name {
			return a.Path
		}
	}
	return ""
}

func correlationStrength(abs float64) string {
	switch {
	case abs >= 0.8:
		return "very strong"
	case abs >= 0.6:
		return "strong"
	case abs >= 0.4:
		return "moderate"
	case abs >= 0.2:
		return "weak"
	default:
		return "very weak"
	}
}

func r2Verdict(r2 float64) string {
	switch {
	case r2 >= 0.9:
		return "a very good fit"
	case r2 >= 0.7:
		return "a good fit"
	case r2 >= 0.5:
		return "a moderate fit"
	case r2 >= 0.3:
		return "a poor fit"
	default:
		return "a very poor fit"
	}
}

func silhouetteVerdict(score float64) string {
	switch {
	case score >= 0.7:
		return "very well separated clusters"
	case score >= 0.5:
		return "well separated clusters"
	case score >= 0.3:
		return "moderately separated clusters"
	default:
		return "poor cluster separation"
	}
}

// confidence grades a successful execution by how much it produced.
func confidence(rec sandbox.Record) string {
	switch {
	case len(rec.Artifacts) >= 2:
		return "high"
	case len(rec.Artifacts) == 1:
		return "medium"
	default:
		return "low"
	}
}

// keyInsights picks the statements worth surfacing first, capped at five.
func keyInsights(individual []StepInterpretation) []string {
	var insights []string
	for _, si := range individual {
		switch si.MethodID {
		case "correlation_analysis", "t_test_independent", "linear_regression":
			insights = append(insights, si.Findings...)
		}
	}
	if len(insights) > 5 {
		insights = insights[:5]
	}
	return insights
}

func recommendations(successes, failures int) []string {
	var recs []string
	if successes > 0 {
		recs = append(recs,
			"Use the findings to refine your business questions and follow-up analyses.",
			"Consider collecting additional data or running a deeper analysis on the highlighted variables.")
	}
	if failures > 0 {
		recs = append(recs, "Review data quality and parameter settings for the failed steps.")
	}
	return recs
}

// assessDataQuality grades the run by its error rate.
func assessDataQuality(results []StepResult) DataQuality {
	dq := DataQuality{Overall: "good"}
	if len(results) == 0 {
		return dq
	}
	failures := 0
	for _, res := range results {
		if !res.Execution.Success {
			failures++
		}
	}
	rate := float64(failures) / float64(len(results))
	switch {
	case rate > 0.5:
		dq.Overall = "needs improvement"
		dq.Issues = append(dq.Issues, "most steps failed during execution")
		dq.Suggestions = append(dq.Suggestions, "clean and preprocess the data before re-running")
	case rate > 0.2:
		dq.Overall = "caution"
		dq.Issues = append(dq.Issues, "some steps failed during execution")
	}
	return dq
}

package core

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// RunSummary is the at-a-glance outcome of one request.
type RunSummary struct {
	TotalSteps      int     `json:"total_steps"`
	SuccessfulSteps int     `json:"successful_steps"`
	FailedSteps     int     `json:"failed_steps"`
	TotalTime       float64 `json:"total_execution_time"`
	SuccessRate     float64 `json:"success_rate"`
	Status          string  `json:"status"`
}

// StepDetail is the per-step entry in the response.
type StepDetail struct {
	StepName       string   `json:"step_name"`
	Status         string   `json:"status"`
	ExecutionTime  float64  `json:"execution_time"`
	GeneratedFiles []string `json:"generated_files,omitempty"`
	Interpretation string   `json:"interpretation,omitempty"`
	KeyMetrics     []string `json:"key_metrics,omitempty"`
	ErrorMessage   string   `json:"error_message,omitempty"`
	Suggestions    []string `json:"suggestions,omitempty"`
}

// Visualization points at a chart produced during the run.
type Visualization struct {
	Title       string `json:"title"`
	FilePath    string `json:"file_path"`
	FileName    string `json:"file_name"`
	Description string `json:"description"`
}

// TechnicalDetails lists what ran and what it produced.
type TechnicalDetails struct {
	MethodsUsed    []string `json:"methods_used"`
	LibrariesUsed  []string `json:"libraries_used"`
	FilesGenerated int      `json:"total_files_generated"`
}

// Response is the final user-facing result of a request.
type Response struct {
	Greeting        string           `json:"greeting"`
	Summary         RunSummary       `json:"analysis_summary"`
	KeyFindings     []string         `json:"key_findings"`
	Details         []StepDetail     `json:"detailed_results"`
	Visualizations  []Visualization  `json:"visualizations,omitempty"`
	Recommendations []string         `json:"recommendations"`
	NextSteps       []string         `json:"next_steps"`
	Technical       TechnicalDetails `json:"technical_details"`
	Note            string           `json:"note,omitempty"`
	Text            string           `json:"formatted_response"`
	Timestamp       time.Time        `json:"timestamp"`
	AnalysisType    string           `json:"analysis_type"`
}

// Responder assembles the final response from the run and its
// interpretation.
type Responder struct {
	logger *log.Logger
}

func NewResponder() *Responder {
	return &Responder{logger: log.New(log.Writer(), "[RESPONDER] ", log.LstdFlags)}
}

var greetings = map[string]string{
	"data_exploration":       "Exploratory data analysis is complete.",
	"descriptive_statistics": "Descriptive statistics analysis is complete.",
	"correlation_analysis":   "Correlation analysis is complete.",
	"trend_analysis":         "Trend analysis is complete.",
	"clustering":             "Clustering analysis is complete.",
	"regression_analysis":    "Regression analysis is complete.",
	"hypothesis_testing":     "Hypothesis testing is complete.",
	"visualization":          "Visualization is complete.",
}

var chartTitles = map[string]string{
	"correlation_heatmap.png": "Correlation heatmap",
	"clustering_plot.png":     "Clustering result",
	"regression_plot.png":     "Regression fit",
	"line_chart.png":          "Trend chart",
}

var chartDescriptions = map[string]string{
	"correlation_heatmap.png": "Heatmap of pairwise correlations; darker cells mean stronger association.",
	"clustering_plot.png":     "Observations colored by their assigned cluster.",
	"regression_plot.png":     "Actual versus predicted values with the fitted line.",
	"line_chart.png":          "Line chart of the aggregated series over time.",
}

// Respond builds the full response for a processed request.
func (r *Responder) Respond(req ParsedRequest, results []StepResult, interp Interpretation) *Response {
	r.logger.Printf("composing response for %s", req.AnalysisType)

	resp := &Response{
		Greeting:        greeting(req.AnalysisType),
		Summary:         summarize(results),
		KeyFindings:     keyFindings(interp),
		Details:         stepDetails(results, interp),
		Visualizations:  visualizations(results),
		Recommendations: interp.Recommendations,
		NextSteps:       nextSteps(req.AnalysisType, results),
		Technical:       technicalDetails(results),
		Timestamp:       time.Now(),
		AnalysisType:    req.AnalysisType,
	}
	if len(resp.Recommendations) == 0 {
		resp.Recommendations = []string{
			"Consider how these results inform your original question.",
			"Try additional methods or variables if the picture is incomplete.",
		}
	}
	switch req.Priority {
	case "detailed":
		resp.Note = "Detailed results and interpretation are included below."
	case "high":
		resp.Note = "Showing the most important results first."
	}
	resp.Text = formatResponse(resp)
	return resp
}

func greeting(analysisType string) string {
	if g, ok := greetings[analysisType]; ok {
		return g
	}
	return fmt.Sprintf("%s is complete.", analysisType)
}

func summarize(results []StepResult) RunSummary {
	s := RunSummary{TotalSteps: len(results)}
	for _, res := range results {
		s.TotalTime += res.Execution.ExecutionTime
		if res.Execution.Success {
			s.SuccessfulSteps++
		} else {
			s.FailedSteps++
		}
	}
	if s.TotalSteps > 0 {
		s.SuccessRate = float64(s.SuccessfulSteps) / float64(s.TotalSteps) * 100
	}
	switch {
	case s.FailedSteps == 0 && s.TotalSteps > 0:
		s.Status = "complete"
	case s.SuccessfulSteps > 0:
		s.Status = "partial"
	default:
		s.Status = "failed"
	}
	return s
}

// keyFindings returns the top three insights, falling back to the per-step
// summaries when no insight was extracted.
func keyFindings(interp Interpretation) []string {
	findings := interp.KeyInsights
	if len(findings) == 0 {
		for _, si := range interp.Individual {
			if si.Summary != "" {
				findings = append(findings, si.Summary)
			}
		}
	}
	if len(findings) > 3 {
		findings = findings[:3]
	}
	return findings
}

func stepDetails(results []StepResult, interp Interpretation) []StepDetail {
	var details []StepDetail
	for i, res := range results {
		d := StepDetail{
			StepName:      res.Method.Name,
			ExecutionTime: res.Execution.ExecutionTime,
		}
		if res.Execution.Success {
			d.Status = "success"
			for _, a := range res.Execution.Artifacts {
				d.GeneratedFiles = append(d.GeneratedFiles, a.Name)
			}
			d.KeyMetrics = res.Execution.Summary.KeyMetrics
			if i < len(interp.Individual) {
				d.Interpretation = interp.Individual[i].Summary
			}
		} else {
			d.Status = "failed"
			if res.Execution.Error != nil {
				d.ErrorMessage = res.Execution.Error.Message
				d.Suggestions = res.Execution.Error.Suggestions
			}
		}
		details = append(details, d)
	}
	return details
}

func visualizations(results []StepResult) []Visualization {
	var viz []Visualization
	for _, res := range results {
		if !res.Execution.Success {
			continue
		}
		for _, a := range res.Execution.Artifacts {
			if a.Type != "image" {
				continue
			}
			title, ok := chartTitles[a.Name]
			if !ok {
				title = fmt.Sprintf("%s result", res.Method.Name)
			}
			desc, ok := chartDescriptions[a.Name]
			if !ok {
				desc = "Visualization of the analysis result."
			}
			viz = append(viz, Visualization{
				Title:       title,
				FilePath:    a.Path,
				FileName:    a.Name,
				Description: desc,
			})
		}
	}
	return viz
}

// nextSteps proposes follow-ups per analysis type, capped at five.
func nextSteps(analysisType string, results []StepResult) []string {
	var steps []string
	switch analysisType {
	case "data_exploration":
		steps = append(steps,
			"Run a deeper analysis on specific variables of interest",
			"Follow up with correlation or regression analysis",
			"Add more visualizations of the key variables")
	case "correlation_analysis":
		steps = append(steps,
			"Investigate causal mechanisms behind the strongly correlated pairs",
			"Build a predictive model with regression analysis")
	case "clustering":
		steps = append(steps,
			"Profile each cluster in more detail",
			"Design per-cluster strategies",
			"Assign new observations to the discovered clusters")
	}
	for _, res := range results {
		if res.Execution.Success {
			steps = append(steps, "Summarize the results into a report")
			break
		}
	}
	if len(steps) > 5 {
		steps = steps[:5]
	}
	return steps
}

func technicalDetails(results []StepResult) TechnicalDetails {
	td := TechnicalDetails{}
	libs := map[string]bool{}
	for _, res := range results {
		td.FilesGenerated += len(res.Execution.Artifacts)
		if !res.Execution.Success {
			continue
		}
		td.MethodsUsed = append(td.MethodsUsed, res.Method.Name)
		for _, lib := range strings.Split(res.Code.Libraries, ",") {
			lib = strings.TrimSpace(lib)
			if lib != "" && !libs[lib] {
				libs[lib] = true
				td.LibrariesUsed = append(td.LibrariesUsed, lib)
			}
		}
	}
	return td
}

// formatResponse renders the response as display text.
func formatResponse(resp *Response) string {
	var b strings.Builder
	b.WriteString(resp.Greeting)

	b.WriteString("\n\nAnalysis summary\n")
	fmt.Fprintf(&b, "- status: %s\n", resp.Summary.Status)
	fmt.Fprintf(&b, "- steps: %d/%d succeeded\n", resp.Summary.SuccessfulSteps, resp.Summary.TotalSteps)
	fmt.Fprintf(&b, "- total execution time: %.2fs\n", resp.Summary.TotalTime)

	if len(resp.KeyFindings) > 0 {
		b.WriteString("\nKey findings\n")
		for i, f := range resp.KeyFindings {
			fmt.Fprintf(&b, "%d. %s\n", i+1, f)
		}
	}
	if len(resp.Visualizations) > 0 {
		b.WriteString("\nGenerated charts\n")
		for _, v := range resp.Visualizations {
			fmt.Fprintf(&b, "- %s: %s\n", v.Title, v.FileName)
		}
	}
	if len(resp.Recommendations) > 0 {
		b.WriteString("\nRecommendations\n")
		for i, rec := range resp.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
	}
	if len(resp.NextSteps) > 0 {
		b.WriteString("\nSuggested next steps\n")
		for i, step := range resp.NextSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	b.WriteString("\nTechnical details\n")
	fmt.Fprintf(&b, "- methods used: %s\n", strings.Join(resp.Technical.MethodsUsed, ", "))
	fmt.Fprintf(&b, "- files generated: %d\n", resp.Technical.FilesGenerated)
	if resp.Note != "" {
		fmt.Fprintf(&b, "\n%s\n", resp.Note)
	}
	return b.String()
}

// Package core implements the analysis pipeline: request parsing, planning,
// step execution and result interpretation, coordinated per session.
package core

import (
	"time"

	"github.com/coanalystai/coanalyst/internal/catalog"
	"github.com/coanalystai/coanalyst/internal/sandbox"
	"github.com/coanalystai/coanalyst/internal/synthesis"
)

// Session statuses, in pipeline order.
const (
	StatusCreated      = "created"
	StatusPlanning     = "planning"
	StatusExecuting    = "executing"
	StatusInterpreting = "interpreting"
	StatusResponded    = "responded"
	StatusFailed       = "failed"
)

// Intent is the classified purpose of a request.
type Intent struct {
	Primary   string         `json:"primary_intent"`
	Secondary []string       `json:"secondary_intents"`
	Scores    map[string]int `json:"confidence_scores"`
}

// Entities are the names and hints extracted from the request text.
type Entities struct {
	Variables      []string `json:"variables"`
	FileNames      []string `json:"file_names"`
	TargetVariable string   `json:"target_variable,omitempty"`
	GroupBy        string   `json:"groupby_variable,omitempty"`
	DateColumns    []string `json:"date_columns"`
	NumericColumns []string `json:"numeric_columns"`
}

// DataSource is the inferred origin of the data under analysis.
type DataSource struct {
	Type     string `json:"type"`
	Location string `json:"location,omitempty"`
	Format   string `json:"format,omitempty"`
}

// ParsedRequest is the structured form of a user request.
type ParsedRequest struct {
	Input        string     `json:"original_input"`
	Intent       Intent     `json:"intent"`
	Entities     Entities   `json:"entities"`
	DataSource   DataSource `json:"data_source"`
	Priority     string     `json:"priority"`
	AnalysisType string     `json:"analysis_type"`
}

// Step is one unit of an analysis plan. Dependencies are informational:
// execution follows ExecutionOrder and a failed dependency does not block a
// later step.
type Step struct {
	ID             string                 `json:"step_id"`
	Name           string                 `json:"step_name"`
	Description    string                 `json:"task_description"`
	MethodID       string                 `json:"method_id"`
	Dependencies   []string               `json:"dependencies"`
	Parameters     map[string]interface{} `json:"parameters,omitempty"`
	ExpectedOutput string                 `json:"expected_output"`
	ExecutionOrder int                    `json:"execution_order"`
	// ParallelGroup is reserved for a future scheduler and is always nil.
	ParallelGroup *int `json:"parallel_group"`
}

// StepResult ties a plan step to everything produced for it.
type StepResult struct {
	StepID      string              `json:"step_id"`
	Description string              `json:"task_description"`
	Method      catalog.Descriptor  `json:"method"`
	Code        synthesis.Generated `json:"code"`
	Execution   sandbox.Record      `json:"execution_result"`
	Status      string              `json:"status"`
}

// Session is the per-conversation analysis state.
type Session struct {
	ID        string                 `json:"session_id"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Status    string                 `json:"status"`
	Plan      []Step                 `json:"analysis_plan"`
	Results   []StepResult           `json:"execution_results"`
	Context   map[string]interface{} `json:"context"`
}

// SessionStore abstracts session persistence. The in-memory implementation
// lives in internal/session.
type SessionStore interface {
	Put(s *Session) error
	Get(id string) (*Session, bool)
	Delete(id string)
	List() []*Session
}

// HistoryEntry records one completed request/response exchange.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Input     string    `json:"user_input"`
	Response  *Response `json:"response"`
}

// Envelope is the top-level result of processing one request.
type Envelope struct {
	Status         string          `json:"status"`
	SessionID      string          `json:"session_id"`
	Response       *Response       `json:"response,omitempty"`
	Results        []StepResult    `json:"execution_results,omitempty"`
	Interpretation *Interpretation `json:"interpretation,omitempty"`
	Error          string          `json:"error,omitempty"`
}

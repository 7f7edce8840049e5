package core

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coanalystai/coanalyst/internal/analyst/telemetry"
	"github.com/coanalystai/coanalyst/internal/catalog"
	"github.com/coanalystai/coanalyst/internal/knowledge"
	"github.com/coanalystai/coanalyst/internal/sandbox"
	"github.com/coanalystai/coanalyst/internal/synthesis"
)

// Orchestrator drives the whole pipeline for each request: parse, retrieve,
// plan, execute step by step, interpret, respond. It is safe for concurrent
// callers.
type Orchestrator struct {
	logger      *log.Logger
	intents     *IntentParser
	know        *knowledge.Base
	planner     *Planner
	methods     *catalog.Catalog
	generator   *synthesis.Generator
	runner      *sandbox.Runner
	interpreter *Interpreter
	responder   *Responder
	store       SessionStore
	metrics     *telemetry.Telemetry

	mu      sync.RWMutex
	history []HistoryEntry
}

// NewOrchestrator wires the pipeline. metrics may be nil.
func NewOrchestrator(
	know *knowledge.Base,
	methods *catalog.Catalog,
	generator *synthesis.Generator,
	runner *sandbox.Runner,
	store SessionStore,
	metrics *telemetry.Telemetry,
) *Orchestrator {
	return &Orchestrator{
		logger:      log.New(log.Writer(), "[ORCHESTRATOR] ", log.LstdFlags),
		intents:     NewIntentParser(),
		know:        know,
		planner:     NewPlanner(),
		methods:     methods,
		generator:   generator,
		runner:      runner,
		interpreter: NewInterpreter(),
		responder:   NewResponder(),
		store:       store,
		metrics:     metrics,
	}
}

// StartSession creates a new session and returns its id. A caller-supplied
// id is honored when non-empty.
func (o *Orchestrator) StartSession(sessionID string) (string, error) {
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%s_%s",
			time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	}
	s := &Session{
		ID:        sessionID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Status:    StatusCreated,
		Context:   map[string]interface{}{},
	}
	if err := o.store.Put(s); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	o.logger.Printf("session started: %s", sessionID)
	return sessionID, nil
}

// Session returns the current state of a session.
func (o *Orchestrator) Session(sessionID string) (*Session, bool) {
	return o.store.Get(sessionID)
}

// KnowledgeSearch runs a free-text query over the loaded knowledge base.
func (o *Orchestrator) KnowledgeSearch(text string, limit int) []knowledge.Record {
	return o.know.FullText(text, limit)
}

// KnowledgeMethod looks up a single analysis method record.
func (o *Orchestrator) KnowledgeMethod(id string) (knowledge.Record, bool) {
	return o.know.MethodByID(id)
}

// History returns a copy of the request/response history.
func (o *Orchestrator) History() []HistoryEntry {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

// Process runs the full pipeline for one request. Step failures are
// recorded and the loop continues; only a panic or a missing session
// produces an error envelope.
func (o *Orchestrator) Process(ctx context.Context, input, sessionID string) (env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("request processing panic: %v", r)
			o.setStatus(sessionID, StatusFailed)
			if o.metrics != nil {
				o.metrics.RequestFinished(false)
			}
			env = Envelope{Status: "error", SessionID: sessionID, Error: fmt.Sprint(r)}
		}
	}()

	o.logger.Printf("processing request: %.50s", input)
	if o.metrics != nil {
		o.metrics.RequestStarted()
	}

	session, ok := o.store.Get(sessionID)
	if !ok {
		return Envelope{Status: "error", SessionID: sessionID,
			Error: fmt.Sprintf("unknown session %s", sessionID)}
	}

	req := o.intents.Parse(input)

	know := o.know.Search(knowledge.Query{
		Primary:        req.Intent.Primary,
		Secondary:      req.Intent.Secondary,
		HasDateColumns: len(req.Entities.DateColumns) > 0,
	})

	o.setStatus(sessionID, StatusPlanning)
	plan := o.planner.BuildPlan(req, know)

	session.Plan = plan
	session.Context["analysis_type"] = req.AnalysisType
	session.Context["priority"] = req.Priority
	session.UpdatedAt = time.Now()
	_ = o.store.Put(session)

	var results []StepResult
	for i, step := range plan {
		o.setStatusf(sessionID, "%s (%d/%d)", StatusExecuting, i+1, len(plan))
		results = append(results, o.executeStep(ctx, step))
	}

	session, _ = o.store.Get(sessionID)
	if session != nil {
		session.Results = append(session.Results, results...)
		session.UpdatedAt = time.Now()
		_ = o.store.Put(session)
	}

	o.setStatus(sessionID, StatusInterpreting)
	interp := o.interpreter.Interpret(results, know)
	resp := o.responder.Respond(req, results, interp)

	o.mu.Lock()
	o.history = append(o.history, HistoryEntry{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Input:     input,
		Response:  resp,
	})
	o.mu.Unlock()

	o.setStatus(sessionID, StatusResponded)
	if o.metrics != nil {
		o.metrics.RequestFinished(true)
	}
	return Envelope{
		Status:         "success",
		SessionID:      sessionID,
		Response:       resp,
		Results:        results,
		Interpretation: &interp,
	}
}

// executeStep resolves, synthesizes and runs one step. Failures never stop
// the plan: dependencies are informational and a failed prerequisite only
// shows up in the failed step's own record.
func (o *Orchestrator) executeStep(ctx context.Context, step Step) (res StepResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("step %s panic: %v", step.ID, r)
			res = StepResult{StepID: step.ID, Description: step.Description, Status: "failed"}
			res.Execution.Error = &sandbox.ErrorInfo{Type: "unknown", Message: fmt.Sprint(r)}
		}
	}()

	o.logger.Printf("step %s: %s", step.ID, step.Description)

	desc := o.methods.Select(step.MethodID, step.Parameters)
	code := o.generator.Generate(desc)
	record := o.runner.Execute(ctx, sandbox.Request{
		MethodID:   desc.ID,
		MethodName: desc.Name,
		Code:       code.Code,
	})

	if o.metrics != nil {
		o.metrics.StepExecuted(desc.ID, record.Success, record.ExecutionTime)
	}

	status := "completed"
	if !record.Success {
		status = "failed"
	}
	return StepResult{
		StepID:      step.ID,
		Description: step.Description,
		Method:      desc,
		Code:        code,
		Execution:   record,
		Status:      status,
	}
}

func (o *Orchestrator) setStatus(sessionID, status string) {
	if s, ok := o.store.Get(sessionID); ok {
		s.Status = status
		s.UpdatedAt = time.Now()
		_ = o.store.Put(s)
	}
}

func (o *Orchestrator) setStatusf(sessionID, format string, args ...interface{}) {
	o.setStatus(sessionID, fmt.Sprintf(format, args...))
}

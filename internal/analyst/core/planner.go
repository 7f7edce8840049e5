package core

import (
	"log"

	"github.com/coanalystai/coanalyst/internal/knowledge"
)

// Planner turns a parsed request into an ordered list of executable steps.
// Planning never fails: unknown intents fall back to the exploration
// skeleton and structural problems are repaired with a logged warning.
type Planner struct {
	logger *log.Logger
}

func NewPlanner() *Planner {
	return &Planner{logger: log.New(log.Writer(), "[PLANNER] ", log.LstdFlags)}
}

// BuildPlan selects the skeleton for the request's primary intent, binds the
// extracted entities into step parameters, then normalizes the plan.
func (p *Planner) BuildPlan(req ParsedRequest, know knowledge.Set) []Step {
	p.logger.Printf("building plan for %s (%d methods retrieved)",
		req.Intent.Primary, know.Summary.MethodsFound)

	var plan []Step
	switch req.Intent.Primary {
	case "descriptive_statistics":
		plan = descriptiveStatsSkeleton(req)
	case "correlation_analysis":
		plan = correlationSkeleton()
	case "trend_analysis":
		plan = trendSkeleton(req)
	case "clustering":
		plan = clusteringSkeleton()
	case "regression_analysis":
		plan = regressionSkeleton()
	case "hypothesis_testing":
		plan = hypothesisTestingSkeleton()
	default:
		// data_exploration, visualization and anything unrecognized.
		plan = explorationSkeleton()
	}

	plan = p.validateDependencies(plan)
	plan = p.removeDuplicates(plan)
	plan = assignExecutionOrder(plan)

	p.logger.Printf("plan ready: %d steps", len(plan))
	return plan
}

// validateDependencies drops references to step ids that are not part of the
// plan. Each drop is a warning, never an error.
func (p *Planner) validateDependencies(plan []Step) []Step {
	ids := map[string]bool{}
	for _, step := range plan {
		ids[step.ID] = true
	}
	for i := range plan {
		var kept []string
		for _, dep := range plan[i].Dependencies {
			if ids[dep] {
				kept = append(kept, dep)
				continue
			}
			p.logger.Printf("dropping dangling dependency %s -> %s", plan[i].ID, dep)
		}
		plan[i].Dependencies = kept
	}
	return plan
}

// removeDuplicates keeps the first step per method id.
func (p *Planner) removeDuplicates(plan []Step) []Step {
	seen := map[string]bool{}
	var unique []Step
	for _, step := range plan {
		if seen[step.MethodID] {
			p.logger.Printf("removing duplicate step for method %s", step.MethodID)
			continue
		}
		seen[step.MethodID] = true
		unique = append(unique, step)
	}
	return unique
}

// assignExecutionOrder numbers steps 1-based in plan order. ParallelGroup
// stays nil until a parallel scheduler exists.
func assignExecutionOrder(plan []Step) []Step {
	for i := range plan {
		plan[i].ExecutionOrder = i + 1
		plan[i].ParallelGroup = nil
	}
	return plan
}

package core

import "fmt"

// ActionPlan is the ordered set of action requests extracted from one
// transcript. Order is priority / display order, not execution order; the
// coordinator may dispatch concurrently but the synthesizer always reports
// in plan order. An empty plan is valid and means the transcript implies no
// actions.
type ActionPlan struct {
	// InvocationID correlates the plan with one Handle invocation.
	InvocationID string          `json:"invocation_id"`
	Transcript   string          `json:"-"`
	Requests     []ActionRequest `json:"requests"`
}

// NewActionPlan creates an empty plan bound to a fresh invocation id.
func NewActionPlan(transcript string) ActionPlan {
	return ActionPlan{InvocationID: NewID(), Transcript: transcript}
}

// Append returns a copy of the plan with the request added. Plans are value
// types; callers keep the returned plan.
func (p ActionPlan) Append(req ActionRequest) ActionPlan {
	p.Requests = append(p.Requests, req)
	return p
}

// Empty reports whether the plan contains no requests.
func (p ActionPlan) Empty() bool { return len(p.Requests) == 0 }

// Size returns the number of requests in the plan.
func (p ActionPlan) Size() int { return len(p.Requests) }

// Validate checks every request in the plan. The interpreter must never emit
// a plan that fails validation; this is the guard at the package boundary.
func (p ActionPlan) Validate() error {
	seen := make(map[string]struct{}, len(p.Requests))
	for i, req := range p.Requests {
		if err := req.Validate(); err != nil {
			return fmt.Errorf("request %d: %w", i, err)
		}
		if _, dup := seen[req.ID]; dup {
			return fmt.Errorf("request %d: duplicate id %s", i, req.ID)
		}
		seen[req.ID] = struct{}{}
	}
	return nil
}

package core

// Summary aggregates per-kind success and failure counts for observability.
// The user-facing answer is Outcome.Text; Summary never reaches end users.
type Summary struct {
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	ByKind    map[ActionKind]int `json:"by_kind,omitempty"`
}

// Outcome is the final synthesized result of one invocation.
type Outcome struct {
	InvocationID string  `json:"invocation_id"`
	Text         string  `json:"text"`
	Summary      Summary `json:"summary"`
}

// Summarize derives a Summary from a plan and its result set.
func Summarize(plan ActionPlan, results ResultSet) Summary {
	s := Summary{Total: plan.Size(), ByKind: make(map[ActionKind]int)}
	for _, req := range plan.Requests {
		s.ByKind[req.Kind]++
		if res, ok := results.Get(req.ID); ok && res.Succeeded() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	if s.Total == 0 {
		s.ByKind = nil
	}
	return s
}

package core

import "fmt"

// Failure reasons used across the coordinator and adapters. Reasons are short
// machine-stable identifiers; human-readable detail lives in Failure.Detail.
const (
	ReasonTimeout            = "timeout"
	ReasonDeadlineExceeded   = "deadline-exceeded"
	ReasonAdapterUnavailable = "adapter-unavailable"
	ReasonAdapterFailed      = "adapter-failed"
	ReasonNeedsClarification = "needs-clarification"
)

// Payload is the collaborator-specific success value of an executed action.
// Ref is a user-meaningful reference (ticket key, event UID, dispatch id);
// Detail carries optional structured extras (URLs, artifact ids).
type Payload struct {
	Ref    string            `json:"ref"`
	Detail map[string]string `json:"detail,omitempty"`
}

// Failure describes why an action did not complete.
type Failure struct {
	Reason    string `json:"reason"`
	Detail    string `json:"detail,omitempty"`
	Retryable bool   `json:"retryable"`
}

// Describe returns the human-readable failure text, falling back to the
// machine-stable reason when no detail was recorded.
func (f Failure) Describe() string {
	if f.Detail != "" {
		return f.Detail
	}
	return f.Reason
}

// ActionResult is the outcome of exactly one ActionRequest, paired via
// RequestID. Either Payload or Failure is set, never both.
type ActionResult struct {
	RequestID string   `json:"request_id"`
	Payload   *Payload `json:"payload,omitempty"`
	Failure   *Failure `json:"failure,omitempty"`
}

// Succeeded reports whether the action completed successfully.
func (r ActionResult) Succeeded() bool { return r.Payload != nil }

// NewSuccess builds a success result for the given request.
func NewSuccess(requestID string, payload Payload) ActionResult {
	return ActionResult{RequestID: requestID, Payload: &payload}
}

// NewFailure builds a failure result for the given request.
func NewFailure(requestID, reason, detail string, retryable bool) ActionResult {
	return ActionResult{RequestID: requestID, Failure: &Failure{Reason: reason, Detail: detail, Retryable: retryable}}
}

// ResultSet maps request ids to results. A complete set holds exactly one
// result per request in the plan; Complete enforces this at the coordinator
// boundary so no request is ever silently dropped.
type ResultSet struct {
	results map[string]ActionResult
}

// NewResultSet creates an empty result set sized for n results.
func NewResultSet(n int) ResultSet {
	return ResultSet{results: make(map[string]ActionResult, n)}
}

// Add records the result for its request id. Adding a second result for the
// same id is a programming error and returns it unapplied.
func (s ResultSet) Add(res ActionResult) error {
	if _, exists := s.results[res.RequestID]; exists {
		return fmt.Errorf("duplicate result for request %s", res.RequestID)
	}
	s.results[res.RequestID] = res
	return nil
}

// Get returns the result for a request id.
func (s ResultSet) Get(requestID string) (ActionResult, bool) {
	res, ok := s.results[requestID]
	return res, ok
}

// Len returns the number of recorded results.
func (s ResultSet) Len() int { return len(s.results) }

// Complete reports whether every request in the plan has a result.
func (s ResultSet) Complete(plan ActionPlan) bool {
	for _, req := range plan.Requests {
		if _, ok := s.results[req.ID]; !ok {
			return false
		}
	}
	return true
}

// InPlanOrder returns the results ordered by the plan's request order,
// independent of completion order. Requests without a result are skipped;
// a complete set yields exactly plan.Size() results.
func (s ResultSet) InPlanOrder(plan ActionPlan) []ActionResult {
	ordered := make([]ActionResult, 0, plan.Size())
	for _, req := range plan.Requests {
		if res, ok := s.results[req.ID]; ok {
			ordered = append(ordered, res)
		}
	}
	return ordered
}

package testutil

import "github.com/hupe1980/meetingmesh/core"

// ResultSetBuilder helps construct result sets with fluent chaining for tests.
// Example:
//
//	results := NewResultSetBuilder().
//		Success("t1", "DEV-123").
//		Failure("n1", core.ReasonTimeout, "took too long", true).
//		Build()
type ResultSetBuilder struct {
	results []core.ActionResult
}

// NewResultSetBuilder creates an empty builder.
func NewResultSetBuilder() *ResultSetBuilder { return &ResultSetBuilder{} }

// Success records a success result with the given reference (chainable).
func (b *ResultSetBuilder) Success(requestID, ref string) *ResultSetBuilder {
	b.results = append(b.results, core.NewSuccess(requestID, core.Payload{Ref: ref}))
	return b
}

// Failure records a failure result (chainable).
func (b *ResultSetBuilder) Failure(requestID, reason, detail string, retryable bool) *ResultSetBuilder {
	b.results = append(b.results, core.NewFailure(requestID, reason, detail, retryable))
	return b
}

// Result appends an arbitrary result (chainable).
func (b *ResultSetBuilder) Result(res core.ActionResult) *ResultSetBuilder {
	b.results = append(b.results, res)
	return b
}

// Build returns the assembled result set.
func (b *ResultSetBuilder) Build() core.ResultSet {
	set := core.NewResultSet(len(b.results))
	for _, res := range b.results {
		_ = set.Add(res)
	}
	return set
}

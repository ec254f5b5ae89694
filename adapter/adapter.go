// Package adapter implements the collaborator subsystem that lets the
// coordinator drive external side-effecting services (ticketing, scheduling,
// notification) through one uniform interface with consistent error
// classification. Each adapter wraps exactly one collaborator and normalizes
// its result and error shape; the Registry provides a closed kind-to-adapter
// mapping for static, auditable dispatch.
package adapter

import (
	"context"

	"github.com/hupe1980/meetingmesh/core"
)

// Adapter is the core's uniform interface to one external collaborator.
//
// Adapter implementations should:
//   - Handle exactly one core.ActionKind
//   - Respect context cancellation on every outbound call
//   - Classify errors via NewError / MarkPermanent so the coordinator can
//     derive the retryable flag without vendor-specific branching
//   - Be safe for concurrent use; the coordinator dispatches in parallel
//
// Retries are the adapter's (or the caller's) responsibility; the
// coordinator never retries.
type Adapter interface {
	// Kind returns the single action kind this adapter serves.
	Kind() core.ActionKind

	// Execute performs the side effect described by the request and returns
	// a collaborator-specific payload with a user-meaningful reference.
	Execute(ctx context.Context, req core.ActionRequest) (core.Payload, error)
}

// Registry maps action kinds to their adapters. The mapping is fixed at
// construction; dispatch for an unregistered kind is reported by the
// coordinator as an adapter-unavailable failure.
type Registry struct {
	adapters map[core.ActionKind]Adapter
}

// NewRegistry builds a registry from the given adapters. A later adapter for
// the same kind replaces an earlier one.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[core.ActionKind]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Kind()] = a
	}
	return r
}

// Lookup returns the adapter for a kind, if registered.
func (r *Registry) Lookup(kind core.ActionKind) (Adapter, bool) {
	a, ok := r.adapters[kind]
	return a, ok
}

// Kinds returns the registered kinds; order is unspecified.
func (r *Registry) Kinds() []core.ActionKind {
	kinds := make([]core.ActionKind, 0, len(r.adapters))
	for k := range r.adapters {
		kinds = append(kinds, k)
	}
	return kinds
}

// Package coordinator executes an action plan against the registered
// collaborator adapters. Requests fan out to one goroutine each, bounded by a
// semaphore, with an independent timeout per action. Failures are isolated:
// an adapter error, timeout or panic becomes a Failure result for that one
// request and never affects any other. An adapter that ignores cancellation
// is abandoned once its deadline expires and reported as timed out; Execute
// always returns one result per request within the invocation deadline.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/meetingmesh/adapter"
	"github.com/hupe1980/meetingmesh/core"
	"github.com/hupe1980/meetingmesh/logging"
)

const (
	// DefaultMaxInFlight bounds concurrent adapter calls per invocation.
	DefaultMaxInFlight = 4
	// DefaultActionTimeout bounds one adapter call.
	DefaultActionTimeout = 30 * time.Second
)

// Options configures the coordinator.
type Options struct {
	// MaxInFlight caps the number of concurrently executing actions.
	// Values below 1 fall back to DefaultMaxInFlight.
	MaxInFlight int

	// ActionTimeout is the per-action deadline, independent of the parent
	// context's deadline.
	ActionTimeout time.Duration

	// Logger receives execution diagnostics.
	Logger logging.Logger
}

// Coordinator dispatches action requests to adapters and collects results.
type Coordinator struct {
	registry *adapter.Registry
	opts     Options
}

// New creates a Coordinator over the given adapter registry.
func New(registry *adapter.Registry, optFns ...func(o *Options)) *Coordinator {
	opts := Options{
		MaxInFlight:   DefaultMaxInFlight,
		ActionTimeout: DefaultActionTimeout,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxInFlight < 1 {
		opts.MaxInFlight = DefaultMaxInFlight
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = DefaultActionTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Coordinator{registry: registry, opts: opts}
}

// Execute runs every request in the plan and returns a complete result set:
// exactly one result per request, regardless of individual outcomes. The
// coordinator never retries; the retryable flag on each failure tells the
// caller whether a retry could succeed.
func (c *Coordinator) Execute(ctx context.Context, plan core.ActionPlan) core.ResultSet {
	n := plan.Size()
	results := core.NewResultSet(n)
	if n == 0 {
		return results
	}

	// Fast path: single action, execute inline.
	if n == 1 {
		_ = results.Add(c.executeOne(ctx, plan.Requests[0]))
		return results
	}

	maxPar := c.opts.MaxInFlight
	if maxPar > n {
		maxPar = n
	}

	// Each goroutine writes exactly one preallocated slot, so the fan-out
	// needs no lock beyond the final join.
	slots := make([]core.ActionResult, n)
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	start := time.Now()
	for i := range plan.Requests {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, req core.ActionRequest) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[idx] = c.executeOne(ctx, req)
		}(i, plan.Requests[i])
	}
	wg.Wait()

	for _, res := range slots {
		if err := results.Add(res); err != nil {
			c.opts.Logger.Error("dropping duplicate result", "request_id", res.RequestID, "error", err)
		}
	}

	c.opts.Logger.Debug("plan executed",
		"invocation_id", plan.InvocationID,
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results
}

// executeOne dispatches a single request and normalizes every outcome,
// including panics, into an ActionResult.
func (c *Coordinator) executeOne(ctx context.Context, req core.ActionRequest) core.ActionResult {
	if req.NeedsClarification {
		note := req.ClarificationNote
		if note == "" {
			note = "required details could not be determined from the transcript"
		}
		return core.NewFailure(req.ID, core.ReasonNeedsClarification, note, false)
	}

	a, ok := c.registry.Lookup(req.Kind)
	if !ok {
		return core.NewFailure(req.ID, core.ReasonAdapterUnavailable,
			fmt.Sprintf("no collaborator is configured for %s actions", req.Kind), false)
	}

	if ctx.Err() != nil {
		return core.NewFailure(req.ID, core.ReasonDeadlineExceeded,
			"invocation deadline reached before the action started", true)
	}

	actionCtx, cancel := context.WithTimeout(ctx, c.opts.ActionTimeout)
	defer cancel()

	start := time.Now()

	// The adapter runs in its own goroutine so a call that ignores
	// cancellation cannot wedge the fan-out. The channel is buffered: a
	// straggler delivers its late result without blocking and gets
	// collected by the runtime.
	done := make(chan core.ActionResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				c.opts.Logger.Error("adapter panicked", "request_id", req.ID, "kind", string(req.Kind), "recover", fmt.Sprint(r))
				done <- core.NewFailure(req.ID, core.ReasonAdapterFailed,
					fmt.Sprintf("internal fault while handling %s", req.Describe()), true)
			}
		}()
		payload, err := a.Execute(actionCtx, req)
		if err != nil {
			c.opts.Logger.Warn("action failed",
				"request_id", req.ID, "kind", string(req.Kind),
				"duration_ms", time.Since(start).Milliseconds(), "error", err)
			done <- c.classify(ctx, actionCtx, req, err)
			return
		}
		c.opts.Logger.Info("action completed",
			"request_id", req.ID, "kind", string(req.Kind),
			"ref", payload.Ref, "duration_ms", time.Since(start).Milliseconds())
		done <- core.NewSuccess(req.ID, payload)
	}()

	select {
	case res := <-done:
		return res
	case <-actionCtx.Done():
		// A result that landed in the same instant the deadline expired
		// still wins.
		select {
		case res := <-done:
			return res
		default:
		}
		c.opts.Logger.Warn("action abandoned",
			"request_id", req.ID, "kind", string(req.Kind),
			"duration_ms", time.Since(start).Milliseconds())
		return c.classify(ctx, actionCtx, req, actionCtx.Err())
	}
}

// classify maps an adapter error to a Failure, distinguishing the parent
// deadline from the per-action timeout before consulting the adapter's own
// classification.
func (c *Coordinator) classify(parent, action context.Context, req core.ActionRequest, err error) core.ActionResult {
	if parent.Err() != nil {
		return core.NewFailure(req.ID, core.ReasonDeadlineExceeded,
			"invocation deadline reached before the action completed", true)
	}
	if action.Err() == context.DeadlineExceeded {
		return core.NewFailure(req.ID, core.ReasonTimeout,
			fmt.Sprintf("action did not complete within %s", c.opts.ActionTimeout), true)
	}
	return core.NewFailure(req.ID, core.ReasonAdapterFailed, adapter.Reason(err), !adapter.IsPermanent(err))
}

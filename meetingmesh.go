// Package meetingmesh provides a high-level façade over the interpretation,
// coordination and synthesis stages that turn one meeting transcript into
// executed follow-up actions and a single textual answer. Most applications
// interact with this package by:
//  1. Creating an Orchestrator via New() with an interpreter, coordinator and synthesizer
//  2. Calling Handle() with the raw transcript text
//
// The façade owns the invocation deadline and guarantees that Handle never
// propagates an error: every internal failure mode is converted into a
// user-facing textual outcome, because the serving boundary only carries text.
package meetingmesh

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/meetingmesh/core"
	"github.com/hupe1980/meetingmesh/interpreter"
	"github.com/hupe1980/meetingmesh/logging"
)

// DefaultInvocationDeadline bounds one full Handle invocation.
const DefaultInvocationDeadline = 2 * time.Minute

// Fixed user-facing texts for invocation-level failures. Internal error
// details are logged, never echoed to the caller.
const (
	emptyTranscriptText = "The transcript was empty, so no actions could be identified."
	interpretFailedText = "Sorry, the meeting transcript could not be processed. Please try again."
	cancelledText       = "The request was cancelled before the transcript could be processed."
)

// Interpreter turns a transcript into an action plan.
type Interpreter interface {
	Interpret(ctx context.Context, transcript string) (core.ActionPlan, error)
}

// Executor runs a plan and returns one result per request.
type Executor interface {
	Execute(ctx context.Context, plan core.ActionPlan) core.ResultSet
}

// Synthesizer renders plan and results into the final outcome.
type Synthesizer interface {
	Synthesize(ctx context.Context, transcript string, plan core.ActionPlan, results core.ResultSet) core.Outcome
}

// Options configures the Orchestrator.
type Options struct {
	// Deadline bounds one invocation end to end. In-flight actions are
	// cancelled cooperatively when it expires; the invocation still
	// completes with a partial-but-complete outcome.
	Deadline time.Duration

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Orchestrator composes the three stages of one invocation.
type Orchestrator struct {
	interpreter Interpreter
	executor    Executor
	synthesizer Synthesizer
	opts        Options
}

// New creates an Orchestrator. All three stages are required.
func New(interp Interpreter, exec Executor, synth Synthesizer, optFns ...func(o *Options)) (*Orchestrator, error) {
	if interp == nil || exec == nil || synth == nil {
		return nil, errors.New("meetingmesh: interpreter, executor and synthesizer are required")
	}

	opts := Options{
		Deadline: DefaultInvocationDeadline,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Orchestrator{interpreter: interp, executor: exec, synthesizer: synth, opts: opts}, nil
}

// Run executes one invocation and returns the structured outcome. The only
// error Run returns is an interpretation failure; execution and synthesis
// always complete with one result per planned request.
func (o *Orchestrator) Run(ctx context.Context, transcript string) (core.Outcome, error) {
	if o.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Deadline)
		defer cancel()
	}

	start := time.Now()

	plan, err := o.interpreter.Interpret(ctx, transcript)
	if err != nil {
		return core.Outcome{}, err
	}

	results := o.executor.Execute(ctx, plan)
	outcome := o.synthesizer.Synthesize(ctx, transcript, plan, results)

	o.opts.Logger.Info("invocation completed",
		"invocation_id", outcome.InvocationID,
		"actions", outcome.Summary.Total,
		"succeeded", outcome.Summary.Succeeded,
		"failed", outcome.Summary.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome, nil
}

// Handle is the sole public operation of the serving boundary: transcript in,
// text out. Handle never returns an error; interpretation failures become a
// clear textual explanation and sub-action failures are reported inside the
// outcome text.
func (o *Orchestrator) Handle(ctx context.Context, prompt string) string {
	outcome, err := o.Run(ctx, prompt)
	if err != nil {
		o.opts.Logger.Warn("invocation failed before execution", "error", err)
		switch {
		case errors.Is(err, interpreter.ErrEmptyTranscript):
			return emptyTranscriptText
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return cancelledText
		default:
			return interpretFailedText
		}
	}
	return outcome.Text
}

// Package synthesizer turns a plan and its result set into the single textual
// outcome returned to the caller. The enumeration of successes and failures
// is assembled deterministically in plan order; an optional phrasing
// capability may add a prose lead-in but never decides what happened.
package synthesizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/meetingmesh/core"
	"github.com/hupe1980/meetingmesh/logging"
	"github.com/hupe1980/meetingmesh/model"
)

// emptyPlanText is returned when the transcript implied no actions.
const emptyPlanText = "No actions were identified in the transcript, so nothing was created, scheduled or sent."

// phrasingInstructions steers the optional phrasing capability. The factual
// report follows as input; the capability must not contradict or extend it.
const phrasingInstructions = `You write a short, friendly summary of automated meeting follow-ups.
You are given a factual report of what was done. Write one or two sentences
summarizing it for the person who submitted the transcript. Do not invent
actions, references or reasons that are not in the report. Do not repeat the
report line by line.`

// Options configures the synthesizer.
type Options struct {
	// Phraser, when set, generates a prose lead-in from the deterministic
	// report. Any phraser error is logged and the report stands alone.
	Phraser model.Model

	// Logger receives synthesis diagnostics.
	Logger logging.Logger
}

// Synthesizer assembles the final outcome text.
type Synthesizer struct {
	opts Options
}

// New creates a Synthesizer.
func New(optFns ...func(o *Options)) *Synthesizer {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Synthesizer{opts: opts}
}

// Synthesize produces the outcome for one invocation. It reports every
// request in the plan, in plan order, with a user-meaningful reference on
// success and a human-readable reason on failure. Synthesize never fails;
// a phraser error degrades to the deterministic report.
func (s *Synthesizer) Synthesize(ctx context.Context, transcript string, plan core.ActionPlan, results core.ResultSet) core.Outcome {
	summary := core.Summarize(plan, results)

	if plan.Empty() {
		return core.Outcome{InvocationID: plan.InvocationID, Text: emptyPlanText, Summary: summary}
	}

	report := buildReport(plan, results, summary)
	text := report

	if s.opts.Phraser != nil {
		phrased, err := s.phrase(ctx, transcript, report)
		switch {
		case err != nil:
			s.opts.Logger.Warn("phrasing capability failed, using plain report", "error", err)
		case strings.TrimSpace(phrased) != "":
			text = strings.TrimSpace(phrased) + "\n\n" + report
		}
	}

	return core.Outcome{InvocationID: plan.InvocationID, Text: text, Summary: summary}
}

func (s *Synthesizer) phrase(ctx context.Context, transcript, report string) (string, error) {
	input := report
	if transcript != "" {
		input = fmt.Sprintf("Transcript excerpt:\n%s\n\nReport:\n%s", excerpt(transcript, 500), report)
	}
	resp, err := s.opts.Phraser.Complete(ctx, model.Request{Instructions: phrasingInstructions, Input: input})
	if err != nil {
		return "", fmt.Errorf("phrase outcome: %w", err)
	}
	return resp.Text, nil
}

// buildReport renders the deterministic enumeration. Every request gets one
// line; references come from the adapter payload, reasons from the failure.
func buildReport(plan core.ActionPlan, results core.ResultSet, summary core.Summary) string {
	var b strings.Builder

	noun := "actions"
	if summary.Total == 1 {
		noun = "action"
	}
	fmt.Fprintf(&b, "Processed %d requested %s: %d succeeded, %d failed.\n", summary.Total, noun, summary.Succeeded, summary.Failed)

	for _, req := range plan.Requests {
		res, ok := results.Get(req.ID)
		switch {
		case !ok:
			fmt.Fprintf(&b, "- Failed: %s. No result was recorded.\n", req.Describe())
		case res.Succeeded():
			if res.Payload.Ref != "" {
				fmt.Fprintf(&b, "- Done: %s (%s).\n", req.Describe(), res.Payload.Ref)
			} else {
				fmt.Fprintf(&b, "- Done: %s.\n", req.Describe())
			}
		default:
			fmt.Fprintf(&b, "- Failed: %s. %s.", req.Describe(), capitalize(res.Failure.Describe()))
			if res.Failure.Retryable {
				b.WriteString(" Retrying may succeed.")
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

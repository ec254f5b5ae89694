package synthesizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meetingmesh/core"
	"github.com/hupe1980/meetingmesh/internal/testutil"
	"github.com/hupe1980/meetingmesh/model"
)

func TestSynthesizeEmptyPlan(t *testing.T) {
	plan := core.NewActionPlan("just chit-chat")

	outcome := New().Synthesize(context.Background(), plan.Transcript, plan, core.NewResultSet(0))

	assert.Equal(t, emptyPlanText, outcome.Text)
	assert.Equal(t, plan.InvocationID, outcome.InvocationID)
	assert.Zero(t, outcome.Summary.Total)
}

func TestSynthesizeReportsEveryRequestInPlanOrder(t *testing.T) {
	plan := testutil.NewPlanBuilder("standup").
		Ticket("t1", "Fix login bug", "Users cannot log in").
		Meeting("m1", "Sprint review", time.Date(2025, 12, 19, 10, 0, 0, 0, time.UTC), "dev@example.com").
		Notification("n1", "Sprint Tasks", "Two follow-ups created").
		Build()
	results := testutil.NewResultSetBuilder().
		Success("n1", "msg-1").
		Success("m1", "m1@meetingmesh").
		Success("t1", "DEV-123").
		Build()

	outcome := New().Synthesize(context.Background(), plan.Transcript, plan, results)

	want := "Processed 3 requested actions: 3 succeeded, 0 failed.\n" +
		"- Done: create ticket \"Fix login bug\" (DEV-123).\n" +
		"- Done: schedule meeting \"Sprint review\" (m1@meetingmesh).\n" +
		"- Done: send notification \"Sprint Tasks\" (msg-1)."
	assert.Equal(t, want, outcome.Text)
	assert.Equal(t, 3, outcome.Summary.Succeeded)
}

func TestSynthesizeMixedResults(t *testing.T) {
	plan := testutil.NewPlanBuilder("standup").
		Ticket("t1", "Fix login bug", "Users cannot log in").
		Notification("n1", "Sprint Tasks", "One follow-up created").
		Build()
	results := testutil.NewResultSetBuilder().
		Failure("t1", core.ReasonAdapterFailed, "project does not exist", false).
		Success("n1", "msg-1").
		Build()

	outcome := New().Synthesize(context.Background(), plan.Transcript, plan, results)

	want := "Processed 2 requested actions: 1 succeeded, 1 failed.\n" +
		"- Failed: create ticket \"Fix login bug\". Project does not exist.\n" +
		"- Done: send notification \"Sprint Tasks\" (msg-1)."
	assert.Equal(t, want, outcome.Text)
	assert.Equal(t, 1, outcome.Summary.Failed)
}

func TestSynthesizeRetryableFailureHint(t *testing.T) {
	plan := testutil.NewPlanBuilder("standup").
		Notification("n1", "Sprint Tasks", "hello").
		Build()
	results := testutil.NewResultSetBuilder().
		Failure("n1", core.ReasonTimeout, "action did not complete within 30s", true).
		Build()

	outcome := New().Synthesize(context.Background(), plan.Transcript, plan, results)

	assert.Contains(t, outcome.Text, "Processed 1 requested action: 0 succeeded, 1 failed.")
	assert.Contains(t, outcome.Text, "Retrying may succeed.")
}

func TestSynthesizeMissingResultReportedAsFailure(t *testing.T) {
	plan := testutil.NewPlanBuilder("standup").
		Ticket("t1", "Fix login bug", "Users cannot log in").
		Build()

	outcome := New().Synthesize(context.Background(), plan.Transcript, plan, core.NewResultSet(0))

	assert.Contains(t, outcome.Text, "No result was recorded")
	assert.Equal(t, 1, outcome.Summary.Failed)
}

func TestSynthesizePhraserAugmentsReport(t *testing.T) {
	plan := testutil.NewPlanBuilder("standup").
		Ticket("t1", "Fix login bug", "Users cannot log in").
		Build()
	results := testutil.NewResultSetBuilder().Success("t1", "DEV-123").Build()

	phraser := &cannedPhraser{text: "All set! Your follow-up ticket is ready."}
	outcome := New(func(o *Options) { o.Phraser = phraser }).
		Synthesize(context.Background(), plan.Transcript, plan, results)

	require.True(t, phraser.called)
	assert.Contains(t, phraser.lastInput, "DEV-123")
	assert.Contains(t, outcome.Text, "All set! Your follow-up ticket is ready.")
	assert.Contains(t, outcome.Text, "- Done: create ticket \"Fix login bug\" (DEV-123).")
}

func TestSynthesizePhraserFailureFallsBack(t *testing.T) {
	plan := testutil.NewPlanBuilder("standup").
		Ticket("t1", "Fix login bug", "Users cannot log in").
		Build()
	results := testutil.NewResultSetBuilder().Success("t1", "DEV-123").Build()

	failing := model.NewMockModel("test", "mock")
	failing.FailWith(errors.New("capability unavailable"))

	outcome := New(func(o *Options) { o.Phraser = failing }).
		Synthesize(context.Background(), plan.Transcript, plan, results)

	want := "Processed 1 requested action: 1 succeeded, 0 failed.\n" +
		"- Done: create ticket \"Fix login bug\" (DEV-123)."
	assert.Equal(t, want, outcome.Text)
}

// cannedPhraser records the input it was given and returns a fixed text.
type cannedPhraser struct {
	text      string
	called    bool
	lastInput string
}

func (p *cannedPhraser) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	p.called = true
	p.lastInput = req.Input
	return model.Response{Text: p.text}, nil
}

func (p *cannedPhraser) Info() model.Info { return model.Info{Name: "canned", Provider: "mock"} }

package meetingmesh

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meetingmesh/adapter"
	"github.com/hupe1980/meetingmesh/coordinator"
	"github.com/hupe1980/meetingmesh/core"
	"github.com/hupe1980/meetingmesh/interpreter"
	"github.com/hupe1980/meetingmesh/model"
	"github.com/hupe1980/meetingmesh/synthesizer"
)

const standupTranscript = `Alice: The login bug needs a ticket, assign it to Bob.
Bob: Let's review progress on Friday December 19th at 10:00 with the whole team.
Alice: And send the sprint summary to everyone afterwards.`

const standupExtraction = `{
  "actions": [
    {"kind": "create_ticket", "title": "Fix login bug", "description": "Users cannot log in", "assignee": "Bob"},
    {"kind": "schedule_meeting", "subject": "Sprint review", "date": "2025-12-19", "time": "10:00", "attendees": ["team@example.com"]},
    {"kind": "send_notification", "subject": "Sprint Tasks", "message": "Sprint summary sent to the team"}
  ]
}`

// scriptedAdapter serves one kind with a pluggable execute function.
type scriptedAdapter struct {
	kind  core.ActionKind
	calls atomic.Int32
	fn    func(req core.ActionRequest) (core.Payload, error)
}

func (a *scriptedAdapter) Kind() core.ActionKind { return a.kind }

func (a *scriptedAdapter) Execute(ctx context.Context, req core.ActionRequest) (core.Payload, error) {
	a.calls.Add(1)
	return a.fn(req)
}

func newOrchestrator(t *testing.T, m model.Model, adapters ...adapter.Adapter) *Orchestrator {
	t.Helper()
	orc, err := New(
		interpreter.New(m),
		coordinator.New(adapter.NewRegistry(adapters...)),
		synthesizer.New(),
	)
	require.NoError(t, err)
	return orc
}

func TestHandleFullInvocation(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse(standupTranscript, standupExtraction)

	ticketing := &scriptedAdapter{kind: core.ActionCreateTicket, fn: func(req core.ActionRequest) (core.Payload, error) {
		return core.Payload{Ref: "DEV-123"}, nil
	}}
	scheduling := &scriptedAdapter{kind: core.ActionScheduleMeeting, fn: func(req core.ActionRequest) (core.Payload, error) {
		return core.Payload{Ref: req.ID + "@meetingmesh"}, nil
	}}
	notifying := &scriptedAdapter{kind: core.ActionSendNotification, fn: func(req core.ActionRequest) (core.Payload, error) {
		return core.Payload{Ref: "msg-1"}, nil
	}}

	orc := newOrchestrator(t, m, ticketing, scheduling, notifying)

	text := orc.Handle(context.Background(), standupTranscript)

	assert.Contains(t, text, "Processed 3 requested actions: 3 succeeded, 0 failed.")
	assert.Contains(t, text, `create ticket "Fix login bug" (DEV-123)`)
	assert.Contains(t, text, `schedule meeting "Sprint review"`)
	assert.Contains(t, text, `send notification "Sprint Tasks" (msg-1)`)

	// Enumeration follows plan order regardless of completion order.
	ticketIdx := strings.Index(text, "create ticket")
	meetingIdx := strings.Index(text, "schedule meeting")
	notifIdx := strings.Index(text, "send notification")
	assert.Less(t, ticketIdx, meetingIdx)
	assert.Less(t, meetingIdx, notifIdx)
}

func TestHandleReportsIsolatedFailure(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse(standupTranscript, standupExtraction)

	ticketing := &scriptedAdapter{kind: core.ActionCreateTicket, fn: func(req core.ActionRequest) (core.Payload, error) {
		return core.Payload{}, adapter.NewPermanentError("jira", "project does not exist", nil)
	}}
	scheduling := &scriptedAdapter{kind: core.ActionScheduleMeeting, fn: func(req core.ActionRequest) (core.Payload, error) {
		return core.Payload{Ref: req.ID + "@meetingmesh"}, nil
	}}
	notifying := &scriptedAdapter{kind: core.ActionSendNotification, fn: func(req core.ActionRequest) (core.Payload, error) {
		return core.Payload{Ref: "msg-1"}, nil
	}}

	orc := newOrchestrator(t, m, ticketing, scheduling, notifying)

	text := orc.Handle(context.Background(), standupTranscript)

	assert.Contains(t, text, "Processed 3 requested actions: 2 succeeded, 1 failed.")
	assert.Contains(t, text, "Project does not exist")
	assert.NotContains(t, text, "adapter error", "raw internal error text must not surface")
	assert.Contains(t, text, `schedule meeting "Sprint review"`)
	assert.Contains(t, text, `send notification "Sprint Tasks" (msg-1)`)
}

func TestHandleEmptyPrompt(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	ticketing := &scriptedAdapter{kind: core.ActionCreateTicket, fn: func(req core.ActionRequest) (core.Payload, error) {
		return core.Payload{Ref: "DEV-123"}, nil
	}}

	orc := newOrchestrator(t, m, ticketing)

	text := orc.Handle(context.Background(), "   \n ")

	assert.Equal(t, emptyTranscriptText, text)
	assert.Zero(t, m.Calls(), "model must not be invoked for an empty transcript")
	assert.Zero(t, ticketing.calls.Load(), "no adapter may run without a plan")
}

func TestHandleNoActionsIdentified(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse("just small talk", `{"actions": []}`)

	orc := newOrchestrator(t, m)

	text := orc.Handle(context.Background(), "just small talk")

	assert.Contains(t, text, "No actions were identified")
}

func TestHandleNeverReturnsEmptyText(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse("garbled", "this is not json at all")

	orc := newOrchestrator(t, m)

	text := orc.Handle(context.Background(), "garbled")

	assert.NotEmpty(t, strings.TrimSpace(text))
}

func TestNewRequiresAllStages(t *testing.T) {
	_, err := New(nil, nil, nil)
	require.Error(t, err)
}

func TestRunAppliesInvocationDeadline(t *testing.T) {
	m := model.NewMockModel("test", "mock")
	m.AddResponse(standupTranscript, standupExtraction)

	stuckAdapter := &blockingAdapter{kind: core.ActionCreateTicket}

	orc, err := New(
		interpreter.New(m),
		coordinator.New(adapter.NewRegistry(stuckAdapter)),
		synthesizer.New(),
		func(o *Options) { o.Deadline = 50 * time.Millisecond },
	)
	require.NoError(t, err)

	start := time.Now()
	outcome, err := orc.Run(context.Background(), standupTranscript)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 3, outcome.Summary.Total)
	assert.Equal(t, 3, outcome.Summary.Failed)
	assert.Contains(t, outcome.Text, "deadline")
}

// blockingAdapter never completes until its context is cancelled.
type blockingAdapter struct {
	kind core.ActionKind
}

func (a *blockingAdapter) Kind() core.ActionKind { return a.kind }

func (a *blockingAdapter) Execute(ctx context.Context, req core.ActionRequest) (core.Payload, error) {
	<-ctx.Done()
	return core.Payload{}, ctx.Err()
}

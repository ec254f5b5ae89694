package testutil

import (
	"time"

	"github.com/hupe1980/meetingmesh/core"
)

// PlanBuilder provides a fluent helper for constructing action plans in tests.
// Example:
//
//	plan := NewPlanBuilder("standup notes").
//		Ticket("t1", "Fix login bug", "Users cannot log in").
//		Notification("n1", "Sprint Tasks", "Two tasks created").
//		Build()
//
// Chain only the requests you need; sensible defaults are applied.
type PlanBuilder struct {
	plan core.ActionPlan
}

// NewPlanBuilder creates a builder for a plan over the given transcript.
func NewPlanBuilder(transcript string) *PlanBuilder {
	return &PlanBuilder{plan: core.NewActionPlan(transcript)}
}

// Invocation overrides the auto-generated invocation ID (chainable).
func (b *PlanBuilder) Invocation(id string) *PlanBuilder {
	b.plan.InvocationID = id
	return b
}

// Ticket appends a create_ticket request (chainable).
func (b *PlanBuilder) Ticket(id, title, description string) *PlanBuilder {
	b.plan = b.plan.Append(core.ActionRequest{
		ID:     id,
		Kind:   core.ActionCreateTicket,
		Ticket: &core.TicketSpec{Title: title, Description: description},
	})
	return b
}

// Meeting appends a schedule_meeting request (chainable).
func (b *PlanBuilder) Meeting(id, subject string, start time.Time, attendees ...string) *PlanBuilder {
	b.plan = b.plan.Append(core.ActionRequest{
		ID:      id,
		Kind:    core.ActionScheduleMeeting,
		Meeting: &core.MeetingSpec{Subject: subject, Start: start, Attendees: attendees},
	})
	return b
}

// Notification appends a send_notification request (chainable).
func (b *PlanBuilder) Notification(id, subject, message string) *PlanBuilder {
	b.plan = b.plan.Append(core.ActionRequest{
		ID:           id,
		Kind:         core.ActionSendNotification,
		Notification: &core.NotificationSpec{Subject: subject, Message: message},
	})
	return b
}

// Clarification appends a request flagged for clarification (chainable).
func (b *PlanBuilder) Clarification(id string, kind core.ActionKind, note string) *PlanBuilder {
	b.plan = b.plan.Append(core.ActionRequest{
		ID:                 id,
		Kind:               kind,
		NeedsClarification: true,
		ClarificationNote:  note,
	})
	return b
}

// Request appends an arbitrary request (chainable).
func (b *PlanBuilder) Request(req core.ActionRequest) *PlanBuilder {
	b.plan = b.plan.Append(req)
	return b
}

// Build returns the assembled plan.
func (b *PlanBuilder) Build() core.ActionPlan { return b.plan }

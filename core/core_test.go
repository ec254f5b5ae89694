package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTicketRequest(title string) ActionRequest {
	return ActionRequest{
		ID:     NewID(),
		Kind:   ActionCreateTicket,
		Ticket: &TicketSpec{Title: title, Description: "desc"},
	}
}

func TestActionRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ActionRequest
		wantErr bool
	}{
		{
			name: "valid ticket",
			req:  newTicketRequest("Implement signup API"),
		},
		{
			name: "valid meeting",
			req: ActionRequest{
				ID:   NewID(),
				Kind: ActionScheduleMeeting,
				Meeting: &MeetingSpec{
					Subject:   "Sprint Review",
					Start:     time.Date(2025, 12, 19, 10, 0, 0, 0, time.UTC),
					Attendees: []string{"sarah@example.com"},
				},
			},
		},
		{
			name: "valid notification",
			req: ActionRequest{
				ID:           NewID(),
				Kind:         ActionSendNotification,
				Notification: &NotificationSpec{Channel: "email", Subject: "Sprint Tasks", Message: "body"},
			},
		},
		{
			name:    "missing id",
			req:     ActionRequest{Kind: ActionCreateTicket, Ticket: &TicketSpec{Title: "t", Description: "d"}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			req:     ActionRequest{ID: NewID(), Kind: ActionKind("reboot_server")},
			wantErr: true,
		},
		{
			name:    "ticket without description",
			req:     ActionRequest{ID: NewID(), Kind: ActionCreateTicket, Ticket: &TicketSpec{Title: "t"}},
			wantErr: true,
		},
		{
			name:    "meeting without attendees",
			req:     ActionRequest{ID: NewID(), Kind: ActionScheduleMeeting, Meeting: &MeetingSpec{Subject: "s", Start: time.Now()}},
			wantErr: true,
		},
		{
			name: "needs clarification exempts payload checks",
			req: ActionRequest{
				ID:                 NewID(),
				Kind:               ActionScheduleMeeting,
				NeedsClarification: true,
				ClarificationNote:  "no date mentioned",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestActionPlan_Validate_DuplicateID(t *testing.T) {
	req := newTicketRequest("dup")
	plan := NewActionPlan("transcript")
	plan = plan.Append(req)
	plan = plan.Append(req)

	err := plan.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestActionPlan_Empty(t *testing.T) {
	plan := NewActionPlan("nothing actionable here")
	assert.True(t, plan.Empty())
	assert.NoError(t, plan.Validate())
	assert.NotEmpty(t, plan.InvocationID)
}

func TestResultSet_CompleteAndOrder(t *testing.T) {
	plan := NewActionPlan("t")
	r1 := newTicketRequest("first")
	r2 := newTicketRequest("second")
	r3 := newTicketRequest("third")
	plan = plan.Append(r1)
	plan = plan.Append(r2)
	plan = plan.Append(r3)

	set := NewResultSet(plan.Size())

	// Add out of plan order to simulate completion races.
	require.NoError(t, set.Add(NewFailure(r3.ID, ReasonTimeout, "adapter did not respond", true)))
	require.NoError(t, set.Add(NewSuccess(r1.ID, Payload{Ref: "DEV-101"})))
	assert.False(t, set.Complete(plan))

	require.NoError(t, set.Add(NewSuccess(r2.ID, Payload{Ref: "DEV-102"})))
	assert.True(t, set.Complete(plan))
	assert.Equal(t, plan.Size(), set.Len())

	ordered := set.InPlanOrder(plan)
	require.Len(t, ordered, 3)
	assert.Equal(t, r1.ID, ordered[0].RequestID)
	assert.Equal(t, r2.ID, ordered[1].RequestID)
	assert.Equal(t, r3.ID, ordered[2].RequestID)
	assert.True(t, ordered[0].Succeeded())
	assert.False(t, ordered[2].Succeeded())
	assert.Equal(t, ReasonTimeout, ordered[2].Failure.Reason)
}

func TestResultSet_Add_Duplicate(t *testing.T) {
	set := NewResultSet(1)
	res := NewSuccess("req-1", Payload{Ref: "DEV-1"})
	require.NoError(t, set.Add(res))
	assert.Error(t, set.Add(res))
	assert.Equal(t, 1, set.Len())
}

func TestSummarize(t *testing.T) {
	plan := NewActionPlan("t")
	r1 := newTicketRequest("a")
	r2 := ActionRequest{
		ID:           NewID(),
		Kind:         ActionSendNotification,
		Notification: &NotificationSpec{Channel: "email", Subject: "s", Message: "m"},
	}
	plan = plan.Append(r1)
	plan = plan.Append(r2)

	set := NewResultSet(2)
	require.NoError(t, set.Add(NewSuccess(r1.ID, Payload{Ref: "DEV-1"})))
	require.NoError(t, set.Add(NewFailure(r2.ID, ReasonAdapterUnavailable, "", false)))

	s := Summarize(plan, set)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.ByKind[ActionCreateTicket])
	assert.Equal(t, 1, s.ByKind[ActionSendNotification])
}

func TestSummarize_EmptyPlan(t *testing.T) {
	plan := NewActionPlan("t")
	s := Summarize(plan, NewResultSet(0))
	assert.Zero(t, s.Total)
	assert.Nil(t, s.ByKind)
}

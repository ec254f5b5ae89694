package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionKind identifies the collaborator an ActionRequest is routed to.
// The set is closed: adding a new kind requires a matching adapter, giving
// the coordinator static, auditable dispatch.
type ActionKind string

const (
	// ActionCreateTicket requests creation of a ticket in the ticketing system.
	ActionCreateTicket ActionKind = "create_ticket"
	// ActionScheduleMeeting requests a calendar invite for a follow-up meeting.
	ActionScheduleMeeting ActionKind = "schedule_meeting"
	// ActionSendNotification requests a notification dispatch.
	ActionSendNotification ActionKind = "send_notification"
)

// Valid reports whether the kind is one of the known action kinds.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionCreateTicket, ActionScheduleMeeting, ActionSendNotification:
		return true
	}
	return false
}

// TicketSpec carries the fields the ticketing collaborator needs.
type TicketSpec struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Assignee is a hint; the collaborator may resolve or ignore it.
	Assignee string `json:"assignee,omitempty"`
}

// MeetingSpec carries the fields the scheduling collaborator needs.
type MeetingSpec struct {
	Subject string `json:"subject"`
	// Start is the proposed meeting start; Duration defaults to 30 minutes
	// when the transcript does not state one.
	Start     time.Time     `json:"start"`
	Duration  time.Duration `json:"duration,omitempty"`
	Attendees []string      `json:"attendees"`
	Location  string        `json:"location,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

// NotificationSpec carries the fields the notification collaborator needs.
type NotificationSpec struct {
	Channel    string   `json:"channel"`
	Recipients []string `json:"recipients,omitempty"`
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
}

// ActionRequest is one typed intent extracted from a transcript. Exactly one
// of Ticket, Meeting or Notification is populated, matching Kind. Requests
// are immutable once produced by the interpreter.
type ActionRequest struct {
	// ID is a stable request identifier pairing the request with its result.
	ID   string     `json:"id"`
	Kind ActionKind `json:"kind"`

	Ticket       *TicketSpec       `json:"ticket,omitempty"`
	Meeting      *MeetingSpec      `json:"meeting,omitempty"`
	Notification *NotificationSpec `json:"notification,omitempty"`

	// NeedsClarification marks a request whose required information could
	// not be fully extracted. The coordinator skips such requests and the
	// synthesizer reports them instead of fabricating data.
	NeedsClarification bool   `json:"needs_clarification,omitempty"`
	ClarificationNote  string `json:"clarification_note,omitempty"`
}

// Validate checks that the variant-specific required fields are populated.
// Requests flagged NeedsClarification are exempt; they are never executed.
func (r ActionRequest) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("action request has no id")
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("unknown action kind %q", r.Kind)
	}
	if r.NeedsClarification {
		return nil
	}
	switch r.Kind {
	case ActionCreateTicket:
		if r.Ticket == nil || r.Ticket.Title == "" || r.Ticket.Description == "" {
			return fmt.Errorf("ticket request %s missing title or description", r.ID)
		}
	case ActionScheduleMeeting:
		if r.Meeting == nil || r.Meeting.Subject == "" || r.Meeting.Start.IsZero() || len(r.Meeting.Attendees) == 0 {
			return fmt.Errorf("meeting request %s missing subject, start or attendees", r.ID)
		}
	case ActionSendNotification:
		if r.Notification == nil || r.Notification.Subject == "" || r.Notification.Message == "" {
			return fmt.Errorf("notification request %s missing subject or message", r.ID)
		}
	}
	return nil
}

// Describe returns a short user-facing label for the request, used by the
// synthesizer when enumerating outcomes.
func (r ActionRequest) Describe() string {
	switch r.Kind {
	case ActionCreateTicket:
		if r.Ticket != nil {
			return fmt.Sprintf("create ticket %q", r.Ticket.Title)
		}
		return "create ticket"
	case ActionScheduleMeeting:
		if r.Meeting != nil {
			return fmt.Sprintf("schedule meeting %q", r.Meeting.Subject)
		}
		return "schedule meeting"
	case ActionSendNotification:
		if r.Notification != nil {
			return fmt.Sprintf("send notification %q", r.Notification.Subject)
		}
		return "send notification"
	}
	return string(r.Kind)
}

// NewID generates a unique identifier for requests and invocations.
func NewID() string { return uuid.NewString() }

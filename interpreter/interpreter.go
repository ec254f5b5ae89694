// Package interpreter turns raw transcript text into a structured action
// plan. It calls the language-understanding capability to extract candidate
// actions, then validates each candidate against the closed action schema,
// dropping or flagging malformed entries rather than propagating garbage
// into execution. A transcript that simply implies no actions yields an
// empty plan, not an error.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/meetingmesh/core"
	"github.com/hupe1980/meetingmesh/internal/util"
	"github.com/hupe1980/meetingmesh/logging"
	"github.com/hupe1980/meetingmesh/model"
)

// ErrEmptyTranscript is returned when the input cannot be interpreted at all.
// It is the only fatal interpretation error; every other shortfall degrades
// to an empty or partial plan.
var ErrEmptyTranscript = errors.New("transcript is empty")

// extractionInstructions is the system steering for the extraction call. The
// response contract is plain JSON; fenced output is tolerated and stripped.
const extractionInstructions = `You analyze meeting transcripts (typically scrum or sprint planning meetings) and extract the concrete follow-up actions they imply.

Respond with JSON only, no prose, in this shape:

{
  "actions": [
    {"kind": "create_ticket", "title": "...", "description": "...", "assignee": "..."},
    {"kind": "schedule_meeting", "subject": "...", "date": "2025-12-19", "time": "10:00", "duration_minutes": 60, "attendees": ["a@example.com"], "location": "...", "notes": "..."},
    {"kind": "send_notification", "channel": "email", "recipients": ["a@example.com"], "subject": "...", "message": "..."}
  ]
}

Rules:
- Emit one create_ticket action per task assignment discussed in the meeting.
- Emit one schedule_meeting action per follow-up meeting the attendees agreed on.
- Emit one send_notification action when the meeting outcome should be announced.
- Only include an action when the transcript states the required information. Never invent titles, dates or recipients.
- If an action is clearly implied but required details are missing, include it with "needs_clarification": true and a short "note".
- If the transcript implies no actions, respond with {"actions": []}.`

// kind names accepted on the wire.
const (
	wireCreateTicket     = "create_ticket"
	wireScheduleMeeting  = "schedule_meeting"
	wireSendNotification = "send_notification"
)

// Per-kind candidate schemas; candidates failing validation are dropped.
var candidateSchemas = map[string]map[string]any{
	wireCreateTicket: {
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"assignee":    map[string]any{"type": "string"},
		},
		"required": []string{"title", "description"},
	},
	wireScheduleMeeting: {
		"type": "object",
		"properties": map[string]any{
			"subject":          map[string]any{"type": "string"},
			"date":             map[string]any{"type": "string"},
			"time":             map[string]any{"type": "string"},
			"duration_minutes": map[string]any{"type": "integer"},
			"attendees":        map[string]any{"type": "array"},
			"location":         map[string]any{"type": "string"},
			"notes":            map[string]any{"type": "string"},
		},
		"required": []string{"subject", "date", "attendees"},
	},
	wireSendNotification: {
		"type": "object",
		"properties": map[string]any{
			"channel":    map[string]any{"type": "string"},
			"recipients": map[string]any{"type": "array"},
			"subject":    map[string]any{"type": "string"},
			"message":    map[string]any{"type": "string"},
		},
		"required": []string{"subject", "message"},
	},
}

// Options configures the Interpreter.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Interpreter extracts action plans from transcripts via a language model.
// It has no mutable state after construction and is safe for concurrent use.
type Interpreter struct {
	model  model.Model
	logger logging.Logger
}

// New creates an Interpreter backed by the given language model.
func New(m model.Model, optFns ...func(o *Options)) *Interpreter {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Interpreter{model: m, logger: opts.Logger}
}

// Interpret turns a transcript into an action plan. A blank transcript is
// the only fatal error; an unavailable capability or a malformed model
// response degrades to an empty plan.
func (i *Interpreter) Interpret(ctx context.Context, transcript string) (core.ActionPlan, error) {
	if strings.TrimSpace(transcript) == "" {
		return core.ActionPlan{}, ErrEmptyTranscript
	}

	plan := core.NewActionPlan(transcript)

	resp, err := i.model.Complete(ctx, model.Request{
		Instructions: extractionInstructions,
		Input:        transcript,
	})
	if err != nil {
		if ctx.Err() != nil {
			return core.ActionPlan{}, fmt.Errorf("interpretation cancelled: %w", ctx.Err())
		}
		i.logger.Warn("interpreter.capability_unavailable", "error", err.Error())
		return plan, nil
	}

	raw := stripFences(resp.Text)
	actions := gjson.Get(raw, "actions")
	if !actions.Exists() || !actions.IsArray() {
		if strings.TrimSpace(raw) != "" {
			i.logger.Warn("interpreter.malformed_response", "model", i.model.Info().Name)
		}
		return plan, nil
	}

	actions.ForEach(func(_, item gjson.Result) bool {
		req, ok := i.buildRequest(item)
		if !ok {
			return true // continue; the candidate was dropped
		}
		plan = plan.Append(req)
		return true
	})

	if err := plan.Validate(); err != nil {
		// Guard at the package boundary; buildRequest should make this unreachable.
		return core.ActionPlan{}, fmt.Errorf("interpreter produced invalid plan: %w", err)
	}

	i.logger.Info("interpreter.plan_ready", "invocation_id", plan.InvocationID, "actions", plan.Size())

	return plan, nil
}

// buildRequest converts one candidate JSON object into a validated
// ActionRequest. It returns ok=false when the candidate must be dropped.
func (i *Interpreter) buildRequest(item gjson.Result) (core.ActionRequest, bool) {
	obj, ok := item.Value().(map[string]any)
	if !ok {
		i.logger.Warn("interpreter.candidate_dropped", "reason", "not an object")
		return core.ActionRequest{}, false
	}

	kind := item.Get("kind").String()
	schema, known := candidateSchemas[kind]
	if !known {
		i.logger.Warn("interpreter.candidate_dropped", "reason", "unknown kind", "kind", kind)
		return core.ActionRequest{}, false
	}

	req := core.ActionRequest{ID: core.NewID()}

	if item.Get("needs_clarification").Bool() {
		req.Kind = wireKind(kind)
		req.NeedsClarification = true
		req.ClarificationNote = item.Get("note").String()
		return req, true
	}

	if err := util.ValidateCandidate(obj, schema); err != nil {
		i.logger.Warn("interpreter.candidate_dropped", "kind", kind, "error", err.Error())
		return core.ActionRequest{}, false
	}

	switch kind {
	case wireCreateTicket:
		req.Kind = core.ActionCreateTicket
		req.Ticket = &core.TicketSpec{
			Title:       item.Get("title").String(),
			Description: item.Get("description").String(),
			Assignee:    item.Get("assignee").String(),
		}

	case wireScheduleMeeting:
		start, err := parseStart(item.Get("date").String(), item.Get("time").String())
		if err != nil {
			// Implied but under-specified; flag instead of fabricating a date.
			req.Kind = core.ActionScheduleMeeting
			req.NeedsClarification = true
			req.ClarificationNote = fmt.Sprintf("meeting time could not be determined: %v", err)
			return req, true
		}
		req.Kind = core.ActionScheduleMeeting
		req.Meeting = &core.MeetingSpec{
			Subject:   item.Get("subject").String(),
			Start:     start,
			Duration:  time.Duration(item.Get("duration_minutes").Int()) * time.Minute,
			Attendees: stringSlice(item.Get("attendees")),
			Location:  item.Get("location").String(),
			Notes:     item.Get("notes").String(),
		}

	case wireSendNotification:
		channel := item.Get("channel").String()
		if channel == "" {
			channel = "email"
		}
		req.Kind = core.ActionSendNotification
		req.Notification = &core.NotificationSpec{
			Channel:    channel,
			Recipients: stringSlice(item.Get("recipients")),
			Subject:    item.Get("subject").String(),
			Message:    item.Get("message").String(),
		}
	}

	if err := req.Validate(); err != nil {
		i.logger.Warn("interpreter.candidate_dropped", "kind", kind, "error", err.Error())
		return core.ActionRequest{}, false
	}

	return req, true
}

func wireKind(kind string) core.ActionKind {
	switch kind {
	case wireCreateTicket:
		return core.ActionCreateTicket
	case wireScheduleMeeting:
		return core.ActionScheduleMeeting
	case wireSendNotification:
		return core.ActionSendNotification
	}
	return core.ActionKind(kind)
}

// parseStart combines the wire date ("2006-01-02") and time ("15:04") into a
// meeting start. A missing time defaults to 09:00; a missing date is an error.
func parseStart(date, clock string) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		return time.Time{}, fmt.Errorf("no date given")
	}
	if strings.TrimSpace(clock) == "" {
		clock = "09:00"
	}
	start, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date/time %q %q", date, clock)
	}
	return start, nil
}

func stringSlice(res gjson.Result) []string {
	var out []string
	res.ForEach(func(_, v gjson.Result) bool {
		if s := strings.TrimSpace(v.String()); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}

// stripFences removes a surrounding markdown code fence, if present, so that
// models replying with ```json blocks still parse.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Package calendar implements the scheduling collaborator adapter. It renders
// an iCalendar invite for the proposed meeting and persists it through the
// configured artifact store; downstream delivery (mailing the invite) is the
// notification collaborator's concern.
package calendar

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/hupe1980/meetingmesh/adapter"
	"github.com/hupe1980/meetingmesh/core"
)

const adapterName = "calendar"

// DefaultDuration applies when the transcript states no meeting length.
const DefaultDuration = 30 * time.Minute

// Options configures the calendar adapter.
type Options struct {
	// ProdID identifies the generator in emitted invites.
	ProdID string
	// Organizer is the mailto address stamped on invites, optional.
	Organizer string
	// Now supplies DTSTAMP; overridable for deterministic tests.
	Now func() time.Time
}

// Adapter produces ICS invites for meeting action requests.
type Adapter struct {
	store core.ArtifactStore
	opts  Options
}

// New constructs the calendar adapter backed by the given artifact store.
func New(store core.ArtifactStore, optFns ...func(o *Options)) *Adapter {
	opts := Options{
		ProdID: "-//MeetingMesh//Scheduler//EN",
		Now:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Adapter{store: store, opts: opts}
}

// Kind implements adapter.Adapter.
func (a *Adapter) Kind() core.ActionKind { return core.ActionScheduleMeeting }

// Execute renders the invite and saves it as an artifact scoped to the
// request id. The payload ref is the event UID; the artifact id travels in
// the detail map so callers can retrieve the raw ICS bytes.
func (a *Adapter) Execute(ctx context.Context, req core.ActionRequest) (core.Payload, error) {
	spec := req.Meeting
	if spec == nil {
		return core.Payload{}, adapter.NewPermanentError(adapterName, "request carries no meeting fields", nil)
	}
	if err := ctx.Err(); err != nil {
		return core.Payload{}, err
	}

	duration := spec.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}

	uid := fmt.Sprintf("%s@meetingmesh", req.ID)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId(a.opts.ProdID)

	event := cal.AddEvent(uid)
	event.SetDtStampTime(a.opts.Now().UTC())
	event.SetStartAt(spec.Start.UTC())
	event.SetEndAt(spec.Start.Add(duration).UTC())
	event.SetSummary(spec.Subject)
	if spec.Notes != "" {
		event.SetDescription(spec.Notes)
	}
	if spec.Location != "" {
		event.SetLocation(spec.Location)
	}
	if a.opts.Organizer != "" {
		event.SetOrganizer("mailto:" + a.opts.Organizer)
	}
	for _, attendee := range spec.Attendees {
		event.AddAttendee(attendee, ics.ParticipationStatusNeedsAction)
	}

	artifactID := fmt.Sprintf("%s.ics", req.ID)
	if err := a.store.Save(req.ID, artifactID, []byte(cal.Serialize())); err != nil {
		return core.Payload{}, adapter.NewError(adapterName, "invite could not be stored", err)
	}

	return core.Payload{
		Ref: uid,
		Detail: map[string]string{
			"artifact_id": artifactID,
			"start":       spec.Start.UTC().Format(time.RFC3339),
		},
	}, nil
}

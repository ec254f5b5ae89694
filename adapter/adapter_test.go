package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meetingmesh/core"
)

type stubAdapter struct {
	kind core.ActionKind
}

func (s *stubAdapter) Kind() core.ActionKind { return s.kind }

func (s *stubAdapter) Execute(_ context.Context, _ core.ActionRequest) (core.Payload, error) {
	return core.Payload{Ref: string(s.kind)}, nil
}

func TestRegistry_Lookup(t *testing.T) {
	ticket := &stubAdapter{kind: core.ActionCreateTicket}
	meeting := &stubAdapter{kind: core.ActionScheduleMeeting}

	r := NewRegistry(ticket, meeting)

	got, ok := r.Lookup(core.ActionCreateTicket)
	require.True(t, ok)
	assert.Same(t, ticket, got)

	_, ok = r.Lookup(core.ActionSendNotification)
	assert.False(t, ok)

	assert.Len(t, r.Kinds(), 2)
}

func TestRegistry_LaterAdapterReplaces(t *testing.T) {
	first := &stubAdapter{kind: core.ActionCreateTicket}
	second := &stubAdapter{kind: core.ActionCreateTicket}

	r := NewRegistry(first, second)
	got, ok := r.Lookup(core.ActionCreateTicket)
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestError_Classification(t *testing.T) {
	cause := errors.New("connection refused")

	retryable := NewError("jira", "ticketing service unreachable", cause)
	assert.False(t, IsPermanent(retryable))
	assert.Equal(t, "ticketing service unreachable", Reason(retryable))
	assert.ErrorIs(t, retryable, cause)

	permanent := NewPermanentError("jira", "project key rejected", nil)
	assert.True(t, IsPermanent(permanent))
	assert.Contains(t, permanent.Error(), "jira")

	// Wrapped adapter errors keep their classification.
	wrapped := fmt.Errorf("execute: %w", permanent)
	assert.True(t, IsPermanent(wrapped))
	assert.Equal(t, "project key rejected", Reason(wrapped))

	// Unclassified errors default to retryable with plain text reason.
	plain := errors.New("boom")
	assert.False(t, IsPermanent(plain))
	assert.Equal(t, "boom", Reason(plain))
}

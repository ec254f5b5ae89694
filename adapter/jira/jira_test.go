package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meetingmesh/adapter"
	"github.com/hupe1980/meetingmesh/core"
)

func ticketRequest(title string) core.ActionRequest {
	return core.ActionRequest{
		ID:     core.NewID(),
		Kind:   core.ActionCreateTicket,
		Ticket: &core.TicketSpec{Title: title, Description: "Implement the signup endpoint", Assignee: "david"},
	}
}

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := New(func(o *Options) {
		o.BaseURL = srv.URL
		o.Project = "DEV"
		o.HTTPClient = srv.Client()
	})
	require.NoError(t, err)
	return a
}

func TestAdapter_Execute_CreatesIssue(t *testing.T) {
	var gotBody map[string]any

	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/2/issue", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"10042","key":"DEV-101","self":"http://jira.local/rest/api/2/issue/10042"}`))
	})

	payload, err := a.Execute(context.Background(), ticketRequest("Implement signup API"))
	require.NoError(t, err)

	assert.Equal(t, "DEV-101", payload.Ref)
	assert.Equal(t, "10042", payload.Detail["id"])
	assert.Equal(t, "http://jira.local/rest/api/2/issue/10042", payload.Detail["url"])

	fields, ok := gotBody["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Implement signup API", fields["summary"])
	assert.Contains(t, fields["description"], "Automation Bot")
	project, _ := fields["project"].(map[string]any)
	assert.Equal(t, "DEV", project["key"])
}

func TestAdapter_Execute_RejectedRequestIsPermanent(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessages":["Field 'summary' is required"]}`))
	})

	_, err := a.Execute(context.Background(), ticketRequest("broken"))
	require.Error(t, err)
	assert.True(t, adapter.IsPermanent(err))
}

func TestAdapter_Execute_ServerErrorIsRetryable(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := a.Execute(context.Background(), ticketRequest("flaky"))
	require.Error(t, err)
	assert.False(t, adapter.IsPermanent(err))
	assert.Equal(t, "ticketing service unreachable", adapter.Reason(err))
}

func TestAdapter_Execute_MissingSpec(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("collaborator must not be called")
	})

	_, err := a.Execute(context.Background(), core.ActionRequest{ID: core.NewID(), Kind: core.ActionCreateTicket})
	require.Error(t, err)
	assert.True(t, adapter.IsPermanent(err))
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}

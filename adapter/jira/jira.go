// Package jira implements the ticketing collaborator adapter on top of the
// Jira REST API.
package jira

import (
	"context"
	"fmt"
	"net/http"

	jira "github.com/andygrunwald/go-jira"

	"github.com/hupe1980/meetingmesh/adapter"
	"github.com/hupe1980/meetingmesh/core"
)

const adapterName = "jira"

// Options configures the Jira adapter.
type Options struct {
	// BaseURL is the Jira instance, e.g. "https://company.atlassian.net".
	BaseURL string
	// Username / APIToken authenticate via basic auth.
	Username string
	APIToken string
	// Project is the key new issues are created under.
	Project string
	// IssueType defaults to "Task".
	IssueType string
	// Reporter is the service identity recorded on created issues.
	Reporter string
	// HTTPClient overrides the authenticated transport (tests).
	HTTPClient *http.Client
}

// Adapter creates Jira issues for ticket action requests.
type Adapter struct {
	client *jira.Client
	opts   Options
}

// New constructs the Jira adapter. The returned adapter is safe for
// concurrent use.
func New(optFns ...func(o *Options)) (*Adapter, error) {
	opts := Options{
		IssueType: "Task",
		Reporter:  "Automation Bot",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.BaseURL == "" {
		return nil, fmt.Errorf("jira base url is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		tp := jira.BasicAuthTransport{Username: opts.Username, Password: opts.APIToken}
		httpClient = tp.Client()
	}

	client, err := jira.NewClient(httpClient, opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("create jira client: %w", err)
	}

	return &Adapter{client: client, opts: opts}, nil
}

// Kind implements adapter.Adapter.
func (a *Adapter) Kind() core.ActionKind { return core.ActionCreateTicket }

// Execute creates one issue from the request's ticket spec. The payload ref
// is the issue key (e.g. "DEV-123"); the issue URL travels in the detail map.
func (a *Adapter) Execute(ctx context.Context, req core.ActionRequest) (core.Payload, error) {
	spec := req.Ticket
	if spec == nil {
		return core.Payload{}, adapter.NewPermanentError(adapterName, "request carries no ticket fields", nil)
	}

	fields := &jira.IssueFields{
		Project:     jira.Project{Key: a.opts.Project},
		Type:        jira.IssueType{Name: a.opts.IssueType},
		Summary:     spec.Title,
		Description: fmt.Sprintf("%s\n\nCreated by %s from a meeting transcript.", spec.Description, a.opts.Reporter),
	}
	if spec.Assignee != "" {
		fields.Assignee = &jira.User{Name: spec.Assignee}
	}

	created, resp, err := a.client.Issue.CreateWithContext(ctx, &jira.Issue{Fields: fields})
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return core.Payload{}, adapter.NewPermanentError(adapterName,
				fmt.Sprintf("ticketing service rejected the request (status %d)", resp.StatusCode), err)
		}
		return core.Payload{}, adapter.NewError(adapterName, "ticketing service unreachable", err)
	}

	return core.Payload{
		Ref: created.Key,
		Detail: map[string]string{
			"id":  created.ID,
			"url": created.Self,
		},
	}, nil
}

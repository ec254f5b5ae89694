// Package sns implements the notification collaborator adapter publishing to
// an AWS SNS topic. Subscribers (email, SMS, queues) are configured on the
// topic itself; the adapter only performs the dispatch.
package sns

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"

	"github.com/hupe1980/meetingmesh/adapter"
	"github.com/hupe1980/meetingmesh/core"
)

const adapterName = "sns"

// Publisher is the subset of the SNS client the adapter depends on.
type Publisher interface {
	Publish(ctx context.Context, params *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

// Options configures the SNS adapter.
type Options struct {
	// TopicARN is the topic notifications are published to.
	TopicARN string
	Region   string
	// Client overrides the SNS client (tests).
	Client Publisher
}

// Adapter publishes notification action requests to one SNS topic.
type Adapter struct {
	client Publisher
	opts   Options
}

// New constructs the SNS adapter, resolving AWS configuration from the
// environment unless a client is supplied.
func New(ctx context.Context, optFns ...func(o *Options)) (*Adapter, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.TopicARN == "" {
		return nil, fmt.Errorf("sns topic arn is required")
	}

	client := opts.Client
	if client == nil {
		var cfgOpts []func(*config.LoadOptions) error
		if opts.Region != "" {
			cfgOpts = append(cfgOpts, config.WithRegion(opts.Region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client = awssns.NewFromConfig(cfg)
	}

	return &Adapter{client: client, opts: opts}, nil
}

// Kind implements adapter.Adapter.
func (a *Adapter) Kind() core.ActionKind { return core.ActionSendNotification }

// Execute publishes the notification. The payload ref is the SNS message id.
// Requested recipients are appended to the body; actual fan-out follows
// the topic's subscriptions.
func (a *Adapter) Execute(ctx context.Context, req core.ActionRequest) (core.Payload, error) {
	spec := req.Notification
	if spec == nil {
		return core.Payload{}, adapter.NewPermanentError(adapterName, "request carries no notification fields", nil)
	}

	message := spec.Message
	if len(spec.Recipients) > 0 {
		message = fmt.Sprintf("%s\n\nIntended recipients: %s", message, strings.Join(spec.Recipients, ", "))
	}

	out, err := a.client.Publish(ctx, &awssns.PublishInput{
		TopicArn: aws.String(a.opts.TopicARN),
		Subject:  aws.String(spec.Subject),
		Message:  aws.String(message),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && isPermanentCode(apiErr.ErrorCode()) {
			return core.Payload{}, adapter.NewPermanentError(adapterName,
				fmt.Sprintf("notification rejected (%s)", apiErr.ErrorCode()), err)
		}
		return core.Payload{}, adapter.NewError(adapterName, "notification service unreachable", err)
	}

	return core.Payload{
		Ref: aws.ToString(out.MessageId),
		Detail: map[string]string{
			"topic": a.opts.TopicARN,
		},
	}, nil
}

// isPermanentCode classifies SNS API error codes where retrying the same
// request cannot succeed.
func isPermanentCode(code string) bool {
	switch code {
	case "InvalidParameter", "InvalidParameterValue", "NotFound", "AuthorizationError":
		return true
	}
	return false
}

package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/meetingmesh/adapter"
	"github.com/hupe1980/meetingmesh/core"
)

type fakePublisher struct {
	input *awssns.PublishInput
	out   *awssns.PublishOutput
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, params *awssns.PublishInput, _ ...func(*awssns.Options)) (*awssns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func notificationRequest() core.ActionRequest {
	return core.ActionRequest{
		ID:   core.NewID(),
		Kind: core.ActionSendNotification,
		Notification: &core.NotificationSpec{
			Channel:    "email",
			Recipients: []string{"team@example.com"},
			Subject:    "Sprint Tasks",
			Message:    "US-102 assigned to David, US-103 to Emily.",
		},
	}
}

func newTestAdapter(t *testing.T, pub *fakePublisher) *Adapter {
	t.Helper()
	a, err := New(context.Background(), func(o *Options) {
		o.TopicARN = "arn:aws:sns:us-west-2:000000000000:test"
		o.Client = pub
	})
	require.NoError(t, err)
	return a
}

func TestAdapter_Execute_Publishes(t *testing.T) {
	pub := &fakePublisher{out: &awssns.PublishOutput{MessageId: aws.String("msg-123")}}
	a := newTestAdapter(t, pub)

	payload, err := a.Execute(context.Background(), notificationRequest())
	require.NoError(t, err)

	assert.Equal(t, "msg-123", payload.Ref)
	assert.Equal(t, "arn:aws:sns:us-west-2:000000000000:test", payload.Detail["topic"])

	require.NotNil(t, pub.input)
	assert.Equal(t, "Sprint Tasks", aws.ToString(pub.input.Subject))
	assert.Contains(t, aws.ToString(pub.input.Message), "US-102 assigned to David")
	assert.Contains(t, aws.ToString(pub.input.Message), "team@example.com")
}

type apiError struct{ code string }

func (e *apiError) Error() string             { return e.code }
func (e *apiError) ErrorCode() string         { return e.code }
func (e *apiError) ErrorMessage() string      { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestAdapter_Execute_InvalidParameterIsPermanent(t *testing.T) {
	pub := &fakePublisher{err: &apiError{code: "InvalidParameter"}}
	a := newTestAdapter(t, pub)

	_, err := a.Execute(context.Background(), notificationRequest())
	require.Error(t, err)
	assert.True(t, adapter.IsPermanent(err))
}

func TestAdapter_Execute_TransportFailureIsRetryable(t *testing.T) {
	pub := &fakePublisher{err: errors.New("dial tcp: connection refused")}
	a := newTestAdapter(t, pub)

	_, err := a.Execute(context.Background(), notificationRequest())
	require.Error(t, err)
	assert.False(t, adapter.IsPermanent(err))
	assert.Equal(t, "notification service unreachable", adapter.Reason(err))
}

func TestAdapter_Execute_MissingSpec(t *testing.T) {
	a := newTestAdapter(t, &fakePublisher{})
	_, err := a.Execute(context.Background(), core.ActionRequest{ID: core.NewID(), Kind: core.ActionSendNotification})
	require.Error(t, err)
	assert.True(t, adapter.IsPermanent(err))
}

func TestNew_RequiresTopicARN(t *testing.T) {
	_, err := New(context.Background())
	assert.Error(t, err)
}

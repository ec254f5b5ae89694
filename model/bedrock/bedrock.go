// Package bedrock provides an implementation of model.Model using the AWS
// Bedrock Converse API, matching the hosted runtime this service is deployed
// alongside. Credentials and region resolution follow the standard AWS SDK
// default chain.
package bedrock

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/hupe1980/meetingmesh/model"
)

// Options configures the Bedrock model adapter.
type Options struct {
	// ModelID is the Bedrock model identifier, e.g. "us.amazon.nova-pro-v1:0".
	ModelID     string
	Region      string
	Temperature float32
	MaxTokens   int32
}

// Model wraps the Bedrock Converse API behind the generic model.Model interface.
type Model struct {
	client *bedrockruntime.Client
	opts   Options
}

// NewModel creates a new Bedrock model resolving AWS configuration from the
// environment (credentials, region). Region from Options takes precedence.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		ModelID:     "us.amazon.nova-pro-v1:0",
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var cfgOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(opts.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Model{client: bedrockruntime.NewFromConfig(cfg), opts: opts}, nil
}

// NewModelFromClient creates a new Bedrock model from an existing client.
func NewModelFromClient(client *bedrockruntime.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		ModelID:     "us.amazon.nova-pro-v1:0",
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Complete implements model.Model using a single Converse round trip.
func (m *Model) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(m.opts.ModelID),
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.Input}},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(m.opts.MaxTokens),
			Temperature: aws.Float32(m.opts.Temperature),
		},
	}
	if req.Instructions != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.Instructions},
		}
	}

	resp, err := m.client.Converse(ctx, input)
	if err != nil {
		return model.Response{}, fmt.Errorf("bedrock converse error: %w", err)
	}

	msg, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return model.Response{}, fmt.Errorf("bedrock converse returned unexpected output type %T", resp.Output)
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}

	out := model.Response{Text: sb.String()}
	if resp.Usage != nil {
		out.Usage = &model.TokenUsage{
			PromptTokens:     int(aws.ToInt32(resp.Usage.InputTokens)),
			CompletionTokens: int(aws.ToInt32(resp.Usage.OutputTokens)),
			TotalTokens:      int(aws.ToInt32(resp.Usage.TotalTokens)),
		}
	}
	return out, nil
}

// Info returns metadata describing this Bedrock model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     m.opts.ModelID,
		Provider: "bedrock",
	}
}

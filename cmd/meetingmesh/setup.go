package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/meetingmesh"
	"github.com/hupe1980/meetingmesh/adapter"
	"github.com/hupe1980/meetingmesh/adapter/calendar"
	"github.com/hupe1980/meetingmesh/adapter/jira"
	"github.com/hupe1980/meetingmesh/adapter/sns"
	"github.com/hupe1980/meetingmesh/artifact"
	"github.com/hupe1980/meetingmesh/artifact/s3"
	"github.com/hupe1980/meetingmesh/config"
	"github.com/hupe1980/meetingmesh/coordinator"
	"github.com/hupe1980/meetingmesh/core"
	"github.com/hupe1980/meetingmesh/interpreter"
	"github.com/hupe1980/meetingmesh/logging"
	"github.com/hupe1980/meetingmesh/model"
	"github.com/hupe1980/meetingmesh/model/anthropic"
	"github.com/hupe1980/meetingmesh/model/bedrock"
	"github.com/hupe1980/meetingmesh/model/openai"
	"github.com/hupe1980/meetingmesh/synthesizer"
)

// newLogger builds the process-wide structured logger.
func newLogger() logging.Logger {
	return logging.NewSlogAdapter(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
}

// buildOrchestrator wires the configured model, adapters and stores into one
// Orchestrator.
func buildOrchestrator(ctx context.Context, cfg config.Config, logger logging.Logger) (*meetingmesh.Orchestrator, error) {
	m, err := buildModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildArtifactStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	adapters, err := buildAdapters(ctx, cfg, store)
	if err != nil {
		return nil, err
	}

	return meetingmesh.New(
		interpreter.New(m, func(o *interpreter.Options) { o.Logger = logger }),
		coordinator.New(adapter.NewRegistry(adapters...), func(o *coordinator.Options) {
			o.MaxInFlight = cfg.MaxInFlight
			o.ActionTimeout = cfg.ActionTimeout.Std()
			o.Logger = logger
		}),
		synthesizer.New(func(o *synthesizer.Options) {
			o.Phraser = m
			o.Logger = logger
		}),
		func(o *meetingmesh.Options) {
			o.Deadline = cfg.Deadline.Std()
			o.Logger = logger
		},
	)
}

func buildModel(ctx context.Context, cfg config.Config) (model.Model, error) {
	switch strings.ToLower(cfg.Model.Provider) {
	case "bedrock":
		return bedrock.NewModel(ctx, func(o *bedrock.Options) {
			o.ModelID = cfg.Model.ID
			o.Region = cfg.Region
		})
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model.ID != "" {
				o.Model = anthropicsdk.Model(cfg.Model.ID)
			}
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model.ID != "" {
				o.Model = cfg.Model.ID
			}
		}), nil
	case "mock":
		return model.NewMockModel("mock", "mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
}

func buildArtifactStore(ctx context.Context, cfg config.Config) (core.ArtifactStore, error) {
	if !cfg.S3.Enabled() {
		return artifact.NewInMemoryStore(), nil
	}
	return s3.New(ctx, func(o *s3.Options) {
		o.Bucket = cfg.S3.Bucket
		o.Prefix = cfg.S3.Prefix
		o.Region = cfg.Region
	})
}

// buildAdapters registers one adapter per configured collaborator. The
// calendar adapter has no external dependency beyond the artifact store and
// is always available.
func buildAdapters(ctx context.Context, cfg config.Config, store core.ArtifactStore) ([]adapter.Adapter, error) {
	adapters := []adapter.Adapter{calendar.New(store)}

	if cfg.Jira.Enabled() {
		ticketing, err := jira.New(func(o *jira.Options) {
			o.BaseURL = cfg.Jira.BaseURL
			o.Username = cfg.Jira.Username
			o.APIToken = cfg.Jira.APIToken
			o.Project = cfg.Jira.Project
		})
		if err != nil {
			return nil, fmt.Errorf("configure jira adapter: %w", err)
		}
		adapters = append(adapters, ticketing)
	}

	if cfg.SNS.Enabled() {
		notifying, err := sns.New(ctx, func(o *sns.Options) {
			o.TopicARN = cfg.SNS.TopicARN
			o.Region = cfg.Region
		})
		if err != nil {
			return nil, fmt.Errorf("configure sns adapter: %w", err)
		}
		adapters = append(adapters, notifying)
	}

	return adapters, nil
}

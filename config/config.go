// Package config resolves the externally supplied runtime configuration.
// Resolution order: built-in defaults, then an optional YAML file, then
// environment variables. Core packages never read the environment; they
// receive resolved values from here.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRegion matches the region the reference deployment runs in.
	DefaultRegion = "us-west-2"
	// DefaultAddr is the serving address of the invocation endpoint.
	DefaultAddr = ":8080"
	// DefaultModelID is the Bedrock model used for interpretation.
	DefaultModelID = "us.amazon.nova-pro-v1:0"

	defaultProvider      = "bedrock"
	defaultActionTimeout = 30 * time.Second
	defaultDeadline      = 2 * time.Minute
	defaultMaxInFlight   = 4
)

// Duration wraps time.Duration so YAML values like "30s" parse directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// JiraConfig configures the ticketing collaborator. The adapter is only
// registered when BaseURL is set.
type JiraConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	APIToken string `yaml:"api_token"`
	Project  string `yaml:"project"`
}

// Enabled reports whether the ticketing collaborator is configured.
func (c JiraConfig) Enabled() bool { return c.BaseURL != "" }

// SNSConfig configures the notification collaborator.
type SNSConfig struct {
	TopicARN string `yaml:"topic_arn"`
}

// Enabled reports whether the notification collaborator is configured.
func (c SNSConfig) Enabled() bool { return c.TopicARN != "" }

// S3Config configures the durable artifact store. When Bucket is empty the
// in-memory store is used instead.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// Enabled reports whether S3 artifact storage is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// ModelConfig selects the language model capability.
type ModelConfig struct {
	// Provider is one of "bedrock", "anthropic", "openai" or "mock".
	Provider string `yaml:"provider"`
	ID       string `yaml:"id"`
}

// ServerConfig configures the invocation endpoint.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Region string       `yaml:"region"`
	Server ServerConfig `yaml:"server"`
	Jira   JiraConfig   `yaml:"jira"`
	SNS    SNSConfig    `yaml:"sns"`
	S3     S3Config     `yaml:"s3"`
	Model  ModelConfig  `yaml:"model"`

	ActionTimeout Duration `yaml:"action_timeout"`
	MaxInFlight   int      `yaml:"max_in_flight"`
	Deadline      Duration `yaml:"deadline"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Region:        DefaultRegion,
		Server:        ServerConfig{Addr: DefaultAddr},
		Model:         ModelConfig{Provider: defaultProvider, ID: DefaultModelID},
		ActionTimeout: Duration(defaultActionTimeout),
		MaxInFlight:   defaultMaxInFlight,
		Deadline:      Duration(defaultDeadline),
	}
}

// Load resolves the configuration. path may be empty, in which case only
// defaults and environment variables apply; a missing file at a non-empty
// path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: %s does not exist", path)
			}
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration. AWS
// credentials are not handled here; the SDK resolves its own chain.
func (c *Config) applyEnv() {
	setString(&c.Region, "AWS_REGION")
	setString(&c.Server.Addr, "MEETINGMESH_ADDR")
	setString(&c.Jira.BaseURL, "JIRA_BASE_URL")
	setString(&c.Jira.Username, "JIRA_USERNAME")
	setString(&c.Jira.APIToken, "JIRA_API_TOKEN")
	setString(&c.Jira.Project, "JIRA_PROJECT")
	setString(&c.SNS.TopicARN, "SNS_TOPIC_ARN")
	setString(&c.S3.Bucket, "S3_BUCKET")
	setString(&c.S3.Prefix, "S3_PREFIX")
	setString(&c.Model.Provider, "MODEL_PROVIDER")
	setString(&c.Model.ID, "MODEL_ID")
	setDuration(&c.ActionTimeout, "MEETINGMESH_ACTION_TIMEOUT")
	setDuration(&c.Deadline, "MEETINGMESH_DEADLINE")
	setInt(&c.MaxInFlight, "MEETINGMESH_MAX_IN_FLIGHT")
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Model.Provider == "" {
		c.Model.Provider = defaultProvider
	}
	if c.Model.ID == "" {
		c.Model.ID = DefaultModelID
	}
	if c.ActionTimeout <= 0 {
		c.ActionTimeout = Duration(defaultActionTimeout)
	}
	if c.Deadline <= 0 {
		c.Deadline = Duration(defaultDeadline)
	}
	if c.MaxInFlight < 1 {
		c.MaxInFlight = defaultMaxInFlight
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Model.Provider) {
	case "bedrock", "anthropic", "openai", "mock":
	default:
		return fmt.Errorf("config: unknown model provider %q", c.Model.Provider)
	}
	if c.Jira.Enabled() && c.Jira.Project == "" {
		return fmt.Errorf("config: jira.project is required when jira.base_url is set")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if parsed, err := time.ParseDuration(v); err == nil {
		*dst = Duration(parsed)
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if parsed, err := strconv.Atoi(v); err == nil {
		*dst = parsed
	}
}

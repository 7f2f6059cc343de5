// Package config provides configuration types, defaults and validation for signup.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// TenantPlaceholder is substituted with the tenant identifier in BaseURL.
const TenantPlaceholder = "{tenant}"

var (
	// ErrTenantRequired is returned when no tenant identifier is configured.
	ErrTenantRequired = errors.New("tenant is required")
	// ErrInvalidBaseURL is returned when BaseURL does not expand to an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base_url")
)

// Config holds all configuration options for signup.
type Config struct {
	Tenant   string        `mapstructure:"tenant"`
	BaseURL  string        `mapstructure:"base_url"` // may contain {tenant}
	Devtools bool          `mapstructure:"devtools"` // mounts the cache inspector overlay
	UI       UIConfig      `mapstructure:"ui"`
	Tracing  TracingConfig `mapstructure:"tracing"`
	Mock     MockConfig    `mapstructure:"mock"`
}

// UIConfig holds notification timings.
type UIConfig struct {
	CreateNotice time.Duration `mapstructure:"create_notice"` // how long the "submitted" notice stays up
	DeleteNotice time.Duration `mapstructure:"delete_notice"` // how long the delete error banner stays up
}

// TracingConfig holds OpenTelemetry settings for outgoing requests.
type TracingConfig struct {
	// Enabled controls whether spans are recorded at all.
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the backend: "none", "file", "stdout" or "otlp".
	Exporter string `mapstructure:"exporter"`

	// FilePath is the JSONL output for the "file" exporter.
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the gRPC collector for the "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the fraction of traces kept, 0.0 to 1.0.
	SampleRate float64 `mapstructure:"sample_rate"`

	ServiceName string `mapstructure:"service_name"`
}

// MockConfig configures the local mock resource server.
type MockConfig struct {
	Addr        string `mapstructure:"addr"`
	FailDeletes bool   `mapstructure:"fail_deletes"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Tenant:   "5e8c6579e61fbd00164aebec",
		BaseURL:  "https://" + TenantPlaceholder + ".mockapi.io",
		Devtools: false,
		UI: UIConfig{
			CreateNotice: 6 * time.Second,
			DeleteNotice: 3 * time.Second,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     ".signup/traces.jsonl",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
			ServiceName:  "signup",
		},
		Mock: MockConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// ExpandBaseURL substitutes tenant into the {tenant} placeholder of base.
func ExpandBaseURL(base, tenant string) string {
	return strings.ReplaceAll(base, TenantPlaceholder, tenant)
}

// Validate checks the configuration for errors.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Tenant) == "" {
		return ErrTenantRequired
	}

	expanded := ExpandBaseURL(cfg.BaseURL, cfg.Tenant)
	u, err := url.Parse(expanded)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https, got %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidBaseURL, expanded)
	}

	if cfg.UI.CreateNotice < 0 || cfg.UI.DeleteNotice < 0 {
		return errors.New("ui notice durations must not be negative")
	}

	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks tracing configuration. Disabled tracing is always valid.
func ValidateTracing(t TracingConfig) error {
	if !t.Enabled {
		return nil
	}
	switch t.Exporter {
	case "", "none", "stdout", "otlp":
	case "file":
		if t.FilePath == "" {
			return errors.New("tracing.file_path is required for the file exporter")
		}
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\" or \"otlp\", got %q", t.Exporter)
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", t.SampleRate)
	}
	return nil
}

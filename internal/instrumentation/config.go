package instrumentation

import (
	"fmt"
	"os"
	"time"

	"go-simpler.org/env"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" default:"onesignal-mcp"`
	ServiceVersion string

	// ServiceInstanceID defaults to the hostname when empty.
	ServiceInstanceID string `env:"OTEL_SERVICE_INSTANCE_ID"`

	K8sNamespace string `env:"K8S_NAMESPACE"`
	K8sPodName   string `env:"K8S_POD_NAME"`

	Enabled bool `env:"INSTRUMENTATION_ENABLED" default:"true"`

	// MetricsExporter is one of prometheus, otlp or stdout.
	MetricsExporter string `env:"METRICS_EXPORTER" default:"prometheus"`

	// TracingExporter is one of otlp, stdout or none.
	TracingExporter string `env:"TRACING_EXPORTER" default:"none"`

	// OTLPEndpoint is host:port without a scheme, e.g. localhost:4318.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// OTLPInsecure disables TLS for OTLP export. Development only.
	OTLPInsecure bool `env:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`

	TraceSamplingRate float64 `env:"OTEL_TRACES_SAMPLER_ARG" default:"0.1"`

	PrometheusEndpoint string `env:"PROMETHEUS_ENDPOINT" default:"/metrics"`

	// DetailedLabels adds the app key to tool metrics. The number of apps is
	// usually small, but it is operator controlled, so this is off by default.
	DetailedLabels bool `env:"METRICS_DETAILED_LABELS" default:"false"`

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	Enabled bool `env:"AUDIT_LOGGING_ENABLED" default:"true"`

	// IncludeAppIDs adds the resolved OneSignal app ID to audit records.
	// The app key is always logged.
	IncludeAppIDs bool `env:"AUDIT_LOGGING_INCLUDE_APP_IDS" default:"false"`
}

// DefaultConfig returns a Config populated from the environment. Values that
// fail to parse fall back to their defaults.
func DefaultConfig() Config {
	cfg := Config{ServiceVersion: "unknown"}
	if err := env.Load(&cfg, nil); err != nil {
		cfg = fallbackConfig()
	}
	if err := env.Load(&cfg.AuditLogging, nil); err != nil {
		cfg.AuditLogging = AuditLoggingConfig{Enabled: true}
	}

	if cfg.K8sNamespace == "" {
		cfg.K8sNamespace = os.Getenv("POD_NAMESPACE")
	}
	if cfg.K8sPodName == "" {
		cfg.K8sPodName = os.Getenv("HOSTNAME")
	}
	return cfg
}

func fallbackConfig() Config {
	return Config{
		ServiceName:        "onesignal-mcp",
		ServiceVersion:     "unknown",
		Enabled:            true,
		MetricsExporter:    ExporterPrometheus,
		TracingExporter:    ExporterNone,
		TraceSamplingRate:  0.1,
		PrometheusEndpoint: "/metrics",
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "", ExporterPrometheus, ExporterOTLP, ExporterStdout:
	default:
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "", ExporterOTLP, ExporterStdout, ExporterNone:
	default:
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.OTLPEndpoint == "" && (c.TracingExporter == ExporterOTLP || c.MetricsExporter == ExporterOTLP) {
		return fmt.Errorf("OTLP endpoint is required when using an OTLP exporter")
	}

	return nil
}

// Label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	DefaultMetricInterval = 10 * time.Second
)

// Registry operation names used in app_registry_mutations_total.
const (
	RegistryOpAdd    = "add"
	RegistryOpUpdate = "update"
	RegistryOpRemove = "remove"
	RegistryOpSwitch = "switch"
)

// StatusFor returns StatusError when err is non-nil.
func StatusFor(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

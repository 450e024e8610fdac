package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/impulse/internal/errors"
	"github.com/vango-dev/impulse/pkg/impulse"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "impulse.json"

	// YAMLFileName is the name of the YAML configuration file.
	YAMLFileName = "impulse.yaml"

	// EnvPrefix prefixes every environment variable read by ParseEnv.
	EnvPrefix = "IMPULSE_"

	// DefaultLogLevel is the default slog level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log handler.
	DefaultLogFormat = "text"

	// DefaultGuardMode is the default guard mode.
	DefaultGuardMode = "warn"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "impulse"

	// DefaultDevtoolsEnabled controls whether `impulse serve` starts the
	// devtools server.
	DefaultDevtoolsEnabled = true

	// DefaultDevtoolsAddr is the default listen address of the devtools server.
	DefaultDevtoolsAddr = "localhost:6060"

	// DefaultServiceName is the default OpenTelemetry service name.
	DefaultServiceName = "impulse"

	// DefaultEventBuffer is the default per-client event queue size.
	DefaultEventBuffer = 64
)

// candidates are the file names Load looks for, in order.
var candidates = []string{ConfigFileName, YAMLFileName, "impulse.yml"}

// Config represents the impulse.json / impulse.yaml configuration.
type Config struct {
	// Log configures the slog handler.
	Log LogConfig `json:"log" yaml:"log" envPrefix:"LOG_"`

	// Guards configures read-only context checks.
	Guards GuardsConfig `json:"guards" yaml:"guards" envPrefix:"GUARDS_"`

	// Metrics configures the Prometheus observer.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" envPrefix:"METRICS_"`

	// Devtools configures the debug server.
	Devtools DevtoolsConfig `json:"devtools" yaml:"devtools" envPrefix:"DEVTOOLS_"`

	// Tracing configures OTLP span export.
	Tracing TracingConfig `json:"tracing" yaml:"tracing" envPrefix:"TRACING_"`

	// Bench configures the synthetic workload of `impulse bench`.
	Bench BenchConfig `json:"bench" yaml:"bench" envPrefix:"BENCH_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" env:"LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty" env:"FORMAT"`
}

// GuardsConfig contains guard settings.
type GuardsConfig struct {
	// Mode is warn, panic or off.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" env:"MODE"`
}

// MetricsConfig contains Prometheus naming settings.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty" env:"NAMESPACE"`
	Subsystem string `json:"subsystem,omitempty" yaml:"subsystem,omitempty" env:"SUBSYSTEM"`
}

// DevtoolsConfig contains debug server settings.
type DevtoolsConfig struct {
	// Enabled starts the devtools server alongside `impulse serve`. Without
	// it the demo graph runs with metrics and tracing only.
	Enabled bool `json:"enabled" yaml:"enabled" env:"ENABLED"`

	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty" env:"ADDR"`

	// EventBuffer is the number of events queued per websocket client
	// before new ones are dropped.
	EventBuffer int `json:"eventBuffer,omitempty" yaml:"eventBuffer,omitempty" env:"EVENT_BUFFER"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Endpoint is the OTLP/HTTP endpoint URL. Empty disables export.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" env:"ENDPOINT"`

	// ServiceName is reported as service.name (default: "impulse").
	ServiceName string `json:"serviceName,omitempty" yaml:"serviceName,omitempty" env:"SERVICE_NAME"`
}

// BenchConfig describes the synthetic graph built by `impulse bench`.
type BenchConfig struct {
	// Cells is the number of impulses.
	Cells int `json:"cells,omitempty" yaml:"cells,omitempty" env:"CELLS"`

	// Emitters is the number of emitters.
	Emitters int `json:"emitters,omitempty" yaml:"emitters,omitempty" env:"EMITTERS"`

	// Fanout is the number of cells each emitter reads.
	Fanout int `json:"fanout,omitempty" yaml:"fanout,omitempty" env:"FANOUT"`

	// Batches is the number of batches to run.
	Batches int `json:"batches,omitempty" yaml:"batches,omitempty" env:"BATCHES"`

	// BatchSize is the number of writes per batch.
	BatchSize int `json:"batchSize,omitempty" yaml:"batchSize,omitempty" env:"BATCH_SIZE"`

	// Seed makes the write pattern reproducible.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty" env:"SEED"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Guards: GuardsConfig{
			Mode: DefaultGuardMode,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Devtools: DevtoolsConfig{
			Enabled:     DefaultDevtoolsEnabled,
			Addr:        DefaultDevtoolsAddr,
			EventBuffer: DefaultEventBuffer,
		},
		Tracing: TracingConfig{
			ServiceName: DefaultServiceName,
		},
		Bench: BenchConfig{
			Cells:     1000,
			Emitters:  200,
			Fanout:    8,
			Batches:   1000,
			BatchSize: 16,
			Seed:      1,
		},
	}
}

// Load reads configuration from dir. It looks for impulse.json, then
// impulse.yaml and impulse.yml. Without any of them it returns the defaults.
// IMPULSE_* environment variables override both.
func Load(dir string) (*Config, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	cfg := New()
	if err := cfg.overlayEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension. Unknown fields are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E201").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	cfg := New()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if err == io.EOF {
			err = nil
		}
	default:
		return nil, errors.New("E203").
			WithDetail("Unsupported extension " + ext).
			WithSuggestion("Rename the file to impulse.json or impulse.yaml")
	}
	if err != nil {
		return nil, errors.New("E202").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file for typos and unknown keys")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.overlayEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv loads IMPULSE_* environment variables into target. Fields whose
// variable is unset keep their current value.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) overlayEnv() error {
	if err := ParseEnv(c); err != nil {
		return errors.New("E208").Wrap(err)
	}
	return nil
}

// SaveTo writes the configuration to path, as YAML or JSON depending on the
// extension.
func (c *Config) SaveTo(path string) error {
	var buf bytes.Buffer
	format := "json"
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		format = "yaml"
	}
	if err := c.Encode(&buf, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.New("E201").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Encode writes the configuration to w as "json" or "yaml".
func (c *Config) Encode(w io.Writer, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New("E301").WithDetail("Unknown format " + format)
	}
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for fields a file left empty.
func (c *Config) applyDefaults() {
	d := New()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Guards.Mode == "" {
		c.Guards.Mode = d.Guards.Mode
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = d.Devtools.Addr
	}
	if c.Devtools.EventBuffer == 0 {
		c.Devtools.EventBuffer = d.Devtools.EventBuffer
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = d.Tracing.ServiceName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New("E204").
			WithDetail(fmt.Sprintf("log.level %q must be one of debug, info, warn or error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E205").
			WithDetail(fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if _, ok := guardModes[c.Guards.Mode]; !ok {
		return errors.New("E206").
			WithDetail(fmt.Sprintf("guards.mode %q must be warn, panic or off", c.Guards.Mode))
	}
	b := c.Bench
	if b.Cells <= 0 || b.Emitters <= 0 || b.Fanout <= 0 || b.Batches <= 0 || b.BatchSize <= 0 || b.Fanout > b.Cells {
		return errors.New("E207").
			WithSuggestion("Use positive bench values and keep fanout at or below cells")
	}
	if c.Devtools.EventBuffer < 0 {
		return errors.New("E209").
			WithDetail(fmt.Sprintf("devtools.eventBuffer is %d", c.Devtools.EventBuffer))
	}
	return nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var guardModes = map[string]impulse.GuardMode{
	"warn":  impulse.GuardWarn,
	"panic": impulse.GuardPanic,
	"off":   impulse.GuardOff,
}

// Level returns the configured slog level, Info when unknown.
func (c *Config) Level() slog.Level {
	if l, ok := levels[strings.ToLower(c.Log.Level)]; ok {
		return l
	}
	return slog.LevelInfo
}

// Logger builds a slog.Logger writing to w with the configured handler and
// level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// GuardMode returns the configured guard mode, GuardWarn when unknown.
func (c *Config) GuardMode() impulse.GuardMode {
	if m, ok := guardModes[c.Guards.Mode]; ok {
		return m
	}
	return impulse.GuardWarn
}

// RuntimeOptions returns the runtime options derived from the configuration.
func (c *Config) RuntimeOptions(w io.Writer) []impulse.RuntimeOption {
	return []impulse.RuntimeOption{
		impulse.WithLogger(c.Logger(w)),
		impulse.WithGuardMode(c.GuardMode()),
	}
}

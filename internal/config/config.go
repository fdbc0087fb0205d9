// Package config loads client settings from defaults, an optional YAML file
// and SOAPCORE_ environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SOAPCORE_"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds everything needed to build a client and its supporting stores.
type Config struct {
	Endpoint      string        `yaml:"endpoint" env:"ENDPOINT"`
	Token         string        `yaml:"token" env:"TOKEN"`
	// Timeout bounds each request when positive. Zero leaves it to the caller's context.
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RatePerSecond float64       `yaml:"ratePerSecond" env:"RATE_PER_SECOND"`
	Burst         int           `yaml:"burst" env:"BURST"`

	Log         LogConfig         `yaml:"log" envPrefix:"LOG_"`
	Persistence PersistenceConfig `yaml:"persistence" envPrefix:"PERSISTENCE_"`
	Blob        BlobConfig        `yaml:"blob" envPrefix:"BLOB_"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" envPrefix:"OTEL_"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// PersistenceConfig selects where the entity store is kept between runs.
// Driver is memory, sqlite or postgres.
type PersistenceConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	Path   string `yaml:"path" env:"PATH"`
	DSN    string `yaml:"dsn" env:"DSN"`
}

// BlobConfig selects the object store used for snapshot archives. Driver is
// memory, fs or s3.
type BlobConfig struct {
	Driver    string `yaml:"driver" env:"DRIVER"`
	Root      string `yaml:"root" env:"ROOT"`
	Bucket    string `yaml:"bucket" env:"BUCKET"`
	Region    string `yaml:"region" env:"REGION"`
	Endpoint  string `yaml:"endpoint" env:"ENDPOINT"`
	PathStyle bool   `yaml:"pathStyle" env:"PATH_STYLE"`
}

// TelemetryConfig enables OTLP/HTTP trace export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" env:"ENABLED"`
	Endpoint    string `yaml:"endpoint" env:"ENDPOINT"`
	ServiceName string `yaml:"serviceName" env:"SERVICE_NAME"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Endpoint: "http://localhost:4000/graphql",
		Burst:    1,
		Log:      LogConfig{Level: "info", Format: "text"},
		Persistence: PersistenceConfig{
			Driver: "memory",
		},
		Blob: BlobConfig{
			Driver: "fs",
			Root:   "soapcore-snapshots",
			Region: "us-east-1",
		},
		Telemetry: TelemetryConfig{ServiceName: "soapcore"},
	}
}

// Load applies the YAML file at path (if non-empty) and then environment
// overrides on top of Default, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	var problems []string
	if u, err := url.Parse(c.Endpoint); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		problems = append(problems, fmt.Sprintf("endpoint %q is not an http(s) URL", c.Endpoint))
	}
	if c.Timeout < 0 {
		problems = append(problems, "timeout must not be negative")
	}
	if c.RatePerSecond < 0 {
		problems = append(problems, "ratePerSecond must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("unknown log format %q", c.Log.Format))
	}
	switch c.Persistence.Driver {
	case "memory":
	case "sqlite":
		if c.Persistence.Path == "" {
			problems = append(problems, "sqlite persistence needs a path")
		}
	case "postgres":
		if c.Persistence.DSN == "" {
			problems = append(problems, "postgres persistence needs a dsn")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown persistence driver %q", c.Persistence.Driver))
	}
	switch c.Blob.Driver {
	case "memory":
	case "fs":
		if c.Blob.Root == "" {
			problems = append(problems, "fs blob store needs a root")
		}
	case "s3":
		if c.Blob.Bucket == "" {
			problems = append(problems, "s3 blob store needs a bucket")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown blob driver %q", c.Blob.Driver))
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		problems = append(problems, "telemetry is enabled without an endpoint")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/langreg/pkg/registration"
)

// Config holds all application configuration
type Config struct {
	Processor     ProcessorConfig     `yaml:"processor"`
	Descriptors   DescriptorsConfig   `yaml:"descriptors"`
	Output        OutputConfig        `yaml:"output"`
	Claims        ClaimsConfig        `yaml:"claims"`
	Watch         WatchConfig         `yaml:"watch"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ProcessorConfig configures validation
type ProcessorConfig struct {
	// BaseType is the capability type registered classes must extend
	BaseType string `yaml:"base_type"`
}

// DescriptorsConfig configures descriptor parsing
type DescriptorsConfig struct {
	MaxWorkers int           `yaml:"max_workers"`
	CacheSize  int           `yaml:"cache_size"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// OutputConfig selects the artifact sink
type OutputConfig struct {
	// Sink is filesystem, s3, memory or stdout
	Sink string `yaml:"sink"`
	Dir  string `yaml:"dir"`

	S3Bucket       string `yaml:"s3_bucket"`
	S3Prefix       string `yaml:"s3_prefix"`
	S3Region       string `yaml:"s3_region"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3AccessKey    string `yaml:"s3_access_key"`
	S3SecretKey    string `yaml:"s3_secret_key"`
	S3UsePathStyle bool   `yaml:"s3_use_path_style"`
}

// ClaimsConfig selects where artifact claims are tracked
type ClaimsConfig struct {
	// Backend is memory or redis
	Backend       string        `yaml:"backend"`
	RunID         string        `yaml:"run_id"`
	RedisURL      string        `yaml:"redis_url"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce        time.Duration `yaml:"debounce"`
	MetricsAddr     string        `yaml:"metrics_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	OTelEnabled        bool    `yaml:"otel_enabled"`
	OTelEndpoint       string  `yaml:"otel_endpoint"`
	OTelServiceName    string  `yaml:"otel_service_name"`
	OTelServiceVersion string  `yaml:"otel_service_version"`
	OTelInsecure       bool    `yaml:"otel_insecure"`
	OTelSampleRatio    float64 `yaml:"otel_sample_ratio"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Processor: ProcessorConfig{
			BaseType: registration.DefaultBaseType,
		},
		Descriptors: DescriptorsConfig{
			MaxWorkers: 4,
			CacheSize:  256,
			CacheTTL:   10 * time.Minute,
		},
		Output: OutputConfig{
			Sink: "filesystem",
			Dir:  "build/classes",
		},
		Claims: ClaimsConfig{
			Backend: "memory",
			TTL:     24 * time.Hour,
		},
		Watch: WatchConfig{
			Debounce:        200 * time.Millisecond,
			ShutdownTimeout: 30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:           "info",
			LogFormat:          "text",
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "langreg",
			OTelServiceVersion: "dev",
			OTelInsecure:       true,
		},
	}
}

// Load reads the optional YAML file at path, applies LANGREG_* environment
// overrides and validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv overrides values from the environment
func (c *Config) applyEnv() {
	c.Processor.BaseType = getEnv("LANGREG_BASE_TYPE", c.Processor.BaseType)

	c.Descriptors.MaxWorkers = getEnvInt("LANGREG_MAX_WORKERS", c.Descriptors.MaxWorkers)
	c.Descriptors.CacheSize = getEnvInt("LANGREG_CACHE_SIZE", c.Descriptors.CacheSize)
	c.Descriptors.CacheTTL = getEnvDuration("LANGREG_CACHE_TTL", c.Descriptors.CacheTTL)

	c.Output.Sink = getEnv("LANGREG_SINK", c.Output.Sink)
	c.Output.Dir = getEnv("LANGREG_OUTPUT_DIR", c.Output.Dir)
	c.Output.S3Bucket = getEnv("LANGREG_S3_BUCKET", c.Output.S3Bucket)
	c.Output.S3Prefix = getEnv("LANGREG_S3_PREFIX", c.Output.S3Prefix)
	c.Output.S3Region = getEnv("LANGREG_S3_REGION", c.Output.S3Region)
	c.Output.S3Endpoint = getEnv("LANGREG_S3_ENDPOINT", c.Output.S3Endpoint)
	c.Output.S3AccessKey = getEnv("LANGREG_S3_ACCESS_KEY", c.Output.S3AccessKey)
	c.Output.S3SecretKey = getEnv("LANGREG_S3_SECRET_KEY", c.Output.S3SecretKey)
	c.Output.S3UsePathStyle = getEnvBool("LANGREG_S3_USE_PATH_STYLE", c.Output.S3UsePathStyle)

	c.Claims.Backend = getEnv("LANGREG_CLAIMS_BACKEND", c.Claims.Backend)
	c.Claims.RunID = getEnv("LANGREG_RUN_ID", c.Claims.RunID)
	c.Claims.RedisURL = getEnv("LANGREG_REDIS_URL", c.Claims.RedisURL)
	c.Claims.RedisPassword = getEnv("LANGREG_REDIS_PASSWORD", c.Claims.RedisPassword)
	c.Claims.RedisDB = getEnvInt("LANGREG_REDIS_DB", c.Claims.RedisDB)
	c.Claims.TTL = getEnvDuration("LANGREG_CLAIMS_TTL", c.Claims.TTL)

	c.Watch.Debounce = getEnvDuration("LANGREG_WATCH_DEBOUNCE", c.Watch.Debounce)
	c.Watch.MetricsAddr = getEnv("LANGREG_METRICS_ADDR", c.Watch.MetricsAddr)
	c.Watch.ShutdownTimeout = getEnvDuration("LANGREG_SHUTDOWN_TIMEOUT", c.Watch.ShutdownTimeout)

	c.Observability.LogLevel = getEnv("LANGREG_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.LogFormat = getEnv("LANGREG_LOG_FORMAT", c.Observability.LogFormat)
	c.Observability.OTelEnabled = getEnvBool("LANGREG_OTEL_ENABLED", c.Observability.OTelEnabled)
	c.Observability.OTelEndpoint = getEnv("LANGREG_OTEL_ENDPOINT", c.Observability.OTelEndpoint)
	c.Observability.OTelServiceName = getEnv("LANGREG_OTEL_SERVICE_NAME", c.Observability.OTelServiceName)
	c.Observability.OTelServiceVersion = getEnv("LANGREG_OTEL_SERVICE_VERSION", c.Observability.OTelServiceVersion)
	c.Observability.OTelInsecure = getEnvBool("LANGREG_OTEL_INSECURE", c.Observability.OTelInsecure)
	c.Observability.OTelSampleRatio = getEnvFloat("LANGREG_OTEL_SAMPLE_RATIO", c.Observability.OTelSampleRatio)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Processor.BaseType == "" {
		return fmt.Errorf("base type is required")
	}

	if c.Descriptors.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive")
	}

	switch strings.ToLower(c.Output.Sink) {
	case "filesystem":
		if c.Output.Dir == "" {
			return fmt.Errorf("output dir is required for the filesystem sink")
		}
	case "s3":
		if c.Output.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for the s3 sink")
		}
	case "memory", "stdout":
	default:
		return fmt.Errorf("invalid sink: %s (must be filesystem, s3, memory or stdout)", c.Output.Sink)
	}

	switch strings.ToLower(c.Claims.Backend) {
	case "memory":
	case "redis":
		if c.Claims.RedisURL == "" {
			return fmt.Errorf("redis URL is required for the redis claims backend")
		}
	default:
		return fmt.Errorf("invalid claims backend: %s (must be memory or redis)", c.Claims.Backend)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce cannot be negative")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

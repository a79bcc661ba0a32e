package kontra

import "time"

// Config consolidates the ambient settings an engine instance needs: nothing
// here describes rule behavior (that lives in Options, which is per-call), only
// infrastructure the engine is wired up with once at construction time.
type Config struct {
	Database DatabaseConfig `json:"database"`
	DuckDB   DuckDBConfig   `json:"duckdb"`
	Logging  LoggingConfig  `json:"logging"`
	Metrics  MetricsConfig  `json:"metrics"`
	Execution ExecutionConfig `json:"execution"`
}

// DatabaseConfig describes a Postgres connection Kontra owns (URI-constructed
// handles). User-supplied connections bypass this entirely.
type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Database        string        `json:"database"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"sslMode"`
	MaxConnections  int           `json:"maxConnections"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime"`
	Timeout         time.Duration `json:"timeout"`
}

// DuckDBConfig controls the local columnar engine used both for file-backed
// datasets and as a pushdown dialect.
type DuckDBConfig struct {
	Enabled        bool     `json:"enabled"`
	DBPath         string   `json:"dbPath"` // ":memory:" when empty
	MaxConnections int      `json:"maxConnections"`
	Extensions     []string `json:"extensions"`
	EnableHTTPFS   bool     `json:"enableHttpfs"`
	EnableParquet  bool     `json:"enableParquet"`
	EnableS3       bool     `json:"enableS3"`
	S3AccessKey    string   `json:"s3AccessKey"`
	S3SecretKey    string   `json:"s3SecretKey"`
	S3Region       string   `json:"s3Region"`
	S3Endpoint     string   `json:"s3Endpoint"`
}

// LoggingConfig controls structured logging (zap) verbosity.
type LoggingConfig struct {
	Level             string `json:"level"`
	Format            string `json:"format"` // "json" | "console"
	EnableQueryLogging bool  `json:"enableQueryLogging"`
	SanitizeParameters bool  `json:"sanitizeParameters"`
}

// MetricsConfig controls the telemetry emitter wired into every tier.
type MetricsConfig struct {
	Enabled   bool              `json:"enabled"`
	Namespace string            `json:"namespace"`
	Labels    map[string]string `json:"labels"`
}

// ExecutionConfig carries engine-construction-time defaults for stages of the
// pipeline that are expensive to reconfigure per call (e.g. the pushdown
// circuit breaker). Per-call overrides live in Options.
type ExecutionConfig struct {
	StatementTimeout        time.Duration `json:"statementTimeout"`
	CircuitBreakerThreshold int           `json:"circuitBreakerThreshold"`
	CircuitBreakerWindow    time.Duration `json:"circuitBreakerWindow"`
	CircuitBreakerOpenFor   time.Duration `json:"circuitBreakerOpenFor"`
	MaxInListSize           int           `json:"maxInListSize"` // allowed_values size cap before demotion, §4.4
}

// DefaultConfig returns a production-sane configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxConnections:  10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Timeout:         30 * time.Second,
		},
		DuckDB: DuckDBConfig{
			Enabled:       true,
			DBPath:        ":memory:",
			EnableParquet: true,
			EnableHTTPFS:  true,
		},
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SanitizeParameters: true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "kontra",
		},
		Execution: ExecutionConfig{
			StatementTimeout:        30 * time.Second,
			CircuitBreakerThreshold: 3,
			CircuitBreakerWindow:    1 * time.Minute,
			CircuitBreakerOpenFor:   30 * time.Second,
			MaxInListSize:           1000,
		},
	}
}

// Validate checks the configuration for obviously invalid values.
func (c *Config) Validate() error {
	if c.Database.MaxConnections < 0 {
		return &ConfigError{Field: "database.maxConnections", Message: "must be >= 0"}
	}
	if c.Execution.CircuitBreakerThreshold <= 0 {
		return &ConfigError{Field: "execution.circuitBreakerThreshold", Message: "must be > 0"}
	}
	if c.Execution.MaxInListSize <= 0 {
		return &ConfigError{Field: "execution.maxInListSize", Message: "must be > 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}

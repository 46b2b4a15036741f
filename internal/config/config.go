package config

import (
	"fmt"
	"math"

	"github.com/turtacn/ueba/pkg/constants"
)

// Config holds the application's configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Models   ModelsConfig   `mapstructure:"models"`
	Ensemble EnsembleConfig `mapstructure:"ensemble"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Pprof    bool           `mapstructure:"pprof"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// ModelsConfig locates the model artifacts loaded once at startup.
// Source selects where the baseline and personality tables come from:
// "file" reads the CSV artifacts next to the serialized models, "postgres"
// reads the user_baselines and user_personality tables.
type ModelsConfig struct {
	Source          string `mapstructure:"source"`
	IsolationForest string `mapstructure:"isolation_forest"`
	Markov          string `mapstructure:"markov"`
	Baselines       string `mapstructure:"baselines"`
	Personality     string `mapstructure:"personality"`
}

// EnsembleConfig carries the fusion weights. The default values have no known
// calibration source and are treated as tunables, not constants.
type EnsembleConfig struct {
	IsolationForestWeight float64 `mapstructure:"isolation_forest_weight"`
	MarkovWeight          float64 `mapstructure:"markov_weight"`
	BaselineWeight        float64 `mapstructure:"baseline_weight"`
	RulesWeight           float64 `mapstructure:"rules_weight"`
}

// RulesConfig carries the rule engine weights and trigger thresholds.
type RulesConfig struct {
	NewDeviceWeight      float64 `mapstructure:"new_device_weight"`
	FailedLoginWeight    float64 `mapstructure:"failed_login_weight"`
	LargeUploadWeight    float64 `mapstructure:"large_upload_weight"`
	FailedLoginThreshold int     `mapstructure:"failed_login_threshold"`
	LargeUploadThreshold int     `mapstructure:"large_upload_threshold"`
}

type DatabaseConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxConns        int    `mapstructure:"max_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime"` // in minutes
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// AlertingConfig controls publication of high severity results to Kafka and
// the per-user suppression window between repeated alerts.
type AlertingConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	Brokers            []string `mapstructure:"brokers"`
	Topic              string   `mapstructure:"topic"`
	WriteTimeout       int      `mapstructure:"write_timeout"`       // in seconds
	SuppressionSeconds int      `mapstructure:"suppression_seconds"` // per-user window
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// Validate checks for essential configuration values. Weight and threshold
// errors here are deployment mistakes and must stop startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	sum := c.Ensemble.IsolationForestWeight + c.Ensemble.MarkovWeight +
		c.Ensemble.BaselineWeight + c.Ensemble.RulesWeight
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("ensemble weights must sum to 1.0, got %.4f", sum)
	}
	for name, w := range map[string]float64{
		"isolation_forest_weight": c.Ensemble.IsolationForestWeight,
		"markov_weight":           c.Ensemble.MarkovWeight,
		"baseline_weight":         c.Ensemble.BaselineWeight,
		"rules_weight":            c.Ensemble.RulesWeight,
	} {
		if w < 0 {
			return fmt.Errorf("ensemble weight %s must not be negative", name)
		}
	}

	if c.Rules.FailedLoginThreshold < 1 {
		return fmt.Errorf("rules failed_login_threshold must be >= 1, got %d", c.Rules.FailedLoginThreshold)
	}
	if c.Rules.LargeUploadThreshold < 1 {
		return fmt.Errorf("rules large_upload_threshold must be >= 1, got %d", c.Rules.LargeUploadThreshold)
	}

	switch c.Models.Source {
	case "file", "postgres":
	default:
		return fmt.Errorf("models source must be \"file\" or \"postgres\", got %q", c.Models.Source)
	}
	if c.Models.Source == "postgres" && !c.Database.Enabled {
		return fmt.Errorf("models source is postgres but database is disabled")
	}
	if c.Models.IsolationForest == "" || c.Models.Markov == "" {
		return fmt.Errorf("models isolation_forest and markov paths are required")
	}

	if c.Alerting.Enabled && len(c.Alerting.Brokers) == 0 {
		return fmt.Errorf("alerting enabled but no kafka brokers configured")
	}

	return nil
}

// DefaultEnsemble returns the default fusion weights.
func DefaultEnsemble() EnsembleConfig {
	return EnsembleConfig{
		IsolationForestWeight: constants.DefaultIsolationForestWeight,
		MarkovWeight:          constants.DefaultMarkovWeight,
		BaselineWeight:        constants.DefaultBaselineWeight,
		RulesWeight:           constants.DefaultRulesWeight,
	}
}

// DefaultRules returns the default rule weights and thresholds.
func DefaultRules() RulesConfig {
	return RulesConfig{
		NewDeviceWeight:      constants.DefaultNewDeviceWeight,
		FailedLoginWeight:    constants.DefaultFailedLoginWeight,
		LargeUploadWeight:    constants.DefaultLargeUploadWeight,
		FailedLoginThreshold: constants.DefaultFailedLoginThreshold,
		LargeUploadThreshold: constants.DefaultLargeUploadThreshold,
	}
}

package config

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/ueba/pkg/constants"
	"github.com/turtacn/ueba/pkg/errors"
	"github.com/turtacn/ueba/pkg/logger"
)

// LoadConfig loads the configuration from file, environment variables, and
// defaults. Environment variables use the UEBA prefix, e.g. UEBA_SERVER_PORT.
func LoadConfig(log logger.Logger) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/ueba/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ErrInternal("failed to read config file").WithCause(err)
		}
		log.Info(context.Background(), "no config file found, using defaults and environment")
	}

	v.SetEnvPrefix("UEBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.ErrInternal("failed to unmarshal config").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ErrInternal("invalid configuration").WithCause(err)
	}

	// Log level follows config file edits without a restart. Model artifacts
	// do not: a newly trained model requires a restart by design.
	v.OnConfigChange(func(e fsnotify.Event) {
		level := v.GetString("log.level")
		log.Info(context.Background(), "config file changed, applying log level",
			logger.String("file", e.Name), logger.String("level", level))
		log.SetLevel(ParseLogLevel(level))
	})
	v.WatchConfig()

	return &cfg, nil
}

// ParseLogLevel converts a level string to its constants.LogLevel value,
// defaulting to info for unknown input.
func ParseLogLevel(level string) constants.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return constants.LogLevelDebug
	case "info":
		return constants.LogLevelInfo
	case "warn", "warning":
		return constants.LogLevelWarn
	case "error":
		return constants.LogLevelError
	case "fatal":
		return constants.LogLevelFatal
	default:
		return constants.LogLevelInfo
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 60)

	v.SetDefault("models.source", "file")
	v.SetDefault("models.isolation_forest", "models/isolation_forest.gob")
	v.SetDefault("models.markov", "models/markov_model.gob")
	v.SetDefault("models.baselines", "models/user_baselines.csv")
	v.SetDefault("models.personality", "models/psychometric.csv")

	v.SetDefault("ensemble.isolation_forest_weight", constants.DefaultIsolationForestWeight)
	v.SetDefault("ensemble.markov_weight", constants.DefaultMarkovWeight)
	v.SetDefault("ensemble.baseline_weight", constants.DefaultBaselineWeight)
	v.SetDefault("ensemble.rules_weight", constants.DefaultRulesWeight)

	v.SetDefault("rules.new_device_weight", constants.DefaultNewDeviceWeight)
	v.SetDefault("rules.failed_login_weight", constants.DefaultFailedLoginWeight)
	v.SetDefault("rules.large_upload_weight", constants.DefaultLargeUploadWeight)
	v.SetDefault("rules.failed_login_threshold", constants.DefaultFailedLoginThreshold)
	v.SetDefault("rules.large_upload_threshold", constants.DefaultLargeUploadThreshold)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.max_conn_lifetime", 60)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.topic", "ueba.alerts")
	v.SetDefault("alerting.write_timeout", 10)
	v.SetDefault("alerting.suppression_seconds", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "ueba-scoring")
	v.SetDefault("tracing.sampling_rate", 0.1)

	v.SetDefault("pprof", false)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8001},
		Models:   ModelsConfig{Source: "file", IsolationForest: "f.gob", Markov: "m.gob"},
		Ensemble: DefaultEnsemble(),
		Rules:    DefaultRules(),
	}
}

func TestValidate(t *testing.T) {
	t.Run("should accept the default shape", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("should reject an invalid port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = 0
		assert.Error(t, cfg.Validate())

		cfg.Server.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("should reject weights that do not sum to one", func(t *testing.T) {
		cfg := validConfig()
		cfg.Ensemble.MarkovWeight = 0.5
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum to 1.0")
	})

	t.Run("should tolerate floating point drift in the weight sum", func(t *testing.T) {
		cfg := validConfig()
		cfg.Ensemble = EnsembleConfig{
			IsolationForestWeight: 0.3500004,
			MarkovWeight:          0.3,
			BaselineWeight:        0.25,
			RulesWeight:           0.1,
		}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("should reject negative weights", func(t *testing.T) {
		cfg := validConfig()
		cfg.Ensemble = EnsembleConfig{
			IsolationForestWeight: 1.35,
			MarkovWeight:          -0.35,
			BaselineWeight:        0,
			RulesWeight:           0,
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("should reject thresholds below one", func(t *testing.T) {
		cfg := validConfig()
		cfg.Rules.FailedLoginThreshold = 0
		assert.Error(t, cfg.Validate())

		cfg = validConfig()
		cfg.Rules.LargeUploadThreshold = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("should reject an unknown models source", func(t *testing.T) {
		cfg := validConfig()
		cfg.Models.Source = "s3"
		assert.Error(t, cfg.Validate())
	})

	t.Run("should require the database for the postgres source", func(t *testing.T) {
		cfg := validConfig()
		cfg.Models.Source = "postgres"
		assert.Error(t, cfg.Validate())

		cfg.Database.Enabled = true
		assert.NoError(t, cfg.Validate())
	})

	t.Run("should require model paths", func(t *testing.T) {
		cfg := validConfig()
		cfg.Models.Markov = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("should require brokers when alerting is enabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.Alerting.Enabled = true
		assert.Error(t, cfg.Validate())

		cfg.Alerting.Brokers = []string{"localhost:9092"}
		assert.NoError(t, cfg.Validate())
	})
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: 5432, User: "ueba", Password: "secret",
		Database: "ueba", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=ueba password=secret dbname=ueba sslmode=disable",
		db.GetDSN())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, ParseLogLevel("debug"), ParseLogLevel("DEBUG"))
	assert.Equal(t, ParseLogLevel("warn"), ParseLogLevel("warning"))
	assert.Equal(t, ParseLogLevel("info"), ParseLogLevel("garbage"))
	assert.NotEqual(t, ParseLogLevel("error"), ParseLogLevel("info"))
}

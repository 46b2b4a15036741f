// Package constants defines system-wide constants for the UEBA Scoring Service.
// This package provides type-safe constant definitions used across all modules.
package constants

// ================================================================================
// Severity Constants
// ================================================================================

// Severity represents the coarse triage tier derived from a risk score.
type Severity string

const (
	// SeverityLow indicates a risk score below the medium threshold
	SeverityLow Severity = "low"

	// SeverityMedium indicates a risk score in the medium band
	SeverityMedium Severity = "medium"

	// SeverityHigh indicates a risk score at or above the high threshold
	SeverityHigh Severity = "high"
)

const (
	// SeverityMediumThreshold is the lower bound of the medium severity band
	SeverityMediumThreshold = 0.5

	// SeverityHighThreshold is the lower bound of the high severity band
	SeverityHighThreshold = 0.75
)

// ================================================================================
// Anomaly Type Constants
// ================================================================================

// AnomalyType is the probable category assigned to a scored event.
type AnomalyType string

const (
	// AnomalyTypeDataExfiltration indicates behavior consistent with data theft
	AnomalyTypeDataExfiltration AnomalyType = "data_exfiltration"

	// AnomalyTypeCompromisedAccount indicates behavior consistent with account takeover
	AnomalyTypeCompromisedAccount AnomalyType = "compromised_account"

	// AnomalyTypeUnknown indicates no rule-based category applied
	AnomalyTypeUnknown AnomalyType = "unknown"
)

// ================================================================================
// Rule Name Constants
// ================================================================================

const (
	// RuleNewDevice fires when an event originates from a device outside the
	// user's known device set
	RuleNewDevice = "new_device"

	// RuleTooManyFailedLogins fires when the failed login count reaches the
	// configured threshold
	RuleTooManyFailedLogins = "too_many_failed_logins"

	// RuleLargeUpload fires when at least one large upload is observed
	RuleLargeUpload = "large_upload"
)

// ================================================================================
// Scoring Constants
// ================================================================================

const (
	// MarkovEpsilon is the cold-start probability floor for unseen tokens and
	// unseen transitions
	MarkovEpsilon = 1e-6

	// BaselineEpsilon stabilizes the z-score denominator for near-zero
	// standard deviations
	BaselineEpsilon = 1e-9

	// SequenceDelimiter separates action tokens in a recent_sequence string
	SequenceDelimiter = "->"

	// DefaultIsolationTrees is the default ensemble size for training
	DefaultIsolationTrees = 100

	// DefaultIsolationSampleSize is the default per-tree subsample size
	DefaultIsolationSampleSize = 256
)

// Default ensemble weights. Calibration source for these values is unknown;
// deployments override them through configuration.
const (
	DefaultIsolationForestWeight = 0.35
	DefaultMarkovWeight          = 0.30
	DefaultBaselineWeight        = 0.25
	DefaultRulesWeight           = 0.10
)

// Default rule weights and thresholds, overridable through configuration.
const (
	DefaultNewDeviceWeight      = 0.25
	DefaultFailedLoginWeight    = 0.30
	DefaultLargeUploadWeight    = 0.35
	DefaultFailedLoginThreshold = 5
	DefaultLargeUploadThreshold = 1
)

// ================================================================================
// Log Level Constants
// ================================================================================

// LogLevel represents the logging verbosity level
type LogLevel int

const (
	// LogLevelDebug enables debug and higher messages
	LogLevelDebug LogLevel = iota

	// LogLevelInfo enables info and higher messages
	LogLevelInfo

	// LogLevelWarn enables warn and higher messages
	LogLevelWarn

	// LogLevelError enables error and higher messages
	LogLevelError

	// LogLevelFatal enables only fatal messages
	LogLevelFatal
)

// ================================================================================
// Context Key Constants
// ================================================================================

// ContextKey is the type used for request-scoped context values
type ContextKey string

const (
	// ContextKeyRequestID carries the per-request identifier
	ContextKeyRequestID ContextKey = "request_id"

	// ContextKeyTraceID carries the distributed trace identifier
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyLogger carries a request-scoped logger
	ContextKeyLogger ContextKey = "logger"
)

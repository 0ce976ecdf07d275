// Package config provides layered configuration for the offline grant
// core: defaults, then an environment-specific YAML/JSON file, then
// ${VAR}-style substitution, then environment-variable overrides.
package config

import "time"

// Config is the root configuration structure for a child device's
// offline authorization core.
type Config struct {
	Environment string           `yaml:"environment" json:"environment"`
	Protocol    *ProtocolConfig  `yaml:"protocol" json:"protocol"`
	KeyStore    *KeyStoreConfig  `yaml:"keystore" json:"keystore"`
	Logging     *LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig   `yaml:"metrics" json:"metrics"`
	TravelTime  *TravelTimeConfig `yaml:"travel_time" json:"travel_time"`
}

// ProtocolConfig holds the invariant-bearing tunables for the offline
// grant/voice-code/deficit/pairing protocol. These are deployment
// knobs, not per-request parameters; each maps to a constraint named
// in the component design.
type ProtocolConfig struct {
	// NonceTTL bounds how long a seen nonce is remembered by the
	// ledger before it is safe to forget (C3).
	NonceTTL time.Duration `yaml:"nonce_ttl" json:"nonce_ttl"`

	// GrantMaxMinutes is the upper bound on a single QR grant's
	// minutes field (C2).
	GrantMaxMinutes int `yaml:"grant_max_minutes" json:"grant_max_minutes"`

	// VoiceMaxIncrements bounds how many request codes one approval
	// code may cover (C4).
	VoiceMaxIncrements int `yaml:"voice_max_increments" json:"voice_max_increments"`

	// VoiceBucketSec is the width of the time bucket approval codes
	// are derived against (C4).
	VoiceBucketSec int `yaml:"voice_bucket_sec" json:"voice_bucket_sec"`

	// VoiceDriftBuckets is how many buckets of clock drift either
	// side of "now" an approval code is still accepted for (C4).
	VoiceDriftBuckets int `yaml:"voice_drift_buckets" json:"voice_drift_buckets"`

	// DeficitCeilingSec is the hard ceiling on seconds_owed per child
	// (C5).
	DeficitCeilingSec int `yaml:"deficit_ceiling_sec" json:"deficit_ceiling_sec"`
}

// KeyStoreConfig selects and configures the SecretStore-backed key
// storage a device uses for its signing/verifying keys.
type KeyStoreConfig struct {
	Type          string `yaml:"type" json:"type"` // "local" or "memory"
	Directory     string `yaml:"directory" json:"directory"`
	PassphraseEnv string `yaml:"passphrase_env" json:"passphrase_env"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"` // json, text
	Output   string `yaml:"output" json:"output"` // stdout, stderr, file path
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// TravelTimeConfig seeds the travel-time adjuster's notion of home.
type TravelTimeConfig struct {
	HomeTZ string `yaml:"home_tz" json:"home_tz"`
}

// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a file, trying YAML then JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)

	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing format by extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults fills in the zero-value fields of cfg with production
// defaults matching the protocol's documented invariants.
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Protocol == nil {
		cfg.Protocol = &ProtocolConfig{}
	}
	if cfg.Protocol.NonceTTL == 0 {
		cfg.Protocol.NonceTTL = 24 * time.Hour
	}
	if cfg.Protocol.GrantMaxMinutes == 0 {
		cfg.Protocol.GrantMaxMinutes = 480
	}
	if cfg.Protocol.VoiceMaxIncrements == 0 {
		cfg.Protocol.VoiceMaxIncrements = 4
	}
	if cfg.Protocol.VoiceBucketSec == 0 {
		cfg.Protocol.VoiceBucketSec = 30
	}
	if cfg.Protocol.VoiceDriftBuckets == 0 {
		cfg.Protocol.VoiceDriftBuckets = 1
	}
	if cfg.Protocol.DeficitCeilingSec == 0 {
		cfg.Protocol.DeficitCeilingSec = 1800
	}

	if cfg.KeyStore != nil {
		if cfg.KeyStore.Type == "" {
			cfg.KeyStore.Type = "local"
		}
		if cfg.KeyStore.Directory == "" {
			cfg.KeyStore.Directory = ".allow2/keys"
		}
	}

	if cfg.Logging != nil {
		if cfg.Logging.Level == "" {
			cfg.Logging.Level = "info"
		}
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = "json"
		}
		if cfg.Logging.Output == "" {
			cfg.Logging.Output = "stdout"
		}
	}

	if cfg.TravelTime != nil && cfg.TravelTime.HomeTZ == "" {
		cfg.TravelTime.HomeTZ = "UTC"
	}
}

// ValidationIssue is one configuration problem found by
// ValidateConfiguration. Level "error" blocks startup; "warning" does
// not.
type ValidationIssue struct {
	Field   string
	Message string
	Level   string // "error" or "warning"
}

// ValidateConfiguration checks cfg against the protocol's documented
// invariants (spec §3's Grant.minutes ceiling, §4.5's deficit ceiling)
// and returns every issue found, without stopping at the first one.
func ValidateConfiguration(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Protocol != nil {
		if cfg.Protocol.GrantMaxMinutes <= 0 || cfg.Protocol.GrantMaxMinutes > 480 {
			issues = append(issues, ValidationIssue{
				Field:   "protocol.grant_max_minutes",
				Message: "must be between 1 and 480",
				Level:   "error",
			})
		}
		if cfg.Protocol.DeficitCeilingSec <= 0 {
			issues = append(issues, ValidationIssue{
				Field:   "protocol.deficit_ceiling_sec",
				Message: "must be positive",
				Level:   "error",
			})
		}
		if cfg.Protocol.VoiceBucketSec <= 0 {
			issues = append(issues, ValidationIssue{
				Field:   "protocol.voice_bucket_sec",
				Message: "must be positive",
				Level:   "error",
			})
		}
		if cfg.Protocol.NonceTTL <= 0 {
			issues = append(issues, ValidationIssue{
				Field:   "protocol.nonce_ttl",
				Message: "must be positive",
				Level:   "error",
			})
		}
		if cfg.Protocol.VoiceDriftBuckets > 3 {
			issues = append(issues, ValidationIssue{
				Field:   "protocol.voice_drift_buckets",
				Message: "unusually wide drift tolerance, double check this is intentional",
				Level:   "warning",
			})
		}
	}

	if cfg.KeyStore != nil && cfg.KeyStore.Type != "local" && cfg.KeyStore.Type != "memory" {
		issues = append(issues, ValidationIssue{
			Field:   "keystore.type",
			Message: fmt.Sprintf("unknown keystore type %q", cfg.KeyStore.Type),
			Level:   "error",
		})
	}

	return issues
}

package main

import (
	"fmt"

	"github.com/allow2/offlinecore/config"
)

// loadDeploymentConfig loads the deployment config named by --config, if
// set. It returns a nil *config.Config (not an error) when --config is
// empty, so callers can treat an absent config as "use the protocol's
// built-in defaults."
func loadDeploymentConfig() (*config.Config, error) {
	if configPath == "" {
		return nil, nil
	}

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load deployment config: %w", err)
	}

	for _, issue := range config.ValidateConfiguration(cfg) {
		if issue.Level == "error" {
			return nil, fmt.Errorf("deployment config %s: %s - %s", configPath, issue.Field, issue.Message)
		}
	}

	return cfg, nil
}

package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// LoadAppConfig reads configuration from the environment, optionally
// loading a dotenv file first. A missing dotenv file is not an error so
// containerized deployments can rely on injected environment variables.
func LoadAppConfig(logger *slog.Logger, envFiles ...string) (*App, error) {
	for _, f := range envFiles {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			logger.Warn("dotenv file not loaded", "path", f, "error", err)
		}
	}
	cfg := &App{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

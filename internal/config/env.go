package config

import (
	"os"
	"strings"
)

// FromEnv applies environment overrides on top of cfg.
// Falls back to the existing values if variables are not set.
func FromEnv(cfg *Config) *Config {
	if val := os.Getenv("TASKDEN_ADDR"); val != "" {
		cfg.Server.Addr = val
	}
	if val := os.Getenv("TASKDEN_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val, ok := getEnvBool("TASKDEN_SEED_ON_LOAD_FAILURE"); ok {
		cfg.Tasks.SeedOnLoadFailure = val
	}
	if val, ok := getEnvBool("TASKDEN_SHOW_COMPLETED"); ok {
		cfg.Tasks.ShowCompletedDefault = val
	}
	if val, ok := getEnvBool("TASKDEN_TELEMETRY"); ok {
		cfg.Telemetry.Enabled = val
	}
	return cfg
}

func getEnvBool(key string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	default:
		return false, false
	}
}

package config

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version: "1",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			Backend: BackendFile,
		},
		Tasks: TasksConfig{
			SeedOnLoadFailure:    true,
			ShowCompletedDefault: true,
		},
		Telemetry: TelemetryConfig{
			Enabled: true,
		},
	}
}

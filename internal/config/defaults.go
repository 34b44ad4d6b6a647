package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./sukima.db"
	}
	if cfg.Analysis.APIVersion == "" {
		cfg.Analysis.APIVersion = "2024-06-01"
	}
	if cfg.Analysis.TimeoutSeconds == 0 {
		cfg.Analysis.TimeoutSeconds = 45
	}
	if cfg.Analysis.MaxDocumentChars == 0 {
		cfg.Analysis.MaxDocumentChars = 12000
	}
	if cfg.Analysis.DefaultObjective == "" {
		cfg.Analysis.DefaultObjective = "General skills/requirements gap analysis"
	}
	if cfg.Download.MaxBytes == 0 {
		cfg.Download.MaxBytes = 10 * 1024 * 1024
	}
	if cfg.Download.TimeoutSeconds == 0 {
		cfg.Download.TimeoutSeconds = 30
	}
}

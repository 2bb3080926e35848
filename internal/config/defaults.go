package config

// DefaultExtensions is the file type set indexed when the config does not
// name its own.
var DefaultExtensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx", ".pptx"}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Index.Extensions == nil {
		cfg.Index.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Index.ExtractWorkers == 0 {
		cfg.Index.ExtractWorkers = 4
	}
	if cfg.Storage.SnapshotPath == "" {
		cfg.Storage.SnapshotPath = "/usr/local/var/sakuin/data/snapshot.json"
	}
	if cfg.Storage.HistoryPath == "" {
		cfg.Storage.HistoryPath = "/usr/local/var/sakuin/data/history.db"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Watch.DebounceMS == 0 {
		cfg.Watch.DebounceMS = 2000
	}
}

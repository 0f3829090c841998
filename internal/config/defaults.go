package config

// Default returns a configuration populated with default values.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:  "~/curator/inbox",
			LibraryDir: "~/curator/library",
			LogDir:     "~/.local/share/curator/logs",
			DBDir:      "~/.local/share/curator",
		},
		Taxonomy: Taxonomy{
			Path:             "~/.config/curator/taxonomy.yaml",
			FallbackCategory: "KB.Personal.Misc",
		},
		Heuristics: Heuristics{
			SkipThreshold: 4,
		},
		Inference: Inference{
			Backend:           "auto",
			BaseURL:           "http://localhost:11434/v1",
			Model:             "llama3.1",
			TimeoutSeconds:    120,
			MaxAttempts:       4,
			RetryBaseMillis:   500,
			RetryMaxMillis:    8000,
			Workers:           4,
			RequestsPerSecond: 2,
			MaxContentChars:   6000,
		},
		Workflow: Workflow{
			BatchPollInterval:  5,
			ErrorRetryInterval: 30,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}

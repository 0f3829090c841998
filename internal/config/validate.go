package config

import (
	"fmt"
	"strings"
)

var validBackends = map[string]bool{
	"auto":      true,
	"chat":      true,
	"workspace": true,
}

var validLogFormats = map[string]bool{
	"console": true,
	"json":    true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.SourceDir) == "" {
		problems = append(problems, "paths.source_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		problems = append(problems, "paths.library_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DBDir) == "" {
		problems = append(problems, "paths.db_dir must be set")
	}

	if c.Taxonomy.FallbackCategory == "" {
		problems = append(problems, "taxonomy.fallback_category must be set")
	} else if segments := strings.Split(c.Taxonomy.FallbackCategory, "."); len(segments) != 3 {
		problems = append(problems, fmt.Sprintf("taxonomy.fallback_category %q must have exactly three dot-separated segments", c.Taxonomy.FallbackCategory))
	}

	if c.Heuristics.SkipThreshold < 0 || c.Heuristics.SkipThreshold > 5 {
		problems = append(problems, fmt.Sprintf("heuristics.skip_threshold %v must be between 0 and 5", c.Heuristics.SkipThreshold))
	}

	if !validBackends[c.Inference.Backend] {
		problems = append(problems, fmt.Sprintf("inference.backend %q must be auto, chat, or workspace", c.Inference.Backend))
	}
	if c.Inference.Backend == "workspace" && c.Inference.WorkspaceSlug == "" {
		problems = append(problems, "inference.workspace_slug must be set when inference.backend is workspace")
	}
	if c.Inference.BaseURL == "" {
		problems = append(problems, "inference.base_url must be set")
	}
	if c.Inference.TimeoutSeconds <= 0 {
		problems = append(problems, "inference.timeout_seconds must be positive")
	}
	if c.Inference.RequestsPerSecond < 0 {
		problems = append(problems, "inference.requests_per_second must not be negative")
	}

	if c.Workflow.BatchPollInterval <= 0 {
		problems = append(problems, "workflow.batch_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		problems = append(problems, "workflow.error_retry_interval must be positive")
	}

	if !validLogFormats[c.Logging.Format] {
		problems = append(problems, fmt.Sprintf("logging.format %q must be console or json", c.Logging.Format))
	}
	if !validLogLevels[c.Logging.Level] {
		problems = append(problems, fmt.Sprintf("logging.level %q must be debug, info, warn, or error", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

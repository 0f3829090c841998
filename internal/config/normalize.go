package config

import "strings"

func (c *Config) normalize() error {
	pathFields := []*string{
		&c.Paths.SourceDir,
		&c.Paths.LibraryDir,
		&c.Paths.LogDir,
		&c.Paths.DBDir,
		&c.Taxonomy.Path,
	}
	for _, field := range pathFields {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Taxonomy.FallbackCategory = strings.TrimSpace(c.Taxonomy.FallbackCategory)
	c.Inference.Backend = strings.ToLower(strings.TrimSpace(c.Inference.Backend))
	c.Inference.BaseURL = strings.TrimRight(strings.TrimSpace(c.Inference.BaseURL), "/")
	c.Inference.Model = strings.TrimSpace(c.Inference.Model)
	c.Inference.WorkspaceSlug = strings.TrimSpace(c.Inference.WorkspaceSlug)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	if c.Inference.Workers <= 0 {
		c.Inference.Workers = 1
	}
	if c.Inference.MaxAttempts <= 0 {
		c.Inference.MaxAttempts = 1
	}
	if c.Inference.RetryBaseMillis <= 0 {
		c.Inference.RetryBaseMillis = 500
	}
	if c.Inference.RetryMaxMillis < c.Inference.RetryBaseMillis {
		c.Inference.RetryMaxMillis = c.Inference.RetryBaseMillis
	}
	if c.Inference.MaxContentChars <= 0 {
		c.Inference.MaxContentChars = 6000
	}

	return nil
}

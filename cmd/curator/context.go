package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"curator/internal/catalog"
	"curator/internal/config"
	"curator/internal/logging"
	"curator/internal/taxonomy"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	storeOnce sync.Once
	store     *catalog.Store
	storeErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) openStore() (*catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.storeOnce.Do(func() {
		c.store, c.storeErr = catalog.Open(cfg)
	})
	return c.store, c.storeErr
}

// loadRegistry reads the configured taxonomy file, or falls back to the
// embedded default tree when the file does not exist yet.
func (c *commandContext) loadRegistry() (*taxonomy.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(cfg.Taxonomy.Path); statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return taxonomy.Default(), nil
		}
		return nil, fmt.Errorf("stat taxonomy file: %w", statErr)
	}
	registry, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		return nil, err
	}
	if !registry.Contains(cfg.Taxonomy.FallbackCategory) {
		return nil, fmt.Errorf("taxonomy %s does not define the fallback category %q",
			cfg.Taxonomy.Path, cfg.Taxonomy.FallbackCategory)
	}
	return registry, nil
}

func (c *commandContext) newLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			OutputPaths: []string{
				"stderr",
				filepath.Join(cfg.Paths.LogDir, "curator.log"),
			},
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) closeStore() {
	if c.store != nil {
		_ = c.store.Close()
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for parent := cmd; parent != nil; parent = parent.Parent() {
		if parent.Annotations != nil && parent.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

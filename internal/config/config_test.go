package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize default config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Taxonomy.FallbackCategory != "KB.Personal.Misc" {
		t.Fatalf("fallback category = %q", cfg.Taxonomy.FallbackCategory)
	}
	if cfg.Heuristics.SkipThreshold != 4 {
		t.Fatalf("skip threshold = %v", cfg.Heuristics.SkipThreshold)
	}
}

func TestLoadOverridesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
source_dir = "` + dir + `/inbox"
library_dir = "` + dir + `/library"
log_dir = "` + dir + `/logs"
db_dir = "` + dir + `/state"

[inference]
backend = "Chat"
base_url = "http://example.test/v1/"
workers = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Paths.SourceDir != filepath.Join(dir, "inbox") {
		t.Fatalf("source dir = %q", cfg.Paths.SourceDir)
	}
	if cfg.Inference.Backend != "chat" {
		t.Fatalf("backend = %q, want normalized chat", cfg.Inference.Backend)
	}
	if cfg.Inference.BaseURL != "http://example.test/v1" {
		t.Fatalf("base url = %q, want trailing slash trimmed", cfg.Inference.BaseURL)
	}
	if cfg.Inference.Workers != 1 {
		t.Fatalf("workers = %d, want clamped to 1", cfg.Inference.Workers)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "bad backend",
			mutate: func(c *Config) { c.Inference.Backend = "grpc" },
			want:   "inference.backend",
		},
		{
			name:   "workspace without slug",
			mutate: func(c *Config) { c.Inference.Backend = "workspace" },
			want:   "workspace_slug",
		},
		{
			name:   "two segment fallback",
			mutate: func(c *Config) { c.Taxonomy.FallbackCategory = "KB.Personal" },
			want:   "three dot-separated segments",
		},
		{
			name:   "threshold out of range",
			mutate: func(c *Config) { c.Heuristics.SkipThreshold = 7 },
			want:   "skip_threshold",
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatal(err)
			}
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config should exist")
	}
	if cfg.Inference.Backend != "auto" {
		t.Fatalf("backend = %q", cfg.Inference.Backend)
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/curator")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "curator") {
		t.Fatalf("expanded = %q", got)
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTaxonomyInitShowValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	// Before init the embedded default tree is used.
	out, _, err := runCLI(t, []string{"taxonomy", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("taxonomy show: %v", err)
	}
	requireContains(t, out, "KB.Finance.Tax")
	requireContains(t, out, "KB.Personal.Misc")

	out, _, err = runCLI(t, []string{"taxonomy", "init"}, env.configPath)
	if err != nil {
		t.Fatalf("taxonomy init: %v", err)
	}
	requireContains(t, out, "Wrote sample taxonomy")
	if _, err := os.Stat(env.cfg.Taxonomy.Path); err != nil {
		t.Fatalf("expected taxonomy file: %v", err)
	}

	if _, _, err := runCLI(t, []string{"taxonomy", "init"}, env.configPath); err == nil {
		t.Fatal("expected second init to refuse without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"taxonomy", "init", "--overwrite"}, env.configPath); err != nil {
		t.Fatalf("taxonomy init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"taxonomy", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("taxonomy validate: %v", err)
	}
	requireContains(t, out, "Taxonomy is valid")
}

func TestTaxonomyValidateItemizesIssues(t *testing.T) {
	env := setupCLITestEnv(t)

	broken := filepath.Join(env.baseDir, "broken.yaml")
	yaml := "root: KB\ncategories:\n" +
		"  - path: KB.A.B\n" +
		"  - path: KB.A.C\n    description: fine\n    naming:\n      components: [year]\n      format: \"{year}\"\n"
	if err := os.WriteFile(broken, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"taxonomy", "validate", broken}, env.configPath)
	if err == nil {
		t.Fatal("expected validate to fail on a broken taxonomy")
	}
	requireContains(t, out, "error: KB.A.B: category has no description")
	requireContains(t, out, "error: KB.A.C: naming template has no prefix")
}

package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRegistryIsValid(t *testing.T) {
	reg := Default()
	if issues := reg.Validate(); len(issues) > 0 {
		t.Fatalf("embedded taxonomy has issues: %v", issues)
	}
	if !reg.Contains("KB.Personal.Misc") {
		t.Fatal("embedded taxonomy must contain the fallback category")
	}
	node, ok := reg.Resolve("KB.Finance.Tax")
	if !ok {
		t.Fatal("KB.Finance.Tax not found")
	}
	if node.Naming == nil || node.Naming.Prefix != "tax" {
		t.Fatalf("unexpected naming for KB.Finance.Tax: %+v", node.Naming)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	if err := os.WriteFile(path, []byte(SampleYAML()), 0o644); err != nil {
		t.Fatal(err)
	}
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(reg.Paths()) == 0 {
		t.Fatal("expected categories")
	}
}

func TestParseRejectsStructuralProblems(t *testing.T) {
	if _, err := Parse([]byte("categories: [not a mapping")); err == nil {
		t.Fatal("malformed yaml must fail parsing")
	}
	_, err := Parse([]byte("root: KB\ncategories:\n  - path: KB.A.B\n  - path: KB.A.B\n"))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("duplicate path err = %v", err)
	}
}

func TestValidateItemizesContentIssues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		path string
		want string
	}{
		{
			name: "two segments",
			yaml: "root: KB\ncategories:\n  - path: KB.Finance\n    description: money\n",
			path: "KB.Finance",
			want: "three dot-separated segments",
		},
		{
			name: "wrong root",
			yaml: "root: KB\ncategories:\n  - path: XX.Finance.Tax\n    description: money\n",
			path: "XX.Finance.Tax",
			want: "root segment",
		},
		{
			name: "empty",
			yaml: "root: KB\ncategories: []\n",
			want: "no categories",
		},
		{
			name: "format missing component",
			yaml: "root: KB\ncategories:\n  - path: KB.A.B\n    description: docs\n    naming:\n      prefix: doc\n      components: [year]\n      format: \"doc-{month}\"\n",
			path: "KB.A.B",
			want: "component",
		},
		{
			name: "missing description",
			yaml: "root: KB\ncategories:\n  - path: KB.A.B\n",
			path: "KB.A.B",
			want: "no description",
		},
		{
			name: "naming without prefix",
			yaml: "root: KB\ncategories:\n  - path: KB.A.B\n    description: docs\n    naming:\n      components: [year]\n      format: \"{year}\"\n",
			path: "KB.A.B",
			want: "no prefix",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg, err := Parse([]byte(tc.yaml))
			if err != nil {
				t.Fatalf("content issues must not fail parsing: %v", err)
			}
			issues := Errors(reg.Validate())
			if len(issues) == 0 {
				t.Fatal("expected validation errors")
			}
			found := false
			for _, issue := range issues {
				if issue.Path == tc.path && strings.Contains(issue.Message, tc.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("issues %v name no %q on path %q", issues, tc.want, tc.path)
			}
		})
	}
}

func TestLoadRejectsInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	yaml := "root: KB\ncategories:\n  - path: KB.A.B\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "no description") {
		t.Fatalf("load err = %v", err)
	}
}

func TestValidateWarnsOnMissingExamples(t *testing.T) {
	reg, err := Parse([]byte("root: KB\ncategories:\n  - path: KB.A.B\n    description: docs\n    naming:\n      prefix: doc\n"))
	if err != nil {
		t.Fatalf("warnings must not fail parsing: %v", err)
	}
	issues := reg.Validate()
	if len(issues) != 1 || issues[0].Severity != SeverityWarning {
		t.Fatalf("issues = %+v", issues)
	}
	if !strings.Contains(issues[0].Message, "examples") {
		t.Fatalf("issue = %+v", issues[0])
	}
	if errs := Errors(issues); len(errs) != 0 {
		t.Fatalf("warnings leaked into errors: %+v", errs)
	}
}

func TestResolveUnknownPath(t *testing.T) {
	reg := Default()
	if _, ok := reg.Resolve("KB.Bogus.NotReal"); ok {
		t.Fatal("unknown path should not resolve")
	}
}

func TestRenderFilename(t *testing.T) {
	reg := Default()
	node, _ := reg.Resolve("KB.Finance.Tax")

	got := RenderFilename(node, "scan0001.pdf", map[string]string{"year": "2024", "form": "1040"})
	if got != "tax-2024-1040" {
		t.Fatalf("rendered = %q", got)
	}

	// Missing components drop with their separator.
	got = RenderFilename(node, "scan0001.pdf", map[string]string{"year": "2024"})
	if got != "tax-2024" {
		t.Fatalf("rendered with missing form = %q", got)
	}

	// No template falls back to the sanitized original name.
	got = RenderFilename(nil, "  weird:name?.pdf ", nil)
	if got != "weird_name_.pdf" {
		t.Fatalf("fallback rendered = %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"résumé 2024.pdf":     "resume 2024.pdf",
		"a/b\\c:d.txt":        "a_b_c_d.txt",
		"  spaced   out  ":    "spaced out",
		"tabs\tand\nnewlines": "tabs and newlines",
	}
	for input, want := range cases {
		if got := SanitizeFilename(input); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", input, got, want)
		}
	}
}

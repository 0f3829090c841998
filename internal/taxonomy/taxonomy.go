package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"curator/internal/services"
)

//go:embed sample_taxonomy.yaml
var sampleTaxonomy string

// Naming describes how filenames are rendered for files placed under a node.
type Naming struct {
	Prefix     string   `yaml:"prefix"`
	Components []string `yaml:"components"`
	Format     string   `yaml:"format"`
	Examples   []string `yaml:"examples"`
}

// Node is a single category in the taxonomy tree. Paths always have exactly
// three dot-separated segments: root, domain, and scope.
type Node struct {
	Path        string   `yaml:"path"`
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
	Naming      *Naming  `yaml:"naming"`
}

// Registry holds the loaded category tree and answers path lookups.
type Registry struct {
	Root  string
	nodes map[string]*Node
	order []string
}

type document struct {
	Root       string  `yaml:"root"`
	Categories []*Node `yaml:"categories"`
}

// Load reads, parses, and validates a taxonomy file. A taxonomy whose
// content fails validation is rejected; to inspect a file's issues without
// loading it, use Parse followed by Validate.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "taxonomy", "load", "read taxonomy file", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if issues := Errors(reg.Validate()); len(issues) > 0 {
		return nil, services.Wrap(services.ErrConfiguration, "taxonomy", "load",
			fmt.Sprintf("taxonomy has %d error(s): %s", len(issues), issues[0]), nil)
	}
	return reg, nil
}

// Parse builds a registry from raw YAML. Only structural problems fail the
// parse: malformed YAML and duplicate paths. Content issues are reported by
// Validate so callers can itemize every problem at once.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "taxonomy", "parse", "parse taxonomy yaml", err)
	}

	reg := &Registry{
		Root:  strings.TrimSpace(doc.Root),
		nodes: make(map[string]*Node, len(doc.Categories)),
	}
	for _, node := range doc.Categories {
		node.Path = strings.TrimSpace(node.Path)
		if node.Path == "" {
			continue
		}
		if _, exists := reg.nodes[node.Path]; exists {
			return nil, services.Wrap(services.ErrConfiguration, "taxonomy", "parse",
				fmt.Sprintf("duplicate taxonomy path %q", node.Path), nil)
		}
		reg.nodes[node.Path] = node
		reg.order = append(reg.order, node.Path)
	}
	return reg, nil
}

// Default returns the registry built from the embedded sample taxonomy.
func Default() *Registry {
	reg, err := Parse([]byte(sampleTaxonomy))
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy invalid: %v", err))
	}
	if issues := Errors(reg.Validate()); len(issues) > 0 {
		panic(fmt.Sprintf("embedded taxonomy invalid: %s", issues[0]))
	}
	return reg
}

// SampleYAML returns the embedded sample taxonomy document.
func SampleYAML() string {
	return sampleTaxonomy
}

// Severity ranks validation issues. Errors make the taxonomy unusable;
// warnings flag gaps worth fixing.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue describes a single structural problem found during validation.
type Issue struct {
	Path     string
	Message  string
	Severity Severity
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Validate checks every node for structural problems and returns them all.
func (r *Registry) Validate() []Issue {
	var issues []Issue
	if r.Root == "" {
		issues = append(issues, Issue{Message: "root segment must be set", Severity: SeverityError})
	}
	if len(r.nodes) == 0 {
		issues = append(issues, Issue{Message: "taxonomy defines no categories", Severity: SeverityError})
	}
	for _, path := range r.order {
		node := r.nodes[path]
		segments := strings.Split(path, ".")
		if len(segments) != 3 {
			issues = append(issues, Issue{Path: path, Message: "path must have exactly three dot-separated segments", Severity: SeverityError})
			continue
		}
		for _, segment := range segments {
			if strings.TrimSpace(segment) == "" {
				issues = append(issues, Issue{Path: path, Message: "path contains an empty segment", Severity: SeverityError})
				break
			}
		}
		if r.Root != "" && segments[0] != r.Root {
			issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("path must start with root segment %q", r.Root), Severity: SeverityError})
		}
		if strings.TrimSpace(node.Description) == "" {
			issues = append(issues, Issue{Path: path, Message: "category has no description", Severity: SeverityError})
		}
		if node.Naming != nil {
			if strings.TrimSpace(node.Naming.Prefix) == "" {
				issues = append(issues, Issue{Path: path, Message: "naming template has no prefix", Severity: SeverityError})
			}
			if node.Naming.Format != "" {
				for _, component := range node.Naming.Components {
					if !strings.Contains(node.Naming.Format, "{"+component+"}") {
						issues = append(issues, Issue{Path: path, Message: fmt.Sprintf("naming format does not reference component %q", component), Severity: SeverityError})
					}
				}
			}
			if len(node.Naming.Examples) == 0 {
				issues = append(issues, Issue{Path: path, Message: "naming template has no examples", Severity: SeverityWarning})
			}
		}
	}
	return issues
}

// Errors filters issues down to the ones that make the taxonomy unusable.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Severity != SeverityWarning {
			out = append(out, issue)
		}
	}
	return out
}

// Resolve looks up a node by its exact dotted path.
func (r *Registry) Resolve(path string) (*Node, bool) {
	node, ok := r.nodes[strings.TrimSpace(path)]
	return node, ok
}

// Contains reports whether the path names a node in the registry.
func (r *Registry) Contains(path string) bool {
	_, ok := r.Resolve(path)
	return ok
}

// Paths returns every node path in document order.
func (r *Registry) Paths() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Nodes returns every node in document order.
func (r *Registry) Nodes() []*Node {
	out := make([]*Node, 0, len(r.order))
	for _, path := range r.order {
		out = append(out, r.nodes[path])
	}
	return out
}

// Keywords returns the union of every node's keywords, sorted.
func (r *Registry) Keywords() []string {
	seen := make(map[string]struct{})
	for _, node := range r.nodes {
		for _, keyword := range node.Keywords {
			seen[strings.ToLower(keyword)] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for keyword := range seen {
		out = append(out, keyword)
	}
	sort.Strings(out)
	return out
}

// PromptOutline renders a compact description of the taxonomy suitable for
// inclusion in a model prompt.
func (r *Registry) PromptOutline() string {
	var builder strings.Builder
	for _, path := range r.order {
		node := r.nodes[path]
		builder.WriteString("- ")
		builder.WriteString(path)
		if node.Description != "" {
			builder.WriteString(": ")
			builder.WriteString(node.Description)
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

package heuristics

import (
	"fmt"
	"sort"
	"strings"

	"curator/internal/taxonomy"
)

// Input is the evidence a single file offers for classification.
type Input struct {
	Filename   string
	SourcePath string
	Content    string
}

// Candidate is a heuristic classification proposal on the shared 0-5
// confidence scale.
type Candidate struct {
	Path       string
	Subpath    string
	Confidence float64
	Reason     string
	Components map[string]string
}

// Engine evaluates rules in order against file evidence. Rules derived from
// the taxonomy's keyword lists run after the built-in rules, so the sharper
// signals win ties.
type Engine struct {
	rules []Rule
}

// New builds an engine from the built-in rules plus keyword rules derived
// from the taxonomy.
func New(registry *taxonomy.Registry) *Engine {
	rules := make([]Rule, 0, len(builtinRules))
	for _, rule := range builtinRules {
		if registry.Contains(rule.Category) {
			rules = append(rules, rule)
		}
	}
	for _, node := range registry.Nodes() {
		if len(node.Keywords) == 0 {
			continue
		}
		rules = append(rules, Rule{
			Name:     "taxonomy:" + node.Path,
			Category: node.Path,
			Weak:     node.Keywords,
		})
	}
	return &Engine{rules: rules}
}

// Evaluate scores every rule and returns the strongest candidate. The second
// return is false when no rule matched at all.
func (e *Engine) Evaluate(input Input) (Candidate, bool) {
	haystack := buildHaystack(input)
	pathTokens := strings.ToLower(input.SourcePath)

	best := Candidate{}
	found := false
	for _, rule := range e.rules {
		candidate, ok := rule.evaluate(haystack, pathTokens)
		if !ok {
			continue
		}
		if !found || candidate.Confidence > best.Confidence {
			best = candidate
			found = true
		}
	}
	if found {
		best.Components = extractComponents(haystack)
	}
	return best, found
}

func buildHaystack(input Input) string {
	parts := []string{strings.ToLower(input.Filename)}
	if input.Content != "" {
		parts = append(parts, strings.ToLower(input.Content))
	}
	return strings.Join(parts, " ")
}

// Rule pairs keyword evidence with a taxonomy category. Strong keywords are
// decisive on their own; weak keywords need company to move the confidence.
type Rule struct {
	Name      string
	Category  string
	Subpath   string
	Strong    []string
	Weak      []string
	PathHints []string
}

func (r Rule) evaluate(haystack, pathTokens string) (Candidate, bool) {
	points := 0
	var matched []string
	for _, keyword := range r.Strong {
		if containsKeyword(haystack, keyword) {
			points += 2
			matched = append(matched, keyword)
		}
	}
	for _, keyword := range r.Weak {
		if containsKeyword(haystack, keyword) {
			points++
			matched = append(matched, keyword)
		}
	}
	if points == 0 {
		return Candidate{}, false
	}

	confidence := pointsToConfidence(points)
	boosted := false
	for _, hint := range r.PathHints {
		if strings.Contains(pathTokens, strings.ToLower(hint)) {
			boosted = true
			break
		}
	}
	if boosted {
		confidence++
	}
	if confidence > 5 {
		confidence = 5
	}

	sort.Strings(matched)
	reason := fmt.Sprintf("matched %s", strings.Join(matched, ", "))
	if boosted {
		reason += " (directory agrees)"
	}
	return Candidate{
		Path:       r.Category,
		Subpath:    r.Subpath,
		Confidence: confidence,
		Reason:     reason,
	}, true
}

// pointsToConfidence maps raw keyword points onto the 0-5 scale. A single
// weak match is barely a signal; two strong matches are near certainty.
func pointsToConfidence(points int) float64 {
	switch {
	case points >= 4:
		return 4.5
	case points == 3:
		return 4
	case points == 2:
		return 3
	default:
		return 1.5
	}
}

func containsKeyword(haystack, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], keyword)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(keyword)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return true
		}
		idx = start + 1
	}
}

func boundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	return !isWordByte(s[idx-1])
}

func boundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	return !isWordByte(s[idx])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

package taxonomy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RenderFilename renders a node's naming template with the supplied component
// values. Components missing from values are dropped along with their
// separators. When the node has no naming template the sanitized original
// name is returned unchanged.
func RenderFilename(node *Node, original string, values map[string]string) string {
	if node == nil || node.Naming == nil || node.Naming.Format == "" {
		return SanitizeFilename(original)
	}
	filled := 0
	for _, component := range node.Naming.Components {
		if strings.TrimSpace(values[component]) != "" {
			filled++
		}
	}
	if filled == 0 {
		return SanitizeFilename(original)
	}

	rendered := node.Naming.Format
	if node.Naming.Prefix != "" && values["prefix"] == "" {
		values = withValue(values, "prefix", node.Naming.Prefix)
	}
	for _, component := range node.Naming.Components {
		placeholder := "{" + component + "}"
		value := strings.TrimSpace(values[component])
		if value == "" {
			rendered = dropPlaceholder(rendered, placeholder)
			continue
		}
		rendered = strings.ReplaceAll(rendered, placeholder, value)
	}
	if prefix := strings.TrimSpace(values["prefix"]); prefix != "" {
		rendered = strings.ReplaceAll(rendered, "{prefix}", prefix)
	} else {
		rendered = dropPlaceholder(rendered, "{prefix}")
	}

	rendered = strings.TrimFunc(rendered, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	if rendered == "" {
		return SanitizeFilename(original)
	}
	return SanitizeFilename(rendered)
}

func withValue(values map[string]string, key, value string) map[string]string {
	out := make(map[string]string, len(values)+1)
	for k, v := range values {
		out[k] = v
	}
	out[key] = value
	return out
}

// dropPlaceholder removes a placeholder together with the single separator
// character that precedes it, so "{a}-{b}" with b missing becomes "{a}".
func dropPlaceholder(format, placeholder string) string {
	idx := strings.Index(format, placeholder)
	if idx < 0 {
		return format
	}
	start := idx
	if start > 0 {
		prev := format[start-1]
		if prev == '-' || prev == '_' || prev == ' ' || prev == '.' {
			start--
		}
	}
	return format[:start] + format[idx+len(placeholder):]
}

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// SanitizeFilename produces a portable filename: diacritics stripped,
// filesystem-hostile characters replaced, whitespace collapsed to single
// spaces, and surrounding whitespace trimmed.
func SanitizeFilename(name string) string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}

	var builder strings.Builder
	builder.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' ||
			r == '"' || r == '<' || r == '>' || r == '|' || r == 0:
			builder.WriteRune('_')
		case unicode.IsSpace(r):
			builder.WriteRune(' ')
		case unicode.IsControl(r):
			// drop
		default:
			builder.WriteRune(r)
		}
	}

	cleaned := strings.Join(strings.Fields(builder.String()), " ")
	return strings.TrimSpace(cleaned)
}

package inference

import "strings"

// classificationPrompt instructs the model to answer with a single JSON
// object matching the Result schema.
const classificationPrompt = `You are a document filing assistant. Assign the file to exactly one category from the provided list.

Respond with a single JSON object and nothing else:
{
  "category": "<a category path from the list, verbatim>",
  "subpath": "<optional slash-separated subfolder, or empty>",
  "filename": "<optional suggested filename without extension, or empty>",
  "confidence": <number between 0 and 1>,
  "reason": "<one short sentence>"
}

Rules:
- category must be copied exactly from the list; never invent a new one.
- Use a low confidence when the evidence is thin.
- Keep subpath shallow: at most two segments.`

func buildUserPrompt(req Request) string {
	var builder strings.Builder
	builder.WriteString("Categories:\n")
	builder.WriteString(req.Categories)
	builder.WriteString("\nFile name: ")
	builder.WriteString(req.Filename)
	if req.SourcePath != "" {
		builder.WriteString("\nFound at: ")
		builder.WriteString(req.SourcePath)
	}
	if req.Hint != "" {
		builder.WriteString("\nKeyword analysis suggests: ")
		builder.WriteString(req.Hint)
		builder.WriteString(" (low confidence; override it if the content disagrees)")
	}
	if req.Content != "" {
		builder.WriteString("\nContent excerpt:\n")
		builder.WriteString(req.Content)
	}
	return builder.String()
}

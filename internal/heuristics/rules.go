package heuristics

import "regexp"

// builtinRules carry the sharp signals: specific document markers that
// identify a category with high confidence, plus directory hints that
// corroborate them.
var builtinRules = []Rule{
	{
		Name:      "tax-filing",
		Category:  "KB.Finance.Tax",
		Subpath:   "Filing/Federal",
		Strong:    []string{"form 1040", "1040", "w-2", "w2", "1099", "schedule c"},
		Weak:      []string{"tax", "taxes", "irs", "refund", "deduction", "filing"},
		PathHints: []string{"tax", "taxes", "irs"},
	},
	{
		Name:      "bank-statement",
		Category:  "KB.Finance.Banking",
		Strong:    []string{"account statement", "bank statement", "statement period"},
		Weak:      []string{"bank", "checking", "savings", "balance", "deposit", "withdrawal"},
		PathHints: []string{"bank", "statements"},
	},
	{
		Name:      "invoice",
		Category:  "KB.Finance.Invoices",
		Strong:    []string{"invoice number", "amount due", "invoice"},
		Weak:      []string{"receipt", "bill", "payment", "total", "due date"},
		PathHints: []string{"invoices", "receipts"},
	},
	{
		Name:      "contract",
		Category:  "KB.Work.Contracts",
		Strong:    []string{"non-disclosure", "nda", "this agreement"},
		Weak:      []string{"contract", "agreement", "party", "terms", "signature"},
		PathHints: []string{"contracts", "legal"},
	},
	{
		Name:      "meeting-notes",
		Category:  "KB.Work.Meetings",
		Strong:    []string{"action items", "meeting minutes"},
		Weak:      []string{"meeting", "agenda", "attendees", "minutes"},
		PathHints: []string{"meetings", "notes"},
	},
	{
		Name:      "medical",
		Category:  "KB.Personal.Health",
		Strong:    []string{"prescription", "diagnosis", "patient name"},
		Weak:      []string{"medical", "doctor", "clinic", "insurance", "claim"},
		PathHints: []string{"medical", "health"},
	},
	{
		Name:      "manual",
		Category:  "KB.Reference.Manuals",
		Strong:    []string{"user manual", "user guide", "installation guide"},
		Weak:      []string{"manual", "guide", "instructions", "setup"},
		PathHints: []string{"manuals"},
	},
	{
		Name:      "research",
		Category:  "KB.Reference.Research",
		Strong:    []string{"abstract", "references", "doi"},
		Weak:      []string{"paper", "study", "journal", "research"},
		PathHints: []string{"papers", "research"},
	},
}

var (
	yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	formPattern = regexp.MustCompile(`\b(1040|1099|w-?2|schedule [a-z])\b`)
)

// extractComponents pulls naming-template values out of the evidence text.
func extractComponents(haystack string) map[string]string {
	components := make(map[string]string)
	if year := yearPattern.FindString(haystack); year != "" {
		components["year"] = year
	}
	if form := formPattern.FindString(haystack); form != "" {
		components["form"] = form
	}
	if len(components) == 0 {
		return nil
	}
	return components
}

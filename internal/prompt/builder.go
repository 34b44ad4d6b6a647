// Package prompt assembles the hosted-model request payload for gap analysis.
package prompt

import (
	"fmt"
	"strings"
)

// TruncationMarker is appended to a document cut at the configured maximum length.
const TruncationMarker = "\n\n[document truncated]"

// systemInstruction states the comparison rules and the exact output schema so
// the model's response parses deterministically into models.AnalysisResult.
const systemInstruction = `You are a gap analysis agent. Compare Document A (the current state or source) against Document B (the target state, ideal, or requirements) according to the analysis objective.

Rules:
- Use only information explicitly present in Document A and Document B. Never infer, assume, or invent.
- For each relevant criterion from Document B: "matched" when Document A contains a direct, complete match; "partial" when Document A addresses it but lacks specificity, measurable detail, or a clear process; "missing" when Document A contains no supporting evidence.
- Every recommendation must be actionable on Document A and follow directly from cited evidence.
- Omit meta-commentary.

Return ONLY valid JSON with this exact structure, no markdown and no text before or after it:
{
  "matched": [{"item": string, "evidence": string}],
  "partial": [{"item": string, "evidence": string, "note": string}],
  "missing": [{"item": string, "note": string}],
  "recommendations": [string]
}`

// Payload is the assembled instruction for one analysis call.
type Payload struct {
	System string
	User   string
}

// Builder assembles analysis payloads. MaxDocumentChars bounds each embedded
// document; DefaultObjective substitutes for an empty objective.
type Builder struct {
	MaxDocumentChars int
	DefaultObjective string
}

// NewBuilder returns a Builder with the given limits.
func NewBuilder(maxDocumentChars int, defaultObjective string) *Builder {
	return &Builder{
		MaxDocumentChars: maxDocumentChars,
		DefaultObjective: defaultObjective,
	}
}

// Build assembles the payload from both documents' text and the objective.
// Both documents must be non-empty; an empty objective gets the default.
// Oversized documents are truncated with a marker, never rejected.
func (b *Builder) Build(docA, docB, objective string) (Payload, error) {
	if strings.TrimSpace(docA) == "" {
		return Payload{}, fmt.Errorf("document A text cannot be empty")
	}
	if strings.TrimSpace(docB) == "" {
		return Payload{}, fmt.Errorf("document B text cannot be empty")
	}
	if strings.TrimSpace(objective) == "" {
		objective = b.DefaultObjective
	}

	docA = b.truncate(docA)
	docB = b.truncate(docB)

	var u strings.Builder
	fmt.Fprintf(&u, "Analysis objective: %s\n\n", objective)
	u.WriteString("=== DOCUMENT A (source) ===\n")
	u.WriteString(docA)
	u.WriteString("\n=== END DOCUMENT A ===\n\n")
	u.WriteString("=== DOCUMENT B (target) ===\n")
	u.WriteString(docB)
	u.WriteString("\n=== END DOCUMENT B ===\n")

	return Payload{System: systemInstruction, User: u.String()}, nil
}

// truncate cuts s from the end at MaxDocumentChars and appends the marker.
// A non-positive limit disables truncation.
func (b *Builder) truncate(s string) string {
	if b.MaxDocumentChars <= 0 || len(s) <= b.MaxDocumentChars {
		return s
	}
	return s[:b.MaxDocumentChars] + TruncationMarker
}

package models

// DirectiveKind is the semantic rendering instruction emitted to the external
// card renderer. The core never emits markup, only the directive and its data.
type DirectiveKind string

// Directive kinds.
const (
	DirectiveWelcome         DirectiveKind = "welcome"
	DirectivePromptMethod    DirectiveKind = "prompt_for_method"
	DirectivePromptDocument  DirectiveKind = "prompt_for_document"
	DirectivePromptObjective DirectiveKind = "prompt_for_objective"
	DirectiveConfirmReady    DirectiveKind = "confirm_ready"
	DirectiveAnalysisResult  DirectiveKind = "analysis_result"
	DirectiveErrorMessage    DirectiveKind = "error_message"
	DirectiveStatus          DirectiveKind = "status"
)

// DocumentSlot names which document a prompt_for_document directive asks for.
type DocumentSlot string

// Document slots.
const (
	DocumentA DocumentSlot = "a"
	DocumentB DocumentSlot = "b"
)

// Directive is one rendering instruction for the messaging adapter.
type Directive struct {
	// ID identifies the card instance so the adapter can later replace it
	// with its completed (button-less) variant.
	ID   string        `json:"id"`
	Kind DirectiveKind `json:"kind"`

	// State is the session state after this turn, for renderer context.
	State State `json:"state"`

	// Text is a short human-readable explanation (error reason, status line).
	Text string `json:"text,omitempty"`

	// Document is set for prompt_for_document directives.
	Document DocumentSlot `json:"document,omitempty"`

	// Result is set for analysis_result directives.
	Result *AnalysisResult `json:"result,omitempty"`

	// DocAName and DocBName label the compared documents on result cards.
	DocAName string `json:"doc_a_name,omitempty"`
	DocBName string `json:"doc_b_name,omitempty"`
}

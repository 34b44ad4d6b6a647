// Package models defines core data structures for sessions, analysis results,
// inbound events, and rendering directives.
package models

import "time"

// State is a session's position in the input-collection flow.
type State string

// Session states.
const (
	StateIdle                State = "idle"
	StateCollectingMethod    State = "collecting_method"
	StateCollectingDocA      State = "collecting_doc_a"
	StateCollectingDocB      State = "collecting_doc_b"
	StateCollectingObjective State = "collecting_objective"
	StateReady               State = "ready"
	StateAnalyzing           State = "analyzing"
	StateComplete            State = "complete"
	StateError               State = "error"
)

// States lists every session state, in flow order.
func States() []State {
	return []State{
		StateIdle,
		StateCollectingMethod,
		StateCollectingDocA,
		StateCollectingDocB,
		StateCollectingObjective,
		StateReady,
		StateAnalyzing,
		StateComplete,
		StateError,
	}
}

// InputMethod is how the user provides documents, chosen once per session.
type InputMethod string

// Input methods.
const (
	InputUpload InputMethod = "upload"
	InputPaste  InputMethod = "paste"
)

// Session tracks one conversation's progress toward a gap report.
// DocAText and DocBText are set once each and never overwritten after
// acceptance; only a reset clears them (by full replacement of the session).
type Session struct {
	ConversationID string      `json:"conversation_id" db:"conversation_id"`
	State          State       `json:"state" db:"state"`
	InputMethod    InputMethod `json:"input_method,omitempty" db:"input_method"`

	DocAText string `json:"doc_a_text,omitempty" db:"doc_a_text"`
	DocAName string `json:"doc_a_name,omitempty" db:"doc_a_name"`
	DocBText string `json:"doc_b_text,omitempty" db:"doc_b_text"`
	DocBName string `json:"doc_b_name,omitempty" db:"doc_b_name"`

	Objective string `json:"objective,omitempty" db:"objective"`

	// Result is set exactly once, on the transition to StateComplete.
	Result *AnalysisResult `json:"result,omitempty" db:"result"`

	// LastError holds the failure stored on the transition to StateError,
	// kept for display and cleared when the user retries.
	LastError string `json:"last_error,omitempty" db:"last_error"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Touch marks the session as updated now.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// NewSession returns a fresh idle session for the given conversation.
func NewSession(conversationID string) *Session {
	now := time.Now()
	return &Session{
		ConversationID: conversationID,
		State:          StateIdle,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

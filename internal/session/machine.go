// Package session holds the conversation state machine and session stores.
package session

import (
	"github.com/hyperjump/sukima/internal/models"
)

// EventKind classifies a machine-level event derived from one inbound turn.
type EventKind string

// Machine events.
const (
	EventStart        EventKind = "start"         // "start"/"hello"/"help" command
	EventChooseMethod EventKind = "choose_method" // method selection form submit
	EventDocument     EventKind = "document"      // accepted document text (pasted or extracted)
	EventObjective    EventKind = "objective"     // objective text
	EventSkip         EventKind = "skip"          // explicit objective skip
	EventAnalyze      EventKind = "analyze"       // "analyze" confirmation
	EventAnalysisDone EventKind = "analysis_done" // internal: analysis succeeded
	EventAnalysisFail EventKind = "analysis_fail" // internal: analysis failed
	EventRetry        EventKind = "retry"         // retry affordance from the error state
	EventReset        EventKind = "reset"         // "reset" command, valid from any state
	EventStatus       EventKind = "status"        // "status" command, never transitions
)

// Event is one input to the state machine.
type Event struct {
	Kind   EventKind
	Method models.InputMethod     // for EventChooseMethod
	Text   string                 // document text or objective
	Name   string                 // document display name
	Result *models.AnalysisResult // for EventAnalysisDone
	Err    string                 // for EventAnalysisFail
}

// Effect names what the orchestrator should do or emit after a transition.
type Effect string

// Effects.
const (
	EffectWelcome         Effect = "welcome"
	EffectPromptMethod    Effect = "prompt_method"
	EffectPromptDocA      Effect = "prompt_doc_a"
	EffectPromptDocB      Effect = "prompt_doc_b"
	EffectPromptObjective Effect = "prompt_objective"
	EffectConfirmReady    Effect = "confirm_ready"
	// EffectBeginAnalysis tells the orchestrator to run the analysis pipeline.
	EffectBeginAnalysis   Effect = "begin_analysis"
	EffectAnalysisResult  Effect = "analysis_result"
	EffectErrorMessage    Effect = "error_message"
	EffectStatus          Effect = "status"
)

type transition struct {
	next   models.State
	effect Effect
}

// table is the valid-transition table: (state, event) -> (state, effect).
// Reset and status are handled separately because they apply from any state.
var table = map[models.State]map[EventKind]transition{
	models.StateIdle: {
		EventStart: {models.StateCollectingMethod, EffectPromptMethod},
	},
	models.StateCollectingMethod: {
		EventChooseMethod: {models.StateCollectingDocA, EffectPromptDocA},
	},
	models.StateCollectingDocA: {
		EventDocument: {models.StateCollectingDocB, EffectPromptDocB},
	},
	models.StateCollectingDocB: {
		EventDocument: {models.StateCollectingObjective, EffectPromptObjective},
	},
	models.StateCollectingObjective: {
		EventObjective: {models.StateReady, EffectConfirmReady},
		EventSkip:      {models.StateReady, EffectConfirmReady},
	},
	models.StateReady: {
		EventAnalyze: {models.StateAnalyzing, EffectBeginAnalysis},
	},
	models.StateAnalyzing: {
		EventAnalysisDone: {models.StateComplete, EffectAnalysisResult},
		EventAnalysisFail: {models.StateError, EffectErrorMessage},
	},
	models.StateError: {
		EventRetry: {models.StateReady, EffectConfirmReady},
	},
}

// Next is the pure transition function. It returns the destination state and
// effect for (state, kind), with ok=false for invalid pairs. Reset is valid
// from every state and returns to idle; status never transitions.
func Next(state models.State, kind EventKind) (models.State, Effect, bool) {
	switch kind {
	case EventReset:
		return models.StateIdle, EffectWelcome, true
	case EventStatus:
		return state, EffectStatus, true
	}
	if tr, ok := table[state][kind]; ok {
		return tr.next, tr.effect, true
	}
	return state, PromptFor(state), false
}

// PromptFor returns the effect that re-emits the given state's current step
// prompt. Used for invalid (state, event) pairs: the machine never advances
// on unrecognized input, and never fails on unexpected input shape.
func PromptFor(state models.State) Effect {
	switch state {
	case models.StateCollectingMethod:
		return EffectPromptMethod
	case models.StateCollectingDocA:
		return EffectPromptDocA
	case models.StateCollectingDocB:
		return EffectPromptDocB
	case models.StateCollectingObjective:
		return EffectPromptObjective
	case models.StateReady:
		return EffectConfirmReady
	case models.StateAnalyzing:
		return EffectStatus
	case models.StateComplete:
		return EffectAnalysisResult
	case models.StateError:
		return EffectErrorMessage
	default:
		return EffectWelcome
	}
}

// Apply consults the transition table and, on a valid transition, records the
// event's data on the session and moves it to the destination state. On an
// invalid pair the session is untouched and the current step's prompt effect
// is returned. Reset replaces the session wholesale.
func Apply(sess *models.Session, ev Event) Effect {
	next, effect, ok := Next(sess.State, ev.Kind)
	if !ok {
		return effect
	}

	switch ev.Kind {
	case EventReset:
		*sess = *models.NewSession(sess.ConversationID)
		return effect
	case EventStatus:
		return effect
	case EventChooseMethod:
		sess.InputMethod = ev.Method
	case EventDocument:
		if sess.State == models.StateCollectingDocA {
			sess.DocAText = ev.Text
			sess.DocAName = ev.Name
		} else {
			sess.DocBText = ev.Text
			sess.DocBName = ev.Name
		}
	case EventObjective:
		sess.Objective = ev.Text
	case EventAnalysisDone:
		sess.Result = ev.Result
	case EventAnalysisFail:
		sess.LastError = ev.Err
	case EventRetry:
		sess.LastError = ""
	}

	sess.State = next
	sess.Touch()
	return effect
}

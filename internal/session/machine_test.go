package session

import (
	"testing"

	"github.com/hyperjump/sukima/internal/models"
)

func TestNext_validTransitions(t *testing.T) {
	tests := []struct {
		from       models.State
		event      EventKind
		wantState  models.State
		wantEffect Effect
	}{
		{models.StateIdle, EventStart, models.StateCollectingMethod, EffectPromptMethod},
		{models.StateCollectingMethod, EventChooseMethod, models.StateCollectingDocA, EffectPromptDocA},
		{models.StateCollectingDocA, EventDocument, models.StateCollectingDocB, EffectPromptDocB},
		{models.StateCollectingDocB, EventDocument, models.StateCollectingObjective, EffectPromptObjective},
		{models.StateCollectingObjective, EventObjective, models.StateReady, EffectConfirmReady},
		{models.StateCollectingObjective, EventSkip, models.StateReady, EffectConfirmReady},
		{models.StateReady, EventAnalyze, models.StateAnalyzing, EffectBeginAnalysis},
		{models.StateAnalyzing, EventAnalysisDone, models.StateComplete, EffectAnalysisResult},
		{models.StateAnalyzing, EventAnalysisFail, models.StateError, EffectErrorMessage},
		{models.StateError, EventRetry, models.StateReady, EffectConfirmReady},
	}
	for _, tt := range tests {
		state, effect, ok := Next(tt.from, tt.event)
		if !ok {
			t.Errorf("Next(%s, %s): expected valid transition", tt.from, tt.event)
			continue
		}
		if state != tt.wantState || effect != tt.wantEffect {
			t.Errorf("Next(%s, %s) = (%s, %s), want (%s, %s)",
				tt.from, tt.event, state, effect, tt.wantState, tt.wantEffect)
		}
	}
}

func TestNext_resetFromEveryState(t *testing.T) {
	for _, s := range models.States() {
		state, effect, ok := Next(s, EventReset)
		if !ok || state != models.StateIdle || effect != EffectWelcome {
			t.Errorf("Next(%s, reset) = (%s, %s, %v), want (idle, welcome, true)", s, state, effect, ok)
		}
	}
}

func TestNext_statusNeverTransitions(t *testing.T) {
	for _, s := range models.States() {
		state, effect, ok := Next(s, EventStatus)
		if !ok || state != s || effect != EffectStatus {
			t.Errorf("Next(%s, status) = (%s, %s, %v), want same state", s, state, effect, ok)
		}
	}
}

// TestNext_invalidPairsAreNoOps walks every (state, event) pair not in the
// transition table and checks the state is unchanged with the current step's
// prompt re-emitted.
func TestNext_invalidPairsAreNoOps(t *testing.T) {
	valid := map[models.State]map[EventKind]bool{
		models.StateIdle:                {EventStart: true},
		models.StateCollectingMethod:    {EventChooseMethod: true},
		models.StateCollectingDocA:      {EventDocument: true},
		models.StateCollectingDocB:      {EventDocument: true},
		models.StateCollectingObjective: {EventObjective: true, EventSkip: true},
		models.StateReady:               {EventAnalyze: true},
		models.StateAnalyzing:           {EventAnalysisDone: true, EventAnalysisFail: true},
		models.StateComplete:            {},
		models.StateError:               {EventRetry: true},
	}
	events := []EventKind{
		EventStart, EventChooseMethod, EventDocument, EventObjective, EventSkip,
		EventAnalyze, EventAnalysisDone, EventAnalysisFail, EventRetry,
	}
	for _, s := range models.States() {
		for _, ev := range events {
			if valid[s][ev] {
				continue
			}
			state, effect, ok := Next(s, ev)
			if ok {
				t.Errorf("Next(%s, %s): expected invalid", s, ev)
				continue
			}
			if state != s {
				t.Errorf("Next(%s, %s) moved to %s on invalid event", s, ev, state)
			}
			if effect != PromptFor(s) {
				t.Errorf("Next(%s, %s) effect %s, want re-prompt %s", s, ev, effect, PromptFor(s))
			}
		}
	}
}

func TestApply_recordsCollectedInputs(t *testing.T) {
	sess := models.NewSession("conv-1")

	Apply(sess, Event{Kind: EventStart})
	Apply(sess, Event{Kind: EventChooseMethod, Method: models.InputPaste})
	if sess.InputMethod != models.InputPaste {
		t.Errorf("input method not recorded: %v", sess.InputMethod)
	}

	Apply(sess, Event{Kind: EventDocument, Text: "Requires: Python, SQL.", Name: "Pasted Document A"})
	if sess.DocAText != "Requires: Python, SQL." || sess.State != models.StateCollectingDocB {
		t.Errorf("doc A not recorded: %+v", sess)
	}

	Apply(sess, Event{Kind: EventDocument, Text: "Has: Python.", Name: "Pasted Document B"})
	if sess.DocBText != "Has: Python." || sess.State != models.StateCollectingObjective {
		t.Errorf("doc B not recorded: %+v", sess)
	}

	Apply(sess, Event{Kind: EventObjective, Text: "skills gap"})
	if sess.Objective != "skills gap" || sess.State != models.StateReady {
		t.Errorf("objective not recorded: %+v", sess)
	}

	Apply(sess, Event{Kind: EventAnalyze})
	if sess.State != models.StateAnalyzing {
		t.Errorf("analyze did not enter analyzing: %s", sess.State)
	}

	result := &models.AnalysisResult{Matched: []models.MatchedItem{{Item: "Python"}}}
	Apply(sess, Event{Kind: EventAnalysisDone, Result: result})
	if sess.State != models.StateComplete || sess.Result != result {
		t.Errorf("result not stored on complete: %+v", sess)
	}
}

func TestApply_invalidEventLeavesSessionUntouched(t *testing.T) {
	sess := models.NewSession("conv-1")
	Apply(sess, Event{Kind: EventStart})
	before := *sess

	// Pasting a document while choosing the input method is a no-op.
	effect := Apply(sess, Event{Kind: EventDocument, Text: "too early"})
	if effect != EffectPromptMethod {
		t.Errorf("effect = %s, want re-prompt of method step", effect)
	}
	if *sess != before {
		t.Errorf("session mutated on invalid event: %+v", sess)
	}
}

func TestApply_resetFromEveryStateYieldsFreshIdleSession(t *testing.T) {
	for _, s := range models.States() {
		sess := models.NewSession("conv-9")
		sess.State = s
		sess.DocAText = "a"
		sess.DocBText = "b"
		sess.Objective = "o"
		sess.InputMethod = models.InputUpload
		sess.Result = &models.AnalysisResult{}
		sess.LastError = "boom"

		effect := Apply(sess, Event{Kind: EventReset})
		if effect != EffectWelcome {
			t.Errorf("reset from %s: effect %s", s, effect)
		}
		if sess.State != models.StateIdle {
			t.Errorf("reset from %s: state %s", s, sess.State)
		}
		if sess.DocAText != "" || sess.DocBText != "" || sess.Objective != "" ||
			sess.InputMethod != "" || sess.Result != nil || sess.LastError != "" {
			t.Errorf("reset from %s left residual data: %+v", s, sess)
		}
		if sess.ConversationID != "conv-9" {
			t.Errorf("reset lost conversation id")
		}
	}
}

func TestApply_errorRetryKeepsDocuments(t *testing.T) {
	sess := models.NewSession("conv-1")
	sess.State = models.StateAnalyzing
	sess.DocAText = "a"
	sess.DocBText = "b"

	Apply(sess, Event{Kind: EventAnalysisFail, Err: "model endpoint unreachable"})
	if sess.State != models.StateError || sess.LastError == "" {
		t.Fatalf("failure not recorded: %+v", sess)
	}

	effect := Apply(sess, Event{Kind: EventRetry})
	if effect != EffectConfirmReady || sess.State != models.StateReady {
		t.Errorf("retry should re-enter ready: %s %s", effect, sess.State)
	}
	if sess.DocAText != "a" || sess.DocBText != "b" {
		t.Errorf("retry discarded collected documents: %+v", sess)
	}
	if sess.LastError != "" {
		t.Errorf("retry should clear the stored error")
	}
}

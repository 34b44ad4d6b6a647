// Package bot orchestrates inbound turn events: it applies the session state
// machine, drives document extraction and analysis at the right transitions,
// and decides what the renderer shows next.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/sukima/internal/analysis"
	"github.com/hyperjump/sukima/internal/extract"
	"github.com/hyperjump/sukima/internal/models"
	"github.com/hyperjump/sukima/internal/prompt"
	"github.com/hyperjump/sukima/internal/session"
	"go.uber.org/zap"
)

// Analyzer runs one gap analysis. Implemented by analysis.Client; mocked in
// tests. Must be safe to invoke concurrently for distinct sessions.
type Analyzer interface {
	Analyze(ctx context.Context, p prompt.Payload) (*models.AnalysisResult, error)
}

// Downloader fetches an uploaded attachment's bytes and content type.
type Downloader interface {
	Download(ctx context.Context, ref *models.AttachmentRef) ([]byte, string, error)
}

// Limits are the hot-reloadable tunables consumed by the orchestrator.
type Limits struct {
	AnalysisTimeout  time.Duration
	MaxDocumentChars int
	DefaultObjective string
}

// Bot is the conversation orchestrator. Events for one conversation are
// serialized by a per-conversation mutex; distinct conversations proceed
// concurrently.
type Bot struct {
	store      session.Store
	extractor  *extract.Extractor
	analyzer   Analyzer
	downloader Downloader
	logger     *zap.Logger

	limits atomic.Pointer[Limits]

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	inflight map[string]context.CancelFunc
}

// New creates a Bot with the given collaborators.
func New(store session.Store, extractor *extract.Extractor, analyzer Analyzer, downloader Downloader, limits Limits, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bot{
		store:      store,
		extractor:  extractor,
		analyzer:   analyzer,
		downloader: downloader,
		logger:     logger,
		locks:      make(map[string]*sync.Mutex),
		inflight:   make(map[string]context.CancelFunc),
	}
	b.limits.Store(&limits)
	return b
}

// UpdateLimits swaps in new tunables. Called by the config watcher; in-flight
// turns keep the limits they started with.
func (b *Bot) UpdateLimits(limits Limits) {
	b.limits.Store(&limits)
	b.logger.Info("limits updated",
		zap.Duration("analysis_timeout", limits.AnalysisTimeout),
		zap.Int("max_document_chars", limits.MaxDocumentChars))
}

// lockFor returns the serialization mutex for a conversation.
func (b *Bot) lockFor(conversationID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[conversationID]
	if !ok {
		l = &sync.Mutex{}
		b.locks[conversationID] = l
	}
	return l
}

// cancelInflight cancels a pending analysis for the conversation, if any.
func (b *Bot) cancelInflight(conversationID string) {
	b.mu.Lock()
	cancel := b.inflight[conversationID]
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (b *Bot) setInflight(conversationID string, cancel context.CancelFunc) {
	b.mu.Lock()
	b.inflight[conversationID] = cancel
	b.mu.Unlock()
}

func (b *Bot) clearInflight(conversationID string) {
	b.mu.Lock()
	delete(b.inflight, conversationID)
	b.mu.Unlock()
}

// HandleEvent processes one inbound turn event and returns the rendering
// directive for it. Events for the same conversation are applied strictly in
// arrival order.
func (b *Bot) HandleEvent(ctx context.Context, ev *models.InboundEvent) (*models.Directive, error) {
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	// A reset must be able to interrupt an in-flight analysis for the same
	// conversation before queueing behind its lock.
	if isResetEvent(ev) {
		b.cancelInflight(ev.ConversationID)
	}

	lock := b.lockFor(ev.ConversationID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := b.store.Get(ctx, ev.ConversationID)
	if errors.Is(err, session.ErrNotFound) {
		sess = models.NewSession(ev.ConversationID)
	} else if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	mev, errDirective := b.classify(ctx, sess, ev)
	if errDirective != nil {
		// Recoverable input failure: session untouched, same step re-rendered
		// with a short explanation.
		return errDirective, nil
	}

	effect := session.Apply(sess, mev)

	if effect == session.EffectBeginAnalysis {
		effect = b.runAnalysis(ctx, sess)
	}

	if err := b.store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	b.logger.Debug("event handled",
		zap.String("conversation_id", ev.ConversationID),
		zap.String("event_kind", string(ev.Kind)),
		zap.String("state", string(sess.State)))

	return b.directiveFor(effect, sess), nil
}

// runAnalysis drives the analyzing step: prompt assembly, the model call
// under the configured timeout, and the resulting transition. The call is
// cancellable by a reset for the same conversation; a timeout or any client
// error forces the error state, never a stuck analyzing session.
func (b *Bot) runAnalysis(ctx context.Context, sess *models.Session) session.Effect {
	limits := b.limits.Load()

	builder := prompt.NewBuilder(limits.MaxDocumentChars, limits.DefaultObjective)
	payload, err := builder.Build(sess.DocAText, sess.DocBText, sess.Objective)
	if err != nil {
		return session.Apply(sess, session.Event{Kind: session.EventAnalysisFail, Err: err.Error()})
	}

	actx, cancel := context.WithTimeout(ctx, limits.AnalysisTimeout)
	b.setInflight(sess.ConversationID, cancel)
	defer func() {
		cancel()
		b.clearInflight(sess.ConversationID)
	}()

	result, err := b.analyzer.Analyze(actx, payload)
	if err != nil {
		b.logger.Warn("analysis failed",
			zap.String("conversation_id", sess.ConversationID),
			zap.Error(err))
		return session.Apply(sess, session.Event{
			Kind: session.EventAnalysisFail,
			Err:  userMessageFor(err),
		})
	}
	return session.Apply(sess, session.Event{Kind: session.EventAnalysisDone, Result: result})
}

// userMessageFor maps an analysis failure to the short explanation shown on
// the error card.
func userMessageFor(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The analysis timed out. You can retry."
	case errors.Is(err, context.Canceled):
		return "The analysis was canceled."
	}
	switch analysis.ErrorKind(err) {
	case analysis.KindQuota:
		return "The analysis service is over its usage limit. Please try again later."
	case analysis.KindParse:
		return "The analysis service returned an unreadable result. You can retry."
	case analysis.KindTransport:
		return "Could not reach the analysis service. You can retry."
	default:
		return fmt.Sprintf("Analysis failed: %v", err)
	}
}

// directiveFor maps a machine effect onto the semantic rendering directive.
func (b *Bot) directiveFor(effect session.Effect, sess *models.Session) *models.Directive {
	d := &models.Directive{
		ID:    uuid.NewString(),
		State: sess.State,
	}
	switch effect {
	case session.EffectWelcome:
		d.Kind = models.DirectiveWelcome
		d.Text = "Compare two documents to identify gaps. Type start to begin."
	case session.EffectPromptMethod:
		d.Kind = models.DirectivePromptMethod
	case session.EffectPromptDocA:
		d.Kind = models.DirectivePromptDocument
		d.Document = models.DocumentA
	case session.EffectPromptDocB:
		d.Kind = models.DirectivePromptDocument
		d.Document = models.DocumentB
	case session.EffectPromptObjective:
		d.Kind = models.DirectivePromptObjective
	case session.EffectConfirmReady:
		d.Kind = models.DirectiveConfirmReady
		d.DocAName = sess.DocAName
		d.DocBName = sess.DocBName
	case session.EffectAnalysisResult:
		d.Kind = models.DirectiveAnalysisResult
		d.Result = sess.Result
		d.DocAName = sess.DocAName
		d.DocBName = sess.DocBName
	case session.EffectErrorMessage:
		d.Kind = models.DirectiveErrorMessage
		d.Text = sess.LastError
	case session.EffectStatus:
		d.Kind = models.DirectiveStatus
		d.Text = statusLine(sess)
	default:
		d.Kind = models.DirectiveWelcome
	}
	return d
}

// statusLine describes the current state without side effects.
func statusLine(sess *models.Session) string {
	docA, docB := sess.DocAName, sess.DocBName
	if docA == "" {
		docA = "none"
	}
	if docB == "" {
		docB = "none"
	}
	return fmt.Sprintf("State: %s. Document A: %s. Document B: %s.", sess.State, docA, docB)
}

// errorDirective renders a recoverable input failure for the current step.
func errorDirective(sess *models.Session, text string) *models.Directive {
	return &models.Directive{
		ID:    uuid.NewString(),
		Kind:  models.DirectiveErrorMessage,
		State: sess.State,
		Text:  text,
	}
}

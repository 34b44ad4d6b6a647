package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/sukima/internal/extract"
	"github.com/hyperjump/sukima/internal/models"
	"github.com/hyperjump/sukima/internal/session"
	"github.com/hyperjump/sukima/pkg/utils"
	"go.uber.org/zap"
)

// Form field keys and action values understood from card submissions.
const (
	fieldAction    = "action"
	fieldMethod    = "method"
	fieldObjective = "objective"

	actionUpload  = "upload"
	actionPaste   = "paste"
	actionAnalyze = "analyze"
	actionSkip    = "skip"
	actionRetry   = "retry"
	actionReset   = "reset"
)

// startCommands are the text commands that begin a session from idle.
var startCommands = map[string]bool{
	"start": true, "hello": true, "hi": true, "help": true, "begin": true,
}

// isResetEvent reports whether the event is a reset, checked before taking
// the conversation lock so a reset can cancel an in-flight analysis.
func isResetEvent(ev *models.InboundEvent) bool {
	switch ev.Kind {
	case models.EventMessage:
		cmd := strings.ToLower(strings.TrimSpace(ev.Text))
		return cmd == "reset" || cmd == "cancel"
	case models.EventFormSubmit:
		return ev.FormFields[fieldAction] == actionReset
	}
	return false
}

// classify turns an inbound platform event into a state machine event. For
// file uploads it downloads and extracts the document; a failed extraction
// returns an error directive instead (session untouched, same step re-asked).
func (b *Bot) classify(ctx context.Context, sess *models.Session, ev *models.InboundEvent) (session.Event, *models.Directive) {
	switch ev.Kind {
	case models.EventMessage:
		return b.classifyMessage(sess, ev.Text), nil
	case models.EventFormSubmit:
		return classifyForm(ev.FormFields), nil
	case models.EventFileUpload:
		return b.classifyUpload(ctx, sess, ev.Attachment)
	default:
		// Unknown kinds were rejected by Validate; anything that slips
		// through becomes a no-op re-prompt.
		return session.Event{Kind: EventUnrecognized}, nil
	}
}

// EventUnrecognized is deliberately absent from the transition table, so the
// machine absorbs it as a no-op that re-emits the current step's prompt.
const EventUnrecognized session.EventKind = "unrecognized"

func (b *Bot) classifyMessage(sess *models.Session, text string) session.Event {
	cmd := strings.ToLower(strings.TrimSpace(text))
	switch {
	case startCommands[cmd]:
		return session.Event{Kind: session.EventStart}
	case cmd == "reset" || cmd == "cancel":
		return session.Event{Kind: session.EventReset}
	case cmd == "status":
		return session.Event{Kind: session.EventStatus}
	case cmd == "analyze":
		return session.Event{Kind: session.EventAnalyze}
	case cmd == "retry":
		return session.Event{Kind: session.EventRetry}
	case cmd == "skip":
		return session.Event{Kind: session.EventSkip}
	}

	// Free text: a pasted document while collecting one, or the objective.
	switch sess.State {
	case models.StateCollectingDocA:
		return session.Event{Kind: session.EventDocument, Text: text, Name: "Pasted Document A"}
	case models.StateCollectingDocB:
		return session.Event{Kind: session.EventDocument, Text: text, Name: "Pasted Document B"}
	case models.StateCollectingObjective:
		return session.Event{Kind: session.EventObjective, Text: strings.TrimSpace(text)}
	}
	return session.Event{Kind: EventUnrecognized}
}

func classifyForm(fields map[string]string) session.Event {
	switch fields[fieldAction] {
	case actionUpload:
		return session.Event{Kind: session.EventChooseMethod, Method: models.InputUpload}
	case actionPaste:
		return session.Event{Kind: session.EventChooseMethod, Method: models.InputPaste}
	case actionAnalyze:
		return session.Event{Kind: session.EventAnalyze}
	case actionSkip:
		return session.Event{Kind: session.EventSkip}
	case actionRetry:
		return session.Event{Kind: session.EventRetry}
	case actionReset:
		return session.Event{Kind: session.EventReset}
	}
	if method, ok := fields[fieldMethod]; ok {
		switch method {
		case actionUpload:
			return session.Event{Kind: session.EventChooseMethod, Method: models.InputUpload}
		case actionPaste:
			return session.Event{Kind: session.EventChooseMethod, Method: models.InputPaste}
		}
	}
	if objective, ok := fields[fieldObjective]; ok {
		if strings.TrimSpace(objective) == "" {
			return session.Event{Kind: session.EventSkip}
		}
		return session.Event{Kind: session.EventObjective, Text: strings.TrimSpace(objective)}
	}
	return session.Event{Kind: EventUnrecognized}
}

// classifyUpload downloads and extracts an attachment. Only performed while a
// document is being collected; uploads in any other state are no-ops.
func (b *Bot) classifyUpload(ctx context.Context, sess *models.Session, ref *models.AttachmentRef) (session.Event, *models.Directive) {
	if sess.State != models.StateCollectingDocA && sess.State != models.StateCollectingDocB {
		return session.Event{Kind: EventUnrecognized}, nil
	}

	name := ref.Name
	if name == "" {
		name = "document"
	}

	data, contentType, err := b.downloader.Download(ctx, ref)
	if err != nil {
		b.logger.Warn("attachment download failed",
			zap.String("conversation_id", sess.ConversationID),
			zap.String("url", ref.DownloadURL),
			zap.Error(err))
		return session.Event{}, errorDirective(sess,
			fmt.Sprintf("Could not download %s. Please upload it again.", name))
	}

	declared := ref.ContentType
	if declared == "" {
		declared = contentType
	}
	format := extract.ParseFormat(declared, name)

	text, err := b.extractor.Extract(data, format)
	if err != nil {
		b.logger.Warn("extraction failed",
			zap.String("conversation_id", sess.ConversationID),
			zap.String("file", name),
			zap.String("format", string(format)),
			zap.Error(err))
		switch {
		case errors.Is(err, extract.ErrUnsupportedFormat):
			return session.Event{}, errorDirective(sess,
				fmt.Sprintf("Unsupported file type: %s. Please use PDF, Word (.docx), or plain text.", name))
		default:
			return session.Event{}, errorDirective(sess,
				fmt.Sprintf("Could not read %s as its declared type. Please check the file and upload it again.", name))
		}
	}
	if strings.TrimSpace(text) == "" {
		return session.Event{}, errorDirective(sess,
			fmt.Sprintf("%s contains no extractable text. Please upload a different file.", name))
	}

	b.logger.Debug("attachment extracted",
		zap.String("conversation_id", sess.ConversationID),
		zap.String("file", name),
		zap.String("format", string(format)),
		zap.String("preview", utils.Truncate(text, 120)))

	return session.Event{Kind: session.EventDocument, Text: text, Name: name}, nil
}

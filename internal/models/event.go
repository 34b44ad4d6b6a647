package models

import "fmt"

// EventKind classifies an inbound turn event from the messaging platform.
type EventKind string

// Inbound event kinds.
const (
	// EventMessage is a plain text message.
	EventMessage EventKind = "message"
	// EventFormSubmit is a card button click with attached field values.
	EventFormSubmit EventKind = "form_submit"
	// EventFileUpload is a file-attachment reference.
	EventFileUpload EventKind = "file_upload"
)

// AttachmentRef points at an uploaded file held by the messaging platform.
type AttachmentRef struct {
	Name        string `json:"name,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	DownloadURL string `json:"download_url"`
}

// InboundEvent is one turn event for a conversation.
type InboundEvent struct {
	ConversationID string            `json:"conversation_id"`
	Kind           EventKind         `json:"event_kind"`
	Text           string            `json:"text,omitempty"`
	FormFields     map[string]string `json:"form_fields,omitempty"`
	Attachment     *AttachmentRef    `json:"attachment_ref,omitempty"`
}

// Validate checks the fields required for the event's kind.
func (e *InboundEvent) Validate() error {
	if e.ConversationID == "" {
		return fmt.Errorf("conversation_id cannot be empty")
	}
	switch e.Kind {
	case EventMessage, EventFormSubmit:
		return nil
	case EventFileUpload:
		if e.Attachment == nil || e.Attachment.DownloadURL == "" {
			return fmt.Errorf("file_upload event requires attachment_ref with download_url")
		}
		return nil
	default:
		return fmt.Errorf("unknown event_kind %q", e.Kind)
	}
}

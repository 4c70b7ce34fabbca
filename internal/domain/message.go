package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attachment references a file uploaded through the external storage
// step. The core only records what that step returned.
type Attachment struct {
	URL       string `json:"url"`
	StorageID string `json:"storage_id"`
	MediaType string `json:"media_type"`
}

type Message struct {
	ID             uuid.UUID    `json:"id"`
	ConversationID uuid.UUID    `json:"conversation_id"`
	SenderID       uuid.UUID    `json:"sender_id"`
	ReceiverID     uuid.UUID    `json:"receiver_id"`
	Content        string       `json:"content"`
	Attachments    []Attachment `json:"attachments"`
	Read           bool         `json:"read"`
	CreatedAt      time.Time    `json:"created_at"`

	// Joined fields
	SenderDisplayName string `json:"sender_display_name,omitempty"`
}

// previewLimit caps the conversation summary snippet length, in runes.
const previewLimit = 30

// PreviewText shortens message content for the conversation's
// last-message summary. Rune-safe; appends "…" when truncated.
func PreviewText(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit]) + "…"
}

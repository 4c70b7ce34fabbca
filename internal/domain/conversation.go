package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party thread between a guest and a host,
// optionally scoped to a single property. The pair is stored in
// canonical order (User1ID < User2ID) so lookups are order-irrelevant.
type Conversation struct {
	ID         uuid.UUID  `json:"id"`
	User1ID    uuid.UUID  `json:"user1_id"`
	User2ID    uuid.UUID  `json:"user2_id"`
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`

	LastMessagePreview  *string    `json:"last_message_preview,omitempty"`
	LastMessageSenderID *uuid.UUID `json:"last_message_sender_id,omitempty"`
	LastMessageAt       *time.Time `json:"last_message_at,omitempty"`

	// UnreadCounts always has an entry for both participants.
	UnreadCounts map[uuid.UUID]int `json:"unread_counts"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields for frontend
	OtherUserID          uuid.UUID `json:"other_user_id,omitempty"`
	OtherUserDisplayName string    `json:"other_display_name,omitempty"`
	OtherUserAvatarURL   *string   `json:"other_avatar_url,omitempty"`
	PropertyTitle        *string   `json:"property_title,omitempty"`
	PropertyLocation     *string   `json:"property_location,omitempty"`
}

// HasParticipant reports whether userID is a member of the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the member that is not userID. The caller
// must already be a verified participant.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// UnreadFor returns the unread counter for one participant.
func (c *Conversation) UnreadFor(userID uuid.UUID) int {
	return c.UnreadCounts[userID]
}

// CanonicalPair orders two user ids so (a,b) and (b,a) map to the same
// stored pair.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dkovac/renthub/internal/domain"
)

// ErrConflict is returned by Create calls that lose a uniqueness race.
// Callers should retry the lookup that preceded the create.
var ErrConflict = errors.New("conflicting record already exists")

type ConversationRepository interface {
	// Create inserts a new conversation. Returns ErrConflict when an
	// active conversation with the same pair/property key already exists.
	Create(ctx context.Context, conv *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	// GetByPair looks up the active conversation for a canonical pair.
	// propertyID nil matches only the general (unscoped) conversation.
	GetByPair(ctx context.Context, user1ID, user2ID uuid.UUID, propertyID *uuid.UUID) (*domain.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	// Deactivate soft-deletes; deactivating an inactive conversation is a no-op.
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type MessageRepository interface {
	// Create persists msg and, in the same transaction, rewrites the
	// owning conversation's last-message summary and increments the
	// receiver's unread counter.
	Create(ctx context.Context, msg *domain.Message, preview string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListPage returns one window of a conversation ordered newest
	// first; callers reverse it for chronological display.
	ListPage(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]domain.Message, error)
	CountByConversation(ctx context.Context, conversationID uuid.UUID) (int, error)
	// MarkConversationRead flips every message not sent by readerID to
	// read and zeroes readerID's unread counter, atomically.
	MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserDirectory resolves participant identity. Backed by the shared
// users table; this service only ever reads it.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// PropertyDirectory resolves property references for scoped
// conversations. Read-only from this service's point of view.
type PropertyDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
}

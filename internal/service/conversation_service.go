package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkovac/renthub/internal/domain"
	"github.com/dkovac/renthub/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("you are not a participant of this conversation")
	ErrCannotMessageSelf    = errors.New("cannot start a conversation with yourself")
	ErrUserNotFound         = errors.New("user not found")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrConversationConflict = errors.New("conversation was created concurrently, retry")
)

type ConversationService struct {
	convRepo   repository.ConversationRepository
	users      repository.UserDirectory
	properties repository.PropertyDirectory
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	users repository.UserDirectory,
	properties repository.PropertyDirectory,
) *ConversationService {
	return &ConversationService{
		convRepo:   convRepo,
		users:      users,
		properties: properties,
	}
}

type CreateConversationInput struct {
	CounterpartID uuid.UUID  `json:"counterpart_id"`
	PropertyID    *uuid.UUID `json:"property_id,omitempty"`
	BookingID     *uuid.UUID `json:"booking_id,omitempty"`
}

// CreateOrGet finds the active conversation for the caller/counterpart
// pair and property scope, creating it on first contact. A general
// conversation and a property-scoped one between the same pair are
// distinct. At most one active conversation ever exists per key; the
// partial unique index in the store is the serialization point for
// racing creators.
func (s *ConversationService) CreateOrGet(ctx context.Context, userID uuid.UUID, input CreateConversationInput) (*domain.Conversation, error) {
	if userID == input.CounterpartID {
		return nil, ErrCannotMessageSelf
	}

	// Validate counterpart exists
	other, err := s.users.GetByID(ctx, input.CounterpartID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	var property *domain.Property
	if input.PropertyID != nil {
		property, err = s.properties.GetByID(ctx, *input.PropertyID)
		if err != nil {
			return nil, err
		}
		if property == nil {
			return nil, ErrPropertyNotFound
		}
	}

	u1, u2 := domain.CanonicalPair(userID, input.CounterpartID)

	conv, err := s.convRepo.GetByPair(ctx, u1, u2, input.PropertyID)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		s.fillDisplayFields(conv, userID, other, property)
		return conv, nil
	}

	now := time.Now()
	conv = &domain.Conversation{
		ID:         uuid.New(),
		User1ID:    u1,
		User2ID:    u2,
		PropertyID: input.PropertyID,
		BookingID:  input.BookingID,
		UnreadCounts: map[uuid.UUID]int{
			u1: 0,
			u2: 0,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.convRepo.Create(ctx, conv); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// A concurrent caller won the create; their conversation
			// is the single survivor.
			conv, err = s.convRepo.GetByPair(ctx, u1, u2, input.PropertyID)
			if err != nil {
				return nil, err
			}
			if conv == nil {
				return nil, ErrConversationConflict
			}
			s.fillDisplayFields(conv, userID, other, property)
			return conv, nil
		}
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	s.fillDisplayFields(conv, userID, other, property)
	return conv, nil
}

// List returns the caller's active conversations, most recently
// updated first. Soft-deleted conversations never appear.
func (s *ConversationService) List(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	convs, err := s.convRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []domain.Conversation{}
	}
	return convs, nil
}

// Get returns a single active conversation the caller participates in,
// with counterpart and property display fields populated.
func (s *ConversationService) Get(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || !conv.IsActive {
		return nil, ErrConversationNotFound
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	other, err := s.users.GetByID(ctx, conv.OtherParticipant(userID))
	if err != nil {
		return nil, err
	}

	var property *domain.Property
	if conv.PropertyID != nil {
		property, err = s.properties.GetByID(ctx, *conv.PropertyID)
		if err != nil {
			return nil, err
		}
	}

	s.fillDisplayFields(conv, userID, other, property)
	return conv, nil
}

// Delete soft-deletes a conversation. Any participant may delete, an
// admin may delete on their behalf; deleting twice is a no-op.
func (s *ConversationService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, conversationID uuid.UUID) error {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationNotFound
	}
	if !conv.HasParticipant(userID) && !isAdmin {
		return ErrNotParticipant
	}
	if !conv.IsActive {
		return nil
	}

	return s.convRepo.Deactivate(ctx, conversationID)
}

func (s *ConversationService) fillDisplayFields(conv *domain.Conversation, userID uuid.UUID, other *domain.User, property *domain.Property) {
	conv.OtherUserID = conv.OtherParticipant(userID)
	if other != nil {
		conv.OtherUserDisplayName = other.DisplayName
		conv.OtherUserAvatarURL = other.AvatarURL
	}
	if property != nil {
		conv.PropertyTitle = &property.Title
		conv.PropertyLocation = &property.Location
	}
}

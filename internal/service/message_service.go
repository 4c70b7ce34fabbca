package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkovac/renthub/internal/domain"
	"github.com/dkovac/renthub/internal/repository"
)

var (
	ErrMessageNotFound        = errors.New("message not found")
	ErrNotMessageSender       = errors.New("only the message sender can perform this action")
	ErrReceiverNotParticipant = errors.New("receiver is not a participant of this conversation")
	ErrEmptyMessage           = errors.New("message needs text content or at least one attachment")
	ErrInvalidPage            = errors.New("page must be 1 or greater")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Notifier hands freshly sent messages to an external real-time layer,
// if one is wired in. Delivery is out of this service's scope.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	convRepo    repository.ConversationRepository
	notifier    Notifier
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		convRepo:    convRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SendMessageInput struct {
	ConversationID uuid.UUID           `json:"conversation_id"`
	ReceiverID     uuid.UUID           `json:"receiver_id"`
	Content        string              `json:"content"`
	Attachments    []domain.Attachment `json:"attachments,omitempty"`
}

type Pagination struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	Pages    int `json:"pages"`
	PageSize int `json:"page_size"`
}

type MessageListResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// Send validates and persists a new message. The store call updates
// the owning conversation's summary and the receiver's unread counter
// in the same transaction, so a committed message is never orphaned
// from its bookkeeping.
func (s *MessageService) Send(ctx context.Context, userID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	conv, err := s.activeConversation(ctx, userID, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if input.ReceiverID == userID {
		return nil, ErrReceiverNotParticipant
	}
	if !conv.HasParticipant(input.ReceiverID) {
		return nil, ErrReceiverNotParticipant
	}

	content := strings.TrimSpace(input.Content)
	if content == "" && len(input.Attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	attachments := input.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: input.ConversationID,
		SenderID:       userID,
		ReceiverID:     input.ReceiverID,
		Content:        content,
		Attachments:    attachments,
		Read:           false,
		CreatedAt:      time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg, domain.PreviewText(content)); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	// Fetch back with sender info
	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		full = msg
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

// GetMessages returns one page of a conversation's history and, as a
// side effect, marks the whole conversation read for the caller:
// every message they received flips to read and their unread counter
// resets to zero, regardless of which page was requested.
//
// Pages are numbered over descending time (page 1 holds the newest
// messages) but each returned slice is oldest-first.
func (s *MessageService) GetMessages(ctx context.Context, userID, conversationID uuid.UUID, page, pageSize int) (*MessageListResponse, error) {
	if _, err := s.activeConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	if page < 1 {
		return nil, ErrInvalidPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	// Opening the conversation marks it read before the page is built,
	// so the caller sees their own read state reflected in the result.
	if err := s.messageRepo.MarkConversationRead(ctx, conversationID, userID); err != nil {
		return nil, fmt.Errorf("marking conversation read: %w", err)
	}

	total, err := s.messageRepo.CountByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListPage(ctx, conversationID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	return &MessageListResponse{
		Messages: messages,
		Pagination: Pagination{
			Total:    total,
			Page:     page,
			Pages:    (total + pageSize - 1) / pageSize,
			PageSize: pageSize,
		},
	}, nil
}

// Delete hard-removes a message. Only the sender or an admin may
// delete. The conversation's last-message summary and unread counters
// deliberately keep reflecting history at time of send.
func (s *MessageService) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, messageID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.SenderID != userID && !isAdmin {
		return ErrNotMessageSender
	}

	return s.messageRepo.Delete(ctx, messageID)
}

func (s *MessageService) activeConversation(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error) {
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
	return conv, nil
}

package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkovac/renthub/internal/domain"
	"github.com/dkovac/renthub/internal/repository"
)

// In-memory repositories mirroring the store contracts: pair/property
// uniqueness surfaces as repository.ErrConflict, and all counter
// mutations happen under one lock so concurrent sends behave like the
// row-level increments in Postgres.

type fakeConvRepo struct {
	mu    sync.Mutex
	convs map[uuid.UUID]*domain.Conversation
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: map[uuid.UUID]*domain.Conversation{}}
}

func cloneConv(c *domain.Conversation) *domain.Conversation {
	cp := *c
	cp.UnreadCounts = make(map[uuid.UUID]int, len(c.UnreadCounts))
	for k, v := range c.UnreadCounts {
		cp.UnreadCounts[k] = v
	}
	return &cp
}

func samePropertyScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeConvRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.convs {
		if existing.IsActive &&
			existing.User1ID == conv.User1ID && existing.User2ID == conv.User2ID &&
			samePropertyScope(existing.PropertyID, conv.PropertyID) {
			return repository.ErrConflict
		}
	}
	r.convs[conv.ID] = cloneConv(conv)
	return nil
}

func (r *fakeConvRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, nil
	}
	return cloneConv(c), nil
}

func (r *fakeConvRepo) GetByPair(ctx context.Context, user1ID, user2ID uuid.UUID, propertyID *uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.convs {
		if c.IsActive && c.User1ID == user1ID && c.User2ID == user2ID && samePropertyScope(c.PropertyID, propertyID) {
			return cloneConv(c), nil
		}
	}
	return nil, nil
}

func (r *fakeConvRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Conversation
	for _, c := range r.convs {
		if c.IsActive && c.HasParticipant(userID) {
			out = append(out, *cloneConv(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *fakeConvRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.convs[id]; ok {
		c.IsActive = false
	}
	return nil
}

func (r *fakeConvRepo) applySend(conversationID, senderID, receiverID uuid.UUID, preview string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[conversationID]
	if !ok {
		return
	}
	c.LastMessagePreview = &preview
	c.LastMessageSenderID = &senderID
	c.LastMessageAt = &at
	c.UpdatedAt = at
	c.UnreadCounts[receiverID]++
}

func (r *fakeConvRepo) resetUnread(conversationID, readerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.convs[conversationID]; ok {
		c.UnreadCounts[readerID] = 0
	}
}

type fakeMessageRepo struct {
	mu    sync.Mutex
	msgs  []*domain.Message
	convs *fakeConvRepo
}

func newFakeMessageRepo(convs *fakeConvRepo) *fakeMessageRepo {
	return &fakeMessageRepo{convs: convs}
}

func cloneMsg(m *domain.Message) *domain.Message {
	cp := *m
	cp.Attachments = append([]domain.Attachment(nil), m.Attachments...)
	return &cp
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *domain.Message, preview string) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, cloneMsg(msg))
	r.mu.Unlock()
	r.convs.applySend(msg.ConversationID, msg.SenderID, msg.ReceiverID, preview, msg.CreatedAt)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.ID == id {
			return cloneMsg(m), nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) byConversationDesc(conversationID uuid.UUID) []*domain.Message {
	// Walk insertion order newest-first so a stable sort keeps later
	// sends ahead of earlier ones when timestamps collide.
	var out []*domain.Message
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if m := r.msgs[i]; m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *fakeMessageRepo) ListPage(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc := r.byConversationDesc(conversationID)
	if offset >= len(desc) {
		return nil, nil
	}
	end := offset + limit
	if end > len(desc) {
		end = len(desc)
	}
	window := desc[offset:end]
	out := make([]domain.Message, 0, len(window))
	for i := len(window) - 1; i >= 0; i-- {
		out = append(out, *cloneMsg(window[i]))
	}
	return out, nil
}

func (r *fakeMessageRepo) CountByConversation(ctx context.Context, conversationID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	r.mu.Lock()
	for _, m := range r.msgs {
		if m.ConversationID == conversationID && m.SenderID != readerID {
			m.Read = true
		}
	}
	r.mu.Unlock()
	r.convs.resetUnread(conversationID, readerID)
	return nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.msgs {
		if m.ID == id {
			r.msgs = append(r.msgs[:i], r.msgs[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeUserDirectory struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserDirectory(users ...*domain.User) *fakeUserDirectory {
	d := &fakeUserDirectory{users: map[uuid.UUID]*domain.User{}}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeUserDirectory) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return d.users[id], nil
}

type fakePropertyDirectory struct {
	properties map[uuid.UUID]*domain.Property
}

func newFakePropertyDirectory(properties ...*domain.Property) *fakePropertyDirectory {
	d := &fakePropertyDirectory{properties: map[uuid.UUID]*domain.Property{}}
	for _, p := range properties {
		d.properties[p.ID] = p
	}
	return d
}

func (d *fakePropertyDirectory) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	return d.properties[id], nil
}

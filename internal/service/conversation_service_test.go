package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dkovac/renthub/internal/domain"
)

func newTestUsers() (*domain.User, *domain.User) {
	alice := &domain.User{ID: uuid.New(), DisplayName: "Alice"}
	bob := &domain.User{ID: uuid.New(), DisplayName: "Bob"}
	return alice, bob
}

func newConversationService(users *fakeUserDirectory, properties *fakePropertyDirectory) (*ConversationService, *fakeConvRepo) {
	convRepo := newFakeConvRepo()
	return NewConversationService(convRepo, users, properties), convRepo
}

func TestCreateOrGet_SameConversationBothOrders(t *testing.T) {
	ctx := context.Background()
	alice, bob := newTestUsers()
	svc, _ := newConversationService(newFakeUserDirectory(alice, bob), newFakePropertyDirectory())

	first, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: bob.ID})
	if err != nil {
		t.Fatalf("CreateOrGet failed: %v", err)
	}
	if got := first.UnreadFor(alice.ID); got != 0 {
		t.Fatalf("expected zero unread for alice, got %d", got)
	}
	if got := first.UnreadFor(bob.ID); got != 0 {
		t.Fatalf("expected zero unread for bob, got %d", got)
	}

	// Same pair in the opposite order must resolve to the same conversation.
	second, err := svc.CreateOrGet(ctx, bob.ID, CreateConversationInput{CounterpartID: alice.ID})
	if err != nil {
		t.Fatalf("CreateOrGet (reversed) failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected one conversation, got %s and %s", first.ID, second.ID)
	}
}

func TestCreateOrGet_PropertyScopeIsDistinct(t *testing.T) {
	ctx := context.Background()
	alice, bob := newTestUsers()
	property := &domain.Property{ID: uuid.New(), Title: "Sea View Loft", Location: "Split"}
	svc, _ := newConversationService(newFakeUserDirectory(alice, bob), newFakePropertyDirectory(property))

	scoped, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: bob.ID, PropertyID: &property.ID})
	if err != nil {
		t.Fatalf("CreateOrGet (scoped) failed: %v", err)
	}
	general, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: bob.ID})
	if err != nil {
		t.Fatalf("CreateOrGet (general) failed: %v", err)
	}

	if scoped.ID == general.ID {
		t.Fatalf("expected distinct conversations for scoped and general contact")
	}
	if scoped.PropertyTitle == nil || *scoped.PropertyTitle != "Sea View Loft" {
		t.Fatalf("expected property title populated, got %v", scoped.PropertyTitle)
	}

	// Repeating the scoped call returns the scoped conversation again.
	again, err := svc.CreateOrGet(ctx, bob.ID, CreateConversationInput{CounterpartID: alice.ID, PropertyID: &property.ID})
	if err != nil {
		t.Fatalf("CreateOrGet (scoped repeat) failed: %v", err)
	}
	if again.ID != scoped.ID {
		t.Fatalf("expected scoped conversation %s, got %s", scoped.ID, again.ID)
	}
}

func TestCreateOrGet_Validation(t *testing.T) {
	ctx := context.Background()
	alice, bob := newTestUsers()
	svc, _ := newConversationService(newFakeUserDirectory(alice, bob), newFakePropertyDirectory())

	if _, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: alice.ID}); !errors.Is(err, ErrCannotMessageSelf) {
		t.Fatalf("expected ErrCannotMessageSelf, got %v", err)
	}
	if _, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: uuid.New()}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	missing := uuid.New()
	if _, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: bob.ID, PropertyID: &missing}); !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestCreateOrGet_ConcurrentCallersOneWinner(t *testing.T) {
	ctx := context.Background()
	alice, bob := newTestUsers()
	svc, repo := newConversationService(newFakeUserDirectory(alice, bob), newFakePropertyDirectory())

	const callers = 10
	ids := make([]uuid.UUID, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller, counterpart := alice.ID, bob.ID
			if i%2 == 1 {
				caller, counterpart = bob.ID, alice.ID
			}
			conv, err := svc.CreateOrGet(ctx, caller, CreateConversationInput{CounterpartID: counterpart})
			if err != nil {
				t.Errorf("CreateOrGet failed: %v", err)
				return
			}
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("caller %d got conversation %s, want %s", i, ids[i], ids[0])
		}
	}
	if got := len(repo.convs); got != 1 {
		t.Fatalf("expected exactly 1 stored conversation, got %d", got)
	}
}

func TestListConversations_SortedAndFiltered(t *testing.T) {
	ctx := context.Background()
	alice, bob := newTestUsers()
	carol := &domain.User{ID: uuid.New(), DisplayName: "Carol"}
	svc, _ := newConversationService(newFakeUserDirectory(alice, bob, carol), newFakePropertyDirectory())

	withBob, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: bob.ID})
	if err != nil {
		t.Fatalf("CreateOrGet failed: %v", err)
	}
	withCarol, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: carol.ID})
	if err != nil {
		t.Fatalf("CreateOrGet failed: %v", err)
	}

	convs, err := svc.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}

	// Deleting one removes it from the listing but leaves the record.
	if err := svc.Delete(ctx, alice.ID, false, withBob.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	convs, err = svc.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("List after delete failed: %v", err)
	}
	if len(convs) != 1 || convs[0].ID != withCarol.ID {
		t.Fatalf("expected only the carol conversation, got %d entries", len(convs))
	}

	// Bob's listing is unaffected by alice's other threads.
	convs, err = svc.List(ctx, bob.ID)
	if err != nil {
		t.Fatalf("List for bob failed: %v", err)
	}
	if len(convs) != 0 {
		t.Fatalf("expected no active conversations for bob, got %d", len(convs))
	}
}

func TestDeleteConversation_IdempotentAndGuarded(t *testing.T) {
	ctx := context.Background()
	alice, bob := newTestUsers()
	intruder := uuid.New()
	svc, repo := newConversationService(newFakeUserDirectory(alice, bob), newFakePropertyDirectory())

	conv, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: bob.ID})
	if err != nil {
		t.Fatalf("CreateOrGet failed: %v", err)
	}

	if err := svc.Delete(ctx, intruder, false, conv.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant for outsider, got %v", err)
	}
	// An admin that is not a participant may still delete.
	if err := svc.Delete(ctx, intruder, true, conv.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	// Second delete is a no-op, not an error.
	if err := svc.Delete(ctx, bob.ID, false, conv.ID); err != nil {
		t.Fatalf("repeated delete should be a no-op, got %v", err)
	}

	stored, err := repo.GetByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored == nil || stored.IsActive {
		t.Fatalf("expected conversation soft-deleted but present")
	}

	if err := svc.Delete(ctx, alice.ID, false, uuid.New()); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestGetConversation_Access(t *testing.T) {
	ctx := context.Background()
	alice, bob := newTestUsers()
	svc, _ := newConversationService(newFakeUserDirectory(alice, bob), newFakePropertyDirectory())

	conv, err := svc.CreateOrGet(ctx, alice.ID, CreateConversationInput{CounterpartID: bob.ID})
	if err != nil {
		t.Fatalf("CreateOrGet failed: %v", err)
	}

	got, err := svc.Get(ctx, bob.ID, conv.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.OtherUserID != alice.ID || got.OtherUserDisplayName != "Alice" {
		t.Fatalf("expected counterpart display fields for bob, got %s/%q", got.OtherUserID, got.OtherUserDisplayName)
	}

	if _, err := svc.Get(ctx, uuid.New(), conv.ID); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	if _, err := svc.Get(ctx, alice.ID, uuid.New()); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}

	// Soft-deleted conversations read as gone.
	if err := svc.Delete(ctx, alice.ID, false, conv.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, alice.ID, conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound after delete, got %v", err)
	}
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovac/renthub/internal/domain"
	"github.com/dkovac/renthub/internal/repository"
)

type ConversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *ConversationRepo {
	return &ConversationRepo{pool: pool}
}

const conversationColumns = `id, user1_id, user2_id, property_id, booking_id,
	last_message_preview, last_message_sender_id, last_message_at,
	user1_unread, user2_unread, is_active, created_at, updated_at`

func (r *ConversationRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	query := `
		INSERT INTO conversations (id, user1_id, user2_id, property_id, booking_id,
			user1_unread, user2_unread, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		conv.ID, conv.User1ID, conv.User2ID, conv.PropertyID, conv.BookingID,
		conv.UnreadFor(conv.User1ID), conv.UnreadFor(conv.User2ID),
		conv.IsActive, conv.CreatedAt, conv.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// Partial unique index on the pair/property key fired: a
		// concurrent caller created the conversation first.
		return repository.ErrConflict
	}
	return err
}

func (r *ConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	return r.scanConversation(r.pool.QueryRow(ctx, query, id))
}

func (r *ConversationRepo) GetByPair(ctx context.Context, user1ID, user2ID uuid.UUID, propertyID *uuid.UUID) (*domain.Conversation, error) {
	if propertyID != nil {
		query := `SELECT ` + conversationColumns + `
			FROM conversations
			WHERE user1_id = $1 AND user2_id = $2 AND property_id = $3 AND is_active`
		return r.scanConversation(r.pool.QueryRow(ctx, query, user1ID, user2ID, *propertyID))
	}
	query := `SELECT ` + conversationColumns + `
		FROM conversations
		WHERE user1_id = $1 AND user2_id = $2 AND property_id IS NULL AND is_active`
	return r.scanConversation(r.pool.QueryRow(ctx, query, user1ID, user2ID))
}

func (r *ConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	query := `
		SELECT c.id, c.user1_id, c.user2_id, c.property_id, c.booking_id,
			c.last_message_preview, c.last_message_sender_id, c.last_message_at,
			c.user1_unread, c.user2_unread, c.is_active, c.created_at, c.updated_at,
			CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END AS other_user_id,
			CASE WHEN c.user1_id = $1 THEN u2.display_name ELSE u1.display_name END AS other_display_name,
			CASE WHEN c.user1_id = $1 THEN u2.avatar_url ELSE u1.avatar_url END AS other_avatar_url,
			p.title, p.location
		FROM conversations c
		JOIN users u1 ON c.user1_id = u1.id
		JOIN users u2 ON c.user2_id = u2.id
		LEFT JOIN properties p ON c.property_id = p.id
		WHERE (c.user1_id = $1 OR c.user2_id = $1) AND c.is_active
		ORDER BY c.updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var conv domain.Conversation
		var u1Unread, u2Unread int
		if err := rows.Scan(
			&conv.ID, &conv.User1ID, &conv.User2ID, &conv.PropertyID, &conv.BookingID,
			&conv.LastMessagePreview, &conv.LastMessageSenderID, &conv.LastMessageAt,
			&u1Unread, &u2Unread, &conv.IsActive, &conv.CreatedAt, &conv.UpdatedAt,
			&conv.OtherUserID, &conv.OtherUserDisplayName, &conv.OtherUserAvatarURL,
			&conv.PropertyTitle, &conv.PropertyLocation,
		); err != nil {
			return nil, err
		}
		conv.UnreadCounts = map[uuid.UUID]int{conv.User1ID: u1Unread, conv.User2ID: u2Unread}
		convs = append(convs, conv)
	}
	return convs, rows.Err()
}

func (r *ConversationRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE conversations SET is_active = FALSE WHERE id = $1`, id)
	return err
}

func (r *ConversationRepo) scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var conv domain.Conversation
	var u1Unread, u2Unread int
	err := row.Scan(
		&conv.ID, &conv.User1ID, &conv.User2ID, &conv.PropertyID, &conv.BookingID,
		&conv.LastMessagePreview, &conv.LastMessageSenderID, &conv.LastMessageAt,
		&u1Unread, &u2Unread, &conv.IsActive, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	conv.UnreadCounts = map[uuid.UUID]int{conv.User1ID: u1Unread, conv.User2ID: u2Unread}
	return &conv, nil
}

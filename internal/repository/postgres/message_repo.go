package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovac/renthub/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

// Create inserts the message and updates the owning conversation's
// summary and the receiver's unread counter in one transaction. The
// counter bump is a row-level increment so concurrent sends never lose
// an update.
func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message, preview string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, content, attachments, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.Exec(ctx, insert,
		msg.ID, msg.ConversationID, msg.SenderID, msg.ReceiverID,
		msg.Content, msg.Attachments, msg.Read, msg.CreatedAt,
	); err != nil {
		return err
	}

	bump := `
		UPDATE conversations SET
			last_message_preview = $2,
			last_message_sender_id = $3,
			last_message_at = $4,
			user1_unread = user1_unread + (CASE WHEN user1_id = $5 THEN 1 ELSE 0 END),
			user2_unread = user2_unread + (CASE WHEN user2_id = $5 THEN 1 ELSE 0 END),
			updated_at = $4
		WHERE id = $1`
	if _, err := tx.Exec(ctx, bump,
		msg.ConversationID, preview, msg.SenderID, msg.CreatedAt, msg.ReceiverID,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.receiver_id, m.content,
			m.attachments, m.is_read, m.created_at, u.display_name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID, &msg.Content,
		&msg.Attachments, &msg.Read, &msg.CreatedAt, &msg.SenderDisplayName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListPage returns one window of a conversation's history. Pages are
// numbered over descending time (offset 0 = newest window); the slice
// is reversed before returning so each page reads oldest first.
func (r *MessageRepo) ListPage(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.conversation_id, m.sender_id, m.receiver_id, m.content,
			m.attachments, m.is_read, m.created_at, u.display_name
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		OFFSET $2 LIMIT $3`

	rows, err := r.pool.Query(ctx, query, conversationID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID, &msg.Content,
			&msg.Attachments, &msg.Read, &msg.CreatedAt, &msg.SenderDisplayName,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order (query returns DESC)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *MessageRepo) CountByConversation(ctx context.Context, conversationID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID,
	).Scan(&count)
	return count, err
}

// MarkConversationRead flips every message the reader has not sent to
// read and zeroes the reader's unread counter. Both statements run in
// one transaction; a send committing concurrently either lands before
// the flip (and is marked read) or after (and keeps its increment).
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	flip := `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = FALSE`
	if _, err := tx.Exec(ctx, flip, conversationID, readerID); err != nil {
		return err
	}

	reset := `
		UPDATE conversations SET
			user1_unread = (CASE WHEN user1_id = $2 THEN 0 ELSE user1_unread END),
			user2_unread = (CASE WHEN user2_id = $2 THEN 0 ELSE user2_unread END)
		WHERE id = $1`
	if _, err := tx.Exec(ctx, reset, conversationID, readerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *MessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	return err
}

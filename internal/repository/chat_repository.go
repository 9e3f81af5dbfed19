package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XAKEP-CMEPTU/Coldfire-Site/internal/domain"
)

// ChatRepository encapsulates chat persistence. Multi-step mutations run in a
// single transaction so they commit all-or-nothing, and message appends bump
// the chat's message_seq inside that transaction, which serializes concurrent
// appends to one chat and fixes their order.
type ChatRepository interface {
	// Create persists the chat together with its seeding system message.
	Create(ctx context.Context, chat *domain.Chat, seed domain.ChatMessage) error
	GetByID(ctx context.Context, id string) (*domain.Chat, error)
	ListAll(ctx context.Context) ([]domain.Chat, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Chat, error)
	CountOpenByOwner(ctx context.Context, owner string) (int, error)
	AppendMessage(ctx context.Context, chatID string, msg *domain.ChatMessage) error
	UpdateIssue(ctx context.Context, chatID, issue string) error
	// SetStatus flips the status and appends the transition system message in
	// the same transaction.
	SetStatus(ctx context.Context, chatID string, status domain.ChatStatus, sysMsg domain.ChatMessage) error
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository instantiates the repository.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

const chatColumns = `id, owner_username, discord, issue, urgency, status, message_seq, created_at, updated_at`

func (r *chatRepository) Create(ctx context.Context, chat *domain.Chat, seed domain.ChatMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertChat = `
        INSERT INTO chats (owner_username, discord, issue, urgency, status, message_seq)
        VALUES ($1, $2, $3, $4, $5, 1)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertChat,
		chat.OwnerUsername,
		chat.Discord,
		chat.Issue,
		chat.Urgency,
		chat.Status,
	).Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
		return err
	}
	chat.MessageSeq = 1

	seed.ChatID = chat.ID
	seed.Seq = 1
	if err := insertMessage(ctx, tx, &seed); err != nil {
		return err
	}
	chat.Messages = []domain.ChatMessage{seed}

	return tx.Commit(ctx)
}

func (r *chatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	var chat domain.Chat
	if err := r.pool.QueryRow(ctx, `SELECT `+chatColumns+` FROM chats WHERE id=$1`, id).Scan(
		&chat.ID,
		&chat.OwnerUsername,
		&chat.Discord,
		&chat.Issue,
		&chat.Urgency,
		&chat.Status,
		&chat.MessageSeq,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	); err != nil {
		return nil, err
	}
	msgs, err := r.listMessages(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	chat.Messages = msgs
	return &chat, nil
}

func (r *chatRepository) ListAll(ctx context.Context) ([]domain.Chat, error) {
	return r.list(ctx, `SELECT `+chatColumns+` FROM chats ORDER BY updated_at DESC`)
}

func (r *chatRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Chat, error) {
	return r.list(ctx, `SELECT `+chatColumns+` FROM chats WHERE owner_username=$1 ORDER BY updated_at DESC`, owner)
}

func (r *chatRepository) list(ctx context.Context, query string, args ...any) ([]domain.Chat, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Chat
	for rows.Next() {
		var chat domain.Chat
		if err := rows.Scan(
			&chat.ID,
			&chat.OwnerUsername,
			&chat.Discord,
			&chat.Issue,
			&chat.Urgency,
			&chat.Status,
			&chat.MessageSeq,
			&chat.CreatedAt,
			&chat.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		msgs, err := r.listMessages(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Messages = msgs
	}
	return result, nil
}

func (r *chatRepository) listMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, chat_id, seq, sender, sender_name, sender_role, body, file_ref, is_system, created_at
        FROM chat_messages WHERE chat_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ChatMessage
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.ChatID,
			&msg.Seq,
			&msg.Sender,
			&msg.SenderName,
			&msg.SenderRole,
			&msg.Body,
			&msg.File,
			&msg.IsSystem,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *chatRepository) CountOpenByOwner(ctx context.Context, owner string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM chats WHERE owner_username=$1 AND status=$2`,
		owner, domain.ChatStatusOpen,
	).Scan(&count)
	return count, err
}

func (r *chatRepository) AppendMessage(ctx context.Context, chatID string, msg *domain.ChatMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	seq, err := bumpSeq(ctx, tx, chatID)
	if err != nil {
		return err
	}
	msg.ChatID = chatID
	msg.Seq = seq
	if err := insertMessage(ctx, tx, msg); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *chatRepository) UpdateIssue(ctx context.Context, chatID, issue string) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE chats SET issue=$1, updated_at=NOW() WHERE id=$2`, issue, chatID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *chatRepository) SetStatus(ctx context.Context, chatID string, status domain.ChatStatus, sysMsg domain.ChatMessage) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE chats SET status=$1 WHERE id=$2`, status, chatID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	seq, err := bumpSeq(ctx, tx, chatID)
	if err != nil {
		return err
	}
	sysMsg.ChatID = chatID
	sysMsg.Seq = seq
	if err := insertMessage(ctx, tx, &sysMsg); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// bumpSeq increments the chat's message counter and touches updated_at. The row
// update takes a lock that serializes concurrent appends to the same chat.
func bumpSeq(ctx context.Context, tx pgx.Tx, chatID string) (int64, error) {
	var seq int64
	err := tx.QueryRow(ctx,
		`UPDATE chats SET message_seq = message_seq + 1, updated_at = NOW() WHERE id=$1 RETURNING message_seq`,
		chatID,
	).Scan(&seq)
	if err == pgx.ErrNoRows {
		return 0, pgx.ErrNoRows
	}
	return seq, err
}

func insertMessage(ctx context.Context, tx pgx.Tx, msg *domain.ChatMessage) error {
	const query = `
        INSERT INTO chat_messages (chat_id, seq, sender, sender_name, sender_role, body, file_ref, is_system)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		msg.ChatID,
		msg.Seq,
		msg.Sender,
		msg.SenderName,
		msg.SenderRole,
		msg.Body,
		msg.File,
		msg.IsSystem,
	).Scan(&msg.ID, &msg.CreatedAt)
}

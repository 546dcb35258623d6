package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"novamind/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateChat(ctx context.Context, chat *model.ChatSession) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO chats (id, owner_id, title, model, archived, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err = tx.ExecContext(ctx, query,
		chat.ID, chat.OwnerID, chat.Title, chat.Model, chat.Archived, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not insert chat: %w", err)
	}

	for _, msg := range chat.Messages {
		if err := insertMessage(ctx, tx, chat.ID, msg); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *sqliteRepository) GetChat(ctx context.Context, chatID string) (*model.ChatSession, error) {
	query := "SELECT id, owner_id, title, model, archived, created_at, updated_at FROM chats WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, chatID)

	var chat model.ChatSession
	err := row.Scan(&chat.ID, &chat.OwnerID, &chat.Title, &chat.Model, &chat.Archived, &chat.CreatedAt, &chat.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if chat.Messages, err = r.getMessages(ctx, chatID); err != nil {
		return nil, err
	}
	if err := chat.Normalize(); err != nil {
		return nil, fmt.Errorf("stored chat is malformed: %w", err)
	}
	return &chat, nil
}

func (r *sqliteRepository) ListChats(ctx context.Context, ownerID string, archived bool) ([]*model.ChatSession, error) {
	query := "SELECT id, owner_id, title, model, archived, created_at, updated_at FROM chats WHERE owner_id = ? AND archived = ? ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query, ownerID, archived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*model.ChatSession
	for rows.Next() {
		var chat model.ChatSession
		if err := rows.Scan(&chat.ID, &chat.OwnerID, &chat.Title, &chat.Model, &chat.Archived, &chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return nil, err
		}
		chats = append(chats, &chat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, chat := range chats {
		if chat.Messages, err = r.getMessages(ctx, chat.ID); err != nil {
			return nil, err
		}
		if err := chat.Normalize(); err != nil {
			return nil, fmt.Errorf("stored chat is malformed: %w", err)
		}
	}
	return chats, nil
}

// AppendMessages uses a transaction so the message pair and the updated_at
// bump land together or not at all.
func (r *sqliteRepository) AppendMessages(ctx context.Context, chatID string, messages ...model.Message) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, msg := range messages {
		if err := insertMessage(ctx, tx, chatID, msg); err != nil {
			return err
		}
	}

	if err := touchChat(ctx, tx, chatID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *sqliteRepository) UpdateTitle(ctx context.Context, chatID, newTitle string) error {
	query := "UPDATE chats SET title = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, newTitle, time.Now().UTC(), chatID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteRepository) SetArchived(ctx context.Context, chatID string, archived bool) error {
	query := "UPDATE chats SET archived = ?, updated_at = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, archived, time.Now().UTC(), chatID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteRepository) DeleteChat(ctx context.Context, chatID string) error {
	query := "DELETE FROM chats WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, chatID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sqliteRepository) DeleteChats(ctx context.Context, ownerID string) (int, error) {
	query := "DELETE FROM chats WHERE owner_id = ?"
	res, err := r.db.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// getMessages returns a chat's messages in append order. Ordering is by the
// insertion sequence, not by timestamp: both halves of a turn share one
// timestamp.
func (r *sqliteRepository) getMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	query := "SELECT id, role, content, timestamp FROM messages WHERE chat_id = ? ORDER BY seq ASC"
	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]model.Message, 0)
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func insertMessage(ctx context.Context, tx *sql.Tx, chatID string, msg model.Message) error {
	query := "INSERT INTO messages (id, chat_id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)"
	if _, err := tx.ExecContext(ctx, query, msg.ID, chatID, msg.Role, msg.Content, msg.Timestamp); err != nil {
		return fmt.Errorf("could not insert message: %w", err)
	}
	return nil
}

func touchChat(ctx context.Context, tx *sql.Tx, chatID string) error {
	res, err := tx.ExecContext(ctx, "UPDATE chats SET updated_at = ? WHERE id = ?", time.Now().UTC(), chatID)
	if err != nil {
		return fmt.Errorf("could not update chat timestamp: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

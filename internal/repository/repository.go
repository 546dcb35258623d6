package repository

import (
	"context"

	"novamind/backend/internal/model"
)

// Repository defines the interface for session storage operations.
// This interface makes it easy to switch database implementations.
type Repository interface {
	// CreateChat persists a new session together with its initial messages
	// in a single transaction.
	CreateChat(ctx context.Context, chat *model.ChatSession) error
	// GetChat returns one session with its messages in append order.
	GetChat(ctx context.Context, chatID string) (*model.ChatSession, error)
	// ListChats returns the owner's sessions with the given archived state,
	// most recently updated first, messages included.
	ListChats(ctx context.Context, ownerID string, archived bool) ([]*model.ChatSession, error)

	// AppendMessages adds messages to the end of a session's sequence and
	// bumps updated_at, transactionally.
	AppendMessages(ctx context.Context, chatID string, messages ...model.Message) error

	UpdateTitle(ctx context.Context, chatID, newTitle string) error
	SetArchived(ctx context.Context, chatID string, archived bool) error
	DeleteChat(ctx context.Context, chatID string) error
	// DeleteChats removes every session owned by ownerID and reports how
	// many were deleted.
	DeleteChats(ctx context.Context, ownerID string) (int, error)
}

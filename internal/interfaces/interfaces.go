package interfaces

import (
	"context"

	"novamind/backend/internal/model"
	"novamind/backend/internal/watch"
)

// This file defines the interfaces for our core services.
// Depending on these interfaces, instead of concrete implementations, allows for
// decoupling (e.g., API layer from Service layer) and easier testing via mocking.

// ChatService defines the contract for the session and message workflow.
type ChatService interface {
	GenerateResponse(ctx context.Context, message, modelID string, history []model.Message) (string, error)
	CreateChat(ctx context.Context, userMessage, modelID string) (string, error)
	AddMessage(ctx context.Context, chatID, userMessage, modelID string) (string, error)
	FetchChatHistory(ctx context.Context, chatID string) ([]model.Message, error)
	ListChats(ctx context.Context) ([]*model.ChatSession, error)
	FetchArchivedChats(ctx context.Context) ([]*model.ChatSession, error)
	SubscribeToChats(ctx context.Context, fn watch.Callback) (func(), error)
	UpdateTitle(ctx context.Context, chatID, newTitle string) error
	ArchiveChat(ctx context.Context, chatID string) error
	DeleteChat(ctx context.Context, chatID string) error
	DeleteAllChats(ctx context.Context) error
}

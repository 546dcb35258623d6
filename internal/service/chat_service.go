package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"novamind/backend/internal/auth"
	app_errors "novamind/backend/internal/errors"
	"novamind/backend/internal/llm"
	"novamind/backend/internal/model"
	"novamind/backend/internal/repository"
	"novamind/backend/internal/watch"
)

// ChatService is the single authority for mutating and observing chat
// sessions. Every operation is scoped to the authenticated owner; the UI
// only ever sees state that has been re-derived from the store.
type ChatService struct {
	repo   repository.Repository
	gen    llm.Generator
	authgw auth.Gateway
	broker *watch.Broker

	// locks serializes appends per session within this process. Entries are
	// refcounted and dropped on release so the map only holds in-flight
	// sessions. Concurrent multi-client appends to one session remain
	// unguarded (see DESIGN.md).
	locksMu sync.Mutex
	locks   map[string]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

func NewChatService(repo repository.Repository, gen llm.Generator, authgw auth.Gateway, broker *watch.Broker) *ChatService {
	return &ChatService{repo: repo, gen: gen, authgw: authgw, broker: broker, locks: make(map[string]*chatLock)}
}

// GenerateResponse produces the assistant reply for a message given the prior
// turns. The generator is stateless per call, so the conversation context is
// folded into one combined prompt. This never writes to the store.
func (s *ChatService) GenerateResponse(ctx context.Context, message, modelID string, history []model.Message) (string, error) {
	reply, err := s.gen.Generate(ctx, buildPrompt(message, history), modelID)
	if err != nil {
		slog.Warn("Generation failed", "model", modelID, "error", err)
		return "", err
	}
	return reply, nil
}

// CreateChat starts a new session from the first user message. The reply is
// generated before anything is persisted, so a failed generation leaves no
// empty session behind.
func (s *ChatService) CreateChat(ctx context.Context, userMessage, modelID string) (string, error) {
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return "", err
	}

	reply, err := s.GenerateResponse(ctx, userMessage, modelID, nil)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	chat := &model.ChatSession{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		Title:     model.DeriveTitle(userMessage),
		Model:     modelID,
		Archived:  false,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  newTurn(userMessage, reply, now),
	}

	if err := s.repo.CreateChat(ctx, chat); err != nil {
		return "", fmt.Errorf("could not create chat: %w", err)
	}
	slog.Info("Created chat", "chat_id", chat.ID, "owner_id", user.ID)

	s.notify(ctx, user.ID)
	return chat.ID, nil
}

// AddMessage appends one full turn to an existing session: the user message
// and the generated reply land together, after all previously persisted
// messages.
func (s *ChatService) AddMessage(ctx context.Context, chatID, userMessage, modelID string) (string, error) {
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return "", err
	}

	unlock := s.lockChat(chatID)
	defer unlock()

	chat, err := s.ownedChat(ctx, chatID, user)
	if err != nil {
		return "", err
	}

	if modelID == "" {
		modelID = chat.Model
	}
	reply, err := s.GenerateResponse(ctx, userMessage, modelID, chat.Messages)
	if err != nil {
		return "", err
	}

	turn := newTurn(userMessage, reply, time.Now().UTC())
	if err := s.repo.AppendMessages(ctx, chatID, turn...); err != nil {
		// The reply is already paid for; retry the append once before
		// giving it up (see DESIGN.md on the append-failure decision).
		slog.Warn("Append failed, retrying once", "chat_id", chatID, "error", err)
		if err = s.repo.AppendMessages(ctx, chatID, turn...); err != nil {
			return "", fmt.Errorf("could not append messages: %w", err)
		}
	}

	s.notify(ctx, user.ID)
	return reply, nil
}

// FetchChatHistory returns a session's messages in conversation order.
func (s *ChatService) FetchChatHistory(ctx context.Context, chatID string) ([]model.Message, error) {
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := s.ownedChat(ctx, chatID, user)
	if err != nil {
		return nil, err
	}
	return chat.Messages, nil
}

// ListChats returns the owner's non-archived sessions, most recent first.
func (s *ChatService) ListChats(ctx context.Context) ([]*model.ChatSession, error) {
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListChats(ctx, user.ID, false)
}

// FetchArchivedChats returns the owner's archived sessions, most recent first.
func (s *ChatService) FetchArchivedChats(ctx context.Context) ([]*model.ChatSession, error) {
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListChats(ctx, user.ID, true)
}

// SubscribeToChats establishes a live view over the owner's non-archived
// sessions. The callback fires once immediately and on every subsequent
// mutation until the returned disposer is called.
func (s *ChatService) SubscribeToChats(ctx context.Context, fn watch.Callback) (func(), error) {
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.broker.Subscribe(ctx, user.ID, fn)
}

// UpdateTitle renames a session. Only title and updated_at change.
func (s *ChatService) UpdateTitle(ctx context.Context, chatID, newTitle string) error {
	if strings.TrimSpace(newTitle) == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedChat(ctx, chatID, user); err != nil {
		return err
	}
	if err := s.repo.UpdateTitle(ctx, chatID, newTitle); err != nil {
		return translateRepoErr(err)
	}
	s.notify(ctx, user.ID)
	return nil
}

// ArchiveChat hides a session from the default listing without deleting it.
func (s *ChatService) ArchiveChat(ctx context.Context, chatID string) error {
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedChat(ctx, chatID, user); err != nil {
		return err
	}
	if err := s.repo.SetArchived(ctx, chatID, true); err != nil {
		return translateRepoErr(err)
	}
	s.notify(ctx, user.ID)
	return nil
}

// DeleteChat removes a session permanently.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ownedChat(ctx, chatID, user); err != nil {
		return err
	}
	if err := s.repo.DeleteChat(ctx, chatID); err != nil {
		return translateRepoErr(err)
	}
	slog.Info("Deleted chat", "chat_id", chatID, "owner_id", user.ID)
	s.notify(ctx, user.ID)
	return nil
}

// DeleteAllChats removes every session the owner has. Deleting an empty set
// is the distinguished ErrNoChats outcome, not a silent no-op.
func (s *ChatService) DeleteAllChats(ctx context.Context) error {
	user, err := s.authgw.CurrentUser(ctx)
	if err != nil {
		return err
	}
	n, err := s.repo.DeleteChats(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("could not delete chats: %w", err)
	}
	if n == 0 {
		return app_errors.ErrNoChats
	}
	slog.Info("Deleted all chats", "owner_id", user.ID, "count", n)
	s.notify(ctx, user.ID)
	return nil
}

// ownedChat loads a session and enforces the ownership invariant. Cross-user
// access is reported as a permission error, never as the other user's data.
func (s *ChatService) ownedChat(ctx context.Context, chatID string, user *auth.User) (*model.ChatSession, error) {
	chat, err := s.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	if chat.OwnerID != user.ID {
		return nil, app_errors.ErrPermission
	}
	return chat, nil
}

func (s *ChatService) lockChat(chatID string) (unlock func()) {
	s.locksMu.Lock()
	l := s.locks[chatID]
	if l == nil {
		l = &chatLock{}
		s.locks[chatID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, chatID)
		}
		s.locksMu.Unlock()
	}
}

func (s *ChatService) notify(ctx context.Context, ownerID string) {
	if s.broker != nil {
		s.broker.Notify(ctx, ownerID)
	}
}

// newTurn builds the [user, assistant] message pair. Both halves share one
// timestamp; ordering is carried by the append sequence.
func newTurn(userMessage, reply string, now time.Time) []model.Message {
	return []model.Message{
		{ID: uuid.NewString(), Role: model.RoleUser, Content: userMessage, Timestamp: now},
		{ID: uuid.NewString(), Role: model.RoleAssistant, Content: reply, Timestamp: now},
	}
}

// buildPrompt folds prior turns and the new message into a single prompt.
// Prior turns go in content-only, the new message gets the "User:" label.
func buildPrompt(message string, history []model.Message) string {
	if len(history) == 0 {
		return "User: " + message
	}
	var b strings.Builder
	for _, msg := range history {
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(message)
	return b.String()
}

func translateRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return app_errors.ErrNotFound
	}
	return err
}

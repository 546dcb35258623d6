package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"novamind/backend/internal/auth"
	app_errors "novamind/backend/internal/errors"
	mock_llm "novamind/backend/internal/llm/mocks"
	"novamind/backend/internal/model"
	"novamind/backend/internal/repository"
	mock_repo "novamind/backend/internal/repository/mocks"
	"novamind/backend/internal/service"
	"novamind/backend/internal/watch"
)

type Mocks struct {
	repo *mock_repo.MockRepository
	gen  *mock_llm.MockGenerator
}

var testUser = &auth.User{ID: "user-1", Email: "user@example.com"}

func setupChatService(t *testing.T) (*service.ChatService, Mocks) {
	mocks := Mocks{
		repo: mock_repo.NewMockRepository(t),
		gen:  mock_llm.NewMockGenerator(t),
	}

	broker := watch.NewBroker(func(ctx context.Context, ownerID string) ([]*model.ChatSession, error) {
		return mocks.repo.ListChats(ctx, ownerID, false)
	}, nil)

	gateway := auth.StaticGateway{User: testUser}
	chatService := service.NewChatService(mocks.repo, mocks.gen, gateway, broker)

	return chatService, mocks
}

func ownedChat(id string, messages ...model.Message) *model.ChatSession {
	return &model.ChatSession{
		ID:       id,
		OwnerID:  testUser.ID,
		Title:    "Test chat",
		Model:    "model-A",
		Messages: messages,
	}
}

func TestChatService_CreateChat(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - persists exactly one user/assistant pair", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.gen.On("Generate", mock.Anything, "User: What is 2+2?", "model-A").Return("4", nil).Once()

		var created *model.ChatSession
		mocks.repo.On("CreateChat", mock.Anything, mock.AnythingOfType("*model.ChatSession")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*model.ChatSession)
			}).
			Return(nil).Once()

		chatID, err := chatService.CreateChat(ctx, "What is 2+2?", "model-A")
		require.NoError(t, err)
		assert.NotEmpty(t, chatID)

		require.NotNil(t, created)
		assert.Equal(t, chatID, created.ID)
		assert.Equal(t, testUser.ID, created.OwnerID)
		assert.Equal(t, "What is 2+2?", created.Title)
		assert.False(t, created.Archived)
		require.Len(t, created.Messages, 2)
		assert.Equal(t, model.RoleUser, created.Messages[0].Role)
		assert.Equal(t, "What is 2+2?", created.Messages[0].Content)
		assert.Equal(t, model.RoleAssistant, created.Messages[1].Role)
		assert.Equal(t, "4", created.Messages[1].Content)
	})

	t.Run("Success - title is truncated to 30 runes", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		longMessage := "This is a very long first message that keeps going"
		mocks.gen.On("Generate", mock.Anything, mock.Anything, "model-A").Return("ok", nil).Once()

		var created *model.ChatSession
		mocks.repo.On("CreateChat", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*model.ChatSession)
			}).
			Return(nil).Once()

		_, err := chatService.CreateChat(ctx, longMessage, "model-A")
		require.NoError(t, err)
		assert.Len(t, []rune(created.Title), model.TitleMaxLen)
		assert.Equal(t, longMessage[:30], created.Title)
	})

	t.Run("Failure - generation error leaves no session behind", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Return("", app_errors.ErrSafetyBlocked).Once()

		_, err := chatService.CreateChat(ctx, "something awful", "model-A")
		assert.ErrorIs(t, err, app_errors.ErrSafetyBlocked)
		mocks.repo.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything)
	})

	t.Run("Failure - store error is propagated", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("hi", nil).Once()
		mocks.repo.On("CreateChat", mock.Anything, mock.Anything).Return(errors.New("db error")).Once()

		_, err := chatService.CreateChat(ctx, "Hello", "model-A")
		assert.ErrorContains(t, err, "could not create chat")
	})

	t.Run("Failure - not authenticated", func(t *testing.T) {
		_, mocks := setupChatService(t)
		broker := watch.NewBroker(func(ctx context.Context, ownerID string) ([]*model.ChatSession, error) {
			return nil, nil
		}, nil)
		chatService := service.NewChatService(mocks.repo, mocks.gen, auth.StaticGateway{}, broker)

		_, err := chatService.CreateChat(ctx, "Hello", "model-A")
		assert.ErrorIs(t, err, app_errors.ErrUnauthenticated)
		mocks.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestChatService_AddMessage(t *testing.T) {
	ctx := context.Background()
	chatID := "chat-123"

	history := []model.Message{
		{ID: "m1", Role: model.RoleUser, Content: "Hello"},
		{ID: "m2", Role: model.RoleAssistant, Content: "Hi there"},
	}

	t.Run("Success - appends the pair with prior context", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("GetChat", mock.Anything, chatID).Return(ownedChat(chatID, history...), nil).Once()
		mocks.gen.On("Generate", mock.Anything, "Hello\nHi there\nUser: How about 3+3?", "model-A").
			Return("6", nil).Once()

		var appended []model.Message
		mocks.repo.On("AppendMessages", mock.Anything, chatID,
			mock.AnythingOfType("model.Message"), mock.AnythingOfType("model.Message")).
			Run(func(args mock.Arguments) {
				appended = []model.Message{
					args.Get(2).(model.Message),
					args.Get(3).(model.Message),
				}
			}).
			Return(nil).Once()

		reply, err := chatService.AddMessage(ctx, chatID, "How about 3+3?", "model-A")
		require.NoError(t, err)
		assert.Equal(t, "6", reply)

		require.Len(t, appended, 2)
		assert.Equal(t, model.RoleUser, appended[0].Role)
		assert.Equal(t, "How about 3+3?", appended[0].Content)
		assert.Equal(t, model.RoleAssistant, appended[1].Role)
		assert.Equal(t, "6", appended[1].Content)
	})

	t.Run("Success - empty model falls back to the session's model", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("GetChat", mock.Anything, chatID).Return(ownedChat(chatID), nil).Once()
		mocks.gen.On("Generate", mock.Anything, "User: Hello", "model-A").Return("hi", nil).Once()
		mocks.repo.On("AppendMessages", mock.Anything, chatID, mock.Anything, mock.Anything).Return(nil).Once()

		_, err := chatService.AddMessage(ctx, chatID, "Hello", "")
		assert.NoError(t, err)
	})

	t.Run("Success - failed append is retried once", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("GetChat", mock.Anything, chatID).Return(ownedChat(chatID), nil).Once()
		mocks.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("reply", nil).Once()
		mocks.repo.On("AppendMessages", mock.Anything, chatID, mock.Anything, mock.Anything).
			Return(errors.New("transient")).Once()
		mocks.repo.On("AppendMessages", mock.Anything, chatID, mock.Anything, mock.Anything).
			Return(nil).Once()

		reply, err := chatService.AddMessage(ctx, chatID, "Hello", "model-A")
		require.NoError(t, err)
		assert.Equal(t, "reply", reply)
	})

	t.Run("Failure - append fails twice", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("GetChat", mock.Anything, chatID).Return(ownedChat(chatID), nil).Once()
		mocks.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("reply", nil).Once()
		mocks.repo.On("AppendMessages", mock.Anything, chatID, mock.Anything, mock.Anything).
			Return(errors.New("db down")).Twice()

		_, err := chatService.AddMessage(ctx, chatID, "Hello", "model-A")
		assert.ErrorContains(t, err, "could not append messages")
	})

	t.Run("Failure - generation error appends nothing", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("GetChat", mock.Anything, chatID).Return(ownedChat(chatID), nil).Once()
		mocks.gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Return("", app_errors.ErrSafetyBlocked).Once()

		_, err := chatService.AddMessage(ctx, chatID, "bad prompt", "model-A")
		assert.ErrorIs(t, err, app_errors.ErrSafetyBlocked)
		mocks.repo.AssertNotCalled(t, "AppendMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - chat not found", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("GetChat", mock.Anything, chatID).Return(nil, repository.ErrNotFound).Once()

		_, err := chatService.AddMessage(ctx, chatID, "Hello", "model-A")
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
	})

	t.Run("Failure - another user's chat", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		other := ownedChat(chatID)
		other.OwnerID = "someone-else"
		mocks.repo.On("GetChat", mock.Anything, chatID).Return(other, nil).Once()

		_, err := chatService.AddMessage(ctx, chatID, "Hello", "model-A")
		assert.ErrorIs(t, err, app_errors.ErrPermission)
		mocks.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestChatService_FetchChatHistory(t *testing.T) {
	ctx := context.Background()
	chatID := "chat-123"

	t.Run("Success - round trip preserves order", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		messages := []model.Message{
			{ID: "m1", Role: model.RoleUser, Content: "Hello world"},
			{ID: "m2", Role: model.RoleAssistant, Content: "Hi!"},
		}
		mocks.repo.On("GetChat", mock.Anything, chatID).Return(ownedChat(chatID, messages...), nil).Once()

		got, err := chatService.FetchChatHistory(ctx, chatID)
		require.NoError(t, err)
		assert.Equal(t, messages, got)
	})

	t.Run("Failure - not found", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("GetChat", mock.Anything, chatID).Return(nil, repository.ErrNotFound).Once()

		_, err := chatService.FetchChatHistory(ctx, chatID)
		assert.ErrorIs(t, err, app_errors.ErrNotFound)
	})
}

func TestChatService_UpdateTitle(t *testing.T) {
	ctx := context.Background()
	chatID := "chat-123"

	t.Run("Success", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("GetChat", mock.Anything, chatID).Return(ownedChat(chatID), nil).Once()
		mocks.repo.On("UpdateTitle", mock.Anything, chatID, "New Title").Return(nil).Once()

		err := chatService.UpdateTitle(ctx, chatID, "New Title")
		assert.NoError(t, err)
	})

	t.Run("Failure - empty title", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		err := chatService.UpdateTitle(ctx, chatID, "   ")
		assert.ErrorIs(t, err, app_errors.ErrValidation)
		mocks.repo.AssertNotCalled(t, "UpdateTitle", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestChatService_DeleteAllChats(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("DeleteChats", mock.Anything, testUser.ID).Return(3, nil).Once()

		err := chatService.DeleteAllChats(ctx)
		assert.NoError(t, err)
	})

	t.Run("Failure - nothing to delete is distinguished", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		mocks.repo.On("DeleteChats", mock.Anything, testUser.ID).Return(0, nil).Once()

		err := chatService.DeleteAllChats(ctx)
		assert.ErrorIs(t, err, app_errors.ErrNoChats)
	})
}

func TestChatService_ArchiveChat(t *testing.T) {
	ctx := context.Background()
	chatID := "chat-123"
	chatService, mocks := setupChatService(t)

	mocks.repo.On("GetChat", mock.Anything, chatID).Return(ownedChat(chatID), nil).Once()
	mocks.repo.On("SetArchived", mock.Anything, chatID, true).Return(nil).Once()

	assert.NoError(t, chatService.ArchiveChat(ctx, chatID))
}

func TestChatService_SubscribeToChats(t *testing.T) {
	ctx := context.Background()

	t.Run("Immediate snapshot, emission per mutation, disposal stops delivery", func(t *testing.T) {
		chatService, mocks := setupChatService(t)

		sessions := []*model.ChatSession{ownedChat("chat-1")}
		// One load on subscribe, one per fan-out after the delete.
		mocks.repo.On("ListChats", mock.Anything, testUser.ID, false).Return(sessions, nil).Twice()

		var emissions [][]*model.ChatSession
		unsubscribe, err := chatService.SubscribeToChats(ctx, func(ss []*model.ChatSession) {
			emissions = append(emissions, ss)
		})
		require.NoError(t, err)
		require.Len(t, emissions, 1)
		assert.Equal(t, sessions, emissions[0])

		mocks.repo.On("GetChat", mock.Anything, "chat-1").Return(ownedChat("chat-1"), nil).Once()
		mocks.repo.On("DeleteChat", mock.Anything, "chat-1").Return(nil).Once()
		require.NoError(t, chatService.DeleteChat(ctx, "chat-1"))
		assert.Len(t, emissions, 2)

		unsubscribe()

		mocks.repo.On("GetChat", mock.Anything, "chat-1").Return(ownedChat("chat-1"), nil).Once()
		mocks.repo.On("DeleteChat", mock.Anything, "chat-1").Return(nil).Once()
		require.NoError(t, chatService.DeleteChat(ctx, "chat-1"))
		assert.Len(t, emissions, 2)
	})
}

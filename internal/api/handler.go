package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"novamind/backend/internal/interfaces"
	"novamind/backend/internal/model"
)

// ChatHandler handles HTTP requests for the chat session workflow.
type ChatHandler struct {
	service interfaces.ChatService
}

func NewChatHandler(svc interfaces.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// CreateChatRequest starts a new session from a first user message.
type CreateChatRequest struct {
	Message string `json:"message" validate:"required,min=1" example:"What is 2+2?"`
	Model   string `json:"model" example:"gemini-1.5-flash"`
}

// CreateChatResponse carries the id of the freshly created session so the
// client can navigate to it.
type CreateChatResponse struct {
	ID string `json:"id"`
}

// AddMessageRequest appends one user message to an existing session.
type AddMessageRequest struct {
	Message string `json:"message" validate:"required,min=1"`
	Model   string `json:"model"`
}

// AddMessageResponse carries the generated assistant reply.
type AddMessageResponse struct {
	Reply string `json:"reply"`
}

// UpdateTitleRequest is the DTO for the manual chat title update endpoint.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100" example:"My Custom Chat Title"`
}

// ChatHistoryResponse wraps a session's messages in conversation order.
type ChatHistoryResponse struct {
	Messages []model.Message `json:"messages"`
}

// HandleCreateChat godoc
// @Summary      Create a chat
// @Description  Generates the first assistant reply and persists a new session holding the opening turn.
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        request  body      CreateChatRequest  true  "First message"
// @Success      201      {object}  CreateChatResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Failure      429      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats [post]
func (h *ChatHandler) HandleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, invalidBody(err))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	chatID, err := h.service.CreateChat(r.Context(), req.Message, req.Model)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, CreateChatResponse{ID: chatID})
}

// HandleAddMessage godoc
// @Summary      Send a message
// @Description  Appends a user message to a session and returns the generated reply.
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        chatID   path      string             true  "Chat ID"
// @Param        request  body      AddMessageRequest  true  "Message"
// @Success      200      {object}  AddMessageResponse
// @Failure      404      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse
// @Failure      429      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats/{chatID}/messages [post]
func (h *ChatHandler) HandleAddMessage(w http.ResponseWriter, r *http.Request) {
	var req AddMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, invalidBody(err))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	reply, err := h.service.AddMessage(r.Context(), chi.URLParam(r, "chatID"), req.Message, req.Model)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, AddMessageResponse{Reply: reply})
}

// HandleGetChats godoc
// @Summary      List chats
// @Description  Returns the caller's non-archived sessions, most recently updated first.
// @Tags         Chats
// @Produce      json
// @Success      200  {array}  model.ChatSession
// @Security     BearerAuth
// @Router       /v1/chats [get]
func (h *ChatHandler) HandleGetChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.service.ListChats(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chats)
}

// HandleGetArchivedChats godoc
// @Summary      List archived chats
// @Tags         Chats
// @Produce      json
// @Success      200  {array}  model.ChatSession
// @Security     BearerAuth
// @Router       /v1/chats/archived [get]
func (h *ChatHandler) HandleGetArchivedChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.service.FetchArchivedChats(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, chats)
}

// HandleGetChatHistory godoc
// @Summary      Get chat history
// @Description  Returns a session's messages in conversation order.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      string  true  "Chat ID"
// @Success      200     {object}  ChatHistoryResponse
// @Failure      404     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats/{chatID} [get]
func (h *ChatHandler) HandleGetChatHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.FetchChatHistory(r.Context(), chi.URLParam(r, "chatID"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ChatHistoryResponse{Messages: messages})
}

// HandleUpdateTitle godoc
// @Summary      Rename a chat
// @Tags         Chats
// @Accept       json
// @Produce      json
// @Param        chatID   path      string              true  "Chat ID"
// @Param        request  body      UpdateTitleRequest  true  "New title"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats/{chatID}/title [put]
func (h *ChatHandler) HandleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, invalidBody(err))
		return
	}
	if err := validateRequest(req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.service.UpdateTitle(r.Context(), chi.URLParam(r, "chatID"), req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleArchiveChat godoc
// @Summary      Archive a chat
// @Description  Hides the session from the default listing without deleting it.
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      string  true  "Chat ID"
// @Success      200     {object}  StatusResponse
// @Failure      404     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats/{chatID}/archive [post]
func (h *ChatHandler) HandleArchiveChat(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ArchiveChat(r.Context(), chi.URLParam(r, "chatID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleDeleteChat godoc
// @Summary      Delete a chat
// @Tags         Chats
// @Produce      json
// @Param        chatID  path      string  true  "Chat ID"
// @Success      200     {object}  StatusResponse
// @Failure      404     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats/{chatID} [delete]
func (h *ChatHandler) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteChat(r.Context(), chi.URLParam(r, "chatID")); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleDeleteAllChats godoc
// @Summary      Delete all chats
// @Description  Removes every session the caller owns. Owning none is the distinguished "no chats to delete" outcome.
// @Tags         Chats
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats [delete]
func (h *ChatHandler) HandleDeleteAllChats(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAllChats(r.Context()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

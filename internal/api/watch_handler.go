package api

import (
	"log/slog"
	"net/http"

	"novamind/backend/internal/model"
)

// HandleWatchChats godoc
// @Summary      Watch chats
// @Description  Streams the caller's non-archived session list over SSE: one snapshot immediately, then one per mutation.
// @Tags         Chats
// @Produce      text/event-stream
// @Success      200  {array}  model.ChatSession
// @Security     BearerAuth
// @Router       /v1/chats/watch [get]
func (h *ChatHandler) HandleWatchChats(w http.ResponseWriter, r *http.Request) {
	updates := make(chan []*model.ChatSession, 1)
	unsubscribe, err := h.service.SubscribeToChats(r.Context(), coalesce(updates))
	if err != nil {
		respondWithError(w, err)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("Watch client disconnected")
			return
		case snapshot := <-updates:
			if err := writeStreamEvent(w, snapshot); err != nil {
				slog.Debug("Watch stream write failed, client gone", "error", err)
				return
			}
		}
	}
}

// coalesce adapts a broker callback to a latest-value channel. The broker
// invokes callbacks from the notifying goroutine and must never block on a
// slow consumer; a superseded snapshot is simply dropped, since every
// emission carries the full current state.
func coalesce(updates chan []*model.ChatSession) func([]*model.ChatSession) {
	return func(sessions []*model.ChatSession) {
		for {
			select {
			case updates <- sessions:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	}
}

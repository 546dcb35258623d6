package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"novamind/backend/internal/model"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The frontend is served from a different origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWatchChatsWS serves the same live session-list snapshots as the SSE
// endpoint, over a websocket. The sidebar and the chat pane each open their
// own connection; subscriptions are independent.
func (h *ChatHandler) HandleWatchChatsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates := make(chan []*model.ChatSession, 1)
	unsubscribe, err := h.service.SubscribeToChats(r.Context(), coalesce(updates))
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "not authenticated"),
			time.Now().Add(wsWriteWait))
		return
	}
	defer unsubscribe()

	// Read pump: the client never sends data, but reading is the only way
	// to notice a closed connection promptly.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case snapshot := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(snapshot); err != nil {
				slog.Debug("Websocket write failed, client gone", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

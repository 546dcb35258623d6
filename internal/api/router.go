package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "novamind/backend/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"novamind/backend/internal/auth"
)

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(chatHandler *ChatHandler, tokens *auth.TokenManager) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID) // Injects a unique request ID into the context.
	r.Use(middleware.RealIP)    // Sets the remote address to the real IP from proxy headers.
	r.Use(middleware.Logger)    // Logs the start and end of each request with useful info.
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error.

	// Serves the auto-generated Swagger UI for API documentation.
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// A simple health check endpoint for container orchestration probes.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// --- API Version 1 Routes ---
	// Every route is owner-scoped, so the whole group sits behind the
	// bearer-token middleware.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(tokens))

		// Standard JSON API routes get a request timeout so client
		// connections can't hang indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/chats", chatHandler.HandleGetChats)
			r.Post("/chats", chatHandler.HandleCreateChat)
			r.Delete("/chats", chatHandler.HandleDeleteAllChats)
			r.Get("/chats/archived", chatHandler.HandleGetArchivedChats)
			r.Get("/chats/{chatID}", chatHandler.HandleGetChatHistory)
			r.Delete("/chats/{chatID}", chatHandler.HandleDeleteChat)
			r.Put("/chats/{chatID}/title", chatHandler.HandleUpdateTitle)
			r.Post("/chats/{chatID}/archive", chatHandler.HandleArchiveChat)
			r.Post("/chats/{chatID}/messages", chatHandler.HandleAddMessage)
		})

		// Long-lived watch transports must NOT have a timeout; they hold
		// the connection open for the lifetime of the subscription.
		r.Group(func(r chi.Router) {
			r.Get("/chats/watch", chatHandler.HandleWatchChats)
			r.Get("/ws", chatHandler.HandleWatchChatsWS)
		})
	})

	return r
}

package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	// Websocket connections outlive the request timeout
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		if h.staticServer != nil {
			r.Handle("/static/*", http.StripPrefix("/static/", h.staticServer))
		}

		// Pages
		if h.templates != nil {
			r.Get("/", h.handleIndex)
			r.Get("/groups/{groupID}", h.handleBoardPage)
			r.Get("/admin/login", h.handleLoginPage)
		}

		// Auth
		r.Post("/admin/login", h.handleLogin)
		r.Post("/admin/logout", h.handleLogout)

		// Public API
		r.Route("/api/groups/{groupID}/polls", func(r chi.Router) {
			r.Get("/", h.handleListPolls)
			r.Get("/{pollID}", h.handleGetPoll)
			r.Post("/{pollID}/votes", h.handleVote)
			r.Post("/{pollID}/options", h.handleAddOption)
			r.Get("/{pollID}/qr", h.handlePollQR)
		})

		// Admin API (protected)
		r.Route("/api/admin/groups/{groupID}", func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)
			r.Post("/polls", h.handleCreatePoll)
			r.Post("/polls/{pollID}/close", h.handleClosePoll)
			r.Post("/polls/{pollID}/reopen", h.handleReopenPoll)
			r.Delete("/polls/{pollID}", h.handleDeletePoll)
			r.Get("/document", h.handleGetDocument)
			r.Post("/reload", h.handleReload)
		})
	})

	return r
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/abrezinsky/pollboard/internal/auth"
)

// LoginPageData holds data for the login template
type LoginPageData struct {
	Next  string
	Error string
}

// safeNext only allows local redirect targets
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

// handleLoginPage renders the login form
func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if h.Auth.IsAdmin(r) {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	h.templates.Login.Execute(w, LoginPageData{Next: next})
}

// handleLogin processes login form submission
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.FormValue("next"))

	name := strings.TrimSpace(r.FormValue("name"))
	token, ok := h.Auth.Login(r.FormValue("password"), name)
	if !ok {
		h.Log.Warn("Admin login failed", "remote", r.RemoteAddr)
		w.WriteHeader(http.StatusUnauthorized)
		if h.templates != nil {
			h.templates.Login.Execute(w, LoginPageData{Next: next, Error: "Invalid password"})
		}
		return
	}

	auth.SetSessionCookie(w, token)
	if name != "" {
		auth.SetUserCookie(w, name)
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// handleLogout clears the session and returns to the board
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

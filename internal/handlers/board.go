package handlers

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/pollboard/internal/auth"
	"github.com/abrezinsky/pollboard/internal/services"
)

var templateFuncs = template.FuncMap{
	"join":  strings.Join,
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// BoardPageData holds the data passed to the board template
type BoardPageData struct {
	Group   string
	Viewer  string
	IsAdmin bool
	Polls   []services.PollView
	Error   string
}

// handleIndex redirects to the default group's board
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/groups/"+url.PathEscape(h.settings.DefaultGroup), http.StatusFound)
}

// handleBoardPage renders a group's poll board. ?as= sets the remembered name.
func (h *Handlers) handleBoardPage(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	if as := strings.TrimSpace(r.URL.Query().Get("as")); as != "" {
		auth.SetUserCookie(w, as)
	}

	viewer := h.viewer(r)
	data := BoardPageData{
		Group:   groupID,
		Viewer:  viewer.Name,
		IsAdmin: viewer.IsAdmin,
	}

	views, err := h.Polls.Views(r.Context(), groupID, viewer)
	if err != nil {
		apiErr := ToAPIError(err)
		if apiErr.Status >= http.StatusInternalServerError {
			h.Log.Error("Failed to render board", "group", groupID, "error", err)
		}
		data.Error = apiErr.Message
		w.WriteHeader(apiErr.Status)
	} else {
		data.Polls = views
	}

	if err := h.templates.Board.Execute(w, data); err != nil {
		h.Log.Error("Board template failed", "group", groupID, "error", err)
	}
}

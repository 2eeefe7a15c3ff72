package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/pollboard/internal/auth"
	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/services"
)

// HeaderUserName carries the viewer's percent-encoded display name on API requests
const HeaderUserName = auth.HeaderUserName

// viewer resolves the request's identity, falling back to the default
// viewer name when the request names nobody
func (h *Handlers) viewer(r *http.Request) services.Viewer {
	id := h.Auth.Identify(r)
	if id.Name == "" {
		id.Name = services.DefaultViewer
	}
	return services.Viewer{Name: id.Name, IsAdmin: id.Admin}
}

func (h *Handlers) render(p *models.Poll, viewer services.Viewer) services.PollView {
	return h.Polls.Render(p, viewer)
}

// handleListPolls returns every poll of the group, newest first
func (h *Handlers) handleListPolls(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	views, err := h.Polls.Views(r.Context(), groupID, h.viewer(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, PollsResponse{Group: groupID, Polls: views})
}

// handleGetPoll returns a single poll
func (h *Handlers) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	view, err := h.Polls.View(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "pollID"), h.viewer(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, view)
}

// handleVote records a vote for the body's voter, or the request's viewer
func (h *Handlers) handleVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	viewer := h.viewer(r)
	if voter := strings.TrimSpace(req.Voter); voter != "" {
		viewer.Name = voter
	}

	poll, err := h.Polls.Vote(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "pollID"), req.OptionID, viewer.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, h.render(poll, viewer))
}

// handleAddOption appends a voter-supplied option to an open poll
func (h *Handlers) handleAddOption(w http.ResponseWriter, r *http.Request) {
	var req AddOptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	viewer := h.viewer(r)
	addedBy := strings.TrimSpace(req.AddedBy)
	if addedBy == "" {
		addedBy = viewer.Name
	}

	poll, err := h.Polls.AddCustomOption(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "pollID"), req.Text, addedBy)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondCreated(w, h.render(poll, viewer))
}

// handlePollQR serves a PNG QR code of the poll's share link
func (h *Handlers) handlePollQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Polls.ShareQR(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "pollID"), h.requestBaseURL(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

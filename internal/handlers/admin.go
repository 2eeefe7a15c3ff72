package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/pollboard/internal/errors"
	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/services"
)

// handleCreatePoll creates a poll in the group
func (h *Handlers) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req CreatePollRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	createdBy := strings.TrimSpace(req.CreatedBy)
	if createdBy == "" {
		createdBy = h.Auth.Identify(r).Name
	}

	input := services.NewPoll{
		Question:  req.Question,
		Type:      models.PollType(strings.ToLower(strings.TrimSpace(req.Type))),
		Options:   req.Options,
		Anonymous: req.Anonymous,
		CreatedBy: createdBy,
	}
	if strings.TrimSpace(req.ClosingDate) != "" {
		closing, err := models.ParseTimestamp(req.ClosingDate)
		if err != nil {
			h.respondError(w, r, errors.Validation("Please enter a valid closing date"))
			return
		}
		input.ClosingDate = &closing
	}

	poll, err := h.Polls.CreatePoll(r.Context(), chi.URLParam(r, "groupID"), input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondCreated(w, h.render(poll, h.viewer(r)))
}

// handleClosePoll closes a poll and records its winner
func (h *Handlers) handleClosePoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.Polls.ClosePoll(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "pollID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, h.render(poll, h.viewer(r)))
}

// handleReopenPoll reopens a closed poll
func (h *Handlers) handleReopenPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.Polls.ReopenPoll(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "pollID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, h.render(poll, h.viewer(r)))
}

// handleDeletePoll removes a poll
func (h *Handlers) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	if err := h.Polls.DeletePoll(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "pollID")); err != nil {
		h.respondError(w, r, err)
		return
	}

	respondDeleted(w)
}

// handleGetDocument exports the raw group document
func (h *Handlers) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Polls.Document(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, doc)
}

// handleReload drops the cached document so the next access reads storage
func (h *Handlers) handleReload(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	h.Polls.Reload(groupID)

	polls, err := h.Polls.ListPolls(r.Context(), groupID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.Log.Info("Group reloaded", "group", groupID, "polls", len(polls))
	respondOK(w, ReloadResponse{Group: groupID, Polls: len(polls)})
}

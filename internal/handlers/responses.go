package handlers

import "github.com/abrezinsky/pollboard/internal/services"

// PollsResponse is the response for the poll listing
type PollsResponse struct {
	Group string              `json:"group"`
	Polls []services.PollView `json:"polls"`
}

// ReloadResponse is the response for the admin reload endpoint
type ReloadResponse struct {
	Group string `json:"group"`
	Polls int    `json:"polls"`
}

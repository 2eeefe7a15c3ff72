package handlers

// CreatePollRequest is the body of the admin create endpoint.
// ClosingDate accepts RFC3339 or an HTML date/datetime-local value.
type CreatePollRequest struct {
	Question    string   `json:"question"`
	Type        string   `json:"type"`
	Options     []string `json:"options"`
	Anonymous   bool     `json:"anonymous"`
	ClosingDate string   `json:"closing_date"`
	CreatedBy   string   `json:"created_by"`
}

// VoteRequest represents a request to toggle or select an option
type VoteRequest struct {
	OptionID string `json:"option_id"`
	Voter    string `json:"voter"`
}

// AddOptionRequest represents a request to add a custom option to an open poll
type AddOptionRequest struct {
	Text    string `json:"text"`
	AddedBy string `json:"added_by"`
}

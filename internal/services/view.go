package services

import (
	"context"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/abrezinsky/pollboard/internal/models"
)

// Viewer identifies who is looking at the board. Name is an untrusted display
// name; IsAdmin comes from the session.
type Viewer struct {
	Name    string
	IsAdmin bool
}

// Admin actions offered on a poll
const (
	ActionClose  = "close"
	ActionReopen = "reopen"
	ActionDelete = "delete"
)

// PollView is a poll as presented to one viewer
type PollView struct {
	ID           string            `json:"id"`
	Question     string            `json:"question"`
	Type         models.PollType   `json:"type"`
	Status       models.PollStatus `json:"status"`
	CreatedBy    string            `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	ClosingDate  *time.Time        `json:"closing_date,omitempty"`
	ClosedAt     *time.Time        `json:"closed_at,omitempty"`
	ClosingLabel string            `json:"closing_label,omitempty"`
	Anonymous    bool              `json:"anonymous"`
	TotalVotes   int               `json:"total_votes"`
	HasVoted     bool              `json:"has_voted"`
	CanVote      bool              `json:"can_vote"`
	CanAddOption bool              `json:"can_add_option"`
	AdminActions []string          `json:"admin_actions,omitempty"`
	Winner       *string           `json:"winner"`
	WinnerText   string            `json:"winner_text,omitempty"`
	Options      []OptionView      `json:"options"`
}

// OptionView is one option of a PollView
type OptionView struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	VoteCount  int      `json:"vote_count"`
	Percentage int      `json:"percentage"`
	Selected   bool     `json:"selected"`
	IsWinner   bool     `json:"is_winner"`
	AddedBy    string   `json:"added_by,omitempty"`
	Voters     []string `json:"voters,omitempty"`
}

// percentage returns count/total as a whole percent, rounding halves up
func percentage(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(count)/float64(total)*100 + 0.5))
}

func closingLabel(p *models.Poll, now time.Time) string {
	switch {
	case p.IsOpen() && p.Settings.ClosingDate != nil:
		return "Closes " + humanize.RelTime(*p.Settings.ClosingDate, now, "ago", "from now")
	case !p.IsOpen() && p.ClosedAt != nil:
		return "Closed " + humanize.RelTime(*p.ClosedAt, now, "ago", "from now")
	}
	return ""
}

// BuildView renders p for viewer at time now
func BuildView(p *models.Poll, viewer Viewer, now time.Time) PollView {
	total := p.TotalVotes()
	closed := !p.IsOpen()

	view := PollView{
		ID:           p.ID,
		Question:     p.Question,
		Type:         p.Type,
		Status:       p.Status,
		CreatedBy:    p.CreatedBy,
		CreatedAt:    p.CreatedAt,
		ClosingDate:  p.Settings.ClosingDate,
		ClosedAt:     p.ClosedAt,
		ClosingLabel: closingLabel(p, now),
		Anonymous:    p.Settings.Anonymous,
		TotalVotes:   total,
		CanVote:      p.IsOpen(),
		CanAddOption: p.IsOpen() && p.Type == models.PollTypeOpen,
		Winner:       p.Winner,
		Options:      make([]OptionView, 0, len(p.Options)),
	}

	if viewer.IsAdmin {
		if closed {
			view.AdminActions = []string{ActionReopen, ActionDelete}
		} else {
			view.AdminActions = []string{ActionClose, ActionDelete}
		}
	}

	for i := range p.Options {
		opt := &p.Options[i]
		ov := OptionView{
			ID:         opt.ID,
			Text:       opt.Text,
			VoteCount:  opt.VoteCount(),
			Percentage: percentage(opt.VoteCount(), total),
			Selected:   viewer.Name != "" && opt.HasVoter(viewer.Name),
			IsWinner:   closed && p.Winner != nil && *p.Winner == opt.ID,
			AddedBy:    opt.AddedBy,
		}
		if !p.Settings.Anonymous {
			ov.Voters = append([]string(nil), opt.Voters...)
		}
		if ov.Selected {
			view.HasVoted = true
		}
		if ov.IsWinner {
			view.WinnerText = opt.Text
		}
		view.Options = append(view.Options, ov)
	}
	return view
}

// Render presents p to viewer using the service clock
func (s *PollService) Render(p *models.Poll, viewer Viewer) PollView {
	return BuildView(p, viewer, s.currentTime())
}

// Views lists the group's polls as seen by viewer, newest first
func (s *PollService) Views(ctx context.Context, groupID string, viewer Viewer) ([]PollView, error) {
	polls, err := s.ListPolls(ctx, groupID)
	if err != nil {
		return nil, err
	}

	now := s.currentTime()
	views := make([]PollView, 0, len(polls))
	for i := range polls {
		views = append(views, BuildView(&polls[i], viewer, now))
	}
	return views, nil
}

// View renders a single poll for viewer
func (s *PollService) View(ctx context.Context, groupID, pollID string, viewer Viewer) (*PollView, error) {
	poll, err := s.GetPoll(ctx, groupID, pollID)
	if err != nil {
		return nil, err
	}
	view := BuildView(poll, viewer, s.currentTime())
	return &view, nil
}

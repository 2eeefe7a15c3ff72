package models

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// PollType controls how votes on a poll behave
type PollType string

const (
	PollTypeSingle   PollType = "single"
	PollTypeMultiple PollType = "multiple"
	PollTypeOpen     PollType = "open" // voters may append options
)

// Valid reports whether t is a known poll type
func (t PollType) Valid() bool {
	switch t {
	case PollTypeSingle, PollTypeMultiple, PollTypeOpen:
		return true
	}
	return false
}

// PollStatus is the lifecycle state of a poll
type PollStatus string

const (
	PollStatusOpen   PollStatus = "open"
	PollStatusClosed PollStatus = "closed"
)

// PollSettings holds the options fixed at poll creation
type PollSettings struct {
	Anonymous   bool       `json:"anonymous"`
	ClosingDate *time.Time `json:"closingDate"`
}

// Poll is one entry of the group document's polls array
type Poll struct {
	ID        string       `json:"id"`
	Question  string       `json:"question"`
	Type      PollType     `json:"type"`
	CreatedBy string       `json:"createdBy"`
	CreatedAt time.Time    `json:"createdAt"`
	Options   []Option     `json:"options"`
	Settings  PollSettings `json:"settings"`
	Status    PollStatus   `json:"status"`
	Winner    *string      `json:"winner"`
	ClosedAt  *time.Time   `json:"closedAt,omitempty"`

	// Extra carries poll keys written by other clients of the host document
	Extra map[string]jsoniter.RawMessage `json:"-"`
}

// Option is a selectable choice within a poll.
// Voters is an ordered set; the vote count is its length.
type Option struct {
	ID      string
	Text    string
	Voters  []string
	AddedBy string
}

// VoteCount returns the number of voters who selected the option
func (o *Option) VoteCount() int {
	return len(o.Voters)
}

// HasVoter reports whether name currently has this option selected
func (o *Option) HasVoter(name string) bool {
	return o.voterIndex(name) >= 0
}

// AddVoter records name on the option. It is a no-op if already present.
func (o *Option) AddVoter(name string) {
	if o.HasVoter(name) {
		return
	}
	o.Voters = append(o.Voters, name)
}

// RemoveVoter removes name from the option and reports whether it was present
func (o *Option) RemoveVoter(name string) bool {
	i := o.voterIndex(name)
	if i < 0 {
		return false
	}
	o.Voters = append(o.Voters[:i], o.Voters[i+1:]...)
	return true
}

func (o *Option) voterIndex(name string) int {
	for i, v := range o.Voters {
		if v == name {
			return i
		}
	}
	return -1
}

// IsOpen reports whether the poll accepts votes
func (p *Poll) IsOpen() bool {
	return p.Status == PollStatusOpen
}

// FindOption returns the option with the given id, or nil
func (p *Poll) FindOption(id string) *Option {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i]
		}
	}
	return nil
}

// HasOptionText reports whether an option with the same text exists, ignoring case
func (p *Poll) HasOptionText(text string) bool {
	for _, opt := range p.Options {
		if strings.EqualFold(opt.Text, text) {
			return true
		}
	}
	return false
}

// TotalVotes sums the vote counts of all options
func (p *Poll) TotalVotes() int {
	total := 0
	for i := range p.Options {
		total += p.Options[i].VoteCount()
	}
	return total
}

// Expired reports whether an open poll's closing date lies before now
func (p *Poll) Expired(now time.Time) bool {
	return p.IsOpen() && p.Settings.ClosingDate != nil && now.After(*p.Settings.ClosingDate)
}

// Clone returns a deep copy of the poll
func (p *Poll) Clone() Poll {
	c := *p
	if p.Options != nil {
		c.Options = make([]Option, len(p.Options))
		for i, opt := range p.Options {
			opt.Voters = append([]string(nil), opt.Voters...)
			c.Options[i] = opt
		}
	}
	if p.Settings.ClosingDate != nil {
		t := *p.Settings.ClosingDate
		c.Settings.ClosingDate = &t
	}
	if p.Winner != nil {
		w := *p.Winner
		c.Winner = &w
	}
	if p.ClosedAt != nil {
		t := *p.ClosedAt
		c.ClosedAt = &t
	}
	if p.Extra != nil {
		c.Extra = make(map[string]jsoniter.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

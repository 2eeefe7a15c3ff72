package models

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GroupData is the host's shared group document. Only Polls is owned by this
// package; every other top-level key is carried through untouched in Extra.
type GroupData struct {
	Polls []Poll
	Extra map[string]jsoniter.RawMessage
}

// NewGroupData returns an empty document
func NewGroupData() *GroupData {
	return &GroupData{Polls: []Poll{}}
}

// FindPoll returns the poll with the given id, or nil
func (g *GroupData) FindPoll(id string) *Poll {
	for i := range g.Polls {
		if g.Polls[i].ID == id {
			return &g.Polls[i]
		}
	}
	return nil
}

// RemovePoll deletes the poll with the given id and reports whether it existed
func (g *GroupData) RemovePoll(id string) bool {
	for i := range g.Polls {
		if g.Polls[i].ID == id {
			g.Polls = append(g.Polls[:i], g.Polls[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the polls. Extra values are shared; they are
// never mutated in place.
func (g *GroupData) Clone() *GroupData {
	c := &GroupData{Polls: make([]Poll, len(g.Polls))}
	for i := range g.Polls {
		c.Polls[i] = g.Polls[i].Clone()
	}
	if g.Extra != nil {
		c.Extra = make(map[string]jsoniter.RawMessage, len(g.Extra))
		for k, v := range g.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

func (g GroupData) MarshalJSON() ([]byte, error) {
	out := make(map[string]jsoniter.RawMessage, len(g.Extra)+1)
	for k, v := range g.Extra {
		out[k] = v
	}
	polls := g.Polls
	if polls == nil {
		polls = []Poll{}
	}
	b, err := json.Marshal(polls)
	if err != nil {
		return nil, err
	}
	out["polls"] = b
	return json.Marshal(out)
}

func (g *GroupData) UnmarshalJSON(data []byte) error {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Polls = []Poll{}
	if p, ok := raw["polls"]; ok {
		delete(raw, "polls")
		if string(p) != "null" {
			if err := json.Unmarshal(p, &g.Polls); err != nil {
				return fmt.Errorf("polls: %w", err)
			}
		}
	}
	if len(raw) > 0 {
		g.Extra = raw
	} else {
		g.Extra = nil
	}
	return nil
}

// pollFields has the same fields as Poll without its JSON methods
type pollFields Poll

// pollKeys are the poll keys owned by this package
var pollKeys = []string{
	"id", "question", "type", "createdBy", "createdAt",
	"options", "settings", "status", "winner", "closedAt",
}

func (p Poll) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(pollFields(p))
	if err != nil || len(p.Extra) == 0 {
		return b, err
	}

	var out map[string]jsoniter.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func (p *Poll) UnmarshalJSON(data []byte) error {
	var fields pollFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range pollKeys {
		delete(raw, k)
	}

	*p = Poll(fields)
	p.Extra = nil
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// optionJSON is the stored shape of an Option. The host format keeps votes
// and voters as two arrays holding the same names.
type optionJSON struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Votes   []string `json:"votes"`
	Voters  []string `json:"voters"`
	AddedBy string   `json:"addedBy,omitempty"`
}

func (o Option) MarshalJSON() ([]byte, error) {
	voters := o.Voters
	if voters == nil {
		voters = []string{}
	}
	return json.Marshal(optionJSON{
		ID:      o.ID,
		Text:    o.Text,
		Votes:   voters,
		Voters:  voters,
		AddedBy: o.AddedBy,
	})
}

func (o *Option) UnmarshalJSON(data []byte) error {
	var raw optionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	names := raw.Voters
	if names == nil {
		names = raw.Votes
	}
	*o = Option{ID: raw.ID, Text: raw.Text, AddedBy: raw.AddedBy, Voters: []string{}}
	for _, n := range names {
		o.AddVoter(n)
	}
	return nil
}

func (s *PollSettings) UnmarshalJSON(data []byte) error {
	var raw struct {
		Anonymous   bool    `json:"anonymous"`
		ClosingDate *string `json:"closingDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Anonymous = raw.Anonymous
	s.ClosingDate = nil
	if raw.ClosingDate != nil && strings.TrimSpace(*raw.ClosingDate) != "" {
		t, err := ParseTimestamp(*raw.ClosingDate)
		if err != nil {
			return err
		}
		s.ClosingDate = &t
	}
	return nil
}

// timestampLayouts are tried in order; the short forms are what HTML date and
// datetime-local inputs produce.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an RFC3339 timestamp or a date/datetime-local value.
// Values without a zone are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

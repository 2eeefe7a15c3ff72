package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/pollboard/internal/document"
	"github.com/abrezinsky/pollboard/internal/logger"
	"github.com/abrezinsky/pollboard/internal/models"
)

const (
	DefaultCreator = "Admin"
	DefaultViewer  = "Viewer"
)

// Broadcaster is notified after every successful change to a group's polls
type Broadcaster interface {
	PollChanged(groupID, pollID string)
	PollDeleted(groupID, pollID string)
}

// NewPoll holds the input for CreatePoll
type NewPoll struct {
	Question    string
	Type        models.PollType
	Options     []string
	Anonymous   bool
	ClosingDate *time.Time
	CreatedBy   string
}

// PollService owns poll state transitions and vote bookkeeping
type PollService struct {
	log         logger.Logger
	registry    *document.Registry
	broadcaster Broadcaster
	now         func() time.Time
}

// ServiceOption configures a PollService
type ServiceOption func(*PollService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) ServiceOption {
	return func(s *PollService) {
		s.now = now
	}
}

// WithBroadcaster sets the change listener at construction
func WithBroadcaster(b Broadcaster) ServiceOption {
	return func(s *PollService) {
		s.broadcaster = b
	}
}

// NewPollService creates a new PollService
func NewPollService(log logger.Logger, registry *document.Registry, opts ...ServiceOption) *PollService {
	s := &PollService{
		log:      log,
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *PollService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *PollService) currentTime() time.Time {
	return s.now().UTC()
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func (s *PollService) notifyChanged(groupID, pollID string) {
	if s.broadcaster != nil {
		s.broadcaster.PollChanged(groupID, pollID)
	}
}

func (s *PollService) notifyDeleted(groupID, pollID string) {
	if s.broadcaster != nil {
		s.broadcaster.PollDeleted(groupID, pollID)
	}
}

// openDocument resolves the group handle and applies lazy expiry to it
func (s *PollService) openDocument(ctx context.Context, groupID string) (*document.Document, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, ErrGroupRequired
	}
	doc := s.registry.Get(groupID)
	if err := s.expire(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// expire closes every open poll whose closing date has passed. The change is
// persisted before the caller's operation runs.
func (s *PollService) expire(ctx context.Context, doc *document.Document) error {
	now := s.currentTime()
	var expired []string

	err := doc.Update(ctx, func(g *models.GroupData) (bool, error) {
		expired = expired[:0]
		for i := range g.Polls {
			if g.Polls[i].Expired(now) {
				closePoll(&g.Polls[i], now)
				expired = append(expired, g.Polls[i].ID)
			}
		}
		return len(expired) > 0, nil
	})
	if err != nil {
		return err
	}

	for _, id := range expired {
		s.log.Info("Poll reached closing date", "group", doc.GroupID(), "poll", id)
		s.notifyChanged(doc.GroupID(), id)
	}
	return nil
}

// updatePoll runs fn on the poll under the document lock and returns a copy
// of the result
func (s *PollService) updatePoll(ctx context.Context, groupID, pollID string, fn func(p *models.Poll) (bool, error)) (*models.Poll, error) {
	doc, err := s.openDocument(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var result models.Poll
	var changed bool
	err = doc.Update(ctx, func(g *models.GroupData) (bool, error) {
		p := g.FindPoll(pollID)
		if p == nil {
			return false, ErrPollNotFound
		}
		c, err := fn(p)
		if err != nil {
			return false, err
		}
		changed = c
		result = p.Clone()
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notifyChanged(groupID, pollID)
	}
	return &result, nil
}

// determineWinner returns the id of the first option with the strictly
// greatest vote count, or nil when no option has a vote
func determineWinner(p *models.Poll) *string {
	best := -1
	for i := range p.Options {
		if best < 0 || p.Options[i].VoteCount() > p.Options[best].VoteCount() {
			best = i
		}
	}
	if best < 0 || p.Options[best].VoteCount() == 0 {
		return nil
	}
	id := p.Options[best].ID
	return &id
}

func closePoll(p *models.Poll, now time.Time) {
	p.Status = models.PollStatusClosed
	p.ClosedAt = &now
	p.Winner = determineWinner(p)
}

// CreatePoll validates and appends a new open poll
func (s *PollService) CreatePoll(ctx context.Context, groupID string, input NewPoll) (*models.Poll, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrQuestionRequired
	}

	pollType := input.Type
	if pollType == "" {
		pollType = models.PollTypeSingle
	}
	if !pollType.Valid() {
		return nil, ErrInvalidPollType
	}

	var texts []string
	for _, text := range input.Options {
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}
	if pollType != models.PollTypeOpen && len(texts) < 2 {
		return nil, ErrTooFewOptions
	}

	createdBy := strings.TrimSpace(input.CreatedBy)
	if createdBy == "" {
		createdBy = DefaultCreator
	}

	doc, err := s.openDocument(ctx, groupID)
	if err != nil {
		return nil, err
	}

	poll := models.Poll{
		ID:        newID("poll"),
		Question:  question,
		Type:      pollType,
		CreatedBy: createdBy,
		CreatedAt: s.currentTime(),
		Options:   make([]models.Option, 0, len(texts)),
		Settings:  models.PollSettings{Anonymous: input.Anonymous},
		Status:    models.PollStatusOpen,
	}
	if input.ClosingDate != nil {
		closing := input.ClosingDate.UTC()
		poll.Settings.ClosingDate = &closing
	}
	for _, text := range texts {
		poll.Options = append(poll.Options, models.Option{ID: newID("opt"), Text: text, Voters: []string{}})
	}

	err = doc.Update(ctx, func(g *models.GroupData) (bool, error) {
		g.Polls = append(g.Polls, poll.Clone())
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Poll created", "group", groupID, "poll", poll.ID, "type", poll.Type, "options", len(poll.Options))
	s.notifyChanged(groupID, poll.ID)
	return &poll, nil
}

// Vote records voter's choice of optionID. Single-choice polls move the
// voter's selection to the option, multiple-choice polls toggle it and
// open polls only ever add it.
func (s *PollService) Vote(ctx context.Context, groupID, pollID, optionID, voter string) (*models.Poll, error) {
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return nil, ErrVoterRequired
	}

	var selected bool
	poll, err := s.updatePoll(ctx, groupID, pollID, func(p *models.Poll) (bool, error) {
		if !p.IsOpen() {
			return false, ErrPollClosed
		}
		target := p.FindOption(optionID)
		if target == nil {
			return false, ErrOptionNotFound
		}

		if p.Type == models.PollTypeSingle {
			changed := false
			for i := range p.Options {
				if p.Options[i].ID != optionID && p.Options[i].RemoveVoter(voter) {
					changed = true
				}
			}
			if !target.HasVoter(voter) {
				target.AddVoter(voter)
				changed = true
			}
			selected = true
			return changed, nil
		}

		if p.Type == models.PollTypeOpen {
			selected = true
			if target.HasVoter(voter) {
				return false, nil
			}
			target.AddVoter(voter)
			return true, nil
		}

		if target.RemoveVoter(voter) {
			selected = false
		} else {
			target.AddVoter(voter)
			selected = true
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Vote recorded", "group", groupID, "poll", pollID, "option", optionID, "voter", voter, "selected", selected)
	return poll, nil
}

// AddCustomOption appends a voter-submitted option to an open-type poll
func (s *PollService) AddCustomOption(ctx context.Context, groupID, pollID, text, addedBy string) (*models.Poll, error) {
	text = strings.TrimSpace(text)
	addedBy = strings.TrimSpace(addedBy)
	if addedBy == "" {
		addedBy = DefaultViewer
	}

	var optionID string
	poll, err := s.updatePoll(ctx, groupID, pollID, func(p *models.Poll) (bool, error) {
		if p.Type != models.PollTypeOpen {
			return false, ErrNotOpenPoll
		}
		if !p.IsOpen() {
			return false, ErrPollClosed
		}
		if text == "" {
			return false, ErrOptionTextRequired
		}
		if p.HasOptionText(text) {
			return false, ErrOptionExists
		}
		optionID = newID("opt")
		p.Options = append(p.Options, models.Option{ID: optionID, Text: text, Voters: []string{}, AddedBy: addedBy})
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Option added", "group", groupID, "poll", pollID, "option", optionID, "added_by", addedBy)
	return poll, nil
}

// ClosePoll closes the poll and determines its winner
func (s *PollService) ClosePoll(ctx context.Context, groupID, pollID string) (*models.Poll, error) {
	poll, err := s.updatePoll(ctx, groupID, pollID, func(p *models.Poll) (bool, error) {
		closePoll(p, s.currentTime())
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	winner := ""
	if poll.Winner != nil {
		winner = *poll.Winner
	}
	s.log.Info("Poll closed", "group", groupID, "poll", pollID, "winner", winner)
	return poll, nil
}

// ReopenPoll reopens the poll and clears its winner. Votes and closedAt are kept.
func (s *PollService) ReopenPoll(ctx context.Context, groupID, pollID string) (*models.Poll, error) {
	poll, err := s.updatePoll(ctx, groupID, pollID, func(p *models.Poll) (bool, error) {
		p.Status = models.PollStatusOpen
		p.Winner = nil
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Poll reopened", "group", groupID, "poll", pollID)
	return poll, nil
}

// DeletePoll removes the poll permanently
func (s *PollService) DeletePoll(ctx context.Context, groupID, pollID string) error {
	doc, err := s.openDocument(ctx, groupID)
	if err != nil {
		return err
	}

	err = doc.Update(ctx, func(g *models.GroupData) (bool, error) {
		if !g.RemovePoll(pollID) {
			return false, ErrPollNotFound
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	s.log.Info("Poll deleted", "group", groupID, "poll", pollID)
	s.notifyDeleted(groupID, pollID)
	return nil
}

// ListPolls returns copies of the group's polls, newest first
func (s *PollService) ListPolls(ctx context.Context, groupID string) ([]models.Poll, error) {
	doc, err := s.openDocument(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var polls []models.Poll
	err = doc.Read(ctx, func(g *models.GroupData) error {
		polls = make([]models.Poll, len(g.Polls))
		for i := range g.Polls {
			polls[i] = g.Polls[i].Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(polls, func(i, j int) bool {
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})
	return polls, nil
}

// GetPoll returns a copy of one poll
func (s *PollService) GetPoll(ctx context.Context, groupID, pollID string) (*models.Poll, error) {
	doc, err := s.openDocument(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var poll models.Poll
	err = doc.Read(ctx, func(g *models.GroupData) error {
		p := g.FindPoll(pollID)
		if p == nil {
			return ErrPollNotFound
		}
		poll = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

// Document returns a copy of the whole group document with expiry applied
func (s *PollService) Document(ctx context.Context, groupID string) (*models.GroupData, error) {
	doc, err := s.openDocument(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return doc.Snapshot(ctx)
}

// Reload discards the cached document so the next access reads it from storage
func (s *PollService) Reload(groupID string) {
	s.registry.Forget(groupID)
	s.log.Info("Group document reloaded", "group", groupID)
}

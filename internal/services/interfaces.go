package services

import (
	"context"

	"github.com/abrezinsky/pollboard/internal/models"
)

// PollServicer defines the interface for poll operations
type PollServicer interface {
	CreatePoll(ctx context.Context, groupID string, input NewPoll) (*models.Poll, error)
	Vote(ctx context.Context, groupID, pollID, optionID, voter string) (*models.Poll, error)
	AddCustomOption(ctx context.Context, groupID, pollID, text, addedBy string) (*models.Poll, error)
	ClosePoll(ctx context.Context, groupID, pollID string) (*models.Poll, error)
	ReopenPoll(ctx context.Context, groupID, pollID string) (*models.Poll, error)
	DeletePoll(ctx context.Context, groupID, pollID string) error
	ListPolls(ctx context.Context, groupID string) ([]models.Poll, error)
	GetPoll(ctx context.Context, groupID, pollID string) (*models.Poll, error)
	Views(ctx context.Context, groupID string, viewer Viewer) ([]PollView, error)
	View(ctx context.Context, groupID, pollID string, viewer Viewer) (*PollView, error)
	Render(p *models.Poll, viewer Viewer) PollView
	Document(ctx context.Context, groupID string) (*models.GroupData, error)
	ShareQR(ctx context.Context, groupID, pollID, baseURL string) ([]byte, error)
	Reload(groupID string)
	SetBroadcaster(b Broadcaster)
}

// Ensure PollService implements PollServicer
var _ PollServicer = (*PollService)(nil)

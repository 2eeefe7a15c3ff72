package services

import "github.com/abrezinsky/pollboard/internal/errors"

// Service errors. They compare by kind and message, so errors.Is works on
// copies returned from wrapped calls.
var (
	ErrGroupRequired      = errors.Validation("Please choose a group")
	ErrQuestionRequired   = errors.Validation("Please enter a poll question")
	ErrTooFewOptions      = errors.Validation("Please enter at least 2 options")
	ErrInvalidPollType    = errors.Validation("Poll type must be single, multiple or open")
	ErrOptionTextRequired = errors.Validation("Please enter an option")
	ErrVoterRequired      = errors.Validation("Please enter your name")
	ErrPollNotFound       = errors.NotFound("Poll not found")
	ErrOptionNotFound     = errors.NotFound("Option not found")
	ErrPollClosed         = errors.Conflict("This poll is closed")
	ErrOptionExists       = errors.Conflict("This option already exists")
	ErrNotOpenPoll        = errors.Conflict("Only open polls accept new options")
)

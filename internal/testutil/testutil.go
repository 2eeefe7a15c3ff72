package testutil

import (
	"testing"
	"time"

	"github.com/abrezinsky/pollboard/internal/logger"
	"github.com/abrezinsky/pollboard/internal/repository"
)

// NewTestRepository creates a new in-memory SQL repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// NewTestLogger returns a logger that only reports errors
func NewTestLogger() logger.Logger {
	return logger.NewWithLevel(logger.ParseLevel("error"))
}

// Clock is a settable time source for tests
type Clock struct {
	now time.Time
}

// NewClock returns a clock fixed at now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

package mock

import (
	"context"
	"sync"

	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SetSaveError(errors.New("database error"))
//	_, err := svc.Vote(ctx, "g1", pollID, optID, "alice")
//	// err is now a persistence error and the vote was reverted
type Repository struct {
	repository.DocumentRepository

	mu                sync.Mutex
	loadDocumentError error
	saveDocumentError error
	saveCalls         int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.DocumentRepository) *Repository {
	return &Repository{DocumentRepository: real}
}

func (m *Repository) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadDocumentError = err
}

func (m *Repository) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveDocumentError = err
}

// SaveCalls returns how many times SaveDocument reached the wrapped repository
func (m *Repository) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}

func (m *Repository) LoadDocument(ctx context.Context, groupID string) (*models.GroupData, error) {
	m.mu.Lock()
	err := m.loadDocumentError
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.DocumentRepository.LoadDocument(ctx, groupID)
}

func (m *Repository) SaveDocument(ctx context.Context, groupID string, doc *models.GroupData) error {
	m.mu.Lock()
	err := m.saveDocumentError
	if err == nil {
		m.saveCalls++
	}
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.DocumentRepository.SaveDocument(ctx, groupID, doc)
}

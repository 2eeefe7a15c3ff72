package hostdoc

import (
	"context"
	"sync"

	"github.com/abrezinsky/pollboard/internal/models"
	"github.com/abrezinsky/pollboard/internal/repository"
)

// MockClient is an in-memory host for testing. Documents are stored
// encoded so callers never share memory with the mock.
type MockClient struct {
	mu        sync.Mutex
	baseURL   string
	token     string
	documents map[string][]byte
	loadErr   error
	saveErr   error
	saves     int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithDocument seeds the document stored for groupID
func WithDocument(groupID string, doc *models.GroupData) MockOption {
	return func(m *MockClient) {
		body, _ := json.Marshal(doc)
		m.documents[groupID] = body
	}
}

// WithLoadError sets an error to return from LoadDocument
func WithLoadError(err error) MockOption {
	return func(m *MockClient) {
		m.loadErr = err
	}
}

// WithSaveError sets an error to return from SaveDocument
func WithSaveError(err error) MockOption {
	return func(m *MockClient) {
		m.saveErr = err
	}
}

// NewMockClient creates a new mock host client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:   "http://host.mock",
		documents: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockClient) BaseURL() string {
	return m.baseURL
}

func (m *MockClient) SetToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// SetSaveError changes the save error after construction
func (m *MockClient) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// Saves returns the number of successful saves
func (m *MockClient) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MockClient) LoadDocument(ctx context.Context, groupID string) (*models.GroupData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	body, ok := m.documents[groupID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	doc := models.NewGroupData()
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *MockClient) SaveDocument(ctx context.Context, groupID string, doc *models.GroupData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.documents[groupID] = body
	m.saves++
	return nil
}

// Ensure both clients satisfy the interface
var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)

package repository

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/abrezinsky/pollboard/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DocumentRepository loads and saves whole group documents
type DocumentRepository interface {
	// LoadDocument returns ErrNotFound when the group has never been saved
	LoadDocument(ctx context.Context, groupID string) (*models.GroupData, error)
	SaveDocument(ctx context.Context, groupID string, doc *models.GroupData) error
}

// Store is a DocumentRepository that owns a connection
type Store interface {
	DocumentRepository
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*RedisRepository)(nil)
	_ Store = (*MongoRepository)(nil)
)

func encodeDocument(doc *models.GroupData) ([]byte, error) {
	if doc == nil {
		doc = models.NewGroupData()
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode group document: %w", err)
	}
	return body, nil
}

func decodeDocument(body []byte) (*models.GroupData, error) {
	doc := models.NewGroupData()
	if len(body) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, fmt.Errorf("decode group document: %w", err)
	}
	return doc, nil
}

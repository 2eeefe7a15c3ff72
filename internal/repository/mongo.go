package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/abrezinsky/pollboard/internal/models"
)

const mongoCollection = "group_documents"

// MongoRepository stores group documents in a collection keyed by group id.
// The body is kept as a JSON string so host-owned fields survive unchanged.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type mongoDocument struct {
	GroupID   string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongo connects to uri and uses database dbName
func NewMongo(ctx context.Context, uri, dbName string) (*MongoRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return &MongoRepository{
		client:     client,
		collection: client.Database(dbName).Collection(mongoCollection),
	}, nil
}

func (r *MongoRepository) LoadDocument(ctx context.Context, groupID string) (*models.GroupData, error) {
	var stored mongoDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": groupID}).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeDocument([]byte(stored.Body))
}

func (r *MongoRepository) SaveDocument(ctx context.Context, groupID string, doc *models.GroupData) error {
	body, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = r.collection.ReplaceOne(ctx,
		bson.M{"_id": groupID},
		mongoDocument{GroupID: groupID, Body: string(body), UpdatedAt: time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

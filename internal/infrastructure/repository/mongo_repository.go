package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/infrastructure/repository/entity"
	"wholesale-registration-app/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSessionRepository implements SessionStorage using MongoDB
type MongoSessionRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoSessionRepository creates a new MongoDB session repository
func NewMongoSessionRepository(db *mongo.Database, collection string) *MongoSessionRepository {
	return &MongoSessionRepository{
		collection: db.Collection(collection),
		now:        time.Now,
	}
}

var _ ports.SessionStorage = (*MongoSessionRepository)(nil)

// EnsureIndexes creates the unique session id index and the shop index
func (r *MongoSessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "shop", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	return nil
}

// LoadSession retrieves a session by id
func (r *MongoSessionRepository) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	var doc entity.MongoSessionDoc
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return doc.ToDomain(), nil
}

// FindSessionsByShop retrieves every session stored for a shop
func (r *MongoSessionRepository) FindSessionsByShop(ctx context.Context, shop string) ([]*domain.Session, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"shop": bson.M{"$in": shopVariants(shop)}})
	if err != nil {
		return nil, fmt.Errorf("failed to find sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*domain.Session
	for cursor.Next(ctx) {
		var doc entity.MongoSessionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
		sessions = append(sessions, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return sessions, nil
}

// StoreSession saves or replaces a session
func (r *MongoSessionRepository) StoreSession(ctx context.Context, session *domain.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}
	doc := entity.MongoSessionDocFromDomain(session)
	doc.UpdatedAt = r.now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"id": session.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

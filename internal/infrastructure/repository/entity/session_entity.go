package entity

import (
	"time"

	"wholesale-registration-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoSessionDoc represents a Shopify session in MongoDB
type MongoSessionDoc struct {
	ObjectID    primitive.ObjectID `bson:"_id,omitempty"`
	ID          string             `bson:"id"`
	Shop        string             `bson:"shop"`
	State       string             `bson:"state"`
	IsOnline    bool               `bson:"isOnline"`
	Scope       string             `bson:"scope,omitempty"`
	Expires     *time.Time         `bson:"expires,omitempty"`
	AccessToken string             `bson:"accessToken"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoSessionDoc) ToDomain() *domain.Session {
	return &domain.Session{
		ID:          d.ID,
		Shop:        d.Shop,
		State:       d.State,
		IsOnline:    d.IsOnline,
		Scope:       d.Scope,
		Expires:     d.Expires,
		AccessToken: d.AccessToken,
	}
}

// MongoSessionDocFromDomain converts a domain entity to a MongoDB document
func MongoSessionDocFromDomain(s *domain.Session) *MongoSessionDoc {
	return &MongoSessionDoc{
		ID:          s.ID,
		Shop:        s.Shop,
		State:       s.State,
		IsOnline:    s.IsOnline,
		Scope:       s.Scope,
		Expires:     s.Expires,
		AccessToken: s.AccessToken,
	}
}

// DynamoSessionItem represents a Shopify session in DynamoDB.
// Expires is stored as epoch seconds so it can drive the table TTL.
type DynamoSessionItem struct {
	ID          string `dynamodbav:"id"`
	Shop        string `dynamodbav:"shop"`
	State       string `dynamodbav:"state"`
	IsOnline    bool   `dynamodbav:"isOnline"`
	Scope       string `dynamodbav:"scope,omitempty"`
	Expires     int64  `dynamodbav:"expires,omitempty"`
	AccessToken string `dynamodbav:"accessToken"`
	UpdatedAt   string `dynamodbav:"updatedAt"`
}

// ToDomain converts the DynamoDB item to a domain entity
func (i *DynamoSessionItem) ToDomain() *domain.Session {
	s := &domain.Session{
		ID:          i.ID,
		Shop:        i.Shop,
		State:       i.State,
		IsOnline:    i.IsOnline,
		Scope:       i.Scope,
		AccessToken: i.AccessToken,
	}
	if i.Expires > 0 {
		t := time.Unix(i.Expires, 0).UTC()
		s.Expires = &t
	}
	return s
}

// DynamoSessionItemFromDomain converts a domain entity to a DynamoDB item
func DynamoSessionItemFromDomain(s *domain.Session, now time.Time) *DynamoSessionItem {
	item := &DynamoSessionItem{
		ID:          s.ID,
		Shop:        s.Shop,
		State:       s.State,
		IsOnline:    s.IsOnline,
		Scope:       s.Scope,
		AccessToken: s.AccessToken,
		UpdatedAt:   now.UTC().Format(time.RFC3339),
	}
	if s.Expires != nil {
		item.Expires = s.Expires.Unix()
	}
	return item
}

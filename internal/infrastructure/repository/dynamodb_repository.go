package repository

import (
	"context"
	"fmt"
	"time"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/infrastructure/repository/entity"
	"wholesale-registration-app/internal/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the subset of the DynamoDB API used by the session repository
type DDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoSessionRepository implements SessionStorage using a DynamoDB table keyed
// by "id" with a global secondary index on "shop".
type DynamoSessionRepository struct {
	client    DDBClient
	table     string
	shopIndex string
	now       func() time.Time
}

// NewDynamoSessionRepository creates a new DynamoDB session repository
func NewDynamoSessionRepository(client DDBClient, table, shopIndex string) *DynamoSessionRepository {
	return &DynamoSessionRepository{
		client:    client,
		table:     table,
		shopIndex: shopIndex,
		now:       time.Now,
	}
}

var _ ports.SessionStorage = (*DynamoSessionRepository)(nil)

// LoadSession retrieves a session by id
func (r *DynamoSessionRepository) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item entity.DynamoSessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return item.ToDomain(), nil
}

// FindSessionsByShop queries the shop index for every form of the shop
func (r *DynamoSessionRepository) FindSessionsByShop(ctx context.Context, shop string) ([]*domain.Session, error) {
	var sessions []*domain.Session
	for _, variant := range shopVariants(shop) {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			IndexName:              aws.String(r.shopIndex),
			KeyConditionExpression: aws.String("#s = :s"),
			ExpressionAttributeNames: map[string]string{
				"#s": "shop",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":s": &types.AttributeValueMemberS{Value: variant},
			},
		}
		for {
			out, err := r.client.Query(ctx, input)
			if err != nil {
				return nil, fmt.Errorf("dynamodb query %s failed: %w", r.shopIndex, err)
			}
			for _, it := range out.Items {
				var item entity.DynamoSessionItem
				if err := attributevalue.UnmarshalMap(it, &item); err != nil {
					return nil, fmt.Errorf("failed to decode session: %w", err)
				}
				sessions = append(sessions, item.ToDomain())
			}
			if len(out.LastEvaluatedKey) == 0 {
				break
			}
			input.ExclusiveStartKey = out.LastEvaluatedKey
		}
	}
	return sessions, nil
}

// StoreSession saves or replaces a session
func (r *DynamoSessionRepository) StoreSession(ctx context.Context, session *domain.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(entity.DynamoSessionItemFromDomain(session, r.now()))
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

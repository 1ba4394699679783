package repository

import (
	"context"
	"errors"
	"fmt"

	"wholesale-registration-app/internal/config"
	"wholesale-registration-app/internal/ports"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// OpenSessionStorage connects the configured session backend. rdb is required for the
// redis backend and ignored otherwise. The returned close function releases the
// connection the backend owns.
func OpenSessionStorage(ctx context.Context, cfg config.SessionsConfig, rdb *redis.Client) (ports.SessionStorage, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Backend {
	case config.StorageMongoDB:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(ctx)
			return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		repo := NewMongoSessionRepository(client.Database(cfg.MongoDatabase), cfg.MongoCollection)
		if err := repo.EnsureIndexes(ctx); err != nil {
			client.Disconnect(ctx)
			return nil, nil, err
		}
		return repo, client.Disconnect, nil

	case config.StorageRedis:
		if rdb == nil {
			return nil, nil, errors.New("redis session storage requires a redis client")
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
		}
		return NewRedisSessionRepository(rdb, cfg.RedisPrefix), noop, nil

	case config.StorageDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return NewDynamoSessionRepository(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable, cfg.DynamoShopIndex), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown session storage %q", cfg.Backend)
	}
}

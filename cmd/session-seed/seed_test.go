package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wholesale-registration-app/internal/application"
	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/infrastructure/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newSeedStorage(t *testing.T) (*repository.RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewRedisSessionRepository(client, "shopify_sessions"), mr
}

func TestSeedSession(t *testing.T) {
	storage, mr := newSeedStorage(t)
	ctx := context.Background()

	session, err := seedSession(ctx, storage, " Test-Shop ", " shpat_1 ", "write_companies")
	if err != nil {
		t.Fatal(err)
	}
	if session.ID != "offline_test-shop.myshopify.com" || session.Shop != "test-shop.myshopify.com" || session.AccessToken != "shpat_1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if !mr.Exists("shopify_sessions_offline_test-shop.myshopify.com") {
		t.Fatal("session key not written")
	}
	if ttl := mr.TTL("shopify_sessions_offline_test-shop.myshopify.com"); ttl != 0 {
		t.Fatalf("offline session must not expire, got ttl %v", ttl)
	}

	// the server finds it under the bare shop name too
	loaded, err := application.NewSessionLoader(storage, zerolog.Nop()).Load(ctx, "test-shop")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.AccessToken != "shpat_1" || loaded.Scope != "write_companies" {
		t.Fatalf("unexpected loaded session %+v", loaded)
	}
}

type failingStorage struct{}

func (failingStorage) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	return nil, nil
}

func (failingStorage) FindSessionsByShop(ctx context.Context, shop string) ([]*domain.Session, error) {
	return nil, nil
}

func (failingStorage) StoreSession(ctx context.Context, session *domain.Session) error {
	return errors.New("connection refused")
}

func TestSeedSession_Errors(t *testing.T) {
	storage, _ := newSeedStorage(t)

	tests := []struct {
		Title         string
		Shop          string
		Token         string
		ExpectedError string
	}{
		{Title: "invalid shop", Shop: "evil.example.com/x", Token: "shpat_1", ExpectedError: "not a valid shop domain"},
		{Title: "empty token", Shop: "test-shop", Token: "  ", ExpectedError: "access token must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.Title, func(t *testing.T) {
			_, err := seedSession(context.Background(), storage, tt.Shop, tt.Token, "")
			if err == nil || !strings.Contains(err.Error(), tt.ExpectedError) {
				t.Fatalf("expected error containing %q, got %v", tt.ExpectedError, err)
			}
		})
	}

	t.Run("store failure", func(t *testing.T) {
		_, err := seedSession(context.Background(), failingStorage{}, "test-shop", "shpat_1", "")
		if err == nil || !strings.Contains(err.Error(), "failed to store session") {
			t.Fatalf("unexpected error %v", err)
		}
	})
}

package repository

import (
	"context"
	"strings"
	"testing"

	"wholesale-registration-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const sessionsNS = "shopify_app.shopify_sessions"

func TestMongoSessionRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("load found", func(mt *mtest.T) {
		repo := NewMongoSessionRepository(mt.DB, "shopify_sessions")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, sessionsNS, mtest.FirstBatch, bson.D{
			{Key: "id", Value: "offline_test-shop.myshopify.com"},
			{Key: "shop", Value: "test-shop.myshopify.com"},
			{Key: "isOnline", Value: false},
			{Key: "accessToken", Value: "shpat_1"},
		}))

		session, err := repo.LoadSession(context.Background(), "offline_test-shop.myshopify.com")
		if err != nil {
			mt.Fatal(err)
		}
		if session == nil || session.Shop != "test-shop.myshopify.com" || session.AccessToken != "shpat_1" {
			mt.Fatalf("unexpected session %+v", session)
		}
	})

	mt.Run("load missing", func(mt *mtest.T) {
		repo := NewMongoSessionRepository(mt.DB, "shopify_sessions")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, sessionsNS, mtest.FirstBatch))

		session, err := repo.LoadSession(context.Background(), "offline_nope")
		if err != nil || session != nil {
			mt.Fatalf("expected (nil, nil), got (%+v, %v)", session, err)
		}
	})

	mt.Run("find by shop", func(mt *mtest.T) {
		repo := NewMongoSessionRepository(mt.DB, "shopify_sessions")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, sessionsNS, mtest.FirstBatch,
			bson.D{{Key: "id", Value: "offline_test-shop"}, {Key: "shop", Value: "test-shop"}},
			bson.D{{Key: "id", Value: "offline_test-shop.myshopify.com"}, {Key: "shop", Value: "test-shop.myshopify.com"}},
		))

		sessions, err := repo.FindSessionsByShop(context.Background(), "test-shop")
		if err != nil {
			mt.Fatal(err)
		}
		if len(sessions) != 2 || sessions[1].ID != "offline_test-shop.myshopify.com" {
			mt.Fatalf("unexpected sessions %+v", sessions)
		}
	})

	mt.Run("store", func(mt *mtest.T) {
		repo := NewMongoSessionRepository(mt.DB, "shopify_sessions")
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.StoreSession(context.Background(), &domain.Session{ID: "offline_test-shop.myshopify.com", Shop: "test-shop.myshopify.com", AccessToken: "t"})
		if err != nil {
			mt.Fatal(err)
		}
	})

	mt.Run("store error", func(mt *mtest.T) {
		repo := NewMongoSessionRepository(mt.DB, "shopify_sessions")
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := repo.StoreSession(context.Background(), &domain.Session{ID: "offline_x", AccessToken: "t"})
		if err == nil || !strings.Contains(err.Error(), "failed to store session") {
			mt.Fatalf("unexpected error %v", err)
		}
	})

	mt.Run("store without id", func(mt *mtest.T) {
		repo := NewMongoSessionRepository(mt.DB, "shopify_sessions")
		if err := repo.StoreSession(context.Background(), &domain.Session{}); err != errSessionID {
			mt.Fatalf("expected id error, got %v", err)
		}
	})
}

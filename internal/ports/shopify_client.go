package ports

import (
	"context"
	"net/http"
	"net/url"

	"wholesale-registration-app/internal/domain"
)

// AdminClient issues GraphQL requests against one shop's Admin API.
// Every implementation exposes the same contract so workflows are agnostic to how it was built.
type AdminClient interface {
	GraphQL(ctx context.Context, query string, variables map[string]any) (*domain.GraphQLResponse, error)
}

// AdminClientFactory builds an AdminClient for a shop session.
// shop is the shop the request was resolved to; it is used when the session has none.
type AdminClientFactory interface {
	ForSession(r *http.Request, shop string, session *domain.Session) (AdminClient, error)
}

// AppVerifier verifies requests signed by Shopify with the app secret
type AppVerifier interface {
	// VerifyProxyRequest checks an app proxy signature and returns the shop claim
	VerifyProxyRequest(u *url.URL) (string, error)

	// VerifyAdminRequest checks the hmac of an embedded admin load and returns the shop
	VerifyAdminRequest(u *url.URL) (string, error)
}

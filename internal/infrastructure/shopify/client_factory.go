package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	"github.com/rs/zerolog"
)

const (
	ClientGoShopify = "goshopify"
	ClientRaw       = "raw"
)

// Authenticator resolves an admin client from an authenticated request
type Authenticator interface {
	Authenticate(r *http.Request) (ports.AdminClient, error)
}

// AdminObserver receives one observation per Admin GraphQL call
type AdminObserver interface {
	ObserveAdminRequest(operation, client, outcome string, elapsed time.Duration)
}

// ClientFactory builds admin clients for sessions. It prefers the authenticator
// and falls back to a raw HTTPS client when the authenticator fails.
type ClientFactory struct {
	auth       Authenticator
	apiVersion string
	httpClient *http.Client
	observer   AdminObserver
	logger     zerolog.Logger
}

// NewClientFactory creates a factory. observer may be nil.
func NewClientFactory(auth Authenticator, apiVersion string, httpClient *http.Client, observer AdminObserver, logger zerolog.Logger) *ClientFactory {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ClientFactory{
		auth:       auth,
		apiVersion: apiVersion,
		httpClient: httpClient,
		observer:   observer,
		logger:     logger,
	}
}

// ForSession returns a client for the session's shop, or for shop when the session
// does not record one. The error is always an
// *domain.AdminAuthError and only occurs when the session has no usable credentials.
func (f *ClientFactory) ForSession(r *http.Request, shop string, session *domain.Session) (ports.AdminClient, error) {
	if session == nil || !session.HasAccessToken() {
		if session != nil && session.Shop != "" {
			shop = session.Shop
		}
		return nil, &domain.AdminAuthError{Shop: shop, Err: errors.New("session has no access token")}
	}
	if strings.TrimSpace(session.Shop) != "" {
		shop = session.Shop
	}
	if strings.TrimSpace(shop) == "" {
		return nil, &domain.AdminAuthError{Shop: session.Shop, Err: errors.New("session has no shop")}
	}
	shop = domain.ShopDomain(shop)

	if f.auth != nil {
		authReq := r.Clone(r.Context())
		authReq.Header.Set("Authorization", "Bearer "+session.AccessToken)
		authReq.Header.Set(ShopDomainHeader, shop)

		c, err := f.auth.Authenticate(authReq)
		if err == nil {
			f.logger.Debug().Str("shop", shop).Str("client", ClientGoShopify).Msg("Admin client resolved")
			return f.instrument(c, shop, ClientGoShopify), nil
		}
		f.logger.Warn().Err(err).Str("shop", shop).Msg("Admin authentication failed, falling back to raw client")
	}

	raw := NewRawClient(shop, session.AccessToken, f.apiVersion, f.httpClient)
	return f.instrument(raw, shop, ClientRaw), nil
}

func (f *ClientFactory) instrument(c ports.AdminClient, shop, name string) ports.AdminClient {
	return &instrumentedClient{
		next:     c,
		shop:     shop,
		name:     name,
		observer: f.observer,
		logger:   f.logger,
	}
}

// instrumentedClient logs and measures every call of the wrapped client
type instrumentedClient struct {
	next     ports.AdminClient
	shop     string
	name     string
	observer AdminObserver
	logger   zerolog.Logger
}

func (c *instrumentedClient) GraphQL(ctx context.Context, query string, variables map[string]any) (*domain.GraphQLResponse, error) {
	op := OperationName(query)
	start := time.Now()
	resp, err := c.next.GraphQL(ctx, query, variables)
	elapsed := time.Since(start)

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case resp != nil && len(resp.Errors) > 0:
		outcome = "graphql_error"
	}
	if c.observer != nil {
		c.observer.ObserveAdminRequest(op, c.name, outcome, elapsed)
	}

	evt := c.logger.Debug()
	if outcome != "ok" {
		evt = c.logger.Warn()
	}
	evt = evt.Str("shop", c.shop).
		Str("operation", op).
		Str("client", c.name).
		Str("outcome", outcome).
		Dur("elapsed", elapsed)
	if err != nil {
		evt = evt.Err(err)
	}
	if resp != nil && len(resp.Errors) > 0 {
		evt = evt.Str("errors", joinMessages(resp.Errors))
	}
	evt.Msg("Admin GraphQL request")

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp, nil
}

func joinMessages(errs []domain.GraphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

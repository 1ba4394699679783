package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// ShopDomainHeader carries the shop of an authenticated admin request
const ShopDomainHeader = "X-Shopify-Shop-Domain"

var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*\.myshopify\.com$`)

// ValidShopDomain reports whether shop is a well-formed "*.myshopify.com" domain
func ValidShopDomain(shop string) bool {
	return shopDomainPattern.MatchString(shop)
}

// client adapts a go-shopify client to the AdminClient contract
type client struct {
	shop   string
	client *goshopify.Client
}

// GraphQL runs a document through go-shopify. Transport-level GraphQL errors are
// returned inside the response, like the raw client does, not as a Go error.
func (c *client) GraphQL(ctx context.Context, query string, variables map[string]any) (*domain.GraphQLResponse, error) {
	var data json.RawMessage
	err := c.client.GraphQL.Query(ctx, query, variables, &data)
	resp := &domain.GraphQLResponse{Data: data}
	if err == nil {
		return resp, nil
	}

	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) && respErr.Status == http.StatusOK && len(respErr.Errors) > 0 {
		for _, msg := range respErr.Errors {
			resp.Errors = append(resp.Errors, domain.GraphQLError{Message: msg})
		}
		return resp, nil
	}
	return nil, fmt.Errorf("failed to execute graphql request for %s: %w", c.shop, err)
}

// AdminAuthenticator resolves an authenticated admin client from a request that
// carries a bearer access token and the shop domain header.
type AdminAuthenticator struct {
	app        goshopify.App
	apiVersion string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewAdminAuthenticator creates an authenticator for the app credentials
func NewAdminAuthenticator(apiKey, apiSecret, apiVersion string, httpClient *http.Client, logger zerolog.Logger) *AdminAuthenticator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AdminAuthenticator{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		apiVersion: apiVersion,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Authenticate validates the request credentials and returns a go-shopify backed client
func (a *AdminAuthenticator) Authenticate(r *http.Request) (ports.AdminClient, error) {
	if a.app.ApiKey == "" || a.app.ApiSecret == "" {
		return nil, fmt.Errorf("app credentials are not configured")
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("missing bearer access token")
	}

	shop := strings.ToLower(strings.TrimSpace(r.Header.Get(ShopDomainHeader)))
	if !ValidShopDomain(shop) {
		return nil, fmt.Errorf("invalid shop domain %q", shop)
	}

	gc, err := goshopify.NewClient(a.app, shop, token,
		goshopify.WithVersion(a.apiVersion),
		goshopify.WithHTTPClient(a.httpClient),
		goshopify.WithLogger(&leveledLogger{logger: a.logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &client{shop: shop, client: gc}, nil
}

// leveledLogger routes go-shopify logs through zerolog
type leveledLogger struct {
	logger zerolog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Str("component", "go-shopify").Msgf(format, v...)
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logger.Info().Str("component", "go-shopify").Msgf(format, v...)
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Str("component", "go-shopify").Msgf(format, v...)
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Str("component", "go-shopify").Msgf(format, v...)
}

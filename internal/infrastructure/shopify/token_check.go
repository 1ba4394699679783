package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	"github.com/rs/zerolog"
)

const shopInfoQuery = `query ShopInfo {
  shop {
    name
    myshopifyDomain
  }
}`

// ShopInfo is the shop identity returned by a token check
type ShopInfo struct {
	Name            string `json:"name"`
	MyshopifyDomain string `json:"myshopifyDomain"`
}

// TokenChecker validates an access token with a lightweight Admin API call
type TokenChecker struct {
	logger zerolog.Logger
}

// NewTokenChecker creates a new token checker
func NewTokenChecker(logger zerolog.Logger) *TokenChecker {
	return &TokenChecker{logger: logger}
}

// Check returns the shop identity when the token is accepted.
// valid is false when Shopify rejects the token; err reports any other failure.
func (tc *TokenChecker) Check(ctx context.Context, client ports.AdminClient) (info *ShopInfo, valid bool, err error) {
	resp, err := client.GraphQL(ctx, shopInfoQuery, nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.Code == http.StatusUnauthorized || statusErr.Code == http.StatusForbidden) {
			tc.logger.Warn().Int("status", statusErr.Code).Msg("Token validation failed: token is invalid or revoked")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to validate token: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, false, &domain.GraphQLFailure{Step: "ShopInfo", Errors: resp.Errors}
	}

	var data struct {
		Shop ShopInfo `json:"shop"`
	}
	if err := resp.DecodeData(&data); err != nil {
		return nil, false, err
	}
	tc.logger.Debug().Str("shop", data.Shop.MyshopifyDomain).Msg("Token validation successful")
	return &data.Shop, true, nil
}

package shopify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
)

var (
	ErrSecretNotConfigured = errors.New("app secret is not configured")
	ErrMissingSignature    = errors.New("request is not signed")
	ErrInvalidSignature    = errors.New("request signature is invalid")
)

// Verifier checks Shopify request signatures with the app secret
type Verifier struct {
	app goshopify.App
}

// NewVerifier creates a verifier for the app credentials
func NewVerifier(apiKey, apiSecret string) *Verifier {
	return &Verifier{app: goshopify.App{ApiKey: apiKey, ApiSecret: apiSecret}}
}

// VerifyProxyRequest checks the app proxy "signature" parameter and returns the shop it names
func (v *Verifier) VerifyProxyRequest(u *url.URL) (string, error) {
	if v.app.ApiSecret == "" {
		return "", ErrSecretNotConfigured
	}
	if u.Query().Get("signature") == "" {
		return "", ErrMissingSignature
	}
	if !v.app.VerifySignature(u) {
		return "", ErrInvalidSignature
	}
	return shopClaim(u)
}

// VerifyAdminRequest checks the "hmac" parameter of an embedded admin load and returns the shop
func (v *Verifier) VerifyAdminRequest(u *url.URL) (string, error) {
	if v.app.ApiSecret == "" {
		return "", ErrSecretNotConfigured
	}
	if u.Query().Get("hmac") == "" {
		return "", ErrMissingSignature
	}
	ok, err := v.app.VerifyAuthorizationURL(u)
	if err != nil {
		return "", fmt.Errorf("failed to verify hmac: %w", err)
	}
	if !ok {
		return "", ErrInvalidSignature
	}
	return shopClaim(u)
}

func shopClaim(u *url.URL) (string, error) {
	shop := strings.ToLower(strings.TrimSpace(u.Query().Get("shop")))
	if shop == "" {
		return "", errors.New("signed request carries no shop")
	}
	if !ValidShopDomain(shop) {
		return "", fmt.Errorf("invalid shop domain %q", shop)
	}
	return shop, nil
}

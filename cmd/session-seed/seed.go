package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wholesale-registration-app/internal/domain"
	shopifyinfra "wholesale-registration-app/internal/infrastructure/shopify"
	"wholesale-registration-app/internal/ports"
)

// normalizeShop returns the "*.myshopify.com" form of shop or an error if it is not a shop domain
func normalizeShop(shop string) (string, error) {
	shop = domain.ShopDomain(shop)
	if !shopifyinfra.ValidShopDomain(shop) {
		return "", fmt.Errorf("%q is not a valid shop domain", shop)
	}
	return shop, nil
}

// seedSession writes the offline session of shop into storage
func seedSession(ctx context.Context, storage ports.SessionStorage, shop, token, scope string) (*domain.Session, error) {
	shop, err := normalizeShop(shop)
	if err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("access token must not be empty")
	}

	session := &domain.Session{
		ID:          domain.OfflineSessionID(shop),
		Shop:        shop,
		State:       "seeded",
		Scope:       strings.TrimSpace(scope),
		AccessToken: token,
	}
	if err := storage.StoreSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

package domain

import (
	"strings"
	"time"
)

// MyshopifySuffix is the storefront domain suffix of every Shopify shop
const MyshopifySuffix = ".myshopify.com"

// Session represents a persisted Shopify access session.
// Offline sessions are keyed "offline_<shop>" and carry a non-expiring access token.
type Session struct {
	ID          string     `json:"id" bson:"id" dynamodbav:"id"`
	Shop        string     `json:"shop" bson:"shop" dynamodbav:"shop"`
	State       string     `json:"state" bson:"state" dynamodbav:"state"`
	IsOnline    bool       `json:"isOnline" bson:"isOnline" dynamodbav:"isOnline"`
	Scope       string     `json:"scope,omitempty" bson:"scope,omitempty" dynamodbav:"scope,omitempty"`
	Expires     *time.Time `json:"expires,omitempty" bson:"expires,omitempty" dynamodbav:"expires,omitempty"`
	AccessToken string     `json:"accessToken" bson:"accessToken" dynamodbav:"accessToken"`
}

// HasAccessToken reports whether the session can be used against the Admin API
func (s *Session) HasAccessToken() bool {
	return s != nil && strings.TrimSpace(s.AccessToken) != ""
}

// ShopDomain returns the full "*.myshopify.com" form of a shop identifier.
func ShopDomain(shop string) string {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if strings.HasSuffix(shop, MyshopifySuffix) {
		return shop
	}
	return shop + MyshopifySuffix
}

// OfflineSessionIDs returns the session keys tried for a shop, in lookup order.
// Stores are inconsistent about whether the domain suffix is part of the key.
func OfflineSessionIDs(shop string) []string {
	return []string{
		"offline_" + shop,
		"offline_" + shop + MyshopifySuffix,
	}
}

// OfflineSessionID returns the canonical offline session key for a shop
func OfflineSessionID(shop string) string {
	return "offline_" + ShopDomain(shop)
}

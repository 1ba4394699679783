package repository

import (
	"errors"
	"strings"

	"wholesale-registration-app/internal/domain"
)

var errSessionID = errors.New("session id is required")

// shopVariants returns the shop as given and in its "*.myshopify.com" form, deduplicated.
// Session stores disagree on which form they record.
func shopVariants(shop string) []string {
	shop = strings.TrimSpace(shop)
	full := domain.ShopDomain(shop)
	if strings.EqualFold(shop, full) {
		return []string{full}
	}
	return []string{shop, full}
}

func validateSession(session *domain.Session) error {
	if session == nil || strings.TrimSpace(session.ID) == "" {
		return errSessionID
	}
	return nil
}

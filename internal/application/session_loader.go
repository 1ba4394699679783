package application

import (
	"context"
	"fmt"

	"wholesale-registration-app/internal/domain"
	"wholesale-registration-app/internal/ports"

	"github.com/rs/zerolog"
)

// SessionLoader finds the offline session of a shop
type SessionLoader struct {
	storage ports.SessionStorage
	logger  zerolog.Logger
}

// NewSessionLoader creates a new session loader
func NewSessionLoader(storage ports.SessionStorage, logger zerolog.Logger) *SessionLoader {
	return &SessionLoader{storage: storage, logger: logger}
}

// Load tries every offline key for the shop and returns the first stored session.
// It returns *domain.SessionNotFoundError when none exists.
func (l *SessionLoader) Load(ctx context.Context, shop string) (*domain.Session, error) {
	for _, id := range domain.OfflineSessionIDs(shop) {
		session, err := l.storage.LoadSession(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", id, err)
		}
		if session != nil {
			l.logger.Debug().Str("shop", shop).Str("session_id", id).Msg("Session found")
			return session, nil
		}
	}

	// diagnostics only
	sessions, err := l.storage.FindSessionsByShop(ctx, shop)
	if err != nil {
		l.logger.Warn().Err(err).Str("shop", shop).Msg("Could not list sessions")
	} else {
		l.logger.Warn().Str("shop", shop).Int("available_sessions", len(sessions)).Msg("No offline session found for shop")
	}
	return nil, &domain.SessionNotFoundError{Shop: shop}
}

package ports

import (
	"context"
	"time"

	"wholesale-registration-app/internal/domain"
)

// SessionStorage defines the interface for Shopify session persistence.
// LoadSession returns (nil, nil) when no session is stored under id.
type SessionStorage interface {
	LoadSession(ctx context.Context, id string) (*domain.Session, error)
	FindSessionsByShop(ctx context.Context, shop string) ([]*domain.Session, error)
	StoreSession(ctx context.Context, session *domain.Session) error
}

// Locker hands out short-lived exclusive locks
type Locker interface {
	// TryLock acquires key for ttl. ok is false when another holder owns it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

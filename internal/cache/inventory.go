package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	SessionKeyPrefix  = "session:%s"
	UsernameKeyPrefix = "username:%s"
	LastOwnerKey      = "portfolio:last_owner"

	// SessionEventsChannel carries session lifecycle events across instances.
	SessionEventsChannel = "session:events"
)

const (
	SessionTTL   = 24 * time.Hour
	UsernameTTL  = 5 * time.Minute
	LastOwnerTTL = 24 * time.Hour
)

func SessionKey(tokenID string) string {
	return fmt.Sprintf(SessionKeyPrefix, tokenID)
}

func UsernameKey(username string) string {
	return fmt.Sprintf(UsernameKeyPrefix, username)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateSession(ctx context.Context, tokenID string) {
	Invalidate(ctx, SessionKey(tokenID))
}

func InvalidateUsername(ctx context.Context, username string) {
	Invalidate(ctx, UsernameKey(username))
}

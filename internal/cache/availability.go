package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-reservations/internal/logger"
)

// Availability is the redis-backed snapshot of remaining_availability used by
// dashboard reads. It is display-only and eventually consistent; reserve and
// refund always go to the store, then refresh the snapshot best-effort.
type Availability struct {
	Client *redis.Client
	Logger *logger.Logger
	TTL    time.Duration
}

func NewAvailability(client *redis.Client, log *logger.Logger, ttl time.Duration) *Availability {
	return &Availability{Client: client, Logger: log, TTL: ttl}
}

func key(ticketTypeID string) string {
	return "availability:" + ticketTypeID
}

// Get returns (remaining, true) on a hit. A miss or a redis failure is
// reported as a miss so the caller falls back to the store.
func (a *Availability) Get(ctx context.Context, ticketTypeID string) (int, bool) {
	val, err := a.Client.Get(ctx, key(ticketTypeID)).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		a.Logger.Warn("REDIS", fmt.Sprintf("availability read failed for %s: %v", ticketTypeID, err))
		return 0, false
	}
	remaining, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return remaining, true
}

func (a *Availability) Set(ctx context.Context, ticketTypeID string, remaining int) {
	if err := a.Client.Set(ctx, key(ticketTypeID), remaining, a.TTL).Err(); err != nil {
		a.Logger.Warn("REDIS", fmt.Sprintf("availability write failed for %s: %v", ticketTypeID, err))
	}
}

// Invalidate drops the snapshot after a mutation when the fresh value is not
// at hand; the next read repopulates from the store.
func (a *Availability) Invalidate(ctx context.Context, ticketTypeIDs ...string) {
	keys := make([]string, len(ticketTypeIDs))
	for i, id := range ticketTypeIDs {
		keys[i] = key(id)
	}
	if err := a.Client.Del(ctx, keys...).Err(); err != nil {
		a.Logger.Warn("REDIS", fmt.Sprintf("availability invalidate failed: %v", err))
	}
}

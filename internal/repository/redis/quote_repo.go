package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yourorg/vesto-server/internal/domain"
)

const (
	quoteChannelPrefix = "quotes."
	lastQuoteKeyPrefix = "last_quote:"
	snapshotCacheKey   = "companies:all_data"
)

// QuoteRepo caches snapshot quotes and fans refreshes out over pubsub. The
// loader publishes; the gateway's quote stream and the invest flow read.
type QuoteRepo struct {
	client *redis.Client
}

func NewQuoteRepo(client *redis.Client) *QuoteRepo {
	return &QuoteRepo{client: client}
}

func (r *QuoteRepo) Publish(ctx context.Context, tick domain.QuoteTick) error {
	data, err := json.Marshal(tick)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Publish(ctx, quoteChannelPrefix+tick.Symbol, data)
	pipe.Set(ctx, lastQuoteKeyPrefix+tick.Symbol, data, 24*time.Hour)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *QuoteRepo) GetLastQuote(ctx context.Context, symbol string) (*domain.QuoteTick, error) {
	val, err := r.client.Get(ctx, lastQuoteKeyPrefix+symbol).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get last quote: %w", err)
	}
	var tick domain.QuoteTick
	if err := json.Unmarshal([]byte(val), &tick); err != nil {
		return nil, err
	}
	return &tick, nil
}

// SubscribeAll subscribes to quote refreshes for every symbol. The channel
// name carries the symbol; callers strip the prefix.
func (r *QuoteRepo) SubscribeAll(ctx context.Context) *redis.PubSub {
	return r.client.PSubscribe(ctx, quoteChannelPrefix+"*")
}

func SymbolFromChannel(channel string) string {
	if len(channel) <= len(quoteChannelPrefix) {
		return ""
	}
	return channel[len(quoteChannelPrefix):]
}

// CacheSnapshot stores the assembled companies all-data response body.
func (r *QuoteRepo) CacheSnapshot(ctx context.Context, body []byte, ttl time.Duration) error {
	return r.client.Set(ctx, snapshotCacheKey, body, ttl).Err()
}

func (r *QuoteRepo) GetCachedSnapshot(ctx context.Context) ([]byte, error) {
	val, err := r.client.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get snapshot: %w", err)
	}
	return val, nil
}

func (r *QuoteRepo) InvalidateSnapshot(ctx context.Context) error {
	return r.client.Del(ctx, snapshotCacheKey).Err()
}

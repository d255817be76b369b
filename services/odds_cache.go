package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const oddsTolerance = 1e-9

// OddsCache holds the latest odds snapshots in redis. Bet placement
// re-validates the quoted price against it; the settlement core
// tolerates the cache being down (placement proceeds on the quote).
type OddsCache struct {
	rdb *redis.Client
	log *zap.SugaredLogger
	ttl time.Duration
}

func NewOddsCache(addr string, log *zap.SugaredLogger) *OddsCache {
	return &OddsCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		log: log,
		ttl: 2 * time.Minute,
	}
}

func oddsKey(eventID, marketID, selection, side string) string {
	return fmt.Sprintf("odds:%s:%s:%s:%s", eventID, marketID, selection, side)
}

// Put stores both sides of one snapshot.
func (o *OddsCache) Put(ctx context.Context, s OddsSnapshot) error {
	pipe := o.rdb.Pipeline()
	pipe.Set(ctx, oddsKey(s.EventID, s.MarketID, s.Selection, "back"),
		strconv.FormatFloat(s.Back, 'f', -1, 64), o.ttl)
	pipe.Set(ctx, oddsKey(s.EventID, s.MarketID, s.Selection, "lay"),
		strconv.FormatFloat(s.Lay, 'f', -1, 64), o.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Current returns the cached price for one side of a selection.
func (o *OddsCache) Current(ctx context.Context, eventID, marketID, selection, side string) (float64, error) {
	val, err := o.rdb.Get(ctx, oddsKey(eventID, marketID, selection, side)).Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(val, 64)
}

// Validate rejects a quoted price that no longer matches the cached
// one. A missing or unreachable cache is not a rejection: stale odds
// data must never block the wallet, only a known price move does.
func (o *OddsCache) Validate(ctx context.Context, eventID, marketID, selection, side string, quoted float64) error {
	current, err := o.Current(ctx, eventID, marketID, selection, side)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			o.log.Warnw("odds cache unavailable, accepting quoted price",
				"event_id", eventID, "market_id", marketID, "error", err)
		}
		return nil
	}
	if math.Abs(current-quoted) > oddsTolerance {
		return fmt.Errorf("%w: quoted %.2f, current %.2f", ErrOddsChanged, quoted, current)
	}
	return nil
}

// Ping reports cache health for /healthz.
func (o *OddsCache) Ping(ctx context.Context) error {
	return o.rdb.Ping(ctx).Err()
}

// Odds is the process-wide cache handle, wired up in main.
var Odds *OddsCache

func InitOdds(addr string, log *zap.SugaredLogger) *OddsCache {
	Odds = NewOddsCache(addr, log)
	return Odds
}

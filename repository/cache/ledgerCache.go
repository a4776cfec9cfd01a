package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"societypay/model"
)

const (
	ledgerTTL = 10 * time.Minute
	genTTL    = 24 * time.Hour
)

// ErrStale is returned by Set when the ledger changed after the caller read it.
var ErrStale = errors.New("ledger cache: generation moved")

// LedgerCache keeps each member's ledger list in redis. Every member has a
// generation counter; Invalidate bumps it and Set only stores a list read
// under the current generation.
type LedgerCache interface {
	// Get returns the cached list, whether it was present, and the generation
	// to hand back to Set after reading the database.
	Get(ctx context.Context, memberID string) ([]model.LedgerEntry, int64, bool, error)
	Set(ctx context.Context, memberID string, gen int64, entries []model.LedgerEntry) error
	Invalidate(ctx context.Context, memberID string) error
}

type redisCache struct{ rdb *redis.Client }

func NewRedis(rdb *redis.Client) LedgerCache { return &redisCache{rdb: rdb} }

func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func ledgerKey(memberID string) string { return fmt.Sprintf("ledger:%s", memberID) }
func genKey(memberID string) string    { return fmt.Sprintf("ledger:%s:gen", memberID) }

func (c *redisCache) Get(ctx context.Context, memberID string) ([]model.LedgerEntry, int64, bool, error) {
	vals, err := c.rdb.MGet(ctx, ledgerKey(memberID), genKey(memberID)).Result()
	if err != nil {
		return nil, 0, false, err
	}
	gen, err := parseGen(vals[1])
	if err != nil {
		return nil, 0, false, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}
	var out []model.LedgerEntry
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, gen, false, err
	}
	return out, gen, true, nil
}

func (c *redisCache) Set(ctx context.Context, memberID string, gen int64, entries []model.LedgerEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	gk := genKey(memberID)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, ledgerKey(memberID), raw, ledgerTTL)
			return nil
		})
		return err
	}, gk)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

func (c *redisCache) Invalidate(ctx context.Context, memberID string) error {
	gk := genKey(memberID)
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, gk)
		p.Expire(ctx, gk, genTTL)
		p.Del(ctx, ledgerKey(memberID))
		return nil
	})
	return err
}

func parseGen(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ledger generation %q: %w", s, err)
	}
	return gen, nil
}

type noop struct{}

// Noop is used when no redis address is configured.
func Noop() LedgerCache { return noop{} }

func (noop) Get(context.Context, string) ([]model.LedgerEntry, int64, bool, error) {
	return nil, 0, false, nil
}
func (noop) Set(context.Context, string, int64, []model.LedgerEntry) error { return nil }
func (noop) Invalidate(context.Context, string) error                      { return nil }

package store

import (
	"context"
	"strconv"
	"time"

	"UChat/module/presence"
	"UChat/tools/errs"

	"github.com/redis/go-redis/v9"
)

// presence keys:
//   im:presence:idx          ZSET  member=user_id score=last_seen(ms)
//   im:presence:rec:<user>   HASH  name / game / seen
// 不给记录设 TTL：在线与否由查询方按分数窗口过滤。
const (
	indexKey  = "im:presence:idx"
	recPrefix = "im:presence:rec:"
)

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Upsert(ctx context.Context, r *presence.Record) error {
	ms := r.LastSeen.UnixMilli()
	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(ms), Member: r.UserID})
	pipe.HSet(ctx, recPrefix+r.UserID,
		"name", r.Name,
		"game", r.Game,
		"seen", ms)
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.ErrStorage.WrapMsg("presence upsert", "err", err)
	}
	return nil
}

func (s *RedisStore) ActiveSince(ctx context.Context, oldest time.Time) ([]*presence.Record, error) {
	ids, err := s.rdb.ZRevRangeByScore(ctx, indexKey, &redis.ZRangeBy{
		Min: strconv.FormatInt(oldest.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("presence range", "err", err)
	}

	out := make([]*presence.Record, 0, len(ids))
	for _, id := range ids {
		fields, err := s.rdb.HGetAll(ctx, recPrefix+id).Result()
		if err != nil {
			return nil, errs.ErrStorage.WrapMsg("presence record", "err", err)
		}
		if len(fields) == 0 {
			continue
		}
		ms, _ := strconv.ParseInt(fields["seen"], 10, 64)
		out = append(out, &presence.Record{
			UserID:   id,
			Name:     fields["name"],
			Game:     fields["game"],
			LastSeen: time.UnixMilli(ms).UTC(),
		})
	}
	return out, nil
}

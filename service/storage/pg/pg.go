package pg

import (
	"context"

	"UChat/tools/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	URL      string
	MaxConns int32
}

// New 建立 pgx 连接池并 ping 通。
func New(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errs.WrapMsg(err, "parse database url")
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, errs.WrapMsg(err, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errs.WrapMsg(err, "ping postgres")
	}
	return pool, nil
}

// 消息ID用 IDENTITY 列：插入即原子发号，DELETE 不回退序列，
// 截断之后的新消息也绝不会复用旧 id——客户端游标因此永远安全。
const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	author_id   TEXT        NOT NULL,
	author_name TEXT        NOT NULL,
	body        TEXT        NOT NULL,
	room        TEXT        NOT NULL DEFAULT '',
	rank        TEXT        NOT NULL DEFAULT '',
	rank_emoji  TEXT        NOT NULL DEFAULT '',
	rank_color  TEXT        NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_messages_room_id ON messages (room, id);

CREATE TABLE IF NOT EXISTS mutes (
	user_id    TEXT PRIMARY KEY,
	muted_by   TEXT        NOT NULL,
	reason     TEXT        NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rooms (
	code       TEXT PRIMARY KEY,
	owner_id   TEXT        NOT NULL,
	is_private BOOLEAN     NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS room_members (
	room_code TEXT        NOT NULL REFERENCES rooms (code) ON DELETE CASCADE,
	user_id   TEXT        NOT NULL,
	joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (room_code, user_id)
);
`

// EnsureSchema 启动时建表，幂等。
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return errs.WrapMsg(err, "ensure schema")
	}
	return nil
}

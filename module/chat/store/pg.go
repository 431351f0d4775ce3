package store

import (
	"context"
	"time"

	chatmodel "UChat/module/chat/model"
	"UChat/tools/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore 基于 Postgres 的消息日志。
// id 用 GENERATED ALWAYS AS IDENTITY：INSERT ... RETURNING 保证
// “分配ID+落库”原子，DELETE 不会回退序列，ID 永不复用。
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Insert(ctx context.Context, m *chatmodel.Message) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (author_id, author_name, body, room, rank, rank_emoji, rank_color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING id, created_at`,
		m.AuthorID, m.AuthorName, m.Body, m.Room, m.Rank, m.RankEmoji, m.RankColor,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return errs.ErrStorage.WrapMsg("insert message", "err", err)
	}
	return nil
}

func (s *PgStore) ListSince(ctx context.Context, afterID int64, limit int, room string) ([]*chatmodel.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, author_id, author_name, body, room, rank, rank_emoji, rank_color, created_at
		FROM messages
		WHERE id > $1 AND room = $2
		ORDER BY id ASC
		LIMIT $3`,
		afterID, room, limit)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("list messages", "err", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (s *PgStore) ListAll(ctx context.Context) ([]*chatmodel.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, author_id, author_name, body, room, rank, rank_emoji, rank_color, created_at
		FROM messages
		ORDER BY id ASC`)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("list all messages", "err", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (s *PgStore) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages`)
	if err != nil {
		return 0, errs.ErrStorage.WrapMsg("delete all messages", "err", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PgStore) DeleteUpTo(ctx context.Context, maxID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id <= $1`, maxID)
	if err != nil {
		return 0, errs.ErrStorage.WrapMsg("delete archived messages", "err", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PgStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM messages`).Scan(&n); err != nil {
		return 0, errs.ErrStorage.WrapMsg("count messages", "err", err)
	}
	return n, nil
}

func (s *PgStore) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM messages WHERE created_at >= $1`, t).Scan(&n); err != nil {
		return 0, errs.ErrStorage.WrapMsg("count messages since", "err", err)
	}
	return n, nil
}

func (s *PgStore) DistinctAuthors(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(DISTINCT author_id) FROM messages`).Scan(&n); err != nil {
		return 0, errs.ErrStorage.WrapMsg("count authors", "err", err)
	}
	return n, nil
}

type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMessages(rows pgRows) ([]*chatmodel.Message, error) {
	var list []*chatmodel.Message
	for rows.Next() {
		m := &chatmodel.Message{}
		if err := rows.Scan(&m.ID, &m.AuthorID, &m.AuthorName, &m.Body, &m.Room,
			&m.Rank, &m.RankEmoji, &m.RankColor, &m.CreatedAt); err != nil {
			return nil, errs.ErrStorage.WrapMsg("scan message", "err", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.ErrStorage.WrapMsg("iterate messages", "err", err)
	}
	return list, nil
}

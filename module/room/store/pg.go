package store

import (
	"context"
	"errors"

	roommodel "UChat/module/room/model"
	"UChat/tools/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Create 建房和房主成员在同一个事务里落库。
func (s *PgStore) Create(ctx context.Context, r *roommodel.Room) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.ErrStorage.WrapMsg("begin tx", "err", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO rooms (code, owner_id, is_private, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING created_at`,
		r.Code, r.OwnerID, r.Private,
	).Scan(&r.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errs.ErrRoomExists
		}
		return errs.ErrStorage.WrapMsg("insert room", "err", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO room_members (room_code, user_id, joined_at)
		VALUES ($1, $2, now())`,
		r.Code, r.OwnerID)
	if err != nil {
		return errs.ErrStorage.WrapMsg("insert owner membership", "err", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.ErrStorage.WrapMsg("commit room", "err", err)
	}
	return nil
}

func (s *PgStore) Get(ctx context.Context, code string) (*roommodel.Room, error) {
	r := &roommodel.Room{}
	err := s.pool.QueryRow(ctx, `
		SELECT code, owner_id, is_private, created_at
		FROM rooms WHERE code = $1`, code,
	).Scan(&r.Code, &r.OwnerID, &r.Private, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrRoomNotFound
		}
		return nil, errs.ErrStorage.WrapMsg("get room", "err", err)
	}
	return r, nil
}

func (s *PgStore) AddMember(ctx context.Context, code, userID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO room_members (room_code, user_id, joined_at)
		VALUES ($1, $2, now())
		ON CONFLICT (room_code, user_id) DO NOTHING`,
		code, userID)
	if err != nil {
		return errs.ErrStorage.WrapMsg("add member", "err", err)
	}
	return nil
}

func (s *PgStore) SetPrivacy(ctx context.Context, code string, private bool) error {
	_, err := s.pool.Exec(ctx, `UPDATE rooms SET is_private = $2 WHERE code = $1`, code, private)
	if err != nil {
		return errs.ErrStorage.WrapMsg("set privacy", "err", err)
	}
	return nil
}

func (s *PgStore) Members(ctx context.Context, code string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id FROM room_members
		WHERE room_code = $1
		ORDER BY joined_at ASC`, code)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("list members", "err", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errs.ErrStorage.WrapMsg("scan member", "err", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.ErrStorage.WrapMsg("iterate members", "err", err)
	}
	return out, nil
}

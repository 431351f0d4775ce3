package store

import (
	"context"
	"errors"

	modmodel "UChat/module/moderation/model"
	"UChat/tools/errs"

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

func (s *PgStore) Insert(ctx context.Context, e *modmodel.MuteEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO mutes (user_id, muted_by, reason, created_at)
		VALUES ($1, $2, $3, $4)`,
		e.UserID, e.MutedBy, e.Reason, e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errs.ErrAlreadyMuted
		}
		return errs.ErrStorage.WrapMsg("insert mute", "err", err)
	}
	return nil
}

func (s *PgStore) Delete(ctx context.Context, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM mutes WHERE user_id = $1`, userID)
	if err != nil {
		return false, errs.ErrStorage.WrapMsg("delete mute", "err", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PgStore) List(ctx context.Context) ([]*modmodel.MuteEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, muted_by, reason, created_at
		FROM mutes
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, errs.ErrStorage.WrapMsg("list mutes", "err", err)
	}
	defer rows.Close()

	var list []*modmodel.MuteEntry
	for rows.Next() {
		e := &modmodel.MuteEntry{}
		if err := rows.Scan(&e.UserID, &e.MutedBy, &e.Reason, &e.CreatedAt); err != nil {
			return nil, errs.ErrStorage.WrapMsg("scan mute", "err", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.ErrStorage.WrapMsg("iterate mutes", "err", err)
	}
	return list, nil
}

package model

import (
	"context"
	"time"
)

// MuteEntry 一条禁言记录。在表即禁言，删除即解除。
type MuteEntry struct {
	UserID    string    `json:"user_id"`
	MutedBy   string    `json:"muted_by"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"timestamp"`
}

// Store 禁言名单的持久层。进程重启后以这里的数据为准重建内存缓存。
type Store interface {
	// Insert 写入禁言记录；目标已在名单时返回 errs.ErrAlreadyMuted。
	Insert(ctx context.Context, e *MuteEntry) error
	// Delete 返回是否真的删了（false = 本来就不在名单）。
	Delete(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context) ([]*MuteEntry, error)
}

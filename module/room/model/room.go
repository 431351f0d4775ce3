package model

import (
	"context"
	"time"
)

// Room 消息流的一个分区，有自己的成员集合和私密开关。
type Room struct {
	Code      string    `json:"code"`
	OwnerID   string    `json:"owner_id"`
	Private   bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
}

// Store 房间与成员关系的持久层。
// 不变式：房间的成员集合永远包含房主（Create 在同一事务里写入房主成员）。
type Store interface {
	// Create 建房并把房主写成第一个成员；code 已占用时返回 errs.ErrRoomExists。
	Create(ctx context.Context, r *Room) error
	// Get 房间不存在时返回 errs.ErrRoomNotFound。
	Get(ctx context.Context, code string) (*Room, error)
	// AddMember 幂等：重复加入是 no-op。
	AddMember(ctx context.Context, code, userID string) error
	SetPrivacy(ctx context.Context, code string, private bool) error
	Members(ctx context.Context, code string) ([]string, error)
}

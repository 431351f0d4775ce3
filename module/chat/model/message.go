package model

import (
	"context"
	"time"
)

// ===== 消息主体 =====

// 消息体裁：general 走消息日志；heartbeat 只刷新在线状态，绝不占用消息ID。
const (
	KindGeneral   = "general"
	KindHeartbeat = "heartbeat"
)

// Message 一条已落库的聊天消息。创建后不可变；
// rank 三个字段是写入时的角色快照，之后改角色不回写历史。
type Message struct {
	ID         int64     `json:"id"`
	AuthorID   string    `json:"user_id"`
	AuthorName string    `json:"username"`
	Body       string    `json:"message"`
	Room       string    `json:"room,omitempty"` // 空串 = 默认公共频道
	Rank       string    `json:"rank"`
	RankEmoji  string    `json:"rank_emoji"`
	RankColor  string    `json:"rank_color"`
	CreatedAt  time.Time `json:"timestamp"`
}

// ===== 存储接口 =====

// Store 是消息日志的持久层。
// Insert 必须把“分配ID + 落库”做成单个原子步骤（如 RETURNING 的自增主键），
// 且 ID 严格递增、删除后永不复用——游标轮询依赖这一点。
type Store interface {
	Insert(ctx context.Context, m *Message) error
	// ListSince 返回 id > afterID 且属于指定 room 的消息，按 id 升序，最多 limit 条。
	ListSince(ctx context.Context, afterID int64, limit int, room string) ([]*Message, error)
	// ListAll 按 id 升序返回全部消息（归档快照用）。
	ListAll(ctx context.Context) ([]*Message, error)
	// DeleteAll 清空消息日志，返回删除条数。
	DeleteAll(ctx context.Context) (int64, error)
	// DeleteUpTo 只删除 id <= maxID 的消息，归档期间新到的消息不受影响。
	DeleteUpTo(ctx context.Context, maxID int64) (int64, error)

	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, t time.Time) (int64, error)
	DistinctAuthors(ctx context.Context) (int64, error)
}

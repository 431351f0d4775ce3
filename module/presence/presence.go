package presence

import (
	"context"
	"time"
)

// DefaultWindow “在线”的默认滑动窗口。
const DefaultWindow = 2 * time.Minute

// Record 一个身份的在线记录，每次心跳或发言整条覆盖。
type Record struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"username"`
	Game     string    `json:"game"`
	LastSeen time.Time `json:"last_seen"`
}

// Store 在线记录的持久层。过期只在查询时按时间过滤，
// 不做后台淘汰——记录永远不被主动删除。
type Store interface {
	Upsert(ctx context.Context, r *Record) error
	// ActiveSince 返回 last_seen >= oldest 的记录，按 last_seen 降序。
	ActiveSince(ctx context.Context, oldest time.Time) ([]*Record, error)
}

// Tracker 在线状态组件：启动时构造一次，注入存储，按引用传给各处。
type Tracker struct {
	store  Store
	window time.Duration
}

func NewTracker(store Store, window time.Duration) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{store: store, window: window}
}

// Heartbeat 覆盖式写入，把该身份的 last_seen 拉回当前时刻。重试天然幂等。
func (t *Tracker) Heartbeat(ctx context.Context, userID, name, game string) error {
	return t.store.Upsert(ctx, &Record{
		UserID:   userID,
		Name:     name,
		Game:     game,
		LastSeen: time.Now().UTC(),
	})
}

// Active 返回窗口内活跃的记录；window<=0 用配置的默认窗口。
func (t *Tracker) Active(ctx context.Context, window time.Duration) ([]*Record, error) {
	if window <= 0 {
		window = t.window
	}
	list, err := t.store.ActiveSince(ctx, time.Now().UTC().Add(-window))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*Record{}
	}
	return list, nil
}

// Window 配置的默认窗口（统计输出用）。
func (t *Tracker) Window() time.Duration { return t.window }

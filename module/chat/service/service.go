package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"UChat/logger"
	chatmodel "UChat/module/chat/model"
	"UChat/module/rank"
	"UChat/service/notify"
	"UChat/tools/errs"

	"go.uber.org/zap"
)

// 字段上限与拉取窗口
const (
	MaxUserLen = 50
	MaxBodyLen = 500
	MaxGameLen = 100
	MaxRoomLen = 16

	DefaultListLimit = 20
	MaxListLimit     = 200
)

// Muter 发消息热路径上的禁言检查，必须是 O(1) 内存查询。
type Muter interface {
	IsMuted(userID string) bool
}

// Presence 在线状态的写入口。
type Presence interface {
	Heartbeat(ctx context.Context, userID, name, game string) error
}

// Service 消息日志服务：追加、游标拉取、清空、统计。
type Service struct {
	store    chatmodel.Store
	ranks    *rank.Resolver
	mutes    Muter
	presence Presence
	notify   *notify.Dispatcher

	startedAt time.Time
}

func NewService(store chatmodel.Store, ranks *rank.Resolver, mutes Muter, presence Presence, nd *notify.Dispatcher) *Service {
	return &Service{
		store:     store,
		ranks:     ranks,
		mutes:     mutes,
		presence:  presence,
		notify:    nd,
		startedAt: time.Now(),
	}
}

type AppendInput struct {
	UserID      string
	DisplayName string
	Body        string
	Room        string
	Game        string
	Kind        string // general | heartbeat
}

// Append 追加一条消息。kind=heartbeat 只刷新在线状态，不产生消息也不占ID。
// 返回的消息带存储层分配好的 id 和时间戳；heartbeat 返回 (nil, nil)。
func (s *Service) Append(ctx context.Context, in AppendInput) (*chatmodel.Message, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" || utf8.RuneCountInString(userID) > MaxUserLen {
		return nil, errs.ErrArgs.WithDetail("user_id is required, max 50 chars")
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = userID
	}
	name = truncateRunes(name, MaxUserLen)
	game := in.Game
	if game == "" {
		game = "Unknown"
	}
	game = truncateRunes(game, MaxGameLen)

	switch in.Kind {
	case "", chatmodel.KindGeneral:
	case chatmodel.KindHeartbeat:
		if err := s.presence.Heartbeat(ctx, userID, name, game); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		return nil, errs.ErrArgs.WithDetail("unknown message type: " + in.Kind)
	}

	if s.mutes.IsMuted(userID) {
		return nil, errs.ErrMuted
	}

	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, errs.ErrArgs.WithDetail("message is required")
	}
	if utf8.RuneCountInString(body) > MaxBodyLen {
		return nil, errs.ErrArgs.WithDetail("message too long, max 500 chars")
	}
	room := strings.TrimSpace(in.Room)
	if utf8.RuneCountInString(room) > MaxRoomLen {
		return nil, errs.ErrArgs.WithDetail("bad room code")
	}

	// 角色快照在写入时取一次，之后改角色不影响历史消息
	info := s.ranks.Resolve(userID)
	m := &chatmodel.Message{
		AuthorID:   userID,
		AuthorName: name,
		Body:       body,
		Room:       room,
		Rank:       info.Rank,
		RankEmoji:  info.Emoji,
		RankColor:  info.Color,
	}
	if err := s.store.Insert(ctx, m); err != nil {
		return nil, err
	}

	// 在线状态是副作用，失败不影响消息本身
	if err := s.presence.Heartbeat(ctx, userID, name, game); err != nil {
		logger.Warn("presence update failed", zap.String("user", userID), zap.Error(err))
	}
	s.notify.MessageSent(m, game)

	return m, nil
}

// ReadSince 游标式增量拉取：返回 id > afterID 的消息，升序，带硬上限。
// 反复带上一次的最大 id 轮询即可得到无缺口、无重复的流；从 0 可重放全量。
func (s *Service) ReadSince(ctx context.Context, afterID int64, limit int, room string) ([]*chatmodel.Message, error) {
	if afterID < 0 {
		afterID = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	list, err := s.store.ListSince(ctx, afterID, limit, strings.TrimSpace(room))
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*chatmodel.Message{}
	}
	return list, nil
}

// Clear 清空消息日志，返回删除条数。授权检查在 moderation 层做。
func (s *Service) Clear(ctx context.Context) (int64, error) {
	return s.store.DeleteAll(ctx)
}

// 截断按字符数算，绝不切开一个多字节字符
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type Stats struct {
	StoredMessages  int64     `json:"messages_stored"`
	MessagesToday   int64     `json:"messages_today"`
	DistinctAuthors int64     `json:"unique_users"`
	UptimeSeconds   int64     `json:"uptime_seconds"`
	ServerStart     time.Time `json:"server_start"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	today, err := s.store.CountSince(ctx, midnight)
	if err != nil {
		return nil, err
	}
	authors, err := s.store.DistinctAuthors(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		StoredMessages:  total,
		MessagesToday:   today,
		DistinctAuthors: authors,
		UptimeSeconds:   int64(time.Since(s.startedAt).Seconds()),
		ServerStart:     s.startedAt,
	}, nil
}

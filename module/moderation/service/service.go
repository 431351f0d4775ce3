package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"UChat/logger"
	modmodel "UChat/module/moderation/model"
	"UChat/module/rank"
	"UChat/service/notify"
	"UChat/tools/errs"

	"go.uber.org/zap"
)

const maxReasonLen = 200

// Clearer 消息日志的清空入口（由 chat 服务实现）。
type Clearer interface {
	Clear(ctx context.Context) (int64, error)
}

// Archiver 归档调度器的触发入口。Trigger 返回 false 表示已有归档在跑、本次被丢弃。
type Archiver interface {
	Trigger() bool
}

// Authority 审核权限层：给特权操作做角色把关，并持有禁言名单的内存缓存。
//
// 缓存和持久层的写入在同一次调用里完成（先库后缓存），读路径只查缓存，
// 重启后用 NewAuthority 从库里重建——库是唯一可信来源。
type Authority struct {
	store  modmodel.Store
	ranks  *rank.Resolver
	notify *notify.Dispatcher

	chat     Clearer
	archiver Archiver

	mu    sync.RWMutex
	cache map[string]*modmodel.MuteEntry
}

// NewAuthority 构造并用持久层数据预热禁言缓存。
func NewAuthority(ctx context.Context, store modmodel.Store, ranks *rank.Resolver, nd *notify.Dispatcher) (*Authority, error) {
	entries, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	cache := make(map[string]*modmodel.MuteEntry, len(entries))
	for _, e := range entries {
		cache[e.UserID] = e
	}
	logger.Infof("mute cache warmed: %d entries", len(cache))
	return &Authority{store: store, ranks: ranks, notify: nd, cache: cache}, nil
}

// BindChat / BindArchiver 解开构造期的相互依赖：chat 需要 IsMuted，
// authority 需要 chat 的 Clear 和归档触发。
func (a *Authority) BindChat(c Clearer)      { a.chat = c }
func (a *Authority) BindArchiver(r Archiver) { a.archiver = r }

// Mute staff 禁言一个普通成员。
func (a *Authority) Mute(ctx context.Context, moderatorID, targetID, reason string) (*modmodel.MuteEntry, error) {
	if !a.ranks.IsStaff(moderatorID) {
		return nil, errs.ErrNoPermission
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, errs.ErrArgs.WithDetail("target_user is required")
	}
	if a.ranks.IsStaff(targetID) {
		return nil, errs.ErrCannotMuteStaff
	}
	if a.IsMuted(targetID) {
		return nil, errs.ErrAlreadyMuted
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "No reason provided"
	}
	if utf8.RuneCountInString(reason) > maxReasonLen {
		// 按字符截断，不切开多字节字符
		reason = string([]rune(reason)[:maxReasonLen])
	}

	e := &modmodel.MuteEntry{
		UserID:    targetID,
		MutedBy:   moderatorID,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.Insert(ctx, e); err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.cache[targetID] = e
	a.mu.Unlock()

	a.notify.Moderation("MUTE", moderatorID,
		fmt.Sprintf("**Target:** %s\n**Reason:** %s", targetID, reason))
	return e, nil
}

// Unmute 解除禁言。
func (a *Authority) Unmute(ctx context.Context, moderatorID, targetID string) error {
	if !a.ranks.IsStaff(moderatorID) {
		return errs.ErrNoPermission
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return errs.ErrArgs.WithDetail("target_user is required")
	}

	removed, err := a.store.Delete(ctx, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return errs.ErrNotMuted
	}
	a.mu.Lock()
	delete(a.cache, targetID)
	a.mu.Unlock()

	a.notify.Moderation("UNMUTE", moderatorID,
		fmt.Sprintf("**Target:** %s\nUser has been unmuted", targetID))
	return nil
}

// IsMuted 发消息热路径上的检查：纯内存，不碰持久层。
func (a *Authority) IsMuted(userID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.cache[userID]
	return ok
}

// Muted 返回禁言名单（staff 专用），以持久层为准。
func (a *Authority) Muted(ctx context.Context, callerID string) ([]*modmodel.MuteEntry, error) {
	if !a.ranks.IsStaff(callerID) {
		return nil, errs.ErrNoPermission
	}
	list, err := a.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*modmodel.MuteEntry{}
	}
	return list, nil
}

// MutedCount 统计用。
func (a *Authority) MutedCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// Clear 清空消息日志（staff 专用），返回删除条数。
func (a *Authority) Clear(ctx context.Context, callerID string) (int64, error) {
	if !a.ranks.IsStaff(callerID) {
		return 0, errs.ErrNoPermission
	}
	deleted, err := a.chat.Clear(ctx)
	if err != nil {
		return 0, err
	}
	a.notify.Moderation("CLEAR", callerID,
		fmt.Sprintf("Cleared %d messages from chat", deleted))
	return deleted, nil
}

// TriggerArchive owner 手动触发一轮归档，不等归档完成就返回。
// 已有归档在跑时本次触发被丢弃，对调用方依然算受理成功。
func (a *Authority) TriggerArchive(callerID string) error {
	if !a.ranks.IsOwner(callerID) {
		return errs.ErrNoPermission
	}
	if !a.archiver.Trigger() {
		logger.Warn("archive trigger dropped: run already in progress",
			zap.String("caller", callerID))
	}
	return nil
}

// NotifyShutdown owner 发出停机通告（只发通知，不真正退出进程）。
func (a *Authority) NotifyShutdown(callerID string) error {
	if !a.ranks.IsOwner(callerID) {
		return errs.ErrNoPermission
	}
	a.notify.Lifecycle(fmt.Sprintf("🔴 **Server shutdown requested by %s**", callerID))
	return nil
}

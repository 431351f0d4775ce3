package archive

import (
	"context"
	"sync/atomic"
	"time"

	"UChat/logger"
	chatmodel "UChat/module/chat/model"

	"go.uber.org/zap"
)

const uploadTimeout = 10 * time.Second

// Log 调度器对消息日志的最小依赖。
type Log interface {
	ListAll(ctx context.Context) ([]*chatmodel.Message, error)
	DeleteUpTo(ctx context.Context, maxID int64) (int64, error)
}

// Scheduler 归档调度器：Idle / Running 两态。
// 触发来源有两个——固定周期的定时器和 owner 的手动触发；
// running 标志用 CAS 抢占，保证任意时刻至多一轮在跑，抢不到就丢弃。
//
// 一轮归档：读全量 -> 空则 no-op -> 本地快照落盘 -> 尽力上传 ->
// 只删 id <= 快照 MaxID 的消息（归档期间新到的消息绝不误删），
// 无论上传成败都回到 Idle。上传失败时本地快照就是权威备份。
type Scheduler struct {
	log      Log
	uploader Uploader // nil = 不上传
	dir      string
	interval time.Duration

	running atomic.Bool
	trigger chan struct{}
	done    chan struct{}
}

func NewScheduler(log Log, uploader Uploader, dir string, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		log:      log,
		uploader: uploader,
		dir:      dir,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Trigger 请求一轮带外归档，不阻塞调用方。
// 返回 false 表示触发被丢弃（队列里已有待处理触发）。
func (s *Scheduler) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Done 在 Run 退出后关闭。停机方等它就能保证没有半途的归档轮。
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Run 阻塞运行到 ctx 取消。正在跑的那轮会把本地快照写完再退出。
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Infof("archive scheduler started, interval=%s", s.interval)
	for {
		select {
		case <-ctx.Done():
			logger.Info("archive scheduler stopped")
			return
		case <-ticker.C:
			s.TryRun(ctx)
		case <-s.trigger:
			s.TryRun(ctx)
		}
	}
}

// TryRun 尝试开始一轮归档；已有一轮在跑时直接丢弃并返回 false。
func (s *Scheduler) TryRun(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		logger.Warn("archive run dropped: previous run still in progress")
		return false
	}
	defer s.running.Store(false)

	if err := s.runOnce(ctx); err != nil {
		logger.Error("archive run failed", zap.Error(err))
	}
	return true
}

func (s *Scheduler) runOnce(ctx context.Context) error {
	msgs, err := s.log.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		logger.Debug("archive run: nothing to archive")
		return nil
	}

	snap := NewSnapshot(msgs)
	path, err := snap.WriteFile(s.dir)
	if err != nil {
		return err
	}
	logger.Info("archive snapshot written",
		zap.String("path", path),
		zap.Int("count", snap.Count),
		zap.Int64("max_id", snap.MaxID))

	// 上传失败不会中断归档，本地快照才是权威备份
	if s.uploader != nil {
		upCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		err := s.uploader.Upload(upCtx, snap)
		cancel()
		if err != nil {
			logger.Warn("archive upload failed, keeping local snapshot",
				zap.String("name", snap.Name), zap.Error(err))
		}
	}

	// 只截断到快照覆盖的最大 id：快照之后并发写入的消息原样留在日志里
	deleted, err := s.log.DeleteUpTo(ctx, snap.MaxID)
	if err != nil {
		return err
	}
	logger.Infof("archive run done: archived=%d truncated=%d", snap.Count, deleted)
	return nil
}

package notify

import (
	"context"
	"time"

	"UChat/logger"
	chatmodel "UChat/module/chat/model"
	"UChat/tools/safe"

	"go.uber.org/zap"
)

// 出站通知只是尽力而为：失败记日志、吞掉，绝不阻塞主流程，
// 也绝不把错误透给调用方。

const sinkTimeout = 5 * time.Second

// Sink 一个外部通知端（webhook、NATS ...）。
type Sink interface {
	Name() string
	MessageSent(ctx context.Context, m *chatmodel.Message, game string) error
	Moderation(ctx context.Context, action, moderator, details string) error
	Lifecycle(ctx context.Context, text string) error
}

// Dispatcher 把事件异步扇出到所有已配置的 sink。
// 没有任何 sink 时是纯 no-op，正确性不依赖它。
type Dispatcher struct {
	sinks []Sink
}

func NewDispatcher(sinks ...Sink) *Dispatcher {
	d := &Dispatcher{}
	for _, s := range sinks {
		if s != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	return d
}

func (d *Dispatcher) MessageSent(m *chatmodel.Message, game string) {
	d.dispatch("message", func(ctx context.Context, s Sink) error {
		return s.MessageSent(ctx, m, game)
	})
}

func (d *Dispatcher) Moderation(action, moderator, details string) {
	d.dispatch("moderation", func(ctx context.Context, s Sink) error {
		return s.Moderation(ctx, action, moderator, details)
	})
}

func (d *Dispatcher) Lifecycle(text string) {
	d.dispatch("lifecycle", func(ctx context.Context, s Sink) error {
		return s.Lifecycle(ctx, text)
	})
}

func (d *Dispatcher) dispatch(kind string, fn func(context.Context, Sink) error) {
	if d == nil {
		return
	}
	for _, s := range d.sinks {
		s := s
		safe.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			defer cancel()
			if err := fn(ctx, s); err != nil {
				logger.Warn("notify sink failed",
					zap.String("sink", s.Name()),
					zap.String("event", kind),
					zap.Error(err))
			}
		})
	}
}

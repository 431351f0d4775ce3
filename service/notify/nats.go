package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	chatmodel "UChat/module/chat/model"

	"github.com/nats-io/nats.go"
)

// NATS subjects，按事件类别区分
const (
	SubjectMessage    = "chat.events.message"
	SubjectModeration = "chat.events.moderation"
	SubjectLifecycle  = "chat.events.lifecycle"
)

// NatsSink 把结构化事件发布到 NATS core，供下游（机器人、审计）订阅。
type NatsSink struct {
	nc *nats.Conn
}

type NatsSinkConfig struct {
	Servers []string
	Name    string
}

func NewNatsSink(cfg NatsSinkConfig) (*NatsSink, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(500 * time.Millisecond),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(3 * time.Second),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, err
	}
	return &NatsSink{nc: nc}, nil
}

func (n *NatsSink) Name() string { return "nats" }

func (n *NatsSink) Close() {
	if n.nc != nil {
		_ = n.nc.Drain()
	}
}

type messageEvent struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Body      string    `json:"message"`
	Room      string    `json:"room,omitempty"`
	Rank      string    `json:"rank"`
	Game      string    `json:"game"`
	Timestamp time.Time `json:"timestamp"`
}

type moderationEvent struct {
	Action    string    `json:"action"`
	Moderator string    `json:"moderator"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

type lifecycleEvent struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (n *NatsSink) MessageSent(_ context.Context, m *chatmodel.Message, game string) error {
	return n.publish(SubjectMessage, messageEvent{
		ID:        m.ID,
		UserID:    m.AuthorID,
		Username:  m.AuthorName,
		Body:      m.Body,
		Room:      m.Room,
		Rank:      m.Rank,
		Game:      game,
		Timestamp: m.CreatedAt,
	})
}

func (n *NatsSink) Moderation(_ context.Context, action, moderator, details string) error {
	return n.publish(SubjectModeration, moderationEvent{
		Action:    action,
		Moderator: moderator,
		Details:   details,
		Timestamp: time.Now(),
	})
}

func (n *NatsSink) Lifecycle(_ context.Context, text string) error {
	return n.publish(SubjectLifecycle, lifecycleEvent{Text: text, Timestamp: time.Now()})
}

func (n *NatsSink) publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	return n.nc.PublishMsg(msg)
}

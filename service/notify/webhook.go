package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	chatmodel "UChat/module/chat/model"
)

// WebhookSink 把事件编成 Discord 风格的 embed 发到配置的 webhook。
type WebhookSink struct {
	url    string
	client *http.Client
}

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: sinkTimeout},
	}
}

func (w *WebhookSink) Name() string { return "webhook" }

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Footer      embedFooter  `json:"footer"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

// 审核动作配色：MUTE 红 / UNMUTE 绿 / CLEAR 橙
var actionColors = map[string]int{
	"MUTE":   15158332,
	"UNMUTE": 3066993,
	"CLEAR":  16744192,
}

func (w *WebhookSink) MessageSent(ctx context.Context, m *chatmodel.Message, game string) error {
	e := embed{
		Title:       fmt.Sprintf("%s %s: %s", m.RankEmoji, m.Rank, m.AuthorName),
		Description: m.Body,
		Color:       hexColor(m.RankColor),
		Fields: []embedField{
			{Name: "Game", Value: game, Inline: true},
			{Name: "Time", Value: m.CreatedAt.Format("15:04:05"), Inline: true},
		},
		Footer: embedFooter{Text: "Universal Game Chat"},
	}
	return w.post(ctx, webhookPayload{Embeds: []embed{e}})
}

func (w *WebhookSink) Moderation(ctx context.Context, action, moderator, details string) error {
	color, ok := actionColors[action]
	if !ok {
		color = 16744192
	}
	e := embed{
		Title:       "🛡️ Moderation Action: " + action,
		Description: details,
		Color:       color,
		Fields: []embedField{
			{Name: "Moderator", Value: moderator, Inline: true},
			{Name: "Time", Value: time.Now().Format("15:04:05 02/01/2006"), Inline: true},
		},
		Footer: embedFooter{Text: "Mod Log"},
	}
	return w.post(ctx, webhookPayload{Embeds: []embed{e}})
}

func (w *WebhookSink) Lifecycle(ctx context.Context, text string) error {
	return w.post(ctx, webhookPayload{Content: text})
}

func (w *WebhookSink) post(ctx context.Context, p webhookPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// "#FFD700" -> 16766720；解析失败回落到灰色
func hexColor(s string) int {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	n, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 13421772
	}
	return int(n)
}

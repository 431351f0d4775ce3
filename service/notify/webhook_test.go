package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chatmodel "UChat/module/chat/model"
)

func captureServer(t *testing.T, status int) (*httptest.Server, *[]webhookPayload) {
	t.Helper()
	var got []webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p webhookPayload
		if err := json.Unmarshal(body, &p); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		got = append(got, p)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestWebhookMessageEmbed(t *testing.T) {
	srv, got := captureServer(t, http.StatusNoContent)
	sink := NewWebhookSink(srv.URL)

	m := &chatmodel.Message{
		AuthorName: "Alice",
		Body:       "hello there",
		Rank:       "Moderator",
		RankEmoji:  "🛡️",
		RankColor:  "#FF0000",
		CreatedAt:  time.Now(),
	}
	if err := sink.MessageSent(context.Background(), m, "Tower Defense"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(*got) != 1 || len((*got)[0].Embeds) != 1 {
		t.Fatalf("want one embed, got %+v", *got)
	}
	e := (*got)[0].Embeds[0]
	if e.Title != "🛡️ Moderator: Alice" {
		t.Fatalf("title wrong: %q", e.Title)
	}
	if e.Description != "hello there" {
		t.Fatalf("description wrong: %q", e.Description)
	}
	if e.Color != 0xFF0000 {
		t.Fatalf("color wrong: %d", e.Color)
	}
	if len(e.Fields) != 2 || e.Fields[0].Name != "Game" || e.Fields[0].Value != "Tower Defense" {
		t.Fatalf("fields wrong: %+v", e.Fields)
	}
}

func TestWebhookModerationColors(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	sink := NewWebhookSink(srv.URL)

	for _, action := range []string{"MUTE", "UNMUTE", "CLEAR"} {
		if err := sink.Moderation(context.Background(), action, "mod1", "details"); err != nil {
			t.Fatalf("%s: %v", action, err)
		}
	}
	if len(*got) != 3 {
		t.Fatalf("want 3 payloads, got %d", len(*got))
	}
	colors := []int{15158332, 3066993, 16744192}
	for i, p := range *got {
		if p.Embeds[0].Color != colors[i] {
			t.Fatalf("payload %d color %d, want %d", i, p.Embeds[0].Color, colors[i])
		}
	}
}

func TestWebhookLifecycleContent(t *testing.T) {
	srv, got := captureServer(t, http.StatusOK)
	sink := NewWebhookSink(srv.URL)

	if err := sink.Lifecycle(context.Background(), "server up"); err != nil {
		t.Fatalf("lifecycle: %v", err)
	}
	if (*got)[0].Content != "server up" {
		t.Fatalf("content wrong: %q", (*got)[0].Content)
	}
}

func TestWebhookErrorStatus(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadRequest)
	sink := NewWebhookSink(srv.URL)

	if err := sink.Lifecycle(context.Background(), "x"); err == nil {
		t.Fatalf("non-2xx should surface as error")
	}
}

func TestHexColorFallback(t *testing.T) {
	if hexColor("#FFD700") != 0xFFD700 {
		t.Fatalf("gold parse failed")
	}
	if hexColor("not-a-color") != 13421772 {
		t.Fatalf("bad input should fall back to gray")
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"UChat/global/config"
	modmodel "UChat/module/moderation/model"
	"UChat/module/rank"
	"UChat/service/notify"
	"UChat/tools/errs"
)

type memMuteStore struct {
	mu      sync.Mutex
	entries map[string]*modmodel.MuteEntry
}

func newMemMuteStore() *memMuteStore {
	return &memMuteStore{entries: map[string]*modmodel.MuteEntry{}}
}

func (s *memMuteStore) Insert(_ context.Context, e *modmodel.MuteEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.UserID]; ok {
		return errs.ErrAlreadyMuted
	}
	s.entries[e.UserID] = e
	return nil
}

func (s *memMuteStore) Delete(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[userID]; !ok {
		return false, nil
	}
	delete(s.entries, userID)
	return true, nil
}

func (s *memMuteStore) List(_ context.Context) ([]*modmodel.MuteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*modmodel.MuteEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

type clearerFake struct {
	deleted int64
	calls   int
}

func (c *clearerFake) Clear(_ context.Context) (int64, error) {
	c.calls++
	return c.deleted, nil
}

type archiverFake struct {
	triggered int
	accept    bool
}

func (a *archiverFake) Trigger() bool {
	a.triggered++
	return a.accept
}

func testRanks() *rank.Resolver {
	return rank.NewResolver(map[string]config.RankEntry{
		"owner1": {Rank: "Owner", Emoji: "👑", Color: "#FFD700", Level: 3},
		"mod1":   {Rank: "Moderator", Emoji: "🛡️", Color: "#FF0000", Level: 2},
	})
}

func newTestAuthority(t *testing.T) (*Authority, *memMuteStore) {
	t.Helper()
	store := newMemMuteStore()
	a, err := NewAuthority(context.Background(), store, testRanks(), notify.NewDispatcher())
	if err != nil {
		t.Fatalf("new authority: %v", err)
	}
	return a, store
}

func TestMuteRequiresStaff(t *testing.T) {
	a, _ := newTestAuthority(t)
	if _, err := a.Mute(context.Background(), "pleb", "victim", ""); !errors.Is(err, errs.ErrNoPermission) {
		t.Fatalf("want ErrNoPermission, got %v", err)
	}
}

func TestMuteStaffTargetRejected(t *testing.T) {
	a, _ := newTestAuthority(t)
	if _, err := a.Mute(context.Background(), "mod1", "owner1", ""); !errors.Is(err, errs.ErrCannotMuteStaff) {
		t.Fatalf("want ErrCannotMuteStaff, got %v", err)
	}
	// staff 之间也不能互禁
	if _, err := a.Mute(context.Background(), "owner1", "mod1", ""); !errors.Is(err, errs.ErrCannotMuteStaff) {
		t.Fatalf("want ErrCannotMuteStaff, got %v", err)
	}
}

func TestMuteThenIsMuted(t *testing.T) {
	a, store := newTestAuthority(t)
	ctx := context.Background()

	e, err := a.Mute(ctx, "mod1", "troll", "spamming")
	if err != nil {
		t.Fatalf("mute: %v", err)
	}
	if e.MutedBy != "mod1" || e.Reason != "spamming" {
		t.Fatalf("entry wrong: %+v", e)
	}
	if !a.IsMuted("troll") {
		t.Fatalf("cache not updated after mute")
	}
	if _, ok := store.entries["troll"]; !ok {
		t.Fatalf("durable record missing")
	}
	if a.MutedCount() != 1 {
		t.Fatalf("muted count: %d", a.MutedCount())
	}
}

func TestMuteDefaultReason(t *testing.T) {
	a, _ := newTestAuthority(t)
	e, err := a.Mute(context.Background(), "mod1", "troll", "   ")
	if err != nil {
		t.Fatalf("mute: %v", err)
	}
	if e.Reason != "No reason provided" {
		t.Fatalf("want default reason, got %q", e.Reason)
	}
}

func TestMuteReasonTruncatedOnRuneBoundary(t *testing.T) {
	a, _ := newTestAuthority(t)
	e, err := a.Mute(context.Background(), "mod1", "troll", strings.Repeat("骂", 250))
	if err != nil {
		t.Fatalf("mute: %v", err)
	}
	if got := utf8.RuneCountInString(e.Reason); got != 200 {
		t.Fatalf("reason rune count: want 200, got %d", got)
	}
	if !utf8.ValidString(e.Reason) {
		t.Fatalf("truncation produced invalid utf-8")
	}
}

func TestMuteDuplicate(t *testing.T) {
	a, _ := newTestAuthority(t)
	ctx := context.Background()
	if _, err := a.Mute(ctx, "mod1", "troll", "x"); err != nil {
		t.Fatalf("first mute: %v", err)
	}
	if _, err := a.Mute(ctx, "mod1", "troll", "x"); !errors.Is(err, errs.ErrAlreadyMuted) {
		t.Fatalf("want ErrAlreadyMuted, got %v", err)
	}
}

func TestUnmute(t *testing.T) {
	a, _ := newTestAuthority(t)
	ctx := context.Background()

	if err := a.Unmute(ctx, "mod1", "ghost"); !errors.Is(err, errs.ErrNotMuted) {
		t.Fatalf("want ErrNotMuted, got %v", err)
	}

	_, _ = a.Mute(ctx, "mod1", "troll", "x")
	if err := a.Unmute(ctx, "mod1", "troll"); err != nil {
		t.Fatalf("unmute: %v", err)
	}
	if a.IsMuted("troll") {
		t.Fatalf("cache still holds unmuted user")
	}
}

func TestCacheWarmedFromStore(t *testing.T) {
	store := newMemMuteStore()
	store.entries["old"] = &modmodel.MuteEntry{UserID: "old", MutedBy: "mod1", CreatedAt: time.Now()}

	a, err := NewAuthority(context.Background(), store, testRanks(), notify.NewDispatcher())
	if err != nil {
		t.Fatalf("new authority: %v", err)
	}
	if !a.IsMuted("old") {
		t.Fatalf("restart lost durable mute")
	}
}

func TestMutedListRequiresStaff(t *testing.T) {
	a, _ := newTestAuthority(t)
	if _, err := a.Muted(context.Background(), "pleb"); !errors.Is(err, errs.ErrNoPermission) {
		t.Fatalf("want ErrNoPermission, got %v", err)
	}
	list, err := a.Muted(context.Background(), "mod1")
	if err != nil || list == nil {
		t.Fatalf("staff list: %v %v", list, err)
	}
}

func TestClearDelegates(t *testing.T) {
	a, _ := newTestAuthority(t)
	chat := &clearerFake{deleted: 7}
	a.BindChat(chat)

	if _, err := a.Clear(context.Background(), "pleb"); !errors.Is(err, errs.ErrNoPermission) {
		t.Fatalf("want ErrNoPermission, got %v", err)
	}
	n, err := a.Clear(context.Background(), "mod1")
	if err != nil || n != 7 || chat.calls != 1 {
		t.Fatalf("clear: n=%d err=%v calls=%d", n, err, chat.calls)
	}
}

func TestTriggerArchiveOwnerOnly(t *testing.T) {
	a, _ := newTestAuthority(t)
	arch := &archiverFake{accept: true}
	a.BindArchiver(arch)

	if err := a.TriggerArchive("mod1"); !errors.Is(err, errs.ErrNoPermission) {
		t.Fatalf("mod should not trigger archive, got %v", err)
	}
	if err := a.TriggerArchive("owner1"); err != nil {
		t.Fatalf("owner trigger: %v", err)
	}
	if arch.triggered != 1 {
		t.Fatalf("trigger count: %d", arch.triggered)
	}

	// 触发被丢弃仍算受理成功
	arch.accept = false
	if err := a.TriggerArchive("owner1"); err != nil {
		t.Fatalf("dropped trigger should not error: %v", err)
	}
}

func TestNotifyShutdownOwnerOnly(t *testing.T) {
	a, _ := newTestAuthority(t)
	if err := a.NotifyShutdown("mod1"); !errors.Is(err, errs.ErrNoPermission) {
		t.Fatalf("want ErrNoPermission, got %v", err)
	}
	if err := a.NotifyShutdown("owner1"); err != nil {
		t.Fatalf("owner shutdown notice: %v", err)
	}
}

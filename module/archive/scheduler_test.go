package archive

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	chatmodel "UChat/module/chat/model"
)

type memLog struct {
	mu   sync.Mutex
	next int64
	msgs []*chatmodel.Message
}

func (l *memLog) append(body string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.msgs = append(l.msgs, &chatmodel.Message{
		ID:        l.next,
		AuthorID:  "u1",
		Body:      body,
		CreatedAt: time.Now().UTC(),
	})
}

func (l *memLog) ListAll(_ context.Context) ([]*chatmodel.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*chatmodel.Message{}, l.msgs...), nil
}

func (l *memLog) DeleteUpTo(_ context.Context, maxID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var kept []*chatmodel.Message
	var deleted int64
	for _, m := range l.msgs {
		if m.ID <= maxID {
			deleted++
		} else {
			kept = append(kept, m)
		}
	}
	l.msgs = kept
	return deleted, nil
}

type uploaderFunc func(ctx context.Context, s *Snapshot) error

func (f uploaderFunc) Upload(ctx context.Context, s *Snapshot) error { return f(ctx, s) }

func snapshotFiles(t *testing.T, dir string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "chat_archive_*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return files
}

func TestEmptyLogIsNoOp(t *testing.T) {
	dir := t.TempDir()
	s := NewScheduler(&memLog{}, nil, dir, time.Hour)

	if !s.TryRun(context.Background()) {
		t.Fatalf("run should start")
	}
	if files := snapshotFiles(t, dir); len(files) != 0 {
		t.Fatalf("empty log produced snapshot: %v", files)
	}
}

func TestSnapshotWrittenAndLogTruncated(t *testing.T) {
	dir := t.TempDir()
	log := &memLog{}
	log.append("a")
	log.append("b")
	log.append("c")

	s := NewScheduler(log, nil, dir, time.Hour)
	if !s.TryRun(context.Background()) {
		t.Fatalf("run should start")
	}

	files := snapshotFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("want one snapshot, got %v", files)
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	if snap.Count != 3 || snap.MaxID != 3 || len(snap.Messages) != 3 {
		t.Fatalf("snapshot wrong: count=%d max=%d", snap.Count, snap.MaxID)
	}

	left, _ := log.ListAll(context.Background())
	if len(left) != 0 {
		t.Fatalf("log not truncated: %d left", len(left))
	}
}

func TestConcurrentAppendsSurviveTruncation(t *testing.T) {
	dir := t.TempDir()
	log := &memLog{}
	log.append("a")
	log.append("b")

	// 上传阶段有新消息进来，截断不能动它们
	up := uploaderFunc(func(_ context.Context, _ *Snapshot) error {
		log.append("late-1")
		log.append("late-2")
		return nil
	})

	s := NewScheduler(log, up, dir, time.Hour)
	if !s.TryRun(context.Background()) {
		t.Fatalf("run should start")
	}

	left, _ := log.ListAll(context.Background())
	if len(left) != 2 {
		t.Fatalf("late messages lost: %d left", len(left))
	}
	for _, m := range left {
		if m.ID <= 2 {
			t.Fatalf("archived message survived truncation: id=%d", m.ID)
		}
	}
}

func TestUploadFailureStillTruncates(t *testing.T) {
	dir := t.TempDir()
	log := &memLog{}
	log.append("a")

	up := uploaderFunc(func(_ context.Context, _ *Snapshot) error {
		return errors.New("mongo down")
	})
	s := NewScheduler(log, up, dir, time.Hour)
	if !s.TryRun(context.Background()) {
		t.Fatalf("run should start")
	}

	// 本地快照在，日志也照样截断
	if files := snapshotFiles(t, dir); len(files) != 1 {
		t.Fatalf("local snapshot missing")
	}
	left, _ := log.ListAll(context.Background())
	if len(left) != 0 {
		t.Fatalf("upload failure blocked truncation")
	}
}

func TestSingleFlight(t *testing.T) {
	dir := t.TempDir()
	log := &memLog{}
	log.append("a")

	entered := make(chan struct{})
	release := make(chan struct{})
	var enteredOnce sync.Once
	up := uploaderFunc(func(_ context.Context, _ *Snapshot) error {
		enteredOnce.Do(func() { close(entered) })
		<-release
		return nil
	})
	s := NewScheduler(log, up, dir, time.Hour)

	done := make(chan bool)
	go func() { done <- s.TryRun(context.Background()) }()
	<-entered

	// 第一轮还没结束，第二次 TryRun 必须被丢弃
	if s.TryRun(context.Background()) {
		t.Fatalf("second run started while first still in progress")
	}
	close(release)
	if !<-done {
		t.Fatalf("first run should report started")
	}

	// 第一轮结束后又能跑
	log.append("b")
	if !s.TryRun(context.Background()) {
		t.Fatalf("scheduler stuck after run finished")
	}
}

func TestShutdownWaitsForInFlightRun(t *testing.T) {
	dir := t.TempDir()
	log := &memLog{}
	log.append("a")

	entered := make(chan struct{})
	release := make(chan struct{})
	up := uploaderFunc(func(_ context.Context, _ *Snapshot) error {
		close(entered)
		<-release
		return nil
	})
	s := NewScheduler(log, up, dir, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)

	if !s.Trigger() {
		t.Fatalf("trigger should queue")
	}
	<-entered

	// 取消时有一轮在跑：Done 必须等它跑完才关闭
	cancel()
	select {
	case <-s.Done():
		t.Fatalf("scheduler stopped while a run was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler never stopped after run finished")
	}

	// 那一轮的本地快照落了盘
	if files := snapshotFiles(t, dir); len(files) != 1 {
		t.Fatalf("snapshot missing after shutdown: %v", files)
	}
}

func TestTriggerCoalesces(t *testing.T) {
	s := NewScheduler(&memLog{}, nil, t.TempDir(), time.Hour)
	if !s.Trigger() {
		t.Fatalf("first trigger should queue")
	}
	if s.Trigger() {
		t.Fatalf("second trigger should be dropped while one is pending")
	}
}

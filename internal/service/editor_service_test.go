package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sitepages/internal/domain"
	"sitepages/internal/editor"
	"sitepages/internal/service"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newEditorService(store *memoryStore, emitter *service.MockEmitter, clock *fakeClock) *service.EditorService {
	opts := service.EditorServiceOptions{
		SessionTTL: time.Hour,
		Emitter:    emitter,
		Logger:     zerolog.Nop(),
	}
	if clock != nil {
		opts.Now = clock.Now
	}
	return service.NewEditorService(store, testRegistry(), opts)
}

func TestEditorService_EditAndCommit(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	emitter := &service.MockEmitter{}
	svc := newEditorService(store, emitter, nil)

	st, err := svc.Open(ctx, "about_page")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if st.HasChanges {
		t.Fatal("new session should start clean")
	}

	a, err := svc.AddBlock(st.ID, "note")
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	b, err := svc.AddBlock(st.ID, "note")
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if err := svc.UpdateBlockData(st.ID, b.ID, map[string]any{"text": "moved"}); err != nil {
		t.Fatalf("UpdateBlockData: %v", err)
	}
	moved, err := svc.MoveBlock(st.ID, b.ID, editor.Up)
	if err != nil || !moved {
		t.Fatalf("MoveBlock = %v, %v", moved, err)
	}
	title := "About"
	if err := svc.UpdateMeta(st.ID, editor.MetaPatch{SEOTitle: &title}); err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}

	st, err = svc.Get(st.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !st.HasChanges {
		t.Fatal("expected pending changes")
	}

	if err := svc.Commit(ctx, st.ID); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	saved := store.docs["about_page"]
	if len(saved.Blocks) != 2 || saved.Blocks[0].ID != b.ID || saved.Blocks[1].ID != a.ID {
		t.Fatalf("saved order wrong: %#v", saved.Blocks)
	}
	if saved.SEOTitle != "About" {
		t.Errorf("SEOTitle = %q", saved.SEOTitle)
	}
	if emitter.Count(service.EventPageSaved) != 1 {
		t.Error("expected page:saved event")
	}

	st, _ = svc.Get(st.ID)
	if st.HasChanges {
		t.Error("session should be clean after commit")
	}
}

func TestEditorService_CommitFailureKeepsWorkingCopy(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	emitter := &service.MockEmitter{}
	svc := newEditorService(store, emitter, nil)

	st, _ := svc.Open(ctx, "home_page")
	if _, err := svc.AddBlock(st.ID, "note"); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}

	store.setPutErr(errDiskFull)
	err := svc.Commit(ctx, st.ID)
	var commitErr *editor.CommitError
	if !errors.As(err, &commitErr) {
		t.Fatalf("err = %v, want *editor.CommitError", err)
	}
	if !errors.Is(err, errDiskFull) {
		t.Error("CommitError should wrap the store error")
	}
	if emitter.Count(service.EventPageSaveFailed) != 1 {
		t.Error("expected save-failed event")
	}

	st, _ = svc.Get(st.ID)
	if !st.HasChanges || len(st.Document.Blocks) != 1 {
		t.Fatal("working copy lost after failed commit")
	}

	store.setPutErr(nil)
	if err := svc.Commit(ctx, st.ID); err != nil {
		t.Fatalf("retry Commit: %v", err)
	}
	if len(store.docs["home_page"].Blocks) != 1 {
		t.Error("retry did not persist")
	}
}

func TestEditorService_ConcurrentCommitRejected(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := newEditorService(store, &service.MockEmitter{}, nil)
	st, _ := svc.Open(ctx, "home_page")

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	store.putHook = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	first := make(chan error, 1)
	go func() { first <- svc.Commit(ctx, st.ID) }()
	<-entered

	if err := svc.Commit(ctx, st.ID); !errors.Is(err, service.ErrCommitInProgress) {
		t.Errorf("second commit err = %v, want ErrCommitInProgress", err)
	}
	close(release)
	if err := <-first; err != nil {
		t.Fatalf("first commit: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	svc.Wait(waitCtx)
	if waitCtx.Err() != nil {
		t.Fatal("Wait did not return after commit finished")
	}
}

func TestEditorService_UnknownSessionAndBlock(t *testing.T) {
	ctx := context.Background()
	svc := newEditorService(newMemoryStore(), &service.MockEmitter{}, nil)

	if _, err := svc.Get("missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Get err = %v", err)
	}
	if err := svc.Close(ctx, "missing"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Close err = %v", err)
	}

	st, _ := svc.Open(ctx, "home_page")
	if err := svc.RemoveBlock(st.ID, "nope"); !errors.Is(err, service.ErrBlockNotFound) {
		t.Errorf("RemoveBlock err = %v", err)
	}
	if _, err := svc.MoveBlock(st.ID, "nope", editor.Down); !errors.Is(err, service.ErrBlockNotFound) {
		t.Errorf("MoveBlock err = %v", err)
	}
	if _, err := svc.AddBlock(st.ID, domain.BlockType("carousel")); !errors.Is(err, editor.ErrUnknownBlockType) {
		t.Errorf("AddBlock err = %v", err)
	}
}

func TestEditorService_SessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	svc := newEditorService(newMemoryStore(), &service.MockEmitter{}, nil)

	s1, _ := svc.Open(ctx, "home_page")
	s2, _ := svc.Open(ctx, "home_page")
	if s1.ID == s2.ID {
		t.Fatal("session ids must differ")
	}
	if _, err := svc.AddBlock(s1.ID, "note"); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}

	st2, _ := svc.Get(s2.ID)
	if len(st2.Document.Blocks) != 0 {
		t.Error("edit leaked into another session")
	}
	if got := len(svc.List()); got != 2 {
		t.Errorf("List = %d sessions, want 2", got)
	}
}

func TestEditorService_SweepIdle(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	emitter := &service.MockEmitter{}
	svc := newEditorService(newMemoryStore(), emitter, clock)

	idle, _ := svc.Open(ctx, "home_page")
	clock.Advance(45 * time.Minute)
	active, _ := svc.Open(ctx, "about_page")
	clock.Advance(30 * time.Minute)

	if n := svc.SweepIdle(ctx); n != 1 {
		t.Fatalf("SweepIdle closed %d, want 1", n)
	}
	if _, err := svc.Get(idle.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Error("idle session should be closed")
	}
	if _, err := svc.Get(active.ID); err != nil {
		t.Errorf("active session closed: %v", err)
	}
	if emitter.Count(service.EventSessionClosed) != 1 {
		t.Error("expected one session-closed event")
	}
}

package service_test

import (
	"context"
	"errors"
	"html/template"
	"sync"
	"testing"
	"time"

	"sitepages/internal/blocks"
	"sitepages/internal/domain"
	"sitepages/internal/service"
)

// ─────────────────────────────────────────────────────────────
// Shared fakes
// ─────────────────────────────────────────────────────────────

type memoryStore struct {
	mu      sync.Mutex
	docs    map[string]domain.PageDocument
	putErr  error
	putHook func()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string]domain.PageDocument{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (*domain.PageDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, nil
	}
	c := doc.Clone()
	return &c, nil
}

func (m *memoryStore) Put(_ context.Context, key string, doc domain.PageDocument) error {
	if m.putHook != nil {
		m.putHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.docs[key] = doc.Clone()
	return nil
}

func (m *memoryStore) List(_ context.Context) ([]domain.PageSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PageSummary
	for k, d := range m.docs {
		out = append(out, domain.PageSummary{PageKey: k, BlockCount: len(d.Blocks)})
	}
	return out, nil
}

func (m *memoryStore) setPutErr(err error) {
	m.mu.Lock()
	m.putErr = err
	m.mu.Unlock()
}

func testRegistry() *blocks.Registry {
	reg := blocks.NewRegistry()
	reg.MustRegister(blocks.Descriptor{
		Type:    "note",
		Label:   "Note",
		Default: func() domain.BlockData { return domain.BlockData{"text": "hello"} },
		Render: func(_ context.Context, data domain.BlockData) (template.HTML, error) {
			s, _ := data["text"].(string)
			return template.HTML("<p>" + template.HTMLEscapeString(s) + "</p>"), nil
		},
	})
	return reg
}

// ─────────────────────────────────────────────────────────────
// commitGuard tests
// ─────────────────────────────────────────────────────────────

func TestCommitGuard_TryLock(t *testing.T) {
	var g service.ExportedCommitGuard

	if !g.TryLock("s-1") {
		t.Fatal("expected first TryLock to succeed")
	}
	if g.TryLock("s-1") {
		t.Fatal("expected second TryLock for same session to fail")
	}
	if !g.TryLock("s-2") {
		t.Fatal("expected TryLock for different session to succeed")
	}
	if !g.Running("s-1") {
		t.Fatal("expected s-1 to be running")
	}
	g.Unlock("s-1")
	g.Unlock("s-2")

	if g.Running("s-1") {
		t.Fatal("expected s-1 to be released")
	}
	if !g.TryLock("s-1") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("s-1")
}

func TestCommitGuard_WaitAll(t *testing.T) {
	var g service.ExportedCommitGuard

	if !g.TryLock("s-a") {
		t.Fatal("expected lock to succeed")
	}

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		g.WaitAll(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("s-a")
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitAll timed out")
	}
}

func TestCommitGuard_WaitAll_ContextCancel(t *testing.T) {
	var g service.ExportedCommitGuard
	g.TryLock("stuck")
	defer g.Unlock("stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	g.WaitAll(ctx)
	if time.Since(start) > time.Second {
		t.Fatal("WaitAll ignored context cancellation")
	}
}

func TestMockEmitter_Count(t *testing.T) {
	m := &service.MockEmitter{}
	m.Emit(context.Background(), "a", nil)
	m.Emit(context.Background(), "b", nil)
	m.Emit(context.Background(), "a", nil)

	if got := m.Count("a"); got != 2 {
		t.Errorf("Count(a) = %d, want 2", got)
	}
	if len(m.Events) != 3 {
		t.Errorf("recorded %d events, want 3", len(m.Events))
	}
}

var errDiskFull = errors.New("disk full")

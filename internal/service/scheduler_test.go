package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sitepages/internal/service"
)

type recordingWarmer struct {
	mu    sync.Mutex
	calls []string
	fail  string
}

func (w *recordingWarmer) Refresh(_ context.Context, entity string, count int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, entity)
	if entity == w.fail {
		return errors.New("upstream down")
	}
	return nil
}

func TestScheduler_WarmAllPairs(t *testing.T) {
	warmer := &recordingWarmer{fail: "projects"}
	s, err := service.NewScheduler(nil, warmer, service.SchedulerOptions{
		Entities: []string{"news", "projects"},
		Counts:   []int{3, 4, 6},
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	err = s.Warm(context.Background())
	if err == nil {
		t.Fatal("expected joined error for failing entity")
	}
	if len(warmer.calls) != 6 {
		t.Errorf("Refresh called %d times, want 6", len(warmer.calls))
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	_, err := service.NewScheduler(nil, &recordingWarmer{}, service.SchedulerOptions{
		WarmSchedule: "every tuesday",
		Logger:       zerolog.Nop(),
	})
	if err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	svc := newEditorService(newMemoryStore(), &service.MockEmitter{}, nil)
	s, err := service.NewScheduler(svc, &recordingWarmer{}, service.SchedulerOptions{
		SweepSchedule: "@every 1h",
		WarmSchedule:  "@every 1h",
		Logger:        zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	if s.Jobs() != 2 {
		t.Errorf("Jobs = %d, want 2", s.Jobs())
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

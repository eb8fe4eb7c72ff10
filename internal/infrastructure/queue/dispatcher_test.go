package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-gateway/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	block  chan struct{}
	err    error
}

func (s *recordingService) Process(_ context.Context, e domain.AuthEvent) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingService) snapshot() []domain.AuthEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuthEvent(nil), s.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(4, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	types := []domain.AuthEventType{
		domain.EventRegistered,
		domain.EventLoginFailed,
		domain.EventLoginSucceeded,
		domain.EventAccessDenied,
	}
	for _, typ := range types {
		d.Record(domain.AuthEvent{Type: typ, Username: "alice"})
	}

	waitFor(t, func() bool { return len(svc.snapshot()) == len(types) })
	for i, e := range svc.snapshot() {
		if e.Type != types[i] {
			t.Fatalf("event %d: expected %s, got %s", i, types[i], e.Type)
		}
		if e.OccurredAt.IsZero() {
			t.Fatalf("event %d: expected OccurredAt to be stamped", i)
		}
	}
}

func TestDispatcher_RecordNeverBlocks(t *testing.T) {
	svc := &recordingService{block: make(chan struct{})}
	d := NewDispatcher(1, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			d.Record(domain.AuthEvent{Type: domain.EventLoginFailed, Username: "bob"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Record blocked on a full queue")
	}

	close(svc.block)
	cancel()
	d.Wait()

	if got := len(svc.snapshot()); got > channelBuffer+1 {
		t.Fatalf("expected overflow to be dropped, processed %d", got)
	}
}

func TestDispatcher_DrainsOnShutdown(t *testing.T) {
	svc := &recordingService{err: errors.New("store down")}
	d := NewDispatcher(2, svc, zerolog.Nop())

	for i := 0; i < 10; i++ {
		d.Record(domain.AuthEvent{Type: domain.EventTokenRejected, Username: "carol"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	d.Wait()

	if got := len(svc.snapshot()); got != 10 {
		t.Fatalf("expected queued events to be drained, got %d", got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, &recordingService{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	if d.shardIndex("alice") != d.shardIndex("alice") {
		t.Fatalf("shard index must be deterministic")
	}
}

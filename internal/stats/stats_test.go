package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/skyfetch/internal/domain"
)

func TestAdd_Aggregates(t *testing.T) {
	s := New(nil)
	id := uuid.New()

	s.Add(id, domain.Counters{Packets: 2, Bytes: 100})
	s.Add(id, domain.Counters{Packets: 1, Bytes: 50, BytesOut: 30})
	s.Add(id, domain.Counters{Errors: 1, Duration: time.Second})

	c, ok := s.Snapshot(id)
	if !ok {
		t.Fatal("expected counters for job")
	}
	if c.Packets != 3 || c.Bytes != 150 || c.BytesOut != 30 || c.Errors != 1 {
		t.Errorf("unexpected aggregate: %s", c.String())
	}
	if c.Duration != time.Second {
		t.Errorf("duration not kept: %v", c.Duration)
	}
}

func TestSnapshot_UnknownJob(t *testing.T) {
	s := New(nil)
	if _, ok := s.Snapshot(uuid.New()); ok {
		t.Error("expected no counters for unknown job")
	}
}

func TestAdd_Concurrent(t *testing.T) {
	s := New(nil)
	id := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Add(id, domain.Counters{Packets: 1, Bytes: 10})
			}
		}()
	}
	wg.Wait()

	c, _ := s.Snapshot(id)
	if c.Packets != 800 || c.Bytes != 8000 {
		t.Errorf("lost increments: %s", c.String())
	}
}

func TestForget(t *testing.T) {
	s := New(nil)
	id := uuid.New()
	s.Add(id, domain.Counters{Packets: 1})
	s.Forget(id)
	if _, ok := s.Snapshot(id); ok {
		t.Error("expected counters gone after Forget")
	}
}

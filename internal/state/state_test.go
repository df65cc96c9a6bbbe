package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memSink — фейковый Sink, опционально падающий.
type memSink struct {
	mu   sync.Mutex
	got  map[string][]byte
	fail bool
}

func (m *memSink) Upsert(ctx context.Context, tag string, payload []byte) error {
	if m.fail {
		return errors.New("db down")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.got == nil {
		m.got = make(map[string][]byte)
	}
	m.got[tag] = append([]byte(nil), payload...)
	return nil
}

func startState(t *testing.T, sink Sink) *State {
	t.Helper()
	s := New(sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("state did not stop")
		}
	})
	return s
}

func TestRecord_LastWriteWins(t *testing.T) {
	s := startState(t, nil)

	if err := s.Record("site:opensky", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := s.Record("site:opensky", []byte("v2")); err != nil {
		t.Fatal(err)
	}

	got, ok := s.Get("site:opensky")
	if !ok || string(got) != "v2" {
		t.Errorf("expected v2, got %q (ok=%v)", got, ok)
	}
}

func TestGet_Unknown(t *testing.T) {
	s := startState(t, nil)
	if _, ok := s.Get("nothing"); ok {
		t.Error("expected miss for unknown tag")
	}
}

func TestRecord_CopiesPayload(t *testing.T) {
	s := startState(t, nil)

	payload := []byte("original")
	if err := s.Record("tag", payload); err != nil {
		t.Fatal(err)
	}
	payload[0] = 'X'

	got, _ := s.Get("tag")
	if string(got) != "original" {
		t.Error("state must not alias caller's slice")
	}
}

func TestRecord_SinkReceivesCopy(t *testing.T) {
	sink := &memSink{}
	s := startState(t, sink)

	if err := s.Record("job:1", []byte("summary")); err != nil {
		t.Fatal(err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if string(sink.got["job:1"]) != "summary" {
		t.Errorf("sink did not receive record: %v", sink.got)
	}
}

func TestRecord_SinkFailureIsNotFatal(t *testing.T) {
	s := startState(t, &memSink{fail: true})

	if err := s.Record("tag", []byte("v")); err != nil {
		t.Fatalf("sink failure must not fail the record: %v", err)
	}
	if got, ok := s.Get("tag"); !ok || string(got) != "v" {
		t.Error("record lost on sink failure")
	}
}

func TestRecord_AfterClose(t *testing.T) {
	s := startState(t, nil)
	s.Close()
	if err := s.Record("tag", []byte("v")); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

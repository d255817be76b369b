package services

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type memStore struct {
	mu       sync.Mutex
	entries  []Entry
	reverted []string
}

func (m *memStore) Create(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memStore) MarkReverted(reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reverted = append(m.reverted, reference)
	return nil
}

func (m *memStore) snapshot() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func TestRecorderWritesEnqueuedEntries(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store, 16, zap.NewNop().Sugar())
	r.Start()

	r.Enqueue(Entry{UserID: 1, Type: "debit", Amount: 500, Reference: "bet:1"})
	r.Enqueue(Entry{UserID: 1, Type: "credit", Amount: 850, Reference: "abc"})
	r.Stop()

	got := store.snapshot()
	if len(got) != 2 {
		t.Fatalf("wrote %d entries, want 2", len(got))
	}
	if got[0].Reference != "bet:1" || got[1].Reference != "abc" {
		t.Errorf("entries out of order: %+v", got)
	}
}

// A full queue must drop instead of blocking the caller.
func TestRecorderEnqueueNeverBlocks(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store, 1, zap.NewNop().Sugar())
	// writer not started: the buffer fills after one entry

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			r.Enqueue(Entry{UserID: 1, Amount: float64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	r.Start()
	r.Stop()
	if got := len(store.snapshot()); got != 1 {
		t.Errorf("wrote %d entries, want exactly the buffered 1", got)
	}
}

func TestRecorderMarkReverted(t *testing.T) {
	store := &memStore{}
	r := NewRecorder(store, 4, zap.NewNop().Sugar())
	r.Start()
	defer r.Stop()

	r.MarkReverted("ref-1")
	r.MarkReverted("") // no-op

	if len(store.reverted) != 1 || store.reverted[0] != "ref-1" {
		t.Errorf("reverted = %v, want [ref-1]", store.reverted)
	}
}

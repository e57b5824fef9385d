package service

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sequencer hands out increasing request numbers per key so that only the
// response of the most recently issued request for a key gets applied.
type Sequencer struct {
	mu   sync.Mutex
	last map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{last: make(map[string]uint64)}
}

func (s *Sequencer) Next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[key]++
	return s.last[key]
}

func (s *Sequencer) IsLatest(key string, n uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[key] == n
}

// Entry is one in-flight optimistic mutation.
type Entry[T any] struct {
	RequestID string    `json:"request_id"`
	EntityID  string    `json:"entity_id"`
	Seq       uint64    `json:"seq"`
	Snapshot  T         `json:"snapshot"`
	StartedAt time.Time `json:"started_at"`
}

// Journal records the pre-mutation snapshot of every optimistic change until
// the remote call settles.
type Journal[T any] struct {
	mu      sync.Mutex
	seq     *Sequencer
	order   uint64
	pending map[string]journaled[T]
}

type journaled[T any] struct {
	Entry[T]
	order uint64
}

func NewJournal[T any]() *Journal[T] {
	return &Journal[T]{seq: NewSequencer(), pending: make(map[string]journaled[T])}
}

func (j *Journal[T]) Begin(entityID string, snapshot T) Entry[T] {
	e := Entry[T]{
		RequestID: uuid.NewString(),
		EntityID:  entityID,
		Seq:       j.seq.Next(entityID),
		Snapshot:  snapshot,
		StartedAt: time.Now(),
	}
	j.mu.Lock()
	j.order++
	j.pending[e.RequestID] = journaled[T]{Entry: e, order: j.order}
	j.mu.Unlock()
	return e
}

// Resolve forgets a settled mutation.
func (j *Journal[T]) Resolve(requestID string) {
	j.mu.Lock()
	delete(j.pending, requestID)
	j.mu.Unlock()
}

// IsLatest reports whether no newer mutation of the same entity was begun
// after e.
func (j *Journal[T]) IsLatest(e Entry[T]) bool {
	return j.seq.IsLatest(e.EntityID, e.Seq)
}

// InFlight reports whether entityID has an unsettled mutation.
func (j *Journal[T]) InFlight(entityID string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range j.pending {
		if e.EntityID == entityID {
			return true
		}
	}
	return false
}

// Pending lists unsettled mutations, oldest first.
func (j *Journal[T]) Pending() []Entry[T] {
	j.mu.Lock()
	all := make([]journaled[T], 0, len(j.pending))
	for _, e := range j.pending {
		all = append(all, e)
	}
	j.mu.Unlock()
	sort.Slice(all, func(a, b int) bool { return all[a].order < all[b].order })

	out := make([]Entry[T], 0, len(all))
	for _, e := range all {
		out = append(out, e.Entry)
	}
	return out
}

// Reset drops every pending entry, used on view teardown.
func (j *Journal[T]) Reset() {
	j.mu.Lock()
	j.pending = make(map[string]journaled[T])
	j.mu.Unlock()
}

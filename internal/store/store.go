package store

import (
	"sync"

	"github.com/joshp123/acwatch/internal/units"
)

// Store holds the most recently fetched unit collection. It starts out
// holding the not-loaded sentinel and is only ever replaced wholesale.
type Store struct {
	mu      sync.RWMutex
	current units.Collection
	version uint64

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

func New() *Store {
	return &Store{
		current: units.NotLoaded(),
		subs:    make(map[int]chan struct{}),
	}
}

// Get returns the current collection. Before the first Set it returns the
// not-loaded sentinel.
func (s *Store) Get() units.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Version counts the Set calls applied so far.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Set replaces the whole collection and notifies subscribers.
func (s *Store) Set(c units.Collection) {
	s.mu.Lock()
	s.current = c
	s.version++
	s.mu.Unlock()

	s.notify()
}

// Subscribe returns a channel that receives a signal after every Set.
// Signals coalesce: a slow reader sees one pending signal, then calls Get.
// The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

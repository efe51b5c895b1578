package state

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

type envelope struct {
	action Action
	done   chan struct{}
}

// Store is the single owned mutable state object. Every mutation is an
// Action sent over a channel and applied by the one goroutine inside
// Run, so at most one writer exists at a time without locking the tree
// itself. Snapshots are replaced wholesale on each apply; readers hold
// immutable trees.
type Store struct {
	actions chan envelope
	stopped chan struct{}
	log     *zerolog.Logger

	mu       sync.RWMutex
	snapshot State
	subs     map[int]chan State
	nextSub  int
}

// NewStore creates a store with an empty initial state.
func NewStore(logger *zerolog.Logger) *Store {
	return &Store{
		actions: make(chan envelope),
		stopped: make(chan struct{}),
		log:     logger,
		subs:    make(map[int]chan State),
	}
}

// Run applies dispatched actions until ctx is cancelled.
// Must be running for Dispatch to make progress.
func (s *Store) Run(ctx context.Context) {
	defer close(s.stopped)

	for {
		select {
		case env := <-s.actions:
			s.apply(env.action)
			close(env.done)
		case <-ctx.Done():
			return
		}
	}
}

// Dispatch hands an action to the run loop and returns once it has
// been applied, so a subsequent Snapshot observes the change. After
// the store stops, actions are dropped.
func (s *Store) Dispatch(action Action) {
	env := envelope{action: action, done: make(chan struct{})}
	select {
	case s.actions <- env:
		<-env.done
	case <-s.stopped:
		s.log.Debug().Type("action", action).Msg("store stopped, action dropped")
	}
}

// Snapshot returns the current state tree.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe returns a channel receiving a snapshot after every applied
// action, and an unsubscribe function. Slow subscribers miss updates
// rather than stalling the store.
func (s *Store) Subscribe(bufSize int) (<-chan State, func()) {
	ch := make(chan State, bufSize)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) apply(action Action) {
	s.mu.Lock()
	next := reduce(s.snapshot, action)
	s.snapshot = next

	for _, ch := range s.subs {
		select {
		case ch <- next:
		default:
			// Drop if slow consumer.
		}
	}
	s.mu.Unlock()
}

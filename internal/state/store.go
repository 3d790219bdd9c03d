// Package state holds the selection stores: one per entity category, each
// keeping the current id, the current object and a cached list.
package state

import (
	"github.com/rs/zerolog"

	"coachline/internal/domain"
	"coachline/internal/sessionstore"
)

// Snapshot is a consistent read of a Store.
type Snapshot[T domain.Entity] struct {
	CurrentID domain.ID `json:"current_id"`
	Current   T         `json:"current"`
	List      []T       `json:"list"`
}

// Store is the selection store for one entity category.
type Store[T domain.Entity] struct {
	c *container[Snapshot[T]]
}

// NewStore builds a store hydrated from storage. zero is the value returned
// for unknown ids and installed by Reset.
func NewStore[T domain.Entity](name string, storage sessionstore.Storage, logger zerolog.Logger, zero T) *Store[T] {
	initial := func() Snapshot[T] {
		return Snapshot[T]{Current: zero, List: []T{}}
	}
	return &Store[T]{c: newContainer(name, storage, logger, initial)}
}

func (s *Store[T]) Name() string { return s.c.name }

// SetCurrentID replaces the id only; the object is left for the caller to load.
func (s *Store[T]) SetCurrentID(id domain.ID) {
	s.c.update(func(st *Snapshot[T]) { st.CurrentID = id })
}

// SetCurrent installs obj and its id in one write.
func (s *Store[T]) SetCurrent(obj T) {
	s.c.update(func(st *Snapshot[T]) {
		st.Current = obj
		st.CurrentID = obj.GetID()
	})
}

// Select sets id together with its cached object, or the zero record when
// the list does not hold it yet.
func (s *Store[T]) Select(id domain.ID) {
	zero := s.c.initial().Current
	s.c.update(func(st *Snapshot[T]) {
		st.CurrentID = id
		st.Current = zero
		if v, ok := domain.FindByID(st.List, id); ok && id != "" {
			st.Current = v
		}
	})
}

// SetList replaces the cached list wholesale.
func (s *Store[T]) SetList(list []T) {
	cp := make([]T, len(list))
	copy(cp, list)
	s.c.update(func(st *Snapshot[T]) { st.List = cp })
}

// GetCurrent looks id up in the cached list, returning the zero record when absent.
func (s *Store[T]) GetCurrent(id domain.ID) T {
	snap := s.c.get()
	if v, ok := domain.FindByID(snap.List, id); ok {
		return v
	}
	return s.c.initial().Current
}

// Reset restores the initial empty triple.
func (s *Store[T]) Reset() { s.c.reset() }

// ResetSelection clears id and object but keeps the cached list.
func (s *Store[T]) ResetSelection() {
	zero := s.c.initial().Current
	s.c.update(func(st *Snapshot[T]) {
		st.CurrentID = ""
		st.Current = zero
	})
}

func (s *Store[T]) Snapshot() Snapshot[T] {
	snap := s.c.get()
	snap.List = append([]T{}, snap.List...)
	return snap
}

func (s *Store[T]) CurrentID() domain.ID { return s.c.get().CurrentID }

func (s *Store[T]) Current() T { return s.c.get().Current }

func (s *Store[T]) List() []T { return append([]T{}, s.c.get().List...) }

// Subscribe registers fn for every state change.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	return s.c.subscribe(fn)
}

// Watch calls fn only when the selected slice of state changes value.
// selector must be a pure read of the snapshot.
func Watch[T domain.Entity, V comparable](s *Store[T], selector func(Snapshot[T]) V, fn func(V)) (unsubscribe func()) {
	var last V
	return s.c.subscribeFrom(func(snap Snapshot[T]) { last = selector(snap) }, func(snap Snapshot[T]) {
		v := selector(snap)
		if v == last {
			return
		}
		last = v
		fn(v)
	})
}

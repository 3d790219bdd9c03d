package state

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"coachline/internal/sessionstore"
)

// container is a named state value mirrored into session storage.
// Writes are serialized; subscribers see every write in order.
//
// Subscribers must not write to the same container synchronously from
// inside their callback.
type container[S any] struct {
	name    string
	storage sessionstore.Storage
	logger  zerolog.Logger
	initial func() S

	mu      sync.Mutex
	state   S
	version uint64

	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[int]func(S, uint64)
	nextSub  int
}

func newContainer[S any](name string, storage sessionstore.Storage, logger zerolog.Logger, initial func() S) *container[S] {
	c := &container[S]{
		name:    name,
		storage: storage,
		logger:  logger.With().Str("store", name).Logger(),
		initial: initial,
		state:   initial(),
		subs:    map[int]func(S, uint64){},
	}
	c.hydrate()
	return c
}

func (c *container[S]) hydrate() {
	if c.storage == nil {
		return
	}
	data, ok, err := c.storage.Load(context.Background(), c.name)
	if err != nil {
		c.logger.Warn().Err(err).Msg("load persisted state")
		return
	}
	if !ok {
		return
	}
	restored := c.initial()
	if err := json.Unmarshal(data, &restored); err != nil {
		c.logger.Warn().Err(err).Msg("discarding unreadable persisted state")
		return
	}
	c.state = restored
	c.logger.Debug().Msg("state hydrated")
}

func (c *container[S]) get() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// update applies fn to a copy of the state and publishes the result.
func (c *container[S]) update(fn func(*S)) {
	c.mu.Lock()
	next := c.state
	fn(&next)
	c.state = next
	c.version++
	version := c.version
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	c.persist(next)
	c.subsMu.Lock()
	subs := make([]func(S, uint64), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()
	for _, fn := range subs {
		fn(next, version)
	}
}

func (c *container[S]) reset() {
	c.update(func(s *S) { *s = c.initial() })
}

func (c *container[S]) persist(s S) {
	if c.storage == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		c.logger.Error().Err(err).Msg("encode state")
		return
	}
	if err := c.storage.Save(context.Background(), c.name, data); err != nil {
		c.logger.Error().Err(err).Msg("persist state")
	}
}

func (c *container[S]) subscribe(fn func(S)) func() {
	return c.register(func(s S, _ uint64) { fn(s) })
}

// subscribeFrom hands seed the current state and registers fn in the same
// critical section. fn only sees writes made after that state. seed runs
// under the state lock and must not touch the container.
func (c *container[S]) subscribeFrom(seed func(S), fn func(S)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	seed(c.state)
	seen := c.version
	return c.register(func(s S, v uint64) {
		if v > seen {
			fn(s)
		}
	})
}

func (c *container[S]) register(fn func(S, uint64)) func() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

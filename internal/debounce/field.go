// Package debounce buffers edits to a single text field and commits the
// latest value once the user has paused typing.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"coachline/internal/domain"
)

const DefaultDelay = 1000 * time.Millisecond

const (
	SavedMessage  = "All changes saved"
	FailedMessage = "Failed to save changes"
)

// Committer persists a field value. Create is used while the field has no
// backing record yet.
type Committer interface {
	Create(ctx context.Context, value string) (domain.ID, error)
	Update(ctx context.Context, id domain.ID, value string) error
}

type State int

const (
	Idle State = iota
	Editing
	Committing
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Committing:
		return "committing"
	default:
		return "idle"
	}
}

// Status is what observers see after every transition.
type Status struct {
	State   State
	ID      domain.ID
	Message string
	Err     error
}

type Option func(*Field)

func WithDelay(d time.Duration) Option {
	return func(f *Field) {
		if d > 0 {
			f.delay = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *Field) { f.logger = l }
}

// WithContext sets the context used for timer-driven commits.
func WithContext(ctx context.Context) Option {
	return func(f *Field) { f.ctx = ctx }
}

// Field is a debounced editable value. At most one commit is in flight; a
// commit requested meanwhile is queued and only its latest value is sent,
// so a record is never created twice.
type Field struct {
	committer Committer
	delay     time.Duration
	logger    zerolog.Logger
	ctx       context.Context

	mu        sync.Mutex
	id        domain.ID
	value     string
	state     State
	message   string
	lastErr   error
	timer     *time.Timer
	gen       uint64
	edits     uint64
	inflight  bool
	pending   bool
	closed    bool
	observers []func(Status)

	wg sync.WaitGroup
}

// New binds a field to committer. id is empty when no record exists yet.
func New(committer Committer, id domain.ID, initial string, opts ...Option) *Field {
	f := &Field{
		committer: committer,
		delay:     DefaultDelay,
		logger:    zerolog.Nop(),
		ctx:       context.Background(),
		id:        id,
		value:     initial,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Edit replaces the buffer and restarts the delay.
func (f *Field) Edit(value string) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.value = value
	f.edits++
	f.state = Editing
	f.message = ""
	f.lastErr = nil
	f.gen++
	gen := f.gen
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.delay, func() { f.fire(gen) })
	st := f.statusLocked()
	f.mu.Unlock()
	f.notify(st)
}

func (f *Field) fire(gen uint64) {
	f.mu.Lock()
	if f.closed || gen != f.gen {
		f.mu.Unlock()
		return
	}
	f.timer = nil
	f.startLocked()
}

// startLocked begins or queues a commit and releases f.mu.
func (f *Field) startLocked() {
	if f.inflight {
		f.pending = true
		f.mu.Unlock()
		return
	}
	f.inflight = true
	f.state = Committing
	st := f.statusLocked()
	f.wg.Add(1)
	f.mu.Unlock()
	f.notify(st)
	go f.run()
}

func (f *Field) run() {
	defer f.wg.Done()
	for {
		f.mu.Lock()
		id, value, edits := f.id, f.value, f.edits
		f.mu.Unlock()

		var err error
		if id == "" {
			var created domain.ID
			created, err = f.committer.Create(f.ctx, value)
			if err == nil {
				id = created
			}
		} else {
			err = f.committer.Update(f.ctx, id, value)
		}

		f.mu.Lock()
		if err == nil && f.id == "" {
			f.id = id
		}
		if err != nil {
			f.logger.Error().Err(err).Str("id", id).Msg("commit field")
			f.message = FailedMessage
			f.lastErr = err
		} else {
			f.logger.Debug().Str("id", id).Msg("field committed")
			f.lastErr = nil
		}
		more := f.pending && !f.closed
		f.pending = false
		switch {
		case more:
			f.state = Committing
		case f.edits != edits:
			f.state = Editing
		default:
			f.state = Idle
			if err == nil {
				f.message = SavedMessage
			}
		}
		if !more {
			f.inflight = false
		}
		st := f.statusLocked()
		f.mu.Unlock()
		f.notify(st)
		if !more {
			return
		}
	}
}

// Flush commits a pending edit now and waits for every commit to settle.
func (f *Field) Flush() error {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.gen++
	if f.state == Editing && !f.closed {
		f.startLocked()
	} else {
		f.mu.Unlock()
	}
	f.wg.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Close cancels the pending timer. No commit starts afterwards; one already
// in flight is allowed to finish.
func (f *Field) Close() {
	f.mu.Lock()
	f.closed = true
	f.pending = false
	f.gen++
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.mu.Unlock()
}

// Wait blocks until no commit is in flight.
func (f *Field) Wait() { f.wg.Wait() }

func (f *Field) OnStatus(fn func(Status)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, fn)
}

func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

func (f *Field) ID() domain.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *Field) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusLocked()
}

func (f *Field) statusLocked() Status {
	return Status{State: f.state, ID: f.id, Message: f.message, Err: f.lastErr}
}

func (f *Field) notify(st Status) {
	f.mu.Lock()
	observers := append([]func(Status){}, f.observers...)
	f.mu.Unlock()
	for _, fn := range observers {
		fn(st)
	}
}

// Package panel implements the sortable list editors shown for a coaching
// session's agreements and actions.
package panel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"

	"coachline/internal/domain"
)

// ErrUnknownRow is returned for ids the panel has not loaded.
var ErrUnknownRow = errors.New("no such row in this session")

// Backend is the remote collection a panel edits. D is the editable draft.
type Backend[T domain.Entity, D any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft D) (T, error)
	Update(ctx context.Context, id domain.ID, draft D) (T, error)
	Delete(ctx context.Context, id domain.ID) error
}

// Column renders and orders one field. Value returns a string, a time.Time
// or a fmt.Stringer.
type Column[T any] struct {
	Key   string
	Title string
	Value func(T) any
}

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// Panel holds the rows of one session collection.
type Panel[T domain.Entity, D any] struct {
	backend Backend[T, D]
	columns []Column[T]
	body    func(D) string
	logger  zerolog.Logger

	mu      sync.Mutex
	rows    []T
	sortKey string
	dir     Direction
}

// New builds a panel. body extracts the text that must be non-blank before
// a draft is sent.
func New[T domain.Entity, D any](backend Backend[T, D], columns []Column[T], body func(D) string, logger zerolog.Logger) *Panel[T, D] {
	return &Panel[T, D]{
		backend: backend,
		columns: columns,
		body:    body,
		logger:  logger,
		rows:    []T{},
	}
}

func (p *Panel[T, D]) Load(ctx context.Context) error {
	rows, err := p.backend.List(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("load rows")
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = append([]T{}, rows...)
	p.sortLocked()
	return nil
}

// Add creates draft remotely and shows the returned row. A blank body is
// ignored.
func (p *Panel[T, D]) Add(ctx context.Context, draft D) (T, error) {
	var zero T
	if strings.TrimSpace(p.body(draft)) == "" {
		return zero, nil
	}
	created, err := p.backend.Create(ctx, draft)
	if err != nil {
		p.logger.Error().Err(err).Msg("add row")
		return zero, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rows = append(p.rows, created)
	p.sortLocked()
	return created, nil
}

// Edit replaces row id with the server's answer to draft. Only loaded rows
// can be edited.
func (p *Panel[T, D]) Edit(ctx context.Context, id domain.ID, draft D) (T, error) {
	var zero T
	if strings.TrimSpace(p.body(draft)) == "" {
		return zero, nil
	}
	if !p.has(id) {
		return zero, fmt.Errorf("edit %s: %w", id, ErrUnknownRow)
	}
	updated, err := p.backend.Update(ctx, id, draft)
	if err != nil {
		p.logger.Error().Err(err).Str("id", id).Msg("edit row")
		return zero, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.rows {
		if p.rows[i].GetID() == id {
			p.rows[i] = updated
			break
		}
	}
	p.sortLocked()
	return updated, nil
}

// Delete removes row id. Ids outside the loaded rows are rejected.
func (p *Panel[T, D]) Delete(ctx context.Context, id domain.ID) error {
	if !p.has(id) {
		return fmt.Errorf("delete %s: %w", id, ErrUnknownRow)
	}
	if err := p.backend.Delete(ctx, id); err != nil {
		p.logger.Error().Err(err).Str("id", id).Msg("delete row")
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.rows[:0]
	for _, r := range p.rows {
		if r.GetID() != id {
			kept = append(kept, r)
		}
	}
	p.rows = kept
	return nil
}

// SortBy orders rows by key. Choosing the current key again flips the
// direction; a new key starts ascending.
func (p *Panel[T, D]) SortBy(key string) error {
	if _, ok := p.column(key); !ok {
		return fmt.Errorf("unknown column %q", key)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sortKey == key {
		if p.dir == Asc {
			p.dir = Desc
		} else {
			p.dir = Asc
		}
	} else {
		p.sortKey = key
		p.dir = Asc
	}
	p.sortLocked()
	return nil
}

// Sort reports the active column and direction.
func (p *Panel[T, D]) Sort() (string, Direction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sortKey, p.dir
}

func (p *Panel[T, D]) Rows() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]T{}, p.rows...)
}

func (p *Panel[T, D]) Columns() []Column[T] { return p.columns }

// Render prints the rows as a table.
func (p *Panel[T, D]) Render(w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	header := table.Row{"ID"}
	for _, c := range p.columns {
		header = append(header, c.Title)
	}
	tw.AppendHeader(header)
	for _, r := range p.Rows() {
		row := table.Row{r.GetID()}
		for _, c := range p.columns {
			row = append(row, cell(c.Value(r)))
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

func (p *Panel[T, D]) has(id domain.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := domain.FindByID(p.rows, id)
	return ok
}

func (p *Panel[T, D]) column(key string) (Column[T], bool) {
	for _, c := range p.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (p *Panel[T, D]) sortLocked() {
	col, ok := p.column(p.sortKey)
	if !ok {
		return
	}
	desc := p.dir == Desc
	sort.SliceStable(p.rows, func(i, j int) bool {
		a, b := col.Value(p.rows[i]), col.Value(p.rows[j])
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

func less(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Before(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.ToLower(av) < strings.ToLower(bv)
		}
	}
	return cell(a) < cell(b)
}

func cell(v any) string {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Local().Format("2006-01-02 15:04")
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

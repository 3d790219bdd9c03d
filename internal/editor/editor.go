// Package editor binds debounced fields to coaching session records.
package editor

import (
	"context"
	"sync"

	"coachline/internal/debounce"
	"coachline/internal/domain"
)

type NoteAPI interface {
	CreateNote(ctx context.Context, sessionID, userID, body string) (domain.Note, error)
	UpdateNote(ctx context.Context, id, sessionID, userID, body string) (domain.Note, error)
}

type GoalAPI interface {
	CreateOverarchingGoal(ctx context.Context, goal domain.OverarchingGoal) (domain.OverarchingGoal, error)
	UpdateOverarchingGoal(ctx context.Context, id string, goal domain.OverarchingGoal) (domain.OverarchingGoal, error)
}

type noteCommitter struct {
	api       NoteAPI
	sessionID domain.ID
	userID    domain.ID
}

func (c noteCommitter) Create(ctx context.Context, body string) (domain.ID, error) {
	n, err := c.api.CreateNote(ctx, c.sessionID, c.userID, body)
	return n.ID, err
}

func (c noteCommitter) Update(ctx context.Context, id domain.ID, body string) error {
	_, err := c.api.UpdateNote(ctx, id, c.sessionID, c.userID, body)
	return err
}

// NewNoteEditor edits the body of note, creating the note on first commit
// when it has no id.
func NewNoteEditor(api NoteAPI, sessionID, userID domain.ID, note domain.Note, opts ...debounce.Option) *debounce.Field {
	return debounce.New(noteCommitter{api: api, sessionID: sessionID, userID: userID}, note.ID, note.Body, opts...)
}

type goalTitleCommitter struct {
	api GoalAPI

	mu   sync.Mutex
	goal domain.OverarchingGoal
}

func (c *goalTitleCommitter) Create(ctx context.Context, title string) (domain.ID, error) {
	c.mu.Lock()
	draft := c.goal
	c.mu.Unlock()
	draft.Title = title
	created, err := c.api.CreateOverarchingGoal(ctx, draft)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.goal = created
	c.mu.Unlock()
	return created.ID, nil
}

func (c *goalTitleCommitter) Update(ctx context.Context, id domain.ID, title string) error {
	c.mu.Lock()
	draft := c.goal
	c.mu.Unlock()
	draft.Title = title
	updated, err := c.api.UpdateOverarchingGoal(ctx, id, draft)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.goal = updated
	c.mu.Unlock()
	return nil
}

// NewGoalTitleEditor edits the title of the session's overarching goal.
// Other goal fields are sent back unchanged.
func NewGoalTitleEditor(api GoalAPI, sessionID, userID domain.ID, goal domain.OverarchingGoal, opts ...debounce.Option) *debounce.Field {
	if goal.ID == "" {
		goal.CoachingSessionID = sessionID
		goal.UserID = userID
		if !goal.Status.Valid() {
			goal.Status = domain.NotStarted
		}
	}
	return debounce.New(&goalTitleCommitter{api: api, goal: goal}, goal.ID, goal.Title, opts...)
}

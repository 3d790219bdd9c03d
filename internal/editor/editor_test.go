package editor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachline/internal/api"
	"coachline/internal/apitest"
	"coachline/internal/debounce"
	"coachline/internal/domain"
	"coachline/internal/editor"
)

func setup(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	srv.AddUser("coach@example.com", "secret", domain.UserSession{ID: "U1"})
	c := api.New(srv.URL)
	_, err := c.Login(context.Background(), "coach@example.com", "secret")
	require.NoError(t, err)
	return c, srv
}

func TestNoteEditorCreatesOnceThenUpdates(t *testing.T) {
	c, srv := setup(t)
	f := editor.NewNoteEditor(c, "S1", "U1", domain.DefaultNote(), debounce.WithDelay(20*time.Millisecond))

	f.Edit("<p>first</p>")
	require.NoError(t, f.Flush())
	f.Edit("<p>second</p>")
	require.NoError(t, f.Flush())

	notes := srv.Notes()
	require.Len(t, notes, 1)
	assert.Equal(t, "<p>second</p>", notes[0].Body)
	assert.Equal(t, "S1", notes[0].CoachingSessionID)
	assert.Equal(t, "U1", notes[0].UserID)
	assert.Equal(t, notes[0].ID, f.ID())
	assert.Equal(t, 1, srv.CountRequests("POST", "/notes"))
}

func TestNoteEditorUpdatesExisting(t *testing.T) {
	c, srv := setup(t)
	note := srv.AddNote(domain.Note{CoachingSessionID: "S1", UserID: "U1", Body: "old"})
	f := editor.NewNoteEditor(c, "S1", "U1", note)
	assert.Equal(t, "old", f.Value())

	f.Edit("new")
	require.NoError(t, f.Flush())

	assert.Equal(t, "new", srv.Notes()[0].Body)
	assert.Equal(t, 0, srv.CountRequests("POST", "/notes"))
	assert.Equal(t, debounce.SavedMessage, f.Status().Message)
}

func TestNoteEditorFailure(t *testing.T) {
	c, srv := setup(t)
	note := srv.AddNote(domain.Note{CoachingSessionID: "S1", UserID: "U1", Body: "old"})
	srv.Fail("PUT", "/notes/"+note.ID, 500)
	f := editor.NewNoteEditor(c, "S1", "U1", note)

	f.Edit("new")
	err := f.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, debounce.FailedMessage, f.Status().Message)
	assert.Equal(t, "new", f.Value())
}

func TestGoalTitleEditor(t *testing.T) {
	c, srv := setup(t)
	f := editor.NewGoalTitleEditor(c, "S1", "U1", domain.DefaultOverarchingGoal())

	f.Edit("Grow the team")
	require.NoError(t, f.Flush())
	f.Edit("Grow the team to 5")
	require.NoError(t, f.Flush())

	goals := srv.Goals()
	require.Len(t, goals, 1)
	assert.Equal(t, "Grow the team to 5", goals[0].Title)
	assert.Equal(t, "S1", goals[0].CoachingSessionID)
	assert.Equal(t, domain.NotStarted, goals[0].Status)
}

func TestGoalTitleEditorKeepsOtherFields(t *testing.T) {
	c, srv := setup(t)
	goal := srv.AddGoal(domain.OverarchingGoal{CoachingSessionID: "S1", UserID: "U1", Title: "t", Body: "why", Status: domain.InProgress})
	f := editor.NewGoalTitleEditor(c, "S1", "U1", goal)

	f.Edit("t2")
	require.NoError(t, f.Flush())

	got := srv.Goals()[0]
	assert.Equal(t, "t2", got.Title)
	assert.Equal(t, "why", got.Body)
	assert.Equal(t, domain.InProgress, got.Status)
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"coachline/internal/codec"
	"coachline/internal/domain"
)

func (c *Client) FetchNotesByCoachingSessionID(ctx context.Context, sessionID string) ([]domain.Note, error) {
	op := operation{key: "fetch_notes", desc: "Fetch of Notes by coaching session id", id: sessionID}
	data, err := c.doJSON(ctx, op, http.MethodGet, "notes?coaching_session_id="+url.QueryEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	return decode(c, op, data, codec.ParseNotes)
}

func (c *Client) CreateNote(ctx context.Context, sessionID, userID, body string) (domain.Note, error) {
	op := operation{key: "create_note", desc: "Create of Note"}
	note := domain.DefaultNote()
	note.CoachingSessionID = sessionID
	note.UserID = userID
	note.Body = body
	data, err := c.doJSON(ctx, op, http.MethodPost, "notes", note)
	if err != nil {
		return domain.Note{}, err
	}
	return decode(c, op, data, codec.ParseNote)
}

func (c *Client) UpdateNote(ctx context.Context, id, sessionID, userID, body string) (domain.Note, error) {
	op := operation{key: "update_note", desc: "Update of Note", id: id}
	note := domain.DefaultNote()
	note.ID = id
	note.CoachingSessionID = sessionID
	note.UserID = userID
	note.Body = body
	data, err := c.doJSON(ctx, op, http.MethodPut, "notes/"+pathID(id), note)
	if err != nil {
		return domain.Note{}, err
	}
	return decode(c, op, data, codec.ParseNote)
}

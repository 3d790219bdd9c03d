package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"coachline/internal/codec"
	"coachline/internal/domain"
)

// ActionDraft carries the user-editable fields of an action.
type ActionDraft struct {
	Body   string
	Status domain.ItemStatus
	DueBy  time.Time
}

func (c *Client) FetchActionsByCoachingSessionID(ctx context.Context, sessionID string) ([]domain.Action, error) {
	op := operation{key: "fetch_actions", desc: "Fetch of Actions by coaching session id", id: sessionID}
	data, err := c.doJSON(ctx, op, http.MethodGet, "actions?coaching_session_id="+url.QueryEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	return decode(c, op, data, codec.ParseActions)
}

func (c *Client) CreateAction(ctx context.Context, sessionID, userID string, draft ActionDraft) (domain.Action, error) {
	op := operation{key: "create_action", desc: "Create of Action"}
	data, err := c.doJSON(ctx, op, http.MethodPost, "actions", actionFromDraft("", sessionID, userID, draft))
	if err != nil {
		return domain.Action{}, err
	}
	return decode(c, op, data, codec.ParseAction)
}

func (c *Client) UpdateAction(ctx context.Context, id, sessionID, userID string, draft ActionDraft) (domain.Action, error) {
	op := operation{key: "update_action", desc: "Update of Action", id: id}
	data, err := c.doJSON(ctx, op, http.MethodPut, "actions/"+pathID(id), actionFromDraft(id, sessionID, userID, draft))
	if err != nil {
		return domain.Action{}, err
	}
	return decode(c, op, data, codec.ParseAction)
}

func (c *Client) DeleteAction(ctx context.Context, id string) error {
	op := operation{key: "delete_action", desc: "Delete of Action", id: id}
	_, err := c.doJSON(ctx, op, http.MethodDelete, "actions/"+pathID(id), nil)
	return err
}

func actionFromDraft(id, sessionID, userID string, draft ActionDraft) domain.Action {
	a := domain.DefaultAction()
	a.ID = id
	a.CoachingSessionID = sessionID
	a.UserID = userID
	a.Body = draft.Body
	if draft.Status != "" {
		a.Status = draft.Status
	}
	a.DueBy = draft.DueBy.UTC()
	return a
}

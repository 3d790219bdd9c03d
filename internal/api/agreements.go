package api

import (
	"context"
	"net/http"
	"net/url"

	"coachline/internal/codec"
	"coachline/internal/domain"
)

func (c *Client) FetchAgreementsByCoachingSessionID(ctx context.Context, sessionID string) ([]domain.Agreement, error) {
	op := operation{key: "fetch_agreements", desc: "Fetch of Agreements by coaching session id", id: sessionID}
	data, err := c.doJSON(ctx, op, http.MethodGet, "agreements?coaching_session_id="+url.QueryEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	return decode(c, op, data, codec.ParseAgreements)
}

func (c *Client) CreateAgreement(ctx context.Context, sessionID, userID, body string) (domain.Agreement, error) {
	op := operation{key: "create_agreement", desc: "Create of Agreement"}
	a := domain.DefaultAgreement()
	a.CoachingSessionID = sessionID
	a.UserID = userID
	a.Body = body
	data, err := c.doJSON(ctx, op, http.MethodPost, "agreements", a)
	if err != nil {
		return domain.Agreement{}, err
	}
	return decode(c, op, data, codec.ParseAgreement)
}

func (c *Client) UpdateAgreement(ctx context.Context, id, sessionID, userID, body string) (domain.Agreement, error) {
	op := operation{key: "update_agreement", desc: "Update of Agreement", id: id}
	a := domain.DefaultAgreement()
	a.ID = id
	a.CoachingSessionID = sessionID
	a.UserID = userID
	a.Body = body
	data, err := c.doJSON(ctx, op, http.MethodPut, "agreements/"+pathID(id), a)
	if err != nil {
		return domain.Agreement{}, err
	}
	return decode(c, op, data, codec.ParseAgreement)
}

func (c *Client) DeleteAgreement(ctx context.Context, id string) error {
	op := operation{key: "delete_agreement", desc: "Delete of Agreement", id: id}
	_, err := c.doJSON(ctx, op, http.MethodDelete, "agreements/"+pathID(id), nil)
	return err
}

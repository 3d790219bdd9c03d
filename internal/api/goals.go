package api

import (
	"context"
	"net/http"
	"net/url"

	"coachline/internal/codec"
	"coachline/internal/domain"
)

func (c *Client) FetchOverarchingGoalsByCoachingSessionID(ctx context.Context, sessionID string) ([]domain.OverarchingGoal, error) {
	op := operation{key: "fetch_overarching_goals", desc: "Fetch of OverarchingGoals by coaching session id", id: sessionID}
	data, err := c.doJSON(ctx, op, http.MethodGet, "overarching_goals?coaching_session_id="+url.QueryEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}
	return decode(c, op, data, codec.ParseOverarchingGoals)
}

func (c *Client) CreateOverarchingGoal(ctx context.Context, goal domain.OverarchingGoal) (domain.OverarchingGoal, error) {
	op := operation{key: "create_overarching_goal", desc: "Create of OverarchingGoal"}
	data, err := c.doJSON(ctx, op, http.MethodPost, "overarching_goals", goal)
	if err != nil {
		return domain.OverarchingGoal{}, err
	}
	return decode(c, op, data, codec.ParseOverarchingGoal)
}

func (c *Client) UpdateOverarchingGoal(ctx context.Context, id string, goal domain.OverarchingGoal) (domain.OverarchingGoal, error) {
	op := operation{key: "update_overarching_goal", desc: "Update of OverarchingGoal", id: id}
	goal.ID = id
	data, err := c.doJSON(ctx, op, http.MethodPut, "overarching_goals/"+pathID(id), goal)
	if err != nil {
		return domain.OverarchingGoal{}, err
	}
	return decode(c, op, data, codec.ParseOverarchingGoal)
}

func (c *Client) DeleteOverarchingGoal(ctx context.Context, id string) error {
	op := operation{key: "delete_overarching_goal", desc: "Delete of OverarchingGoal", id: id}
	_, err := c.doJSON(ctx, op, http.MethodDelete, "overarching_goals/"+pathID(id), nil)
	return err
}

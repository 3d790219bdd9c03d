package api

import (
	"context"
	"net/http"

	"coachline/internal/codec"
	"coachline/internal/domain"
)

func (c *Client) FetchCoachingRelationships(ctx context.Context, organizationID string) ([]domain.CoachingRelationshipWithUserNames, error) {
	op := operation{key: "fetch_coaching_relationships", desc: "Fetch of CoachingRelationships by organization id", id: organizationID}
	data, err := c.doJSON(ctx, op, http.MethodGet, "organizations/"+pathID(organizationID)+"/coaching_relationships", nil)
	if err != nil {
		return nil, err
	}
	return decode(c, op, data, codec.ParseCoachingRelationships)
}

func (c *Client) FetchCoachingRelationship(ctx context.Context, organizationID, relationshipID string) (domain.CoachingRelationshipWithUserNames, error) {
	op := operation{key: "fetch_coaching_relationship", desc: "Fetch of CoachingRelationship", id: relationshipID}
	endpoint := "organizations/" + pathID(organizationID) + "/coaching_relationships/" + pathID(relationshipID)
	data, err := c.doJSON(ctx, op, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.CoachingRelationshipWithUserNames{}, err
	}
	return decode(c, op, data, codec.ParseCoachingRelationship)
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"coachline/internal/codec"
	"coachline/internal/domain"
)

// FetchOrganizations lists every organization visible to the session.
func (c *Client) FetchOrganizations(ctx context.Context) ([]domain.Organization, error) {
	op := operation{key: "fetch_organizations", desc: "Fetch of Organizations"}
	data, err := c.doJSON(ctx, op, http.MethodGet, "organizations", nil)
	if err != nil {
		return nil, err
	}
	return decode(c, op, data, codec.ParseOrganizations)
}

// FetchOrganizationsByUserID lists the organizations a user belongs to.
func (c *Client) FetchOrganizationsByUserID(ctx context.Context, userID string) ([]domain.Organization, error) {
	op := operation{key: "fetch_organizations", desc: "Fetch of Organizations by user id", id: userID}
	data, err := c.doJSON(ctx, op, http.MethodGet, "organizations?user_id="+url.QueryEscape(userID), nil)
	if err != nil {
		return nil, err
	}
	return decode(c, op, data, codec.ParseOrganizations)
}

func (c *Client) FetchOrganization(ctx context.Context, id string) (domain.Organization, error) {
	op := operation{key: "fetch_organization", desc: "Fetch of Organization", id: id}
	data, err := c.doJSON(ctx, op, http.MethodGet, "organizations/"+pathID(id), nil)
	if err != nil {
		return domain.Organization{}, err
	}
	return decode(c, op, data, codec.ParseOrganization)
}

func (c *Client) CreateOrganization(ctx context.Context, org domain.Organization) (domain.Organization, error) {
	op := operation{key: "create_organization", desc: "Create of Organization"}
	data, err := c.doJSON(ctx, op, http.MethodPost, "organizations", org)
	if err != nil {
		return domain.Organization{}, err
	}
	return decode(c, op, data, codec.ParseOrganization)
}

func (c *Client) UpdateOrganization(ctx context.Context, id string, org domain.Organization) (domain.Organization, error) {
	op := operation{key: "update_organization", desc: "Update of Organization", id: id}
	data, err := c.doJSON(ctx, op, http.MethodPut, "organizations/"+pathID(id), org)
	if err != nil {
		return domain.Organization{}, err
	}
	return decode(c, op, data, codec.ParseOrganization)
}

func (c *Client) DeleteOrganization(ctx context.Context, id string) error {
	op := operation{key: "delete_organization", desc: "Delete of Organization", id: id}
	_, err := c.doJSON(ctx, op, http.MethodDelete, "organizations/"+pathID(id), nil)
	return err
}

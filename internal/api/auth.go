package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"coachline/internal/codec"
	"coachline/internal/domain"
)

// Login posts form-encoded credentials. On success the session cookie is
// held by the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (domain.UserSession, error) {
	op := operation{key: "login", desc: "Login"}
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	data, err := c.do(ctx, op, http.MethodPost, "login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return domain.UserSession{}, err
	}
	user, err := decode(c, op, data, codec.ParseUserSession)
	if err != nil {
		return domain.UserSession{}, err
	}
	user.IsLoggedIn = true
	return user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	op := operation{key: "logout", desc: "Logout"}
	_, err := c.doJSON(ctx, op, http.MethodGet, "logout", nil)
	return err
}
